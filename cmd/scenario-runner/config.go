package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcxwhiz/unittest-scenarios/pkg/scenario"
)

// runnerConfig is the on-disk configuration of the scenario-runner binary:
// the suite settings plus the command executed once per scenario.
type runnerConfig struct {
	Suite scenario.Config `yaml:",inline"`

	// Command is the argv run inside each scenario's isolated working
	// directory. The placeholders {name} and {fixture} expand to the
	// scenario name and absolute fixture path; the same values are also
	// exported as SCENARIO_NAME and SCENARIO_FIXTURE.
	Command []string `yaml:"command"`
}

func loadRunnerConfig(path string) (runnerConfig, error) {
	var cfg runnerConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	if len(cfg.Command) == 0 {
		return cfg, fmt.Errorf("config %s does not define a command", path)
	}
	return cfg, nil
}

// expandCommand substitutes the scenario placeholders into a copy of argv.
func expandCommand(argv []string, name, fixturePath string) []string {
	expanded := make([]string, len(argv))
	for i, arg := range argv {
		arg = strings.ReplaceAll(arg, "{name}", name)
		arg = strings.ReplaceAll(arg, "{fixture}", fixturePath)
		expanded[i] = arg
	}
	return expanded
}
