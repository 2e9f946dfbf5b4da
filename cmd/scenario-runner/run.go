package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/rcxwhiz/unittest-scenarios/pkg/scenario"
)

func newRunCmd() *cobra.Command {
	var configPath string
	var fixturesRoot string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute every scenario under the fixtures root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunnerConfig(configPath)
			if err != nil {
				return err
			}
			if fixturesRoot != "" {
				cfg.Suite.FixturesRoot = fixturesRoot
			}

			logic := func(name, fixturePath string) error {
				argv := expandCommand(cfg.Command, name, fixturePath)
				command := exec.CommandContext(cmd.Context(), argv[0], argv[1:]...)
				command.Stdout = os.Stdout
				command.Stderr = os.Stderr
				command.Env = append(os.Environ(),
					"SCENARIO_NAME="+name,
					"SCENARIO_FIXTURE="+fixturePath,
				)
				return command.Run()
			}

			suite, err := scenario.NewSuite(cfg.Suite, logic)
			if err != nil {
				return err
			}

			results := suite.Run(cmd.Context())
			failed := 0
			for _, result := range results {
				if result.State == scenario.Passed {
					fmt.Printf("PASS %s\n", result.Scenario.Name)
				} else {
					failed++
					fmt.Printf("FAIL %s (%s): %v\n", result.Scenario.Name, result.FailedIn, result.Err)
				}
			}
			fmt.Printf("%d scenarios, %d failed\n", len(results), failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "scenario-runner.yaml", "path to the runner configuration file")
	cmd.Flags().StringVar(&fixturesRoot, "fixtures", "", "override the configured fixtures root")
	return cmd
}
