package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcxwhiz/unittest-scenarios/pkg/scenario"
)

func TestLoadRunnerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario-runner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fixtures_root: ./fixtures
strategy: none
command: ["sh", "-c", "my-tool --scenario {name}"]
`), 0644))

	cfg, err := loadRunnerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./fixtures", cfg.Suite.FixturesRoot)
	assert.Equal(t, scenario.NoCheck, cfg.Suite.Strategy)
	assert.Equal(t, []string{"sh", "-c", "my-tool --scenario {name}"}, cfg.Command)
}

func TestLoadRunnerConfigRequiresCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario-runner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fixtures_root: ./fixtures\n"), 0644))
	_, err := loadRunnerConfig(path)
	assert.ErrorContains(t, err, "does not define a command")
}

func TestLoadRunnerConfigMissingFile(t *testing.T) {
	_, err := loadRunnerConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestExpandCommand(t *testing.T) {
	argv := expandCommand(
		[]string{"run", "--name", "{name}", "--fixture", "{fixture}", "plain"},
		"equal_dirs", "/abs/fixtures/equal_dirs",
	)
	assert.Equal(t, []string{"run", "--name", "equal_dirs", "--fixture", "/abs/fixtures/equal_dirs", "plain"}, argv)
}
