package workdir_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcxwhiz/unittest-scenarios/internal/fixturetest"
	"github.com/rcxwhiz/unittest-scenarios/pkg/workdir"
)

// These tests move the process working directory and must not run in
// parallel with anything.

func TestAcquireAndRelease(t *testing.T) {
	before, err := os.Getwd()
	require.NoError(t, err)

	dir, err := workdir.Acquire()
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	resolvedPath, err := filepath.EvalSymlinks(dir.Path())
	require.NoError(t, err)
	resolvedCwd, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)
	assert.Equal(t, resolvedPath, resolvedCwd)
	assert.Equal(t, before, dir.OriginalWorkingDir())

	entries, err := os.ReadDir(dir.Path())
	require.NoError(t, err)
	assert.Empty(t, entries, "acquired directory must start empty")

	require.NoError(t, dir.Release())

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, err = os.Stat(dir.Path())
	assert.True(t, os.IsNotExist(err), "released directory must be removed")
}

func TestReleaseIsIdempotent(t *testing.T) {
	dir, err := workdir.Acquire()
	require.NoError(t, err)
	require.NoError(t, dir.Release())
	require.NoError(t, dir.Release())
}

func TestConnections(t *testing.T) {
	external := t.TempDir()
	fixturetest.WriteTree(t, external, map[string]string{"shared/data.txt": "payload\n"})

	t.Run("SymlinkDefault", func(t *testing.T) {
		dir, err := workdir.Acquire(workdir.Connection{
			ExternalPath: filepath.Join(external, "shared"),
		})
		require.NoError(t, err)
		defer func() { require.NoError(t, dir.Release()) }()

		data, err := os.ReadFile(filepath.Join(dir.Path(), "shared", "data.txt"))
		require.NoError(t, err)
		assert.Equal(t, "payload\n", string(data))

		info, err := os.Lstat(filepath.Join(dir.Path(), "shared"))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&os.ModeSymlink)
	})

	t.Run("CopyStrategyWithRename", func(t *testing.T) {
		dir, err := workdir.Acquire(workdir.Connection{
			ExternalPath: filepath.Join(external, "shared"),
			InternalPath: "materialized",
			Connect:      workdir.Copy,
		})
		require.NoError(t, err)
		defer func() { require.NoError(t, dir.Release()) }()

		data, err := os.ReadFile(filepath.Join(dir.Path(), "materialized", "data.txt"))
		require.NoError(t, err)
		assert.Equal(t, "payload\n", string(data))

		info, err := os.Lstat(filepath.Join(dir.Path(), "materialized"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("CustomStrategy", func(t *testing.T) {
		var gotExternal, gotInternal string
		dir, err := workdir.Acquire(workdir.Connection{
			ExternalPath: filepath.Join(external, "shared"),
			InternalPath: "custom",
			Connect: func(externalPath, internalPath string) error {
				gotExternal, gotInternal = externalPath, internalPath
				return os.WriteFile(internalPath, []byte("custom\n"), 0644)
			},
		})
		require.NoError(t, err)
		defer func() { require.NoError(t, dir.Release()) }()

		assert.Equal(t, filepath.Join(external, "shared"), gotExternal)
		assert.Equal(t, "custom", gotInternal)
	})

	t.Run("MissingExternalFails", func(t *testing.T) {
		before, err := os.Getwd()
		require.NoError(t, err)

		_, err = workdir.Acquire(workdir.Connection{
			ExternalPath: filepath.Join(external, "does-not-exist"),
		})
		require.ErrorContains(t, err, "does not exist")

		// A failed Acquire must leave the working directory untouched.
		after, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}
