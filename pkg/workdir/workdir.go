// Package workdir provides isolated working directories for scenario
// execution. Acquire creates an empty scratch directory and makes it the
// process working directory; Release restores the previous one and removes
// the scratch tree. One directory is occupied by at most one scenario at a
// time; the harness never runs scenarios concurrently.
package workdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rcxwhiz/unittest-scenarios/pkg/pathcopy"
)

// ConnectFunc materializes one external item inside the isolated directory.
// It receives the absolute external path and the destination path relative
// to the isolated directory, which is the current working directory when
// the function runs.
type ConnectFunc func(externalPath, internalPath string) error

// Connection describes one external item to make visible inside the
// isolated directory when it is acquired.
type Connection struct {
	// ExternalPath locates the item to connect. Relative paths resolve
	// against the working directory that was current before Acquire.
	ExternalPath string
	// InternalPath is the destination relative to the isolated directory.
	// When empty, the external path's base name is used.
	InternalPath string
	// Connect applies the connection. Symlink is used when nil.
	Connect ConnectFunc
}

// Symlink connects an external item by symbolic link.
func Symlink(externalPath, internalPath string) error {
	return os.Symlink(externalPath, internalPath)
}

// Copy connects an external item by copying it, recursively for
// directories.
func Copy(externalPath, internalPath string) error {
	info, err := os.Stat(externalPath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return pathcopy.CopyTree(context.Background(), externalPath, internalPath)
	}
	data, err := os.ReadFile(externalPath)
	if err != nil {
		return err
	}
	return os.WriteFile(internalPath, data, info.Mode().Perm())
}

// Dir is an acquired isolated working directory.
type Dir struct {
	path        string
	originalDir string
	released    bool
}

// Acquire creates an empty temporary directory, switches the process
// working directory to it, and applies the given connections. On any
// failure the previous working directory is restored and nothing is
// leaked.
func Acquire(connections ...Connection) (*Dir, error) {
	originalDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "unittest-scenarios-wd-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create isolated directory: %w", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to change to isolated directory: %w", err)
	}

	d := &Dir{path: tempDir, originalDir: originalDir}
	for _, connection := range connections {
		if err := d.connect(connection); err != nil {
			_ = d.Release()
			return nil, err
		}
	}
	return d, nil
}

func (d *Dir) connect(connection Connection) error {
	externalPath := connection.ExternalPath
	if !filepath.IsAbs(externalPath) {
		externalPath = filepath.Join(d.originalDir, externalPath)
	}
	if _, err := os.Stat(externalPath); err != nil {
		return fmt.Errorf("could not connect %s, does not exist: %w", externalPath, err)
	}

	internalPath := connection.InternalPath
	if internalPath == "" {
		internalPath = filepath.Base(externalPath)
	}

	connect := connection.Connect
	if connect == nil {
		connect = Symlink
	}
	if err := connect(externalPath, internalPath); err != nil {
		return fmt.Errorf("failed to connect %s: %w", externalPath, err)
	}
	return nil
}

// Path returns the absolute path of the isolated directory.
func (d *Dir) Path() string {
	return d.path
}

// OriginalWorkingDir returns the working directory that was current before
// Acquire.
func (d *Dir) OriginalWorkingDir() string {
	return d.originalDir
}

// Release restores the previous working directory and removes the isolated
// tree. It is safe to call more than once. Removal is retried briefly to
// tolerate filesystems that hold short-lived handles on recently written
// files.
func (d *Dir) Release() error {
	if d.released {
		return nil
	}
	d.released = true

	if err := os.Chdir(d.originalDir); err != nil {
		_ = removeAllRetry(d.path)
		return fmt.Errorf("failed to restore working directory: %w", err)
	}
	if err := removeAllRetry(d.path); err != nil {
		return fmt.Errorf("failed to remove isolated directory: %w", err)
	}
	return nil
}

func removeAllRetry(path string) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if err = os.RemoveAll(path); err == nil {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return err
}
