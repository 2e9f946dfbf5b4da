// Package pathcopy performs recursive merge copies of directory trees.
// The destination may already contain content: existing directories are
// reused, existing files are overwritten, and everything else is left in
// place. File copies run on a small worker pool; the walk itself creates
// directories in order so workers never race their parents.
package pathcopy

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rcxwhiz/unittest-scenarios/pkg/pool"
	"github.com/rcxwhiz/unittest-scenarios/pkg/util"
)

// copyItem holds the metadata a worker needs to copy one file without
// re-fetching filesystem stats.
type copyItem struct {
	srcAbsPath string
	dstAbsPath string
	mode       fs.FileMode
}

// CopyTree copies the full contents of src into dst, merging with whatever
// dst already holds. src must be a directory; dst is created when missing.
func CopyTree(ctx context.Context, src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat copy source %s: %w", src, err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("copy source %s is not a directory", src)
	}
	if err := os.MkdirAll(dst, util.WithOwnerAccess(srcInfo.Mode().Perm())); err != nil {
		return fmt.Errorf("failed to create copy destination %s: %w", dst, err)
	}

	group, ctx := errgroup.WithContext(ctx)
	items := make(chan copyItem, 64)

	// Producer: walks the source, creates directories and symlinks inline,
	// and hands regular files to the worker pool.
	group.Go(func() error {
		defer close(items)
		return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(src, path)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			target := filepath.Join(dst, rel)

			info, err := d.Info()
			if err != nil {
				return err
			}

			switch {
			case d.IsDir():
				return os.MkdirAll(target, util.WithOwnerAccess(info.Mode().Perm()))
			case info.Mode()&fs.ModeSymlink != 0:
				linkTarget, err := os.Readlink(path)
				if err != nil {
					return err
				}
				_ = os.Remove(target)
				return os.Symlink(linkTarget, target)
			default:
				select {
				case items <- copyItem{srcAbsPath: path, dstAbsPath: target, mode: info.Mode().Perm()}:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		})
	})

	for i := 0; i < numCopyWorkers(); i++ {
		group.Go(func() error {
			for item := range items {
				if err := copyFile(item); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return group.Wait()
}

func numCopyWorkers() int {
	workers := runtime.NumCPU()
	if workers > 4 {
		workers = 4
	}
	return workers
}

func copyFile(item copyItem) error {
	srcFile, err := os.Open(item.srcAbsPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", item.srcAbsPath, err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(item.dstAbsPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, item.mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", item.dstAbsPath, err)
	}

	bufPtr := pool.IO.Get()
	_, err = io.CopyBuffer(dstFile, srcFile, *bufPtr)
	pool.IO.Put(bufPtr)
	if closeErr := dstFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", item.srcAbsPath, err)
	}
	return nil
}
