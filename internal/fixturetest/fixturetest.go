// Package fixturetest builds on-disk fixture trees and archives for tests.
package fixturetest

import (
	"archive/tar"
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
)

// WriteTree creates the given files under root. Keys are slash-separated
// relative paths mapped to file content; a key ending in "/" creates an
// empty directory. Parent directories are created as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		target := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(target, 0755); err != nil {
				t.Fatalf("failed to create dir %s: %v", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			t.Fatalf("failed to create parent of %s: %v", target, err)
		}
		if err := os.WriteFile(target, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", target, err)
		}
	}
}

// Zip packs the contents of dir into a zip archive at archivePath.
func Zip(t *testing.T, dir, archivePath string) {
	t.Helper()
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create %s: %v", archivePath, err)
	}
	defer closeOrFatal(t, f)

	zw := zip.NewWriter(f)
	defer closeOrFatal(t, zw)

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
			_, err := zw.CreateHeader(header)
			return err
		}
		header.Method = zip.Deflate
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if walkErr != nil {
		t.Fatalf("failed to zip %s: %v", dir, walkErr)
	}
}

// Compression filters supported by Tar.
const (
	NoFilter    = ""
	GzipFilter  = "gzip"
	Bzip2Filter = "bzip2"
	XzFilter    = "xz"
	ZstdFilter  = "zstd"
)

// Tar packs the contents of dir into a tar archive at archivePath, wrapped
// in the given compression filter.
func Tar(t *testing.T, dir, archivePath, filter string) {
	t.Helper()
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create %s: %v", archivePath, err)
	}
	defer closeOrFatal(t, f)

	var w io.Writer = f
	switch filter {
	case NoFilter:
	case GzipFilter:
		gz := pgzip.NewWriter(f)
		defer closeOrFatal(t, gz)
		w = gz
	case Bzip2Filter:
		bz, err := bzip2.NewWriter(f, nil)
		if err != nil {
			t.Fatalf("failed to create bzip2 writer: %v", err)
		}
		defer closeOrFatal(t, bz)
		w = bz
	case XzFilter:
		xzW, err := xz.NewWriter(f)
		if err != nil {
			t.Fatalf("failed to create xz writer: %v", err)
		}
		defer closeOrFatal(t, xzW)
		w = xzW
	case ZstdFilter:
		zstdW, err := zstd.NewWriter(f)
		if err != nil {
			t.Fatalf("failed to create zstd writer: %v", err)
		}
		defer closeOrFatal(t, zstdW)
		w = zstdW
	default:
		t.Fatalf("unknown compression filter %q", filter)
	}

	tw := tar.NewWriter(w)
	defer closeOrFatal(t, tw)

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = tw.Write(data)
		return err
	})
	if walkErr != nil {
		t.Fatalf("failed to tar %s: %v", dir, walkErr)
	}
}

func closeOrFatal(t *testing.T, c io.Closer) {
	t.Helper()
	if err := c.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}
}
