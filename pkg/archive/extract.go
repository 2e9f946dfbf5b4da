package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"

	"github.com/rcxwhiz/unittest-scenarios/pkg/pool"
	"github.com/rcxwhiz/unittest-scenarios/pkg/util"
)

// Extract unpacks the archive at path into a freshly created temporary
// directory and returns that directory together with a cleanup function.
// The caller must invoke cleanup on every exit path; it removes the
// extracted tree. On error no directory is leaked and cleanup is a no-op.
//
// ".zip" paths are read as zip containers; every other recognized extension
// is treated as a tar container whose compression filter (gzip, bzip2, xz,
// zstd, or none) is sniffed from the stream's leading magic bytes.
func Extract(path string) (string, func(), error) {
	if !IsArchive(path) {
		return "", func() {}, &UnsupportedFormatError{Path: path}
	}

	tempDir, err := os.MkdirTemp("", "unittest-scenarios-*")
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create extraction directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tempDir) }

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		err = extractZip(path, tempDir)
	} else {
		err = extractTar(path, tempDir)
	}
	if err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to extract %s: %w", path, err)
	}
	return tempDir, cleanup, nil
}

func extractZip(archivePath, targetDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		// Zip Slip protection: the target path must stay inside the
		// extraction directory, even for member names like "../../x".
		relPath := util.NormalizePath(f.Name)
		if relPath == "" {
			// "./" style members resolve to the extraction root itself.
			continue
		}
		absTarget := filepath.Join(targetDir, relPath)
		if !strings.HasPrefix(absTarget, filepath.Clean(targetDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path in archive: %s", f.Name)
		}

		// Strip SUID and SGID bits to prevent privilege escalation.
		mode := f.Mode() &^ (os.ModeSetuid | os.ModeSetgid)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(absTarget, util.WithOwnerAccess(mode)); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(absTarget), util.UserWritableDirPerms); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}

		if f.Mode()&os.ModeSymlink != 0 {
			linkTarget, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return err
			}
			_ = os.Remove(absTarget)
			if err := os.Symlink(string(linkTarget), absTarget); err != nil {
				return err
			}
			continue
		}

		// Remove the target if it exists so a symlink planted by a previous
		// entry cannot redirect the write.
		_ = os.Remove(absTarget)

		err = writeFileFrom(rc, absTarget, mode)
		rc.Close()
		if err != nil {
			return err
		}
		_ = os.Chtimes(absTarget, f.Modified, f.Modified)
	}
	return nil
}

func extractTar(archivePath, targetDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	r, closeFilter, err := decompressionFilter(f)
	if err != nil {
		return err
	}
	defer closeFilter()

	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		relPath := util.NormalizePath(header.Name)
		if relPath == "" {
			continue
		}
		absTarget := filepath.Join(targetDir, relPath)
		if !strings.HasPrefix(absTarget, filepath.Clean(targetDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path in archive: %s", header.Name)
		}

		mode := header.FileInfo().Mode() &^ (os.ModeSetuid | os.ModeSetgid)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(absTarget, util.WithOwnerAccess(mode)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(absTarget), util.UserWritableDirPerms); err != nil {
				return err
			}
			_ = os.Remove(absTarget)
			if err := writeFileFrom(tr, absTarget, mode); err != nil {
				return err
			}
			_ = os.Chtimes(absTarget, header.AccessTime, header.ModTime)
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(absTarget), util.UserWritableDirPerms); err != nil {
				return err
			}
			_ = os.Remove(absTarget)
			if err := os.Symlink(header.Linkname, absTarget); err != nil {
				return err
			}
		case tar.TypeLink:
			// Hardlink members reference an earlier entry by archive path.
			linkSource := filepath.Join(targetDir, util.NormalizePath(header.Linkname))
			if !strings.HasPrefix(linkSource, filepath.Clean(targetDir)+string(os.PathSeparator)) {
				return fmt.Errorf("illegal link target in archive: %s", header.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(absTarget), util.UserWritableDirPerms); err != nil {
				return err
			}
			_ = os.Remove(absTarget)
			if err := os.Link(linkSource, absTarget); err != nil {
				return err
			}
		}
	}
	return nil
}

// Magic byte signatures of the supported tar compression filters.
var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicBzip2 = []byte{'B', 'Z', 'h'}
	magicXz    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicZstd  = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// decompressionFilter sniffs the leading bytes of f and wraps it in the
// matching decompressor. When no signature matches the file is assumed to be
// an uncompressed tar stream. The returned close function releases filter
// resources only; the caller still owns f.
func decompressionFilter(f *os.File) (io.Reader, func(), error) {
	magic := make([]byte, len(magicXz))
	n, err := io.ReadFull(f, magic)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, nil, fmt.Errorf("failed to sniff compression: %w", err)
	}
	magic = magic[:n]
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("failed to rewind archive: %w", err)
	}

	switch {
	case bytes.HasPrefix(magic, magicGzip):
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { _ = gz.Close() }, nil
	case bytes.HasPrefix(magic, magicBzip2):
		bz, err := bzip2.NewReader(f, nil)
		if err != nil {
			return nil, nil, err
		}
		return bz, func() { _ = bz.Close() }, nil
	case bytes.HasPrefix(magic, magicXz):
		xzR, err := xz.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return xzR, func() {}, nil
	case bytes.HasPrefix(magic, magicZstd):
		zstdR, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return zstdR, zstdR.Close, nil
	default:
		return f, func() {}, nil
	}
}

// writeFileFrom copies r into a new file at absTarget using a pooled buffer.
func writeFileFrom(r io.Reader, absTarget string, mode os.FileMode) error {
	outFile, err := os.OpenFile(absTarget, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	bufPtr := pool.IO.Get()
	_, err = io.CopyBuffer(outFile, r, *bufPtr)
	pool.IO.Put(bufPtr)
	if closeErr := outFile.Close(); err == nil {
		err = closeErr
	}
	return err
}
