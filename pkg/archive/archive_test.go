package archive_test

import (
	"archive/tar"
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcxwhiz/unittest-scenarios/internal/fixturetest"
	"github.com/rcxwhiz/unittest-scenarios/pkg/archive"
)

func TestIsArchive(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"states.zip", true},
		{"states.tar", true},
		{"states.tar.gz", true},
		{"states.tgz", true},
		{"states.bz2", true},
		{"states.tbz2", true},
		{"states.xz", true},
		{"states.txz", true},
		{"states.zst", true},
		{"STATES.ZIP", true},
		{"states", false},
		{"states.txt", false},
		{"states.tar.bak", false},
		{"zip", false},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, archive.IsArchive(tc.path))
		})
	}
}

func TestStripSuffixes(t *testing.T) {
	testCases := []struct {
		path     string
		expected string
	}{
		{"initial_state", "initial_state"},
		{"initial_state.zip", "initial_state"},
		{"initial_state.tar.gz", "initial_state"},
		{"some/dir/final_state.tgz", "final_state"},
		{"notes.txt", "notes.txt"},
		{".gz", ".gz"},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, archive.StripSuffixes(tc.path))
		})
	}
}

// sourceTree builds the tree every extraction test packs and re-reads.
func sourceTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	fixturetest.WriteTree(t, dir, map[string]string{
		"top.txt":           "hello\n",
		"nested/deep.txt":   "world\n",
		"nested/empty_dir/": "",
	})
	return dir
}

func assertExtractedTree(t *testing.T, dir string) {
	t.Helper()
	top, err := os.ReadFile(filepath.Join(dir, "top.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(top))
	deep, err := os.ReadFile(filepath.Join(dir, "nested", "deep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world\n", string(deep))
}

func TestExtractZip(t *testing.T) {
	src := sourceTree(t)
	archivePath := filepath.Join(t.TempDir(), "states.zip")
	fixturetest.Zip(t, src, archivePath)

	dir, cleanup, err := archive.Extract(archivePath)
	require.NoError(t, err)
	defer cleanup()
	assertExtractedTree(t, dir)
}

func TestExtractTarFilters(t *testing.T) {
	testCases := []struct {
		name   string
		ext    string
		filter string
	}{
		{"Plain", ".tar", fixturetest.NoFilter},
		{"Gzip", ".tar.gz", fixturetest.GzipFilter},
		{"Bzip2", ".tbz2", fixturetest.Bzip2Filter},
		{"Xz", ".txz", fixturetest.XzFilter},
		{"Zstd", ".tzst", fixturetest.ZstdFilter},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := sourceTree(t)
			archivePath := filepath.Join(t.TempDir(), "states"+tc.ext)
			fixturetest.Tar(t, src, archivePath, tc.filter)

			dir, cleanup, err := archive.Extract(archivePath)
			require.NoError(t, err)
			defer cleanup()
			assertExtractedTree(t, dir)
		})
	}
}

// The compression filter is sniffed from the stream, not the extension, so
// a gzip-compressed tar under a ".tbz2" name still extracts.
func TestExtractSniffsFilterNotExtension(t *testing.T) {
	src := sourceTree(t)
	archivePath := filepath.Join(t.TempDir(), "states.tbz2")
	fixturetest.Tar(t, src, archivePath, fixturetest.GzipFilter)

	dir, cleanup, err := archive.Extract(archivePath)
	require.NoError(t, err)
	defer cleanup()
	assertExtractedTree(t, dir)
}

func TestExtractUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.rar")
	require.NoError(t, os.WriteFile(path, []byte("not an archive"), 0644))

	_, cleanup, err := archive.Extract(path)
	cleanup()
	var unsupported *archive.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, path, unsupported.Path)
}

func TestExtractCleanupRemovesTree(t *testing.T) {
	src := sourceTree(t)
	archivePath := filepath.Join(t.TempDir(), "states.zip")
	fixturetest.Zip(t, src, archivePath)

	dir, cleanup, err := archive.Extract(archivePath)
	require.NoError(t, err)
	cleanup()
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "extraction directory should be removed")
}

// tarEntry pairs a header with its content for hand-built tar files.
type tarEntry struct {
	header  *tar.Header
	content string
}

func writeTar(t *testing.T, path string, entries []tarEntry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	tw := tar.NewWriter(f)
	for _, entry := range entries {
		if entry.header.Typeflag == tar.TypeReg {
			entry.header.Size = int64(len(entry.content))
		}
		require.NoError(t, tw.WriteHeader(entry.header))
		if entry.content != "" {
			_, err := io.WriteString(tw, entry.content)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, f.Close())
}

// "tar -cf x.tar -C dir ." prefixes every member with "./" and includes a
// "./" entry for the root itself; such archives must extract normally.
func TestExtractTarDotPrefixedMembers(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "states.tar")
	writeTar(t, archivePath, []tarEntry{
		{header: &tar.Header{Name: "./", Typeflag: tar.TypeDir, Mode: 0755}},
		{header: &tar.Header{Name: "./top.txt", Typeflag: tar.TypeReg, Mode: 0644}, content: "hello\n"},
		{header: &tar.Header{Name: "./nested/", Typeflag: tar.TypeDir, Mode: 0755}},
		{header: &tar.Header{Name: "./nested/deep.txt", Typeflag: tar.TypeReg, Mode: 0644}, content: "world\n"},
	})

	dir, cleanup, err := archive.Extract(archivePath)
	require.NoError(t, err)
	defer cleanup()
	assertExtractedTree(t, dir)
}

func TestExtractZipDotPrefixedMembers(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "states.zip")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	writeDir := func(name string) {
		header := &zip.FileHeader{Name: name}
		header.SetMode(fs.ModeDir | 0755)
		_, err := zw.CreateHeader(header)
		require.NoError(t, err)
	}
	writeFile := func(name, content string) {
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		header.SetMode(0644)
		w, err := zw.CreateHeader(header)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	writeDir("./")
	writeFile("./top.txt", "hello\n")
	writeDir("./nested/")
	writeFile("./nested/deep.txt", "world\n")
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dir, cleanup, err := archive.Extract(archivePath)
	require.NoError(t, err)
	defer cleanup()
	assertExtractedTree(t, dir)
}

func TestExtractTarHardlinkMembers(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "states.tar")
	writeTar(t, archivePath, []tarEntry{
		{header: &tar.Header{Name: "orig.txt", Typeflag: tar.TypeReg, Mode: 0644}, content: "payload\n"},
		{header: &tar.Header{Name: "copy.txt", Typeflag: tar.TypeLink, Linkname: "orig.txt"}},
	})

	dir, cleanup, err := archive.Extract(archivePath)
	require.NoError(t, err)
	defer cleanup()

	orig, err := os.ReadFile(filepath.Join(dir, "orig.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload\n", string(orig))
	linked, err := os.ReadFile(filepath.Join(dir, "copy.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload\n", string(linked))

	origInfo, err := os.Stat(filepath.Join(dir, "orig.txt"))
	require.NoError(t, err)
	linkedInfo, err := os.Stat(filepath.Join(dir, "copy.txt"))
	require.NoError(t, err)
	assert.True(t, os.SameFile(origInfo, linkedInfo), "hardlink members share the original's inode")
}

func TestExtractTarHardlinkEscapeRejected(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "states.tar")
	writeTar(t, archivePath, []tarEntry{
		{header: &tar.Header{Name: "copy.txt", Typeflag: tar.TypeLink, Linkname: "../outside.txt"}},
	})

	dir, cleanup, err := archive.Extract(archivePath)
	cleanup()
	require.Error(t, err)
	assert.Empty(t, dir)
}

// Extraction failures must not leak the temporary directory.
func TestExtractCorruptArchiveLeaksNothing(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "states.zip")
	require.NoError(t, os.WriteFile(archivePath, []byte("definitely not a zip"), 0644))

	dir, cleanup, err := archive.Extract(archivePath)
	cleanup()
	require.Error(t, err)
	assert.Empty(t, dir)
}
