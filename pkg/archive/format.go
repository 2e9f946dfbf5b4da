// Package archive adapts archive files into plain directory trees. A path is
// recognized as an archive purely by its file name suffix; the compression
// filter wrapped around a tar container is detected from the stream's own
// magic bytes, never from the extension.
package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// recognizedExtensions is the fixed set of suffixes treated as archives.
// Compound forms like ".tar.gz" match via their final suffix.
var recognizedExtensions = map[string]struct{}{
	".zip":  {},
	".tar":  {},
	".gz":   {},
	".tgz":  {},
	".bz2":  {},
	".tbz2": {},
	".xz":   {},
	".txz":  {},
	".zst":  {},
	".tzst": {},
}

// IsArchive reports whether the path's final extension belongs to the
// recognized archive set. The decision is purely syntactic; the file is
// never opened.
func IsArchive(path string) bool {
	_, ok := recognizedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// StripSuffixes returns the base name of path with every trailing recognized
// archive extension removed, so "states.tar.gz" and "states" yield the same
// result. Used to match fixture entries against marker names.
func StripSuffixes(path string) string {
	name := filepath.Base(path)
	for {
		ext := filepath.Ext(name)
		if _, ok := recognizedExtensions[strings.ToLower(ext)]; !ok || ext == name {
			return name
		}
		name = strings.TrimSuffix(name, ext)
	}
}

// UnsupportedFormatError is returned when extraction is requested for a path
// whose extension is not in the recognized archive set.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported archive type: %s", e.Path)
}
