// Package pathcmp decides structural equivalence of filesystem trees.
// Two paths are equivalent when their recursive content matches, ignoring
// metadata and archive packaging: archives are transparently extracted and
// compared as directories, text files are compared line by line with
// newline styles normalized, and everything else is compared by content
// hash.
package pathcmp

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rcxwhiz/unittest-scenarios/pkg/archive"
)

// Options selects subset semantics for directory comparison. Both flags
// default to true, requiring the same entry names on both sides at every
// level. A relaxed flag tolerates extra entries on the opposite side; only
// names present on both sides are compared recursively.
type Options struct {
	// ExpectedComplete requires every entry on the actual side to also
	// exist on the expected side.
	ExpectedComplete bool
	// ActualComplete requires every entry on the expected side to also
	// exist on the actual side.
	ActualComplete bool
}

// DefaultOptions requires a full match in both directions.
func DefaultOptions() Options {
	return Options{ExpectedComplete: true, ActualComplete: true}
}

// MismatchError describes a single point of structural inequality. It names
// the concrete path, line or hash that differs, never a bare boolean.
type MismatchError struct {
	Expected string
	Actual   string
	Reason   string
}

func (e *MismatchError) Error() string {
	return e.Reason
}

func mismatchf(expected, actual, format string, args ...any) *MismatchError {
	return &MismatchError{
		Expected: expected,
		Actual:   actual,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// Equal reports whether the trees rooted at expected and actual are
// structurally equivalent under opts. A nil return means equivalent; a
// *MismatchError describes the first difference found. Other error values
// indicate the comparison itself could not be carried out (unreadable
// files, unsupported archives).
func Equal(expected, actual string, opts Options) error {
	expectedInfo, err := os.Stat(expected)
	if os.IsNotExist(err) {
		return mismatchf(expected, actual, "%s does not exist", expected)
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", expected, err)
	}
	actualInfo, err := os.Stat(actual)
	if os.IsNotExist(err) {
		return mismatchf(expected, actual, "%s does not exist", actual)
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", actual, err)
	}

	switch {
	case expectedInfo.IsDir():
		if !actualInfo.IsDir() {
			return mismatchf(expected, actual, "%s is not a directory", actual)
		}
		return equalDirs(expected, actual, opts)
	case archive.IsArchive(expected):
		return equalArchives(expected, actual, opts)
	default:
		isText, err := isTextFile(expected)
		if err != nil {
			return err
		}
		if isText {
			return equalTextFiles(expected, actual)
		}
		return equalFileHashes(expected, actual)
	}
}

// equalDirs compares the immediate entry names of both directories under
// opts and recurses into every name present on both sides. The recursion
// passes opts through unchanged, so subset semantics apply uniformly at
// every level.
func equalDirs(expected, actual string, opts Options) error {
	expectedNames, err := childNames(expected)
	if err != nil {
		return err
	}
	actualNames, err := childNames(actual)
	if err != nil {
		return err
	}

	if opts.ActualComplete {
		if missing := namesMissingFrom(expectedNames, actualNames); len(missing) > 0 {
			return mismatchf(expected, actual, "%s is missing entries present in %s: %v", actual, expected, missing)
		}
	}
	if opts.ExpectedComplete {
		if extra := namesMissingFrom(actualNames, expectedNames); len(extra) > 0 {
			return mismatchf(expected, actual, "%s contains entries not present in %s: %v", actual, expected, extra)
		}
	}

	for _, name := range sortedKeys(expectedNames) {
		if _, ok := actualNames[name]; !ok {
			continue
		}
		if err := Equal(filepath.Join(expected, name), filepath.Join(actual, name), opts); err != nil {
			return err
		}
	}
	return nil
}

// equalArchives extracts both sides into scoped temporary directories and
// compares those as directories. Nested archives are handled transitively:
// an archive member inside the extracted tree re-enters Equal as a leaf and
// is extracted in turn.
func equalArchives(expected, actual string, opts Options) error {
	expectedDir, cleanupExpected, err := archive.Extract(expected)
	if err != nil {
		return err
	}
	defer cleanupExpected()

	actualDir, cleanupActual, err := archive.Extract(actual)
	if err != nil {
		return err
	}
	defer cleanupActual()

	return equalDirs(expectedDir, actualDir, opts)
}

func childNames(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		names[entry.Name()] = struct{}{}
	}
	return names, nil
}

// namesMissingFrom returns the sorted names in want that do not appear in got.
func namesMissingFrom(want, got map[string]struct{}) []string {
	var missing []string
	for name := range want {
		if _, ok := got[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
