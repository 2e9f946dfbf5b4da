package pathcmp

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// FileNames compares the sets of relative file paths below expected and
// actual without inspecting any content. Directories holding no files
// contribute nothing to either set; archives are ordinary files here. The
// same Options semantics apply to the whole set: a relaxed flag turns the
// corresponding direction into a subset check.
func FileNames(expected, actual string, opts Options) error {
	expectedFiles, err := relativeFileSet(expected)
	if err != nil {
		return err
	}
	actualFiles, err := relativeFileSet(actual)
	if err != nil {
		return err
	}

	if opts.ActualComplete {
		if missing := namesMissingFrom(expectedFiles, actualFiles); len(missing) > 0 {
			return mismatchf(expected, actual, "%s is missing files present in %s: %v", actual, expected, missing)
		}
	}
	if opts.ExpectedComplete {
		if extra := namesMissingFrom(actualFiles, expectedFiles); len(extra) > 0 {
			return mismatchf(expected, actual, "%s contains files not present in %s: %v", actual, expected, extra)
		}
	}
	return nil
}

// relativeFileSet walks root and collects the slash-separated relative
// paths of every non-directory entry.
func relativeFileSet(root string) (map[string]struct{}, error) {
	files := make(map[string]struct{})
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}
