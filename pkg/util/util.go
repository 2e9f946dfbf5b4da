package util

import (
	"os"
	"path"
	"strings"
)

// Permission constants for file and directory modes.
const (
	// UserWritableDirPerms represents the standard permissions for newly created directories (rwxr-xr-x).
	UserWritableDirPerms os.FileMode = 0755
	// UserWritableFilePerms represents the standard permissions for newly created files (rw-r--r--).
	UserWritableFilePerms os.FileMode = 0644
)

// NormalizePath converts an archive member name or relative path key into a
// clean, forward-slash relative path with no leading separators or parent
// references. The result is suitable for joining under an extraction root.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

// WithOwnerAccess ensures the owner read, write and execute bits are set on
// a directory permission so extracted or copied trees can always be
// traversed and cleaned up by the user running the harness.
func WithOwnerAccess(perm os.FileMode) os.FileMode {
	return perm | 0700
}

// InvertMap takes a map[K]V and returns a map[V]K.
// It's a generic helper for creating reverse lookup maps for enums.
func InvertMap[K comparable, V comparable](m map[K]V) map[V]K {
	inv := make(map[V]K, len(m))
	for k, v := range m {
		inv[v] = k
	}
	return inv
}
