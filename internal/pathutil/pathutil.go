// Package pathutil provides path normalization and manipulation utilities
// for storage paths and object keys.
package pathutil

import (
	"path"
	"strings"
)

// Normalize cleans a path and ensures forward slashes.
// It applies: backslashes to slashes → rooted Clean → trim slashes.
// Cleaning against a virtual root means ".." can never climb above it.
// Returns "" for the root.
func Normalize(name string) string {
	// First convert backslashes to forward slashes (for Windows-style paths)
	name = strings.ReplaceAll(name, "\\", "/")

	name = path.Clean("/" + name)

	return strings.Trim(name, "/")
}

// JoinPath joins a prefix with a name to create a full object key.
// The prefix is expected to be normalized already.
func JoinPath(prefix, name string) string {
	name = Normalize(name)

	if name == "" {
		return prefix
	}
	if prefix == "" {
		return name
	}

	return prefix + "/" + name
}

// DirPrefix returns the listing prefix for the directory at key: the key
// followed by a separator, or "" for the root. Using a separator keeps
// "dir" from matching "dirt/file".
func DirPrefix(key string) string {
	if key == "" {
		return ""
	}
	return key + "/"
}

// Segments splits a key into its path segments. The root has none.
func Segments(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, "/")
}

// HasTrailingSeparator reports whether the raw, unnormalized name ends in a
// path separator.
func HasTrailingSeparator(name string) bool {
	return strings.HasSuffix(name, "/") || strings.HasSuffix(name, "\\")
}

// Relative strips prefix (and the separator after it) from key.
func Relative(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
}
