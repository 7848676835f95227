package core

import (
	"slices"
	"strings"
)

// Listing holds the immediate children of a directory, by name only.
type Listing struct {
	Dirs  []string
	Files []string
}

// Empty reports whether the listing has neither directories nor files.
func (l Listing) Empty() bool {
	return len(l.Dirs) == 0 && len(l.Files) == 0
}

// Without returns a copy of the listing with every file whose name ends in
// one of the given suffixes removed. Callers use it to hide directory
// marker objects from end users.
func (l Listing) Without(suffixes ...string) Listing {
	files := make([]string, 0, len(l.Files))
	for _, name := range l.Files {
		if !hasAnySuffix(name, suffixes) {
			files = append(files, name)
		}
	}
	return Listing{Dirs: slices.Clone(l.Dirs), Files: files}
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
