package fstest

import (
	"context"
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// TestExists tests IsFile and IsDirectory, including the invariant that no
// path is ever both a file and a directory.
func TestExists(t *testing.T, h Harness, config Config) {
	ctx := context.Background()
	s := h.Storage

	// Runs first, while the backend is still empty.
	subtest(t, config, "Exists", "RootIsDirectory", func(t *testing.T) {
		if s.Type() == core.TypeHierarchical {
			t.Skip("root existence is defined by the host filesystem")
		}
		if !s.IsDirectory(ctx, "") {
			t.Error("IsDirectory(\"\"): got false on an empty store, want true")
		}
	})

	h.WriteFile(t, "exists/dir/sub/file.txt", []byte("nested"))
	h.WriteFile(t, "exists/top.txt", []byte("top"))
	h.WriteFile(t, "exists/dirt/other.txt", []byte("other"))

	subtest(t, config, "Exists", "File", func(t *testing.T) {
		for _, name := range []string{"exists/top.txt", "exists/dir/sub/file.txt"} {
			if !s.IsFile(ctx, name) {
				t.Errorf("IsFile(%s): got false, want true", name)
			}
			if s.IsDirectory(ctx, name) {
				t.Errorf("IsDirectory(%s): got true for a file, want false", name)
			}
		}
	})

	subtest(t, config, "Exists", "ParentsAreDirectories", func(t *testing.T) {
		for _, name := range []string{"exists/dir", "exists/dir/sub"} {
			if !s.IsDirectory(ctx, name) {
				t.Errorf("IsDirectory(%s): got false, want true", name)
			}
			if s.IsFile(ctx, name) {
				t.Errorf("IsFile(%s): got true for a directory, want false", name)
			}
		}
	})

	subtest(t, config, "Exists", "Missing", func(t *testing.T) {
		for _, name := range []string{"exists/missing", "exists/dir/missing.txt", "nowhere/at/all"} {
			if s.IsFile(ctx, name) {
				t.Errorf("IsFile(%s): got true for a missing path", name)
			}
			if s.IsDirectory(ctx, name) {
				t.Errorf("IsDirectory(%s): got true for a missing path", name)
			}
		}
	})

	subtest(t, config, "Exists", "PrefixIsSegmentAware", func(t *testing.T) {
		// "exists/di" is a string prefix of "exists/dir" and "exists/dirt" but
		// not a path segment of either.
		if s.IsDirectory(ctx, "exists/di") {
			t.Error("IsDirectory(exists/di): got true, want false")
		}
		if s.IsFile(ctx, "exists/to") {
			t.Error("IsFile(exists/to): got true, want false")
		}
	})

	subtest(t, config, "Exists", "FileAndDirectoryAreExclusive", func(t *testing.T) {
		paths := []string{
			"", "exists", "exists/dir", "exists/dir/", "exists/dir/sub",
			"exists/dir/sub/file.txt", "exists/top.txt", "exists/top.txt/",
			"exists/dirt", "exists/missing",
		}
		for _, name := range paths {
			if s.IsFile(ctx, name) && s.IsDirectory(ctx, name) {
				t.Errorf("%q reports both IsFile and IsDirectory", name)
			}
		}
	})
}
