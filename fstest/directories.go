package fstest

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// TestMakeDirectories tests directory creation on each directory model.
func TestMakeDirectories(t *testing.T, h Harness, config Config) {
	ctx := context.Background()
	s := h.Storage

	subtest(t, config, "MakeDirectories", "Create", func(t *testing.T) {
		if err := s.MakeDirectories(ctx, "mkdir/a/b"); err != nil {
			t.Fatalf("MakeDirectories(mkdir/a/b): got error %v, want nil", err)
		}
		if s.IsFile(ctx, "mkdir/a/b") {
			t.Error("IsFile(mkdir/a/b): got true for a created directory")
		}

		switch s.Type() {
		case core.TypeHierarchical:
			for _, name := range []string{"mkdir/a", "mkdir/a/b"} {
				if !s.IsDirectory(ctx, name) {
					t.Errorf("IsDirectory(%s): got false after MakeDirectories, want true", name)
				}
			}
		case core.TypeFlatMarker:
			if !s.IsDirectory(ctx, "mkdir/a/b") {
				t.Error("IsDirectory(mkdir/a/b): got false after MakeDirectories, want true")
			}
			data, ok := h.ReadFile(t, "mkdir/a/b/"+config.MarkerName)
			if !ok {
				t.Fatalf("marker mkdir/a/b/%s was not written", config.MarkerName)
			}
			if len(data) != 0 {
				t.Errorf("marker size: got %d bytes, want 0", len(data))
			}
		case core.TypeFlatListing:
			if s.IsDirectory(ctx, "mkdir/a/b") {
				t.Error("IsDirectory(mkdir/a/b): got true, want false for an empty prefix")
			}
		}
	})

	subtest(t, config, "MakeDirectories", "Idempotent", func(t *testing.T) {
		for i := range 2 {
			if err := s.MakeDirectories(ctx, "mkdir/again"); err != nil {
				t.Fatalf("MakeDirectories(mkdir/again) call %d: got error %v, want nil", i+1, err)
			}
		}
	})
}

// TestSetPermissions tests that SetPermissions succeeds where a permission
// model exists and is a no-op elsewhere.
func TestSetPermissions(t *testing.T, h Harness, config Config) {
	ctx := context.Background()
	s := h.Storage

	h.WriteFile(t, "perm/file.txt", []byte("data"))

	subtest(t, config, "SetPermissions", "ExistingFile", func(t *testing.T) {
		err := s.SetPermissions(ctx, "perm/file.txt")
		if s.Type() == core.TypeHierarchical && errors.Is(err, core.ErrUnsupported) {
			t.Skip("filesystem has no permission model")
		}
		if err != nil {
			t.Fatalf("SetPermissions(perm/file.txt): got error %v, want nil", err)
		}
		if data, ok := h.ReadFile(t, "perm/file.txt"); !ok || string(data) != "data" {
			t.Errorf("content after SetPermissions: got %q (exists=%v), want %q", data, ok, "data")
		}
	})

	subtest(t, config, "SetPermissions", "FlatIsNoop", func(t *testing.T) {
		if s.Type() == core.TypeHierarchical {
			t.Skip("hierarchical backends apply permissions")
		}
		if err := s.SetPermissions(ctx, "perm/missing.txt"); err != nil {
			t.Errorf("SetPermissions(perm/missing.txt): got error %v, want nil", err)
		}
	})
}

// TestListDirectory tests one-level listings on backends implementing core.Lister.
func TestListDirectory(t *testing.T, h Harness, config Config) {
	ctx := context.Background()
	lister, ok := h.Storage.(core.Lister)
	if !ok {
		t.Skip("backend does not implement core.Lister")
	}

	h.WriteFile(t, "list/a.txt", []byte("a"))
	h.WriteFile(t, "list/b.txt", []byte("b"))
	h.WriteFile(t, "list/sub/c.txt", []byte("c"))
	h.WriteFile(t, "list/sub/deep/d.txt", []byte("d"))
	h.WriteFile(t, "list/other/e.txt", []byte("e"))
	h.WriteFile(t, "listing/f.txt", []byte("f"))

	subtest(t, config, "ListDirectory", "ImmediateChildren", func(t *testing.T) {
		listing, err := lister.ListDirectory(ctx, "list")
		if err != nil {
			t.Fatalf("ListDirectory(list): got error %v, want nil", err)
		}
		assertNames(t, "Dirs", listing.Dirs, []string{"other", "sub"})
		assertNames(t, "Files", listing.Files, []string{"a.txt", "b.txt"})
	})

	subtest(t, config, "ListDirectory", "Nested", func(t *testing.T) {
		listing, err := lister.ListDirectory(ctx, "list/sub")
		if err != nil {
			t.Fatalf("ListDirectory(list/sub): got error %v, want nil", err)
		}
		assertNames(t, "Dirs", listing.Dirs, []string{"deep"})
		assertNames(t, "Files", listing.Files, []string{"c.txt"})
	})

	subtest(t, config, "ListDirectory", "Missing", func(t *testing.T) {
		listing, err := lister.ListDirectory(ctx, "list/missing")
		if h.Storage.Type() == core.TypeHierarchical {
			if !errors.Is(err, core.ErrNotFound) {
				t.Errorf("ListDirectory(list/missing): got error %v, want core.ErrNotFound", err)
			}
			return
		}
		if err != nil {
			t.Fatalf("ListDirectory(list/missing): got error %v, want nil", err)
		}
		if !listing.Empty() {
			t.Errorf("ListDirectory(list/missing): got %+v, want empty", listing)
		}
	})

	subtest(t, config, "ListDirectory", "MarkerOnly", func(t *testing.T) {
		if config.MarkerName == "" {
			t.Skip("backend does not write markers")
		}
		if err := h.Storage.MakeDirectories(ctx, "list/newdir"); err != nil {
			t.Fatalf("MakeDirectories(list/newdir): %v", err)
		}
		listing, err := lister.ListDirectory(ctx, "list/newdir")
		if err != nil {
			t.Fatalf("ListDirectory(list/newdir): got error %v, want nil", err)
		}
		assertNames(t, "Dirs", listing.Dirs, nil)
		assertNames(t, "Files", listing.Files, []string{config.MarkerName})
		if !h.Storage.IsDirectory(ctx, "list/newdir") {
			t.Error("IsDirectory(list/newdir): got false, want true")
		}
	})
}

func assertNames(t *testing.T, field string, got, want []string) {
	t.Helper()
	got, want = slices.Clone(got), slices.Clone(want)
	slices.Sort(got)
	slices.Sort(want)
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !slices.Equal(got, want) {
		t.Errorf("%s: got %v, want %v", field, got, want)
	}
}
