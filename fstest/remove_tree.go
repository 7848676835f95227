package fstest

import (
	"context"
	"errors"
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// TestRemoveTree tests recursive removal and its handling of missing paths.
func TestRemoveTree(t *testing.T, h Harness, config Config) {
	ctx := context.Background()
	s := h.Storage

	subtest(t, config, "RemoveTree", "RejectsRoot", func(t *testing.T) {
		for _, name := range []string{"", "/", "."} {
			if err := s.RemoveTree(ctx, name); !errors.Is(err, core.ErrInvalidPath) {
				t.Errorf("RemoveTree(%q): got error %v, want core.ErrInvalidPath", name, err)
			}
		}
	})

	if config.TreeOpsUnsupported {
		subtest(t, config, "RemoveTree", "Unsupported", func(t *testing.T) {
			h.WriteFile(t, "rm/dir/a.txt", []byte("a"))
			if err := s.RemoveTree(ctx, "rm/dir"); !errors.Is(err, core.ErrUnsupported) {
				t.Fatalf("RemoveTree: got error %v, want core.ErrUnsupported", err)
			}
			if _, ok := h.ReadFile(t, "rm/dir/a.txt"); !ok {
				t.Error("file removed by an unsupported RemoveTree")
			}
		})
		return
	}

	subtest(t, config, "RemoveTree", "Subtree", func(t *testing.T) {
		h.WriteFile(t, "rm/dir/a.txt", []byte("a"))
		h.WriteFile(t, "rm/dir/sub/b.txt", []byte("b"))
		h.WriteFile(t, "rm/dir/sub/deep/c.txt", []byte("c"))
		h.WriteFile(t, "rm/dirt/keep.txt", []byte("keep"))
		h.WriteFile(t, "rm/dir.txt", []byte("keep"))

		if err := s.RemoveTree(ctx, "rm/dir"); err != nil {
			t.Fatalf("RemoveTree(rm/dir): got error %v, want nil", err)
		}
		if s.IsDirectory(ctx, "rm/dir") {
			t.Error("IsDirectory(rm/dir) after RemoveTree: got true, want false")
		}
		for _, name := range []string{"rm/dir/a.txt", "rm/dir/sub/b.txt", "rm/dir/sub/deep/c.txt"} {
			if _, ok := h.ReadFile(t, name); ok {
				t.Errorf("%s still exists after RemoveTree", name)
			}
		}
		for _, name := range []string{"rm/dirt/keep.txt", "rm/dir.txt"} {
			if _, ok := h.ReadFile(t, name); !ok {
				t.Errorf("%s removed by RemoveTree(rm/dir), want kept", name)
			}
		}
	})

	subtest(t, config, "RemoveTree", "SingleFile", func(t *testing.T) {
		h.WriteFile(t, "rm/single.txt", []byte("x"))

		if err := s.RemoveTree(ctx, "rm/single.txt"); err != nil {
			t.Fatalf("RemoveTree(rm/single.txt): got error %v, want nil", err)
		}
		if s.IsFile(ctx, "rm/single.txt") {
			t.Error("IsFile(rm/single.txt) after RemoveTree: got true, want false")
		}
	})

	subtest(t, config, "RemoveTree", "CreatedDirectory", func(t *testing.T) {
		if err := s.MakeDirectories(ctx, "rm/made"); err != nil {
			t.Fatalf("MakeDirectories(rm/made): %v", err)
		}
		if err := s.RemoveTree(ctx, "rm/made"); err != nil {
			t.Fatalf("RemoveTree(rm/made): got error %v, want nil", err)
		}
		if s.IsDirectory(ctx, "rm/made") {
			t.Error("IsDirectory(rm/made) after RemoveTree: got true, want false")
		}
	})

	subtest(t, config, "RemoveTree", "Missing", func(t *testing.T) {
		err := s.RemoveTree(ctx, "rm/never-existed")
		if s.Type() == core.TypeHierarchical {
			if !errors.Is(err, core.ErrNotFound) {
				t.Errorf("RemoveTree(missing): got error %v, want core.ErrNotFound", err)
			}
			return
		}
		if err != nil {
			t.Errorf("RemoveTree(missing): got error %v, want nil", err)
		}
	})
}
