package fstest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/storage/core"
)

// TestMove tests Move: overwrite protection, content preservation and
// source removal.
func TestMove(t *testing.T, h Harness, config Config) {
	ctx := context.Background()
	s := h.Storage

	if config.TreeOpsUnsupported {
		subtest(t, config, "Move", "Unsupported", func(t *testing.T) {
			h.WriteFile(t, "move/src.txt", []byte("payload"))
			err := s.Move(ctx, "move/src.txt", "move/dst.txt", false)
			if !errors.Is(err, core.ErrUnsupported) {
				t.Fatalf("Move: got error %v, want core.ErrUnsupported", err)
			}
			if _, ok := h.ReadFile(t, "move/src.txt"); !ok {
				t.Error("source removed by an unsupported Move")
			}
		})
		return
	}

	subtest(t, config, "Move", "File", func(t *testing.T) {
		h.WriteFile(t, "move/basic/src.txt", []byte("hello"))

		if err := s.Move(ctx, "move/basic/src.txt", "move/basic/dst.txt", false); err != nil {
			t.Fatalf("Move: got error %v, want nil", err)
		}
		if s.IsFile(ctx, "move/basic/src.txt") {
			t.Error("IsFile(src) after Move: got true, want false")
		}
		if !s.IsFile(ctx, "move/basic/dst.txt") {
			t.Error("IsFile(dst) after Move: got false, want true")
		}
		expectContent(t, h, "move/basic/dst.txt", []byte("hello"))
	})

	subtest(t, config, "Move", "DestinationExists", func(t *testing.T) {
		h.WriteFile(t, "move/exists/a.txt", []byte("a"))
		h.WriteFile(t, "move/exists/b.txt", []byte("b"))

		err := s.Move(ctx, "move/exists/a.txt", "move/exists/b.txt", false)
		if !errors.Is(err, core.ErrDestinationExists) {
			t.Fatalf("Move: got error %v, want core.ErrDestinationExists", err)
		}
		if code := platformerrors.GetCode(err); code != platformerrors.CodeAlreadyExists {
			t.Errorf("error code: got %s, want %s", code, platformerrors.CodeAlreadyExists)
		}
		expectContent(t, h, "move/exists/a.txt", []byte("a"))
		expectContent(t, h, "move/exists/b.txt", []byte("b"))
	})

	subtest(t, config, "Move", "Overwrite", func(t *testing.T) {
		h.WriteFile(t, "move/overwrite/a.txt", []byte("a"))
		h.WriteFile(t, "move/overwrite/b.txt", []byte("b"))

		if err := s.Move(ctx, "move/overwrite/a.txt", "move/overwrite/b.txt", true); err != nil {
			t.Fatalf("Move: got error %v, want nil", err)
		}
		if s.IsFile(ctx, "move/overwrite/a.txt") {
			t.Error("IsFile(a) after overwrite: got true, want false")
		}
		expectContent(t, h, "move/overwrite/b.txt", []byte("a"))
	})

	subtest(t, config, "Move", "RoundTrip", func(t *testing.T) {
		original := []byte("round trip content\x00\xff\n")
		h.WriteFile(t, "move/rt/a.bin", original)

		if err := s.Move(ctx, "move/rt/a.bin", "move/rt/b.bin", false); err != nil {
			t.Fatalf("Move(a, b): %v", err)
		}
		if err := s.Move(ctx, "move/rt/b.bin", "move/rt/a.bin", false); err != nil {
			t.Fatalf("Move(b, a): %v", err)
		}
		expectContent(t, h, "move/rt/a.bin", original)
		if _, ok := h.ReadFile(t, "move/rt/b.bin"); ok {
			t.Error("b.bin still exists after moving back")
		}
	})

	subtest(t, config, "Move", "MissingSource", func(t *testing.T) {
		err := s.Move(ctx, "move/missing.txt", "move/other.txt", false)
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Move: got error %v, want core.ErrNotFound", err)
		}
		if _, ok := h.ReadFile(t, "move/other.txt"); ok {
			t.Error("destination created from a missing source")
		}
	})

	subtest(t, config, "Move", "OntoItself", func(t *testing.T) {
		h.WriteFile(t, "move/self.txt", []byte("self"))

		if err := s.Move(ctx, "move/self.txt", "move/self.txt", true); err != nil {
			t.Fatalf("Move onto itself: got error %v, want nil", err)
		}
		expectContent(t, h, "move/self.txt", []byte("self"))
	})

	subtest(t, config, "Move", "IntoNewDirectory", func(t *testing.T) {
		h.WriteFile(t, "move/flat.txt", []byte("flat"))

		if err := s.Move(ctx, "move/flat.txt", "move/nested/deep/flat.txt", false); err != nil {
			t.Fatalf("Move: got error %v, want nil", err)
		}
		expectContent(t, h, "move/nested/deep/flat.txt", []byte("flat"))
		if !s.IsDirectory(ctx, "move/nested/deep") {
			t.Error("IsDirectory(move/nested/deep): got false, want true")
		}
	})
}

func expectContent(t *testing.T, h Harness, name string, want []byte) {
	t.Helper()
	got, ok := h.ReadFile(t, name)
	if !ok {
		t.Errorf("%s: does not exist, want %q", name, want)
		return
	}
	if !bytes.Equal(got, want) {
		t.Errorf("%s: got %q, want %q", name, got, want)
	}
}
