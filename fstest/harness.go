package fstest

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jmgilman/go/storage/core"
)

// ObjectReader is an object store that can also return object contents.
// Every driver in this module implements it.
type ObjectReader interface {
	core.ObjectStore
	Read(ctx context.Context, key string) ([]byte, error)
}

// ObjectStoreHarness builds a Harness for a flat backend over store. Keys are
// written under prefix, which must match the prefix the backend was built with.
func ObjectStoreHarness(s core.Storage, store ObjectReader, prefix string) Harness {
	key := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "/" + name
	}

	return Harness{
		Storage: s,
		WriteFile: func(t *testing.T, name string, data []byte) {
			t.Helper()
			if err := store.Put(context.Background(), key(name), data); err != nil {
				t.Fatalf("Put(%s): setup failed: %v", name, err)
			}
		},
		ReadFile: func(t *testing.T, name string) ([]byte, bool) {
			t.Helper()
			data, err := store.Read(context.Background(), key(name))
			if errors.Is(err, fs.ErrNotExist) {
				return nil, false
			}
			if err != nil {
				t.Fatalf("Read(%s): %v", name, err)
			}
			return data, true
		},
	}
}

// FilesystemHarness builds a Harness for a hierarchical backend over bfs.
func FilesystemHarness(s core.Storage, bfs billy.Filesystem) Harness {
	return Harness{
		Storage: s,
		WriteFile: func(t *testing.T, name string, data []byte) {
			t.Helper()
			if dir := path.Dir(name); dir != "." {
				if err := bfs.MkdirAll(dir, 0o755); err != nil {
					t.Fatalf("MkdirAll(%s): setup failed: %v", dir, err)
				}
			}
			if err := util.WriteFile(bfs, name, data, 0o644); err != nil {
				t.Fatalf("WriteFile(%s): setup failed: %v", name, err)
			}
		},
		ReadFile: func(t *testing.T, name string) ([]byte, bool) {
			t.Helper()
			info, err := bfs.Stat(name)
			if errors.Is(err, os.ErrNotExist) {
				return nil, false
			}
			if err != nil {
				t.Fatalf("Stat(%s): %v", name, err)
			}
			if info.IsDir() {
				return nil, false
			}
			f, err := bfs.Open(name)
			if err != nil {
				t.Fatalf("Open(%s): %v", name, err)
			}
			defer func() { _ = f.Close() }()
			data, err := io.ReadAll(f)
			if err != nil {
				t.Fatalf("ReadFile(%s): %v", name, err)
			}
			return data, true
		},
	}
}
