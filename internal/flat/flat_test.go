package flat

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/objstore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyStore wraps a memory store and injects failures.
type faultyStore struct {
	*memory.Store
	copyErr    error
	copyNoop   bool
	deleteErr  map[string]error
	listErr    error
	existsErr  error
	inFlight   atomic.Int32
	maxFlight  atomic.Int32
	deleteGate chan struct{}
	mu         sync.Mutex
	deleted    []string
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: memory.New(), deleteErr: map[string]error{}}
}

func (f *faultyStore) Exists(ctx context.Context, key string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.Store.Exists(ctx, key)
}

func (f *faultyStore) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	if f.listErr != nil {
		return func(yield func(string, error) bool) { yield("", f.listErr) }
	}
	return f.Store.List(ctx, prefix)
}

func (f *faultyStore) Copy(ctx context.Context, src, dst string) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	if f.copyNoop {
		return nil
	}
	return f.Store.Copy(ctx, src, dst)
}

func (f *faultyStore) Delete(ctx context.Context, key string) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.deleteGate != nil {
		<-f.deleteGate
	}
	if err := f.deleteErr[key]; err != nil {
		return err
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, key)
	f.mu.Unlock()
	return f.Store.Delete(ctx, key)
}

func newTree(store core.ObjectStore, prefix string) *Tree {
	return &Tree{
		Store:  store,
		Prefix: prefix,
		Type:   core.TypeFlatListing,
		Logger: slog.New(slog.DiscardHandler),
	}
}

func put(t *testing.T, store core.ObjectStore, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, store.Put(context.Background(), k, []byte(k)))
	}
}

func TestKeyMapping(t *testing.T) {
	tree := newTree(memory.New(), "media")
	assert.Equal(t, "media/a/b.txt", tree.Key("/a//b.txt"))
	assert.Equal(t, "media", tree.Key(""))
	assert.Equal(t, "a/b.txt", tree.Rel("media/a/b.txt"))

	bare := newTree(memory.New(), "")
	assert.Equal(t, "a/b.txt", bare.Key("a\\b.txt"))
	assert.Equal(t, "a/b.txt", bare.Rel("a/b.txt"))
}

func TestHasChildren(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	put(t, store, "dir/file", "dirt/file")
	tree := newTree(store, "")

	assert.True(t, tree.HasChildren(ctx, "dir"))
	assert.False(t, tree.HasChildren(ctx, "di"))
	assert.False(t, tree.HasChildren(ctx, "dir/file"))

	store.listErr = errors.New("listing unavailable")
	assert.False(t, tree.HasChildren(ctx, "dir"))
}

func TestObjectExistsSwallowsErrors(t *testing.T) {
	store := newFaultyStore()
	put(t, store, "a")
	tree := newTree(store, "")
	assert.True(t, tree.ObjectExists(context.Background(), "a"))

	store.existsErr = errors.New("timeout")
	assert.False(t, tree.ObjectExists(context.Background(), "a"))
}

func TestMoveCopyFailureKeepsSource(t *testing.T) {
	ctx := context.Background()

	t.Run("copy error", func(t *testing.T) {
		store := newFaultyStore()
		put(t, store, "src")
		cause := platformerrors.New(platformerrors.CodeUnavailable, "service busy")
		store.copyErr = cause
		tree := newTree(store, "")

		err := tree.Move(ctx, "src", "dst", false)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrCopyFailed)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, platformerrors.CodeExecutionFailed, platformerrors.GetCode(err))

		_, ok := store.Get("src")
		assert.True(t, ok, "source must survive a failed copy")
		assert.Empty(t, store.deleted)
	})

	t.Run("copy not visible", func(t *testing.T) {
		store := newFaultyStore()
		put(t, store, "src")
		store.copyNoop = true
		tree := newTree(store, "")

		err := tree.Move(ctx, "src", "dst", false)
		assert.ErrorIs(t, err, core.ErrCopyFailed)
		assert.ErrorIs(t, err, errCopyNotVisible)
		_, ok := store.Get("src")
		assert.True(t, ok)
	})

	t.Run("delete of source fails after copy", func(t *testing.T) {
		store := newFaultyStore()
		put(t, store, "src")
		store.deleteErr["src"] = errors.New("delete refused")
		tree := newTree(store, "")

		err := tree.Move(ctx, "src", "dst", false)
		require.Error(t, err)
		assert.NotErrorIs(t, err, core.ErrCopyFailed)
		_, srcOK := store.Get("src")
		_, dstOK := store.Get("dst")
		assert.True(t, srcOK && dstOK, "partial move leaves both objects")
	})
}

func TestMoveUsesPrefix(t *testing.T) {
	store := memory.New()
	put(t, store, "media/a.txt")
	tree := newTree(store, "media")

	require.NoError(t, tree.Move(context.Background(), "a.txt", "sub/b.txt", false))
	_, ok := store.Get("media/sub/b.txt")
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestMoveExistsError(t *testing.T) {
	store := newFaultyStore()
	store.existsErr = platformerrors.New(platformerrors.CodeUnavailable, "down")
	tree := newTree(store, "")

	err := tree.Move(context.Background(), "a", "b", false)
	require.Error(t, err)
	assert.True(t, platformerrors.IsRetryable(err))
}

func TestRemoveTree(t *testing.T) {
	ctx := context.Background()

	t.Run("exact key and subtree", func(t *testing.T) {
		store := newFaultyStore()
		put(t, store, "dir", "dir/a", "dir/b/c", "dirt/keep", "dir.txt")
		tree := newTree(store, "")

		require.NoError(t, tree.RemoveTree(ctx, "dir"))
		assert.ElementsMatch(t, []string{"dir", "dir/a", "dir/b/c"}, store.deleted)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("sequential by default", func(t *testing.T) {
		store := newFaultyStore()
		put(t, store, "d/1", "d/2", "d/3", "d/4")
		tree := newTree(store, "")

		require.NoError(t, tree.RemoveTree(ctx, "d"))
		assert.Equal(t, int32(1), store.maxFlight.Load())
		assert.Equal(t, []string{"d/1", "d/2", "d/3", "d/4"}, store.deleted)
	})

	t.Run("bounded concurrency", func(t *testing.T) {
		store := newFaultyStore()
		put(t, store, "d/1", "d/2", "d/3", "d/4", "d/5", "d/6")
		store.deleteGate = make(chan struct{})
		tree := newTree(store, "")
		tree.DeleteConcurrency = 3

		done := make(chan error)
		go func() { done <- tree.RemoveTree(ctx, "d") }()
		for range 6 {
			store.deleteGate <- struct{}{}
		}
		require.NoError(t, <-done)
		assert.LessOrEqual(t, store.maxFlight.Load(), int32(3))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("delete error stops and is returned", func(t *testing.T) {
		store := newFaultyStore()
		put(t, store, "d/1", "d/2")
		store.deleteErr["d/1"] = errors.New("forbidden")
		tree := newTree(store, "")

		err := tree.RemoveTree(ctx, "d")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "d/1")
		_, ok := store.Get("d/2")
		assert.True(t, ok, "remaining deletes are skipped after a failure")
	})

	t.Run("list error", func(t *testing.T) {
		store := newFaultyStore()
		store.listErr = errors.New("listing unavailable")
		tree := newTree(store, "")

		assert.Error(t, tree.RemoveTree(ctx, "d"))
	})

	t.Run("empty is a no-op", func(t *testing.T) {
		tree := newTree(newFaultyStore(), "")
		assert.NoError(t, tree.RemoveTree(ctx, "nothing/here"))
	})

	t.Run("root rejected even with prefix", func(t *testing.T) {
		store := newFaultyStore()
		put(t, store, "media/a")
		tree := newTree(store, "media")

		assert.ErrorIs(t, tree.RemoveTree(ctx, "/"), core.ErrInvalidPath)
		assert.Equal(t, 1, store.Len())
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	put(t, store,
		"media/top.txt",
		"media/a.txt",
		"media/sub/b.txt",
		"media/sub/deep/c.txt",
		"media/only-deep/x/y/z.txt",
		"media/",
		"mediafile.txt",
	)
	tree := newTree(store, "")

	t.Run("depth classification", func(t *testing.T) {
		listing, err := tree.List(ctx, "media", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"sub"}, listing.Dirs)
		assert.Equal(t, []string{"a.txt", "top.txt"}, listing.Files)
	})

	t.Run("deep", func(t *testing.T) {
		listing, err := tree.List(ctx, "media", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"only-deep", "sub"}, listing.Dirs)
		assert.Equal(t, []string{"a.txt", "top.txt"}, listing.Files)
	})

	t.Run("root", func(t *testing.T) {
		listing, err := tree.List(ctx, "", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"media"}, listing.Dirs)
		assert.Equal(t, []string{"mediafile.txt"}, listing.Files)
	})
}
