package memory

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, s *Store, prefix string) []string {
	t.Helper()
	var keys []string
	for key, err := range s.List(context.Background(), prefix) {
		require.NoError(t, err)
		keys = append(keys, key)
	}
	return keys
}

func TestStore_PutExists(t *testing.T) {
	ctx := context.Background()
	s := New()

	exists, err := s.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Put(ctx, "a.txt", []byte("hello")))

	exists, err = s.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	data, ok := s.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)
}

func TestStore_PutNilIsZeroLength(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(context.Background(), "dir/dir.azr", nil))

	data, ok := s.Get("dir/dir.azr")
	require.True(t, ok)
	assert.Empty(t, data)
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, key := range []string{"b/2", "a/1", "a/sub/3", "ab"} {
		require.NoError(t, s.Put(ctx, key, nil))
	}

	assert.Equal(t, []string{"a/1", "a/sub/3"}, collect(t, s, "a/"))
	assert.Equal(t, []string{"a/1", "a/sub/3", "ab"}, collect(t, s, "a"))
	assert.Equal(t, []string{"a/1", "a/sub/3", "ab", "b/2"}, collect(t, s, ""))
	assert.Empty(t, collect(t, s, "missing/"))
}

func TestStore_ListIsRestartable(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Put(ctx, "a", nil))

	seq := s.List(ctx, "")
	for range 2 {
		count := 0
		for _, err := range seq {
			require.NoError(t, err)
			count++
		}
		assert.Equal(t, 1, count)
	}
}

func TestStore_DeleteWhileListing(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, key := range []string{"d/1", "d/2", "d/3"} {
		require.NoError(t, s.Put(ctx, key, nil))
	}

	for key, err := range s.List(ctx, "d/") {
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, key))
	}
	assert.Equal(t, 0, s.Len())
}

func TestStore_Copy(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Put(ctx, "src", []byte("data")))

	require.NoError(t, s.Copy(ctx, "src", "dst"))
	data, ok := s.Get("dst")
	require.True(t, ok)
	assert.Equal(t, []byte("data"), data)

	err := s.Copy(ctx, "missing", "dst2")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	assert.NoError(t, New().Delete(context.Background(), "missing"))
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New()

	_, err := s.Exists(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Put(ctx, "a", nil), context.Canceled)
}

func TestStore_Read(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Put(ctx, "a", []byte("alpha")))

	data, err := s.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), data)

	data[0] = 'X'
	again, _ := s.Get("a")
	assert.Equal(t, []byte("alpha"), again, "returned data is a copy")

	_, err = s.Read(ctx, "missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
