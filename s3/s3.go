// Package s3 provides the flat-listing storage backend.
//
// The store has no directory objects. A directory exists when at least one
// key lies below it, and the root always exists. Moves are a server-side
// copy, a check that the copy landed and a delete of the source; they are
// not atomic, but the source is only deleted once the destination exists.
//
// IsDirectory answers with a prefix listing that stops at the first key.
// Stores with very wide prefixes still pay for one listing request per call.
//
// Example:
//
//	store, err := minio.New(ctx, minio.Config{Endpoint: "localhost:9000", Bucket: "media"})
//	if err != nil {
//	    return err
//	}
//	s := s3.New(store, s3.WithPrefix("uploads"))
//	err = s.Move(ctx, "a.jpg", "2024/a.jpg", false)
package s3

import (
	"context"
	"log/slog"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/internal/errs"
	"github.com/jmgilman/go/storage/internal/flat"
	"github.com/jmgilman/go/storage/internal/pathutil"
)

// Storage is the flat-listing backend. It implements core.Storage and core.Lister.
type Storage struct {
	tree *flat.Tree
}

var (
	_ core.Storage = (*Storage)(nil)
	_ core.Lister  = (*Storage)(nil)
)

// New creates a Storage over store.
func New(store core.ObjectStore, opts ...Option) *Storage {
	o := options{
		logger:            slog.New(slog.DiscardHandler),
		deleteConcurrency: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Storage{tree: &flat.Tree{
		Store:             store,
		Prefix:            pathutil.Normalize(o.prefix),
		Type:              core.TypeFlatListing,
		Logger:            o.logger,
		DeleteConcurrency: o.deleteConcurrency,
	}}
}

// Type returns core.TypeFlatListing.
func (s *Storage) Type() core.StorageType {
	return core.TypeFlatListing
}

// IsFile reports whether an object is stored at exactly name.
func (s *Storage) IsFile(ctx context.Context, name string) bool {
	key := pathutil.Normalize(name)
	if key == "" {
		return false
	}
	return s.tree.ObjectExists(ctx, s.tree.Key(key))
}

// IsDirectory reports whether name is the root or has at least one key below it.
func (s *Storage) IsDirectory(ctx context.Context, name string) bool {
	key := pathutil.Normalize(name)
	if key == "" {
		return true
	}
	if s.IsFile(ctx, key) {
		return false
	}
	return s.tree.HasChildren(ctx, s.tree.Key(key))
}

// Move copies oldName to newName and deletes oldName once the copy is confirmed.
func (s *Storage) Move(ctx context.Context, oldName, newName string, allowOverwrite bool) error {
	return s.tree.Move(ctx, oldName, newName, allowOverwrite)
}

// MakeDirectories is a no-op. Directories appear when a key is written below them.
func (s *Storage) MakeDirectories(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return errs.PathError("mkdir", name, err)
	}
	return nil
}

// RemoveTree deletes the object at name and every object below it, one
// delete per key. Removing a path with no objects succeeds.
func (s *Storage) RemoveTree(ctx context.Context, name string) error {
	return s.tree.RemoveTree(ctx, name)
}

// SetPermissions is a no-op. Access control is managed on the bucket.
func (s *Storage) SetPermissions(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return errs.PathError("chmod", name, err)
	}
	return nil
}

// ListDirectory returns the files directly below name and the first path
// segment of every deeper key as a directory.
func (s *Storage) ListDirectory(ctx context.Context, name string) (core.Listing, error) {
	return s.tree.List(ctx, s.tree.Key(name), true)
}
