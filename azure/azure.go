// Package azure provides the flat-marker storage backend.
//
// Blob containers have no directories, and an empty "directory" would be
// invisible. MakeDirectories therefore writes a zero-byte marker object
// (DefaultMarkerName) inside the directory. A directory exists when a
// one-level listing of it finds any child file or directory, markers
// included. Callers presenting listings to users should hide markers, for
// example with core.Listing.Without.
//
// Listings classify keys by depth: a key one segment below the directory is
// a file, a key two segments below names a child directory, and deeper keys
// are ignored. A directory whose only content sits three or more levels
// down is not reported by IsDirectory until something is created closer to it.
//
// The root always reports as a directory, even in an empty container.
//
// Move and RemoveTree are unsupported unless WithTreeOperations is given, in
// which case they copy-verify-delete and list-delete the same way the s3
// backend does.
package azure

import (
	"context"
	"log/slog"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/internal/errs"
	"github.com/jmgilman/go/storage/internal/flat"
	"github.com/jmgilman/go/storage/internal/pathutil"
)

// Storage is the flat-marker backend. It implements core.Storage and core.Lister.
type Storage struct {
	tree       *flat.Tree
	markerName string
	treeOps    bool
}

var (
	_ core.Storage = (*Storage)(nil)
	_ core.Lister  = (*Storage)(nil)
)

// New creates a Storage over store.
func New(store core.ObjectStore, opts ...Option) *Storage {
	o := options{
		markerName:        DefaultMarkerName,
		logger:            slog.New(slog.DiscardHandler),
		deleteConcurrency: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Storage{
		tree: &flat.Tree{
			Store:             store,
			Prefix:            pathutil.Normalize(o.prefix),
			Type:              core.TypeFlatMarker,
			Logger:            o.logger,
			DeleteConcurrency: o.deleteConcurrency,
		},
		markerName: o.markerName,
		treeOps:    o.treeOps,
	}
}

// Type returns core.TypeFlatMarker.
func (s *Storage) Type() core.StorageType {
	return core.TypeFlatMarker
}

// MarkerName returns the name of the marker objects this backend writes.
func (s *Storage) MarkerName() string {
	return s.markerName
}

// IsFile reports whether a blob exists at exactly name. A name ending in a
// separator is never a file.
func (s *Storage) IsFile(ctx context.Context, name string) bool {
	if pathutil.HasTrailingSeparator(name) {
		return false
	}
	key := pathutil.Normalize(name)
	if key == "" {
		return false
	}
	return s.tree.ObjectExists(ctx, s.tree.Key(key))
}

// IsDirectory reports whether name is a directory. A trailing separator
// marks a directory without any request.
func (s *Storage) IsDirectory(ctx context.Context, name string) bool {
	if pathutil.HasTrailingSeparator(name) {
		return true
	}
	key := pathutil.Normalize(name)
	if key == "" {
		return true
	}
	if s.IsFile(ctx, key) {
		return false
	}

	listing, err := s.ListDirectory(ctx, key)
	if err != nil {
		s.tree.Logger.DebugContext(ctx, "directory listing failed", "path", key, "error", err)
		return false
	}
	return !listing.Empty()
}

// ListDirectory returns the files one level below name and the directories
// named by keys two levels below it.
func (s *Storage) ListDirectory(ctx context.Context, name string) (core.Listing, error) {
	return s.tree.List(ctx, s.tree.Key(name), false)
}

// MakeDirectories writes a marker object inside name. Parents need no
// markers of their own; they become visible through the new key.
func (s *Storage) MakeDirectories(ctx context.Context, name string) error {
	const op = "mkdir"

	key := pathutil.Normalize(name)
	if key == "" {
		if err := ctx.Err(); err != nil {
			return errs.PathError(op, name, err)
		}
		return nil
	}

	marker := s.tree.Key(key + "/" + s.markerName)
	if err := s.tree.Store.Put(ctx, marker, nil); err != nil {
		return errs.Wrap(op, key, err)
	}

	s.tree.Logger.InfoContext(ctx, "created directory marker", "path", key, "key", marker)
	return nil
}

// Move relocates a single blob. It returns core.ErrUnsupported unless tree
// operations are enabled.
func (s *Storage) Move(ctx context.Context, oldName, newName string, allowOverwrite bool) error {
	if !s.treeOps {
		return errs.Unsupported("move", oldName, s.Type())
	}
	return s.tree.Move(ctx, oldName, newName, allowOverwrite)
}

// RemoveTree deletes every blob at and below name, markers included. It
// returns core.ErrUnsupported unless tree operations are enabled.
func (s *Storage) RemoveTree(ctx context.Context, name string) error {
	if pathutil.Normalize(name) == "" {
		return errs.InvalidPath("removetree", name, "refusing to remove the storage root")
	}
	if !s.treeOps {
		return errs.Unsupported("removetree", name, s.Type())
	}
	return s.tree.RemoveTree(ctx, name)
}

// SetPermissions is a no-op. Blob storage has no per-object permission model.
func (s *Storage) SetPermissions(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return errs.PathError("chmod", name, err)
	}
	return nil
}
