package core

import (
	"context"
	"iter"
)

// StorageType represents the directory model of a storage backend.
type StorageType int

const (
	// TypeUnknown indicates the storage type is unknown or unspecified.
	TypeUnknown StorageType = iota
	// TypeHierarchical indicates a filesystem with real directory objects.
	TypeHierarchical
	// TypeFlatListing indicates a flat store where directories are key prefixes.
	TypeFlatListing
	// TypeFlatMarker indicates a flat store where directories are marker objects.
	TypeFlatMarker
)

// String returns a string representation of the StorageType.
func (t StorageType) String() string {
	switch t {
	case TypeHierarchical:
		return "hierarchical"
	case TypeFlatListing:
		return "flat-listing"
	case TypeFlatMarker:
		return "flat-marker"
	default:
		return "unknown"
	}
}

// Storage is the directory-tree contract every backend implements.
//
// Paths are slash-delimited and relative to the backend root. The empty
// path denotes the root.
type Storage interface {
	// IsDirectory reports whether name exists and is a directory (real or
	// emulated). It never fails: any path that cannot be resolved reports false.
	IsDirectory(ctx context.Context, name string) bool

	// IsFile reports whether name exists and is a regular file or object.
	// It never fails: a missing or unresolvable path reports false.
	IsFile(ctx context.Context, name string) bool

	// Move relocates a single object from oldName to newName.
	//
	// If newName exists and allowOverwrite is false, Move returns an error
	// matching ErrDestinationExists. Backends that move by copy+delete never
	// delete the source when the copy fails; they return ErrCopyFailed.
	Move(ctx context.Context, oldName, newName string, allowOverwrite bool) error

	// MakeDirectories ensures a directory exists at name, creating parents
	// where the backend has a notion of them.
	MakeDirectories(ctx context.Context, name string) error

	// RemoveTree deletes everything at and under name.
	RemoveTree(ctx context.Context, name string) error

	// SetPermissions applies the configured default permission mode to name.
	// Backends without a permission model treat this as a no-op.
	SetPermissions(ctx context.Context, name string) error

	// Type returns the directory model of the backend.
	Type() StorageType
}

// Lister is implemented by backends that can list the immediate children
// of a directory.
//
// Use type assertion to check if a backend supports listing:
//
//	if l, ok := s.(core.Lister); ok {
//	    listing, err := l.ListDirectory(ctx, "media")
//	}
type Lister interface {
	// ListDirectory returns the names of the immediate child directories
	// and files of name.
	ListDirectory(ctx context.Context, name string) (Listing, error)
}

// ObjectStore is the primitive driver the flat backends are built on.
//
// Keys are opaque strings; any hierarchy is a naming convention layered on
// top by the backends. Implementations must be safe for concurrent use.
type ObjectStore interface {
	// Exists reports whether an object is stored at exactly key.
	Exists(ctx context.Context, key string) (bool, error)

	// List yields every key that starts with prefix. The sequence is lazy and
	// may be ranged over more than once; each iteration issues a new listing.
	// Keys are not guaranteed to be ordered. Iteration stops after the first
	// error is yielded.
	List(ctx context.Context, prefix string) iter.Seq2[string, error]

	// Copy duplicates the object at srcKey to dstKey, replacing dstKey if it
	// exists. A nil error means the copy succeeded.
	Copy(ctx context.Context, srcKey, dstKey string) error

	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error

	// Put stores data at key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte) error
}
