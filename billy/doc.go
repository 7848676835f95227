// Package billy provides the hierarchical storage backend, built on go-billy.
//
// Directories are real filesystem objects, so every operation maps onto a
// native filesystem call: Stat for existence checks, Rename for moves,
// MkdirAll for directory creation and Chmod for permissions.
//
// Usage:
//
//	// Local media root
//	s := billy.NewLocal("/srv/media", billy.WithPermissions(0o750))
//
//	if err := s.MakeDirectories(ctx, "uploads/2024"); err != nil {
//	    return err
//	}
//	err := s.Move(ctx, "incoming/a.jpg", "uploads/2024/a.jpg", false)
//
// # Memory Filesystem
//
// For testing, use the in-memory filesystem:
//
//	s := billy.NewMemory()
//
// Any other billy.Filesystem can be wrapped with New. Unwrap returns the
// underlying filesystem, which is how callers resolve a storage path to
// something they can open.
//
// # Moves
//
// Move renames in place. When the filesystem reports a cross-device rename
// (EXDEV) it falls back to copying and then removing the source. If the copy
// fails, the partial destination is removed, the source is left untouched
// and the returned error matches core.ErrCopyFailed.
//
// # Thread Safety
//
// Storage holds no mutable state and is safe for concurrent use when the
// underlying filesystem is.
package billy
