// Package core provides the contract shared by every storage backend.
//
// A backend lets an application run directory-tree operations (existence
// checks, move, recursive delete, directory creation, permission setting)
// without knowing whether the data lives on a real hierarchical filesystem
// or in a flat object store that only emulates directories.
//
// # Backends
//
// Three strategies implement Storage:
//
//   - github.com/jmgilman/go/storage/billy - hierarchical filesystem (go-billy)
//   - github.com/jmgilman/go/storage/s3 - flat store, directories inferred from key prefixes
//   - github.com/jmgilman/go/storage/azure - flat store, directories made visible by marker objects
//
// The flat backends do not talk to a provider directly. They are layered on
// ObjectStore, a minimal primitive set (exists, list, copy, delete, put)
// implemented by the objstore packages.
//
// # Usage Example
//
//	func Relocate(ctx context.Context, s core.Storage, from, to string) error {
//	    if !s.IsFile(ctx, from) {
//	        return fmt.Errorf("%s is not a file", from)
//	    }
//	    return s.Move(ctx, from, to, false)
//	}
//
// # Checking Optional Capabilities
//
//	if l, ok := s.(core.Lister); ok {
//	    listing, err := l.ListDirectory(ctx, "uploads")
//	}
//
// # Errors
//
// Operations that fail return a *fs.PathError. Use errors.Is against the
// sentinels in this package (ErrNotFound, ErrDestinationExists, ErrCopyFailed,
// ErrUnsupported, ErrInvalidPath). The wrapped cause is a PlatformError from
// github.com/jmgilman/go/errors, so error codes and retry classification are
// available through that package as well.
package core
