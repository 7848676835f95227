package billy

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/internal/errs"
	"github.com/jmgilman/go/storage/internal/pathutil"
)

// Storage is the hierarchical backend. It implements core.Storage and core.Lister.
type Storage struct {
	bfs  billy.Filesystem
	root string // host directory for local filesystems, "" otherwise
	opts options
}

var (
	_ core.Storage = (*Storage)(nil)
	_ core.Lister  = (*Storage)(nil)
)

// NewLocal creates a Storage rooted at the given host directory.
// Paths cannot escape the root.
func NewLocal(root string, opts ...Option) *Storage {
	s := New(osfs.New(root), opts...)
	s.root = root
	return s
}

// NewMemory creates a Storage backed by an empty in-memory filesystem.
func NewMemory(opts ...Option) *Storage {
	return New(memfs.New(), opts...)
}

// New wraps an existing billy.Filesystem.
func New(bfs billy.Filesystem, opts ...Option) *Storage {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Storage{bfs: bfs, opts: o}
}

// Unwrap returns the underlying billy.Filesystem.
func (s *Storage) Unwrap() billy.Filesystem {
	return s.bfs
}

// Type returns core.TypeHierarchical.
func (s *Storage) Type() core.StorageType {
	return core.TypeHierarchical
}

// fsPath maps a normalized key onto a billy path. The root is "/".
func fsPath(key string) string {
	if key == "" {
		return "/"
	}
	return key
}

func (s *Storage) stat(ctx context.Context, name string) (fs.FileInfo, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	key := pathutil.Normalize(name)
	info, err := s.bfs.Stat(fsPath(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.opts.logger.DebugContext(ctx, "stat failed", "path", key, "error", err)
		}
		return nil, false
	}
	return info, true
}

// IsDirectory reports whether name is an existing directory.
func (s *Storage) IsDirectory(ctx context.Context, name string) bool {
	info, ok := s.stat(ctx, name)
	return ok && info.IsDir()
}

// IsFile reports whether name is an existing regular file.
func (s *Storage) IsFile(ctx context.Context, name string) bool {
	info, ok := s.stat(ctx, name)
	return ok && info.Mode().IsRegular()
}

// Move renames oldName to newName, creating the parent directories of
// newName as needed.
func (s *Storage) Move(ctx context.Context, oldName, newName string, allowOverwrite bool) error {
	const op = "move"
	if err := ctx.Err(); err != nil {
		return errs.PathError(op, oldName, err)
	}

	src, dst := pathutil.Normalize(oldName), pathutil.Normalize(newName)
	if src == "" {
		return errs.InvalidPath(op, oldName, "cannot move the storage root")
	}
	if dst == "" {
		return errs.InvalidPath(op, newName, "cannot move onto the storage root")
	}

	srcInfo, err := s.bfs.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.NotFound(op, src, err)
		}
		return errs.Wrap(op, src, err)
	}
	if src == dst {
		return nil
	}

	if _, err := s.bfs.Stat(dst); err == nil {
		if !allowOverwrite {
			return errs.DestinationExists(op, dst)
		}
		if err := util.RemoveAll(s.bfs, dst); err != nil {
			return errs.Wrap(op, dst, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errs.Wrap(op, dst, err)
	}

	if parent := path.Dir(dst); parent != "." {
		if err := s.bfs.MkdirAll(parent, s.opts.perm); err != nil {
			return errs.Wrap(op, parent, err)
		}
	}

	err = s.bfs.Rename(src, dst)
	if err == nil {
		s.opts.logger.InfoContext(ctx, "moved", "source", src, "destination", dst)
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return errs.Wrap(op, src, err)
	}

	s.opts.logger.DebugContext(ctx, "rename crossed devices, copying", "source", src, "destination", dst)
	if err := s.copyTree(src, dst, srcInfo); err != nil {
		if rmErr := util.RemoveAll(s.bfs, dst); rmErr != nil {
			s.opts.logger.WarnContext(ctx, "failed to remove partial copy", "path", dst, "error", rmErr)
		}
		return errs.CopyFailed(op, src, dst, err)
	}
	if err := util.RemoveAll(s.bfs, src); err != nil {
		return errs.Wrap(op, src, err)
	}

	s.opts.logger.InfoContext(ctx, "moved", "source", src, "destination", dst, "copied", true)
	return nil
}

func (s *Storage) copyTree(src, dst string, info fs.FileInfo) error {
	if !info.IsDir() {
		return s.copyFile(src, dst, info.Mode().Perm())
	}

	if err := s.bfs.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}
	entries, err := s.bfs.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if err := s.copyTree(path.Join(src, name), path.Join(dst, name), entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) copyFile(src, dst string, perm fs.FileMode) (err error) {
	in, err := s.bfs.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := s.bfs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// MakeDirectories creates name and any missing parents.
func (s *Storage) MakeDirectories(ctx context.Context, name string) error {
	const op = "mkdir"
	if err := ctx.Err(); err != nil {
		return errs.PathError(op, name, err)
	}

	key := pathutil.Normalize(name)
	if key == "" {
		return nil
	}
	if err := s.bfs.MkdirAll(key, s.opts.perm); err != nil {
		return errs.Wrap(op, key, err)
	}
	return nil
}

// RemoveTree deletes name and everything below it. A missing path is an error.
func (s *Storage) RemoveTree(ctx context.Context, name string) error {
	const op = "removetree"
	if err := ctx.Err(); err != nil {
		return errs.PathError(op, name, err)
	}

	key := pathutil.Normalize(name)
	if key == "" {
		return errs.InvalidPath(op, name, "refusing to remove the storage root")
	}
	if _, err := s.bfs.Stat(key); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.NotFound(op, key, err)
		}
		return errs.Wrap(op, key, err)
	}
	if err := util.RemoveAll(s.bfs, key); err != nil {
		return errs.Wrap(op, key, err)
	}

	s.opts.logger.InfoContext(ctx, "removed tree", "path", key)
	return nil
}

// SetPermissions applies the configured permission mode to name.
func (s *Storage) SetPermissions(ctx context.Context, name string) error {
	const op = "chmod"
	if err := ctx.Err(); err != nil {
		return errs.PathError(op, name, err)
	}

	key := pathutil.Normalize(name)
	switch {
	case s.supportsChange():
		err := s.bfs.(billy.Change).Chmod(fsPath(key), s.opts.perm)
		return errs.Wrap(op, key, err)
	case s.root != "":
		err := os.Chmod(filepath.Join(s.root, filepath.FromSlash(key)), s.opts.perm)
		return errs.Wrap(op, key, err)
	default:
		return errs.Unsupported(op, key, s.Type())
	}
}

func (s *Storage) supportsChange() bool {
	_, ok := s.bfs.(billy.Change)
	return ok
}

// ListDirectory returns the immediate children of name, sorted by name.
func (s *Storage) ListDirectory(ctx context.Context, name string) (core.Listing, error) {
	const op = "readdir"
	if err := ctx.Err(); err != nil {
		return core.Listing{}, errs.PathError(op, name, err)
	}

	key := pathutil.Normalize(name)
	info, err := s.bfs.Stat(fsPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return core.Listing{}, errs.NotFound(op, key, err)
		}
		return core.Listing{}, errs.Wrap(op, key, err)
	}
	// memfs lists a regular file as an empty directory.
	if !info.IsDir() {
		return core.Listing{}, errs.InvalidPath(op, key, "not a directory")
	}

	infos, err := s.bfs.ReadDir(fsPath(key))
	if err != nil {
		return core.Listing{}, errs.Wrap(op, key, err)
	}

	var listing core.Listing
	for _, info := range infos {
		if info.IsDir() {
			listing.Dirs = append(listing.Dirs, info.Name())
		} else {
			listing.Files = append(listing.Files, info.Name())
		}
	}
	slices.Sort(listing.Dirs)
	slices.Sort(listing.Files)
	return listing, nil
}
