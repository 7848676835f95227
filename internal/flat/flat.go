// Package flat implements the directory emulation shared by the backends
// layered on a core.ObjectStore: key mapping, existence checks, copy-based
// moves, prefix deletes and one-level listings.
package flat

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/internal/errs"
	"github.com/jmgilman/go/storage/internal/pathutil"
	"golang.org/x/sync/errgroup"
)

// errCopyNotVisible is the copy failure cause when the store accepted a
// copy but the destination key cannot be found afterwards.
var errCopyNotVisible = errors.New("destination not present after copy")

// Tree maps storage paths onto keys of an object store.
type Tree struct {
	Store  core.ObjectStore
	Prefix string // normalized key prefix, "" for none
	Type   core.StorageType
	Logger *slog.Logger

	// DeleteConcurrency bounds parallel deletes in RemoveTree. Values below
	// one mean sequential.
	DeleteConcurrency int
}

// Key returns the object key for a storage path.
func (t *Tree) Key(name string) string {
	return pathutil.JoinPath(t.Prefix, name)
}

// Rel returns the storage path for an object key.
func (t *Tree) Rel(key string) string {
	return pathutil.Relative(t.Prefix, key)
}

// ObjectExists reports whether an object is stored at exactly key. Store
// errors are logged and reported as false.
func (t *Tree) ObjectExists(ctx context.Context, key string) bool {
	ok, err := t.Store.Exists(ctx, key)
	if err != nil {
		t.Logger.DebugContext(ctx, "exists check failed", "key", key, "error", err)
		return false
	}
	return ok
}

// HasChildren reports whether any key lies below the directory at key. It
// stops listing at the first match.
func (t *Tree) HasChildren(ctx context.Context, key string) bool {
	for _, err := range t.Store.List(ctx, pathutil.DirPrefix(key)) {
		if err != nil {
			t.Logger.DebugContext(ctx, "prefix scan failed", "key", key, "error", err)
			return false
		}
		return true
	}
	return false
}

// Move copies the object at oldName to newName, verifies the copy and then
// deletes the source. The source is never deleted unless the destination
// was confirmed.
func (t *Tree) Move(ctx context.Context, oldName, newName string, allowOverwrite bool) error {
	const op = "move"

	src, dst := pathutil.Normalize(oldName), pathutil.Normalize(newName)
	if src == "" {
		return errs.InvalidPath(op, oldName, "cannot move the storage root")
	}
	if dst == "" {
		return errs.InvalidPath(op, newName, "cannot move onto the storage root")
	}
	srcKey, dstKey := t.Key(src), t.Key(dst)

	ok, err := t.Store.Exists(ctx, srcKey)
	if err != nil {
		return errs.Wrap(op, src, err)
	}
	if !ok {
		return errs.NotFound(op, src, nil)
	}
	if src == dst {
		return nil
	}

	ok, err = t.Store.Exists(ctx, dstKey)
	if err != nil {
		return errs.Wrap(op, dst, err)
	}
	if ok {
		if !allowOverwrite {
			return errs.DestinationExists(op, dst)
		}
		if err := t.Store.Delete(ctx, dstKey); err != nil {
			return errs.Wrap(op, dst, err)
		}
	}

	if err := t.Store.Copy(ctx, srcKey, dstKey); err != nil {
		return errs.CopyFailed(op, src, dst, err)
	}
	ok, err = t.Store.Exists(ctx, dstKey)
	if err != nil {
		return errs.CopyFailed(op, src, dst, err)
	}
	if !ok {
		return errs.CopyFailed(op, src, dst, errCopyNotVisible)
	}

	if err := t.Store.Delete(ctx, srcKey); err != nil {
		return errs.Wrap(op, src, err)
	}

	t.Logger.InfoContext(ctx, "moved", "backend", t.Type.String(), "source", src, "destination", dst)
	return nil
}

// RemoveTree deletes the object at name, if any, and every object below it.
// Nothing to delete is not an error.
func (t *Tree) RemoveTree(ctx context.Context, name string) error {
	const op = "removetree"

	rel := pathutil.Normalize(name)
	if rel == "" {
		return errs.InvalidPath(op, name, "refusing to remove the storage root")
	}
	key := t.Key(rel)

	var keys []string
	ok, err := t.Store.Exists(ctx, key)
	if err != nil {
		return errs.Wrap(op, rel, err)
	}
	if ok {
		keys = append(keys, key)
	}
	for k, err := range t.Store.List(ctx, pathutil.DirPrefix(key)) {
		if err != nil {
			return errs.Wrap(op, rel, err)
		}
		keys = append(keys, k)
	}

	if len(keys) == 0 {
		t.Logger.DebugContext(ctx, "nothing to remove", "path", rel)
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, t.DeleteConcurrency))
	for _, k := range keys {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if err := t.Store.Delete(gctx, k); err != nil {
				return errs.Wrap(op, t.Rel(k), err)
			}
			t.Logger.DebugContext(gctx, "deleted", "key", k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errs.PathError(op, rel, err)
	}

	t.Logger.InfoContext(ctx, "removed tree", "backend", t.Type.String(), "path", rel, "objects", len(keys))
	return nil
}

// List returns the immediate children of the directory at key. Keys one
// segment below key are files. Keys two segments below name a child
// directory; with deep set, so does any key further down.
func (t *Tree) List(ctx context.Context, key string, deep bool) (core.Listing, error) {
	depth := len(pathutil.Segments(key))
	files := make(map[string]struct{})
	dirs := make(map[string]struct{})

	for k, err := range t.Store.List(ctx, pathutil.DirPrefix(key)) {
		if err != nil {
			return core.Listing{}, errs.Wrap("readdir", t.Rel(key), err)
		}

		segments := pathutil.Segments(k)
		below := len(segments) - depth
		if below < 1 || segments[depth] == "" {
			continue
		}
		switch {
		case below == 1:
			files[segments[depth]] = struct{}{}
		case below == 2 || deep:
			dirs[segments[depth]] = struct{}{}
		}
	}

	return core.Listing{
		Dirs:  slices.Sorted(maps.Keys(dirs)),
		Files: slices.Sorted(maps.Keys(files)),
	}, nil
}
