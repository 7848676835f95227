// Package errs builds the errors returned by storage backends.
//
// Every error is a *fs.PathError whose cause is a PlatformError wrapping one
// of the core sentinels, so callers can match with errors.Is and read the
// code and retry classification with github.com/jmgilman/go/errors.
package errs

import (
	"errors"
	"fmt"
	"io/fs"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/storage/core"
)

// PathError wraps an error in a fs.PathError for the given operation and path.
// If the error is nil, returns nil.
func PathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// DestinationExists reports that a move target exists and overwriting was not allowed.
func DestinationExists(op, path string) error {
	return PathError(op, path, platformerrors.Wrap(
		core.ErrDestinationExists,
		platformerrors.CodeAlreadyExists,
		"destination exists and overwrite is not allowed",
	))
}

// CopyFailed reports that the copy step of a move failed. The cause, if any,
// stays in the chain so its own classification is preserved.
func CopyFailed(op, src, dst string, cause error) error {
	err := core.ErrCopyFailed
	if cause != nil {
		err = fmt.Errorf("%w: %w", core.ErrCopyFailed, cause)
	}
	return PathError(op, src, platformerrors.WrapWithContext(
		err,
		platformerrors.CodeExecutionFailed,
		fmt.Sprintf("could not copy to %q", dst),
		map[string]interface{}{"source": src, "destination": dst},
	))
}

// NotFound reports that path does not exist. A nil cause defaults to core.ErrNotFound.
func NotFound(op, path string, cause error) error {
	if cause == nil {
		cause = core.ErrNotFound
	}
	return PathError(op, path, platformerrors.Wrap(cause, platformerrors.CodeNotFound, "path does not exist"))
}

// Unsupported reports that op is not available on the given backend type.
func Unsupported(op, path string, backend core.StorageType) error {
	return PathError(op, path, platformerrors.Wrapf(
		core.ErrUnsupported,
		platformerrors.CodeNotImplemented,
		"%s is not supported by the %s backend", op, backend,
	))
}

// InvalidPath reports that path cannot be used for op.
func InvalidPath(op, path, reason string) error {
	return PathError(op, path, platformerrors.Wrap(core.ErrInvalidPath, platformerrors.CodeInvalidInput, reason))
}

// Classify maps filesystem errors onto platform error codes while keeping
// the original error in the chain. Unknown errors pass through unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "path does not exist")
	case errors.Is(err, fs.ErrExist):
		return platformerrors.Wrap(err, platformerrors.CodeAlreadyExists, "path already exists")
	case errors.Is(err, fs.ErrPermission):
		return platformerrors.Wrap(err, platformerrors.CodeForbidden, "permission denied")
	default:
		return err
	}
}

// Wrap classifies err and wraps it in a fs.PathError.
func Wrap(op, path string, err error) error {
	return PathError(op, path, Classify(err))
}
