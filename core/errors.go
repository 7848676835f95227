package core

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotFound is returned when a path does not exist.
	// Re-exported from io/fs so os.IsNotExist and errors.Is(err, fs.ErrNotExist) keep working.
	ErrNotFound = fs.ErrNotExist

	// ErrDestinationExists is returned by Move when the target exists and
	// overwriting was not allowed.
	ErrDestinationExists = errors.New("destination already exists")

	// ErrCopyFailed is returned by Move when the copy step of a copy+delete
	// move failed. The source is left in place.
	ErrCopyFailed = errors.New("copy failed")

	// ErrUnsupported is returned when an operation is not meaningful or not
	// implemented for a backend.
	ErrUnsupported = errors.New("operation not supported")

	// ErrInvalidPath is returned when a path is not acceptable for the
	// operation, such as removing the storage root.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultPermissions is the mode applied by SetPermissions when none is configured.
const DefaultPermissions fs.FileMode = 0o755
