package core_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// TestErrorVariablesDistinct verifies the sentinels do not match each other.
func TestErrorVariablesDistinct(t *testing.T) {
	sentinels := map[string]error{
		"ErrNotFound":          core.ErrNotFound,
		"ErrDestinationExists": core.ErrDestinationExists,
		"ErrCopyFailed":        core.ErrCopyFailed,
		"ErrUnsupported":       core.ErrUnsupported,
		"ErrInvalidPath":       core.ErrInvalidPath,
	}

	for name, err := range sentinels {
		if err == nil {
			t.Fatalf("%s should not be nil", name)
		}
		for other, otherErr := range sentinels {
			if name != other && errors.Is(err, otherErr) {
				t.Errorf("%s unexpectedly matches %s", name, other)
			}
		}
	}
}

// TestErrNotFoundMatchesStdlib verifies ErrNotFound is the io/fs sentinel.
func TestErrNotFoundMatchesStdlib(t *testing.T) {
	if !errors.Is(core.ErrNotFound, fs.ErrNotExist) {
		t.Errorf("ErrNotFound does not match fs.ErrNotExist")
	}

	wrapped := &fs.PathError{Op: "removetree", Path: "missing", Err: core.ErrNotFound}
	if !errors.Is(wrapped, fs.ErrNotExist) {
		t.Errorf("wrapped ErrNotFound does not match fs.ErrNotExist")
	}
}
