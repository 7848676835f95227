package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/storage/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathError(t *testing.T) {
	assert.NoError(t, PathError("move", "a", nil))

	err := PathError("move", "a", errors.New("boom"))
	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "move", pathErr.Op)
	assert.Equal(t, "a", pathErr.Path)
}

func TestDestinationExists(t *testing.T) {
	err := DestinationExists("move", "b.txt")

	assert.ErrorIs(t, err, core.ErrDestinationExists)
	assert.Equal(t, platformerrors.CodeAlreadyExists, platformerrors.GetCode(err))
	assert.False(t, platformerrors.IsRetryable(err))
}

func TestCopyFailed(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := CopyFailed("move", "a.txt", "b.txt", nil)
		assert.ErrorIs(t, err, core.ErrCopyFailed)
		assert.Equal(t, platformerrors.CodeExecutionFailed, platformerrors.GetCode(err))
	})

	t.Run("keeps cause and its classification", func(t *testing.T) {
		cause := platformerrors.New(platformerrors.CodeUnavailable, "store offline")
		err := CopyFailed("move", "a.txt", "b.txt", cause)

		assert.ErrorIs(t, err, core.ErrCopyFailed)
		assert.ErrorIs(t, err, cause)
		assert.True(t, platformerrors.IsRetryable(err))

		var platformErr platformerrors.PlatformError
		require.ErrorAs(t, err, &platformErr)
		assert.Equal(t, "b.txt", platformErr.Context()["destination"])
	})
}

func TestNotFound(t *testing.T) {
	err := NotFound("removetree", "missing", nil)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
}

func TestUnsupported(t *testing.T) {
	err := Unsupported("move", "a.txt", core.TypeFlatMarker)
	assert.ErrorIs(t, err, core.ErrUnsupported)
	assert.Equal(t, platformerrors.CodeNotImplemented, platformerrors.GetCode(err))
	assert.Contains(t, err.Error(), "flat-marker")
}

func TestInvalidPath(t *testing.T) {
	err := InvalidPath("removetree", "", "refusing to remove the storage root")
	assert.ErrorIs(t, err, core.ErrInvalidPath)
	assert.Equal(t, platformerrors.CodeInvalidInput, platformerrors.GetCode(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want platformerrors.ErrorCode
	}{
		{"not exist", fmt.Errorf("stat: %w", fs.ErrNotExist), platformerrors.CodeNotFound},
		{"exist", fs.ErrExist, platformerrors.CodeAlreadyExists},
		{"permission", fs.ErrPermission, platformerrors.CodeForbidden},
		{"other", errors.New("disk on fire"), platformerrors.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.want, platformerrors.GetCode(got))
		})
	}

	assert.NoError(t, Classify(nil))
}
