package minio

import (
	"io/fs"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/minio/minio-go/v7"
)

// translate converts MinIO errors to stdlib fs errors where a mapping
// exists and classifies everything else as a retryable unavailability.
func translate(err error) error {
	if err == nil {
		return nil
	}

	errResp := minio.ToErrorResponse(err)

	switch errResp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return platformerrors.Wrap(fs.ErrNotExist, platformerrors.CodeNotFound, errResp.Message)
	case "AccessDenied":
		return platformerrors.Wrap(fs.ErrPermission, platformerrors.CodeForbidden, errResp.Message)
	}

	return platformerrors.Wrap(err, platformerrors.CodeUnavailable, "minio request failed")
}

// isNotFound reports whether err is a missing key or bucket response.
func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}
