package azblob

import (
	"io/fs"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	platformerrors "github.com/jmgilman/go/errors"
)

// translate converts Azure errors to stdlib fs errors where a mapping
// exists and classifies everything else as a retryable unavailability.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return platformerrors.Wrap(fs.ErrNotExist, platformerrors.CodeNotFound, "blob or container not found")
	case bloberror.HasCode(err,
		bloberror.AuthorizationFailure,
		bloberror.AuthorizationPermissionMismatch,
		bloberror.InsufficientAccountPermissions,
	):
		return platformerrors.Wrap(fs.ErrPermission, platformerrors.CodeForbidden, "access denied")
	default:
		return platformerrors.Wrap(err, platformerrors.CodeUnavailable, "azure blob request failed")
	}
}

func isNotFound(err error) bool {
	return bloberror.HasCode(err,
		bloberror.BlobNotFound,
		bloberror.ContainerNotFound,
		bloberror.CannotVerifyCopySource,
	)
}
