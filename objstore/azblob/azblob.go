package azblob

import (
	"context"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/jmgilman/go/storage/core"
)

// Store implements core.ObjectStore on top of an Azure blob container.
type Store struct {
	client       *azblob.Client
	container    *container.Client
	name         string
	pollInterval time.Duration
}

// New creates an Azure-backed object store.
// Returns error if configuration is invalid, credentials cannot be built, or
// CreateContainer is set and the container cannot be created.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = newClient(cfg)
		if err != nil {
			return nil, err
		}
	}

	if cfg.CreateContainer {
		_, err := client.CreateContainer(ctx, cfg.Container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return nil, fmt.Errorf("create container: %w", translate(err))
		}
	}

	pollInterval := cfg.CopyPollInterval
	if pollInterval == 0 {
		pollInterval = defaultCopyPollInterval
	}

	return &Store{
		client:       client,
		container:    client.ServiceClient().NewContainerClient(cfg.Container),
		name:         cfg.Container,
		pollInterval: pollInterval,
	}, nil
}

func newClient(cfg Config) (*azblob.Client, error) {
	if cfg.AccountKey != "" {
		cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err := azblob.NewClientWithSharedKeyCredential(cfg.serviceURL(), cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure client: %w", err)
		}
		return client, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve azure credential: %w", err)
	}
	client, err := azblob.NewClient(cfg.serviceURL(), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}
	return client, nil
}

// Exists reports whether a blob is stored at exactly key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.container.NewBlobClient(key).GetProperties(ctx, nil)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, translate(err)
}

// List yields every blob name starting with prefix, one page at a time.
func (s *Store) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		opts := &azblob.ListBlobsFlatOptions{}
		if prefix != "" {
			opts.Prefix = to.Ptr(prefix)
		}

		pager := s.client.NewListBlobsFlatPager(s.name, opts)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				yield("", translate(err))
				return
			}
			if page.Segment == nil {
				continue
			}
			for _, item := range page.Segment.BlobItems {
				if item == nil || item.Name == nil {
					continue
				}
				if !yield(*item.Name, nil) {
					return
				}
			}
		}
	}
}

// Copy starts a server-side copy of srcKey to dstKey and waits until the
// service reports it finished.
func (s *Store) Copy(ctx context.Context, srcKey, dstKey string) error {
	src := s.container.NewBlobClient(srcKey)
	dst := s.container.NewBlobClient(dstKey)

	resp, err := dst.StartCopyFromURL(ctx, src.URL(), nil)
	if err != nil {
		return translate(err)
	}

	status := resp.CopyStatus
	var description *string
	for status != nil && *status == blob.CopyStatusTypePending {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}

		props, err := dst.GetProperties(ctx, nil)
		if err != nil {
			return translate(err)
		}
		status, description = props.CopyStatus, props.CopyStatusDescription
	}

	if status != nil && *status != blob.CopyStatusTypeSuccess {
		reason := ""
		if description != nil {
			reason = *description
		}
		return fmt.Errorf("copy %s to %s ended with status %s: %s", srcKey, dstKey, *status, reason)
	}
	return nil
}

// Delete removes the blob at key. Deleting a missing blob is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteBlob(ctx, s.name, key, nil)
	if err != nil && !isNotFound(err) {
		return translate(err)
	}
	return nil
}

// Put uploads data as a block blob at key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.UploadBuffer(ctx, s.name, key, data, nil)
	return translate(err)
}

// Read downloads the blob at key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.name, key, nil)
	if err != nil {
		return nil, translate(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, translate(err)
	}
	return data, nil
}

// Client returns the underlying Azure client.
func (s *Store) Client() *azblob.Client {
	return s.client
}

// Container returns the container name the store operates on.
func (s *Store) Container() string {
	return s.name
}

// Compile-time interface check.
var _ core.ObjectStore = (*Store)(nil)
