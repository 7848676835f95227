package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/jmgilman/go/storage/core"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store implements core.ObjectStore on top of a MinIO/S3 bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// New creates a MinIO-backed object store.
// Returns error if configuration is invalid, the client cannot be built, or
// CreateBucket is set and the bucket cannot be created.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
	}

	if cfg.CreateBucket {
		exists, err := client.BucketExists(ctx, cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("check bucket: %w", translate(err))
		}
		if !exists {
			if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
				return nil, fmt.Errorf("create bucket: %w", translate(err))
			}
		}
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Exists reports whether an object is stored at exactly key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, translate(err)
}

// List yields every key starting with prefix. Breaking out of the loop
// cancels the underlying listing request.
func (s *Store) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if object.Err != nil {
				yield("", translate(object.Err))
				return
			}
			if !yield(object.Key, nil) {
				return
			}
		}
	}
}

// Copy performs a server-side copy of srcKey to dstKey.
func (s *Store) Copy(ctx context.Context, srcKey, dstKey string) error {
	src := minio.CopySrcOptions{Bucket: s.bucket, Object: srcKey}
	dst := minio.CopyDestOptions{Bucket: s.bucket, Object: dstKey}

	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return translate(err)
	}
	return nil
}

// Delete removes the object at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return translate(s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}))
}

// Put stores data at key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	return translate(err)
}

// Read returns the contents of the object at key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, translate(err)
	}
	return data, nil
}

// Client returns the underlying MinIO client.
func (s *Store) Client() *minio.Client {
	return s.client
}

// Bucket returns the bucket name the store operates on.
func (s *Store) Bucket() string {
	return s.bucket
}

// Compile-time interface check.
var _ core.ObjectStore = (*Store)(nil)
