// Package minio provides a MinIO/S3-compatible implementation of core.ObjectStore.
package minio

import (
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// Config describes how to reach the bucket backing a Store.
type Config struct {
	Endpoint  string // host:port, no scheme
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// CreateBucket makes New create the bucket when it is missing.
	CreateBucket bool

	// Client, when set, is used as is and the connection fields are ignored.
	Client *minio.Client
}

// validate reports the first missing field. A preconfigured Client
// replaces the connection fields, but the bucket is always needed.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return errors.New("bucket is required")
	}
	if c.Client != nil {
		return nil
	}

	for _, f := range []struct{ name, value string }{
		{"endpoint", c.Endpoint},
		{"access key", c.AccessKey},
		{"secret key", c.SecretKey},
	} {
		if f.value == "" {
			return fmt.Errorf("%s is required without a client", f.name)
		}
	}
	return nil
}
