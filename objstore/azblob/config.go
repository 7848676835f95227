// Package azblob provides an Azure Blob Storage implementation of core.ObjectStore.
package azblob

import (
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// defaultCopyPollInterval is how often a pending server-side copy is polled.
const defaultCopyPollInterval = 500 * time.Millisecond

// Config holds Azure Blob Storage configuration.
type Config struct {
	// ServiceURL is the blob service endpoint
	// (e.g., "https://myaccount.blob.core.windows.net/").
	// Derived from AccountName when empty.
	ServiceURL string

	// AccountName is the storage account name
	AccountName string

	// AccountKey is the shared key for the account.
	// When empty, credentials are resolved with azidentity's default chain.
	AccountKey string

	// Container is the blob container name
	Container string

	// CreateContainer creates the container on construction when it is missing
	CreateContainer bool

	// CopyPollInterval is how often a pending copy is polled
	// Default: 500ms
	CopyPollInterval time.Duration

	// Client is an optional pre-configured client
	// If provided, ServiceURL/AccountName/AccountKey are ignored
	Client *azblob.Client
}

// validate checks if the configuration is valid.
// Either Client OR (AccountName or ServiceURL) must be provided.
func (c *Config) validate() error {
	if c.Container == "" {
		return fmt.Errorf("container is required")
	}

	if c.Client != nil {
		return nil
	}

	if c.ServiceURL == "" && c.AccountName == "" {
		return fmt.Errorf("service url or account name is required when client is not provided")
	}
	if c.AccountKey != "" && c.AccountName == "" {
		return fmt.Errorf("account name is required when an account key is provided")
	}

	return nil
}

// serviceURL returns the configured service URL or the public endpoint
// derived from the account name.
func (c *Config) serviceURL() string {
	if c.ServiceURL != "" {
		return c.ServiceURL
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", c.AccountName)
}
