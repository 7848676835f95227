// Package testutil provides object store containers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// MinIOUser is the root user of the MinIO test container.
	MinIOUser = "minioadmin"
	// MinIOPassword is the root password of the MinIO test container.
	MinIOPassword = "minioadmin"

	// AzuriteAccount is the well-known Azurite development account name.
	AzuriteAccount = "devstoreaccount1"
	// AzuriteKey is the well-known Azurite development account key.
	AzuriteKey = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// TestContainer is a running object store container.
type TestContainer struct {
	container testcontainers.Container
	endpoint  string
}

// Endpoint returns the host:port the container is reachable at.
func (c *TestContainer) Endpoint() string {
	return c.endpoint
}

// Close terminates the container.
func (c *TestContainer) Close(ctx context.Context) error {
	if c.container == nil {
		return nil
	}
	return c.container.Terminate(ctx)
}

// NewMinIO starts a MinIO server container.
//
// The image can be overridden with TEST_MINIO_IMAGE.
func NewMinIO(ctx context.Context) (*TestContainer, error) {
	image := os.Getenv("TEST_MINIO_IMAGE")
	if image == "" {
		image = "minio/minio:latest"
	}

	return start(ctx, testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     MinIOUser,
			"MINIO_ROOT_PASSWORD": MinIOPassword,
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	})
}

// NewAzurite starts an Azurite blob service container.
//
// The image can be overridden with TEST_AZURITE_IMAGE.
func NewAzurite(ctx context.Context) (*TestContainer, error) {
	image := os.Getenv("TEST_AZURITE_IMAGE")
	if image == "" {
		image = "mcr.microsoft.com/azure-storage/azurite:latest"
	}

	return start(ctx, testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"10000/tcp"},
		Cmd:          []string{"azurite-blob", "--blobHost", "0.0.0.0", "--blobPort", "10000", "--skipApiVersionCheck"},
		WaitingFor:   wait.ForListeningPort("10000/tcp"),
	})
}

func start(ctx context.Context, req testcontainers.ContainerRequest) (*TestContainer, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s container: %w", req.Image, err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container endpoint: %w", err)
	}

	return &TestContainer{container: container, endpoint: endpoint}, nil
}

// AzuriteServiceURL returns the blob service URL for an Azurite endpoint.
func AzuriteServiceURL(endpoint string) string {
	return fmt.Sprintf("http://%s/%s", endpoint, AzuriteAccount)
}
