package storage

import (
	"context"
	"io/fs"
	"log/slog"
	"os"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/storage/azure"
	"github.com/jmgilman/go/storage/billy"
	"github.com/jmgilman/go/storage/config"
	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/instrument"
	"github.com/jmgilman/go/storage/objstore/azblob"
	"github.com/jmgilman/go/storage/objstore/memory"
	"github.com/jmgilman/go/storage/objstore/minio"
	"github.com/jmgilman/go/storage/s3"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	logger         *slog.Logger
	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
}

// WithLogger replaces the logger built from the log section of the config.
func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) {
		o.logger = logger
	}
}

// WithRegisterer registers storage metrics with reg instead of
// prometheus.DefaultRegisterer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *openOptions) {
		o.registerer = reg
	}
}

// WithTracerProvider creates spans from tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *openOptions) {
		o.tracerProvider = tp
	}
}

// Open validates cfg and returns the configured backend, instrumented when
// metrics or tracing are enabled.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (core.Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		logger, err := config.NewLogger(cfg.Log, os.Stderr)
		if err != nil {
			return nil, err
		}
		o.logger = logger
	}

	s, err := openBackend(ctx, cfg, o.logger)
	if err != nil {
		return nil, err
	}
	o.logger.InfoContext(ctx, "storage opened", "backend", cfg.Backend, "type", s.Type().String())

	if !cfg.Metrics.Enabled && !cfg.Tracing.Enabled {
		return s, nil
	}
	return instrument.Wrap(s, instrumentOptions(cfg, o)...), nil
}

func instrumentOptions(cfg *config.Config, o openOptions) []instrument.Option {
	var opts []instrument.Option

	switch {
	case !cfg.Metrics.Enabled:
		opts = append(opts, instrument.WithMetrics(instrument.NewMetrics(nil)))
	case o.registerer != nil:
		opts = append(opts, instrument.WithMetrics(instrument.NewMetrics(o.registerer)))
	default:
		opts = append(opts, instrument.WithMetrics(instrument.DefaultMetrics()))
	}

	switch {
	case !cfg.Tracing.Enabled:
		opts = append(opts, instrument.WithTracerProvider(noop.NewTracerProvider()))
	case o.tracerProvider != nil:
		opts = append(opts, instrument.WithTracerProvider(o.tracerProvider))
	default:
		opts = append(opts, instrument.WithTracerProvider(otel.GetTracerProvider()))
	}

	return opts
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.Storage, error) {
	switch cfg.Backend {
	case config.BackendLocal, config.BackendMemory:
		perm, err := cfg.FileMode()
		if err != nil {
			return nil, err
		}
		opts := []billy.Option{billy.WithPermissions(perm), billy.WithLogger(logger)}
		if cfg.Backend == config.BackendMemory {
			return billy.NewMemory(opts...), nil
		}
		if err := os.MkdirAll(cfg.Local.Root, dirMode(perm)); err != nil {
			return nil, platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "create media root %s", cfg.Local.Root)
		}
		return billy.NewLocal(cfg.Local.Root, opts...), nil

	case config.BackendS3:
		var store core.ObjectStore = memory.New()
		if cfg.S3.Driver == config.DriverMinIO {
			m, err := minio.New(ctx, minioConfig(cfg.S3.MinIOConfig))
			if err != nil {
				return nil, err
			}
			store = m
		}
		return s3.New(store,
			s3.WithPrefix(cfg.S3.Prefix),
			s3.WithLogger(logger),
			s3.WithDeleteConcurrency(cfg.S3.DeleteConcurrency),
		), nil

	case config.BackendAzure:
		var store core.ObjectStore = memory.New()
		switch cfg.Azure.Driver {
		case config.DriverAzBlob:
			b, err := azblob.New(ctx, azblob.Config{
				ServiceURL:      cfg.Azure.ServiceURL,
				AccountName:     cfg.Azure.AccountName,
				AccountKey:      cfg.Azure.AccountKey,
				Container:       cfg.Azure.Container,
				CreateContainer: cfg.Azure.CreateContainer,
			})
			if err != nil {
				return nil, err
			}
			store = b
		case config.DriverMinIO:
			m, err := minio.New(ctx, minioConfig(cfg.Azure.MinIO))
			if err != nil {
				return nil, err
			}
			store = m
		}

		opts := []azure.Option{
			azure.WithPrefix(cfg.Azure.Prefix),
			azure.WithMarkerName(cfg.Azure.MarkerName),
			azure.WithLogger(logger),
			azure.WithDeleteConcurrency(cfg.Azure.DeleteConcurrency),
		}
		if cfg.Azure.TreeOperations {
			opts = append(opts, azure.WithTreeOperations())
		}
		return azure.New(store, opts...), nil
	}

	return nil, platformerrors.Newf(platformerrors.CodeInvalidConfig, "unknown backend %q", cfg.Backend)
}

func minioConfig(c config.MinIOConfig) minio.Config {
	return minio.Config{
		Endpoint:     c.Endpoint,
		Bucket:       c.Bucket,
		Region:       c.Region,
		AccessKey:    c.AccessKey,
		SecretKey:    c.SecretKey,
		UseSSL:       c.UseSSL,
		CreateBucket: c.CreateBucket,
	}
}

// dirMode makes sure the owner can always enter the media root.
func dirMode(perm fs.FileMode) fs.FileMode {
	return perm | 0o700
}
