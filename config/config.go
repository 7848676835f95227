// Package config loads the storage configuration from YAML and the environment.
package config

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	platformerrors "github.com/jmgilman/go/errors"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendS3     = "s3"
	BackendAzure  = "azure"
)

// Driver names for the flat backends.
const (
	DriverMinIO  = "minio"
	DriverAzBlob = "azblob"
	DriverMemory = "memory"
)

// Config selects and configures the storage backend.
type Config struct {
	Backend     string        `yaml:"backend"`     // local, memory, s3 or azure
	Permissions string        `yaml:"permissions"` // octal mode, e.g. "0755"
	Local       LocalConfig   `yaml:"local"`
	S3          S3Config      `yaml:"s3"`
	Azure       AzureConfig   `yaml:"azure"`
	Log         LogConfig     `yaml:"log"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Tracing     TracingConfig `yaml:"tracing"`
}

// LocalConfig configures the local hierarchical backend.
type LocalConfig struct {
	Root string `yaml:"root"` // media root on the host
}

// MinIOConfig holds the connection settings of an S3-compatible server.
type MinIOConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	UseSSL       bool   `yaml:"use_ssl"`
	CreateBucket bool   `yaml:"create_bucket"`
}

// S3Config configures the flat-listing backend and its driver.
type S3Config struct {
	Driver            string `yaml:"driver"` // minio or memory
	MinIOConfig       `yaml:",inline"`
	Prefix            string `yaml:"prefix"`
	DeleteConcurrency int    `yaml:"delete_concurrency"`
}

// AzureConfig configures the flat-marker backend and its driver.
type AzureConfig struct {
	Driver            string      `yaml:"driver"` // azblob, minio or memory
	ServiceURL        string      `yaml:"service_url"`
	AccountName       string      `yaml:"account_name"`
	AccountKey        string      `yaml:"account_key"`
	Container         string      `yaml:"container"`
	CreateContainer   bool        `yaml:"create_container"`
	MinIO             MinIOConfig `yaml:"minio"`
	Prefix            string      `yaml:"prefix"`
	MarkerName        string      `yaml:"marker_name"`
	TreeOperations    bool        `yaml:"tree_operations"`
	DeleteConcurrency int         `yaml:"delete_concurrency"`
}

// LogConfig controls the logger built by NewLogger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // text or json
}

// MetricsConfig toggles Prometheus operation metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig toggles OpenTelemetry spans.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Backend:     BackendLocal,
		Permissions: "0755",
		Local: LocalConfig{
			Root: "data/media",
		},
		S3: S3Config{
			Driver: DriverMinIO,
			MinIOConfig: MinIOConfig{
				Endpoint: "localhost:9000",
				Bucket:   "media",
			},
			DeleteConcurrency: 1,
		},
		Azure: AzureConfig{
			Driver:            DriverAzBlob,
			Container:         "media",
			MarkerName:        "dir.azr",
			DeleteConcurrency: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads the YAML file at path, if any, over the defaults and then
// applies STORAGE_* environment overrides. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "parse config")
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Backend, "STORAGE_BACKEND")
	setString(&cfg.Permissions, "STORAGE_PERMISSIONS")
	setString(&cfg.Local.Root, "STORAGE_LOCAL_ROOT")

	setString(&cfg.S3.Driver, "STORAGE_S3_DRIVER")
	applyMinIOEnv(&cfg.S3.MinIOConfig, "STORAGE_S3_")
	setString(&cfg.S3.Prefix, "STORAGE_S3_PREFIX")
	setInt(&cfg.S3.DeleteConcurrency, "STORAGE_S3_DELETE_CONCURRENCY")

	setString(&cfg.Azure.Driver, "STORAGE_AZURE_DRIVER")
	setString(&cfg.Azure.ServiceURL, "STORAGE_AZURE_SERVICE_URL")
	setString(&cfg.Azure.AccountName, "STORAGE_AZURE_ACCOUNT_NAME")
	setString(&cfg.Azure.AccountKey, "STORAGE_AZURE_ACCOUNT_KEY")
	setString(&cfg.Azure.Container, "STORAGE_AZURE_CONTAINER")
	setBool(&cfg.Azure.CreateContainer, "STORAGE_AZURE_CREATE_CONTAINER")
	applyMinIOEnv(&cfg.Azure.MinIO, "STORAGE_AZURE_MINIO_")
	setString(&cfg.Azure.Prefix, "STORAGE_AZURE_PREFIX")
	setString(&cfg.Azure.MarkerName, "STORAGE_AZURE_MARKER_NAME")
	setBool(&cfg.Azure.TreeOperations, "STORAGE_AZURE_TREE_OPERATIONS")
	setInt(&cfg.Azure.DeleteConcurrency, "STORAGE_AZURE_DELETE_CONCURRENCY")

	setString(&cfg.Log.Level, "STORAGE_LOG_LEVEL")
	setString(&cfg.Log.Format, "STORAGE_LOG_FORMAT")
	setBool(&cfg.Metrics.Enabled, "STORAGE_METRICS_ENABLED")
	setBool(&cfg.Tracing.Enabled, "STORAGE_TRACING_ENABLED")
}

func applyMinIOEnv(cfg *MinIOConfig, prefix string) {
	setString(&cfg.Endpoint, prefix+"ENDPOINT")
	setString(&cfg.Bucket, prefix+"BUCKET")
	setString(&cfg.Region, prefix+"REGION")
	setString(&cfg.AccessKey, prefix+"ACCESS_KEY")
	setString(&cfg.SecretKey, prefix+"SECRET_KEY")
	setBool(&cfg.UseSSL, prefix+"USE_SSL")
	setBool(&cfg.CreateBucket, prefix+"CREATE_BUCKET")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

// FileMode parses Permissions as an octal mode.
func (c *Config) FileMode() (fs.FileMode, error) {
	mode, err := strconv.ParseUint(strings.TrimPrefix(c.Permissions, "0o"), 8, 32)
	if err != nil || mode > 0o777 {
		return 0, platformerrors.Newf(platformerrors.CodeInvalidConfig,
			"permissions must be an octal mode between 0000 and 0777, got %q", c.Permissions)
	}
	return fs.FileMode(mode), nil
}

// Validate checks that the selected backend and its driver are fully configured.
func (c *Config) Validate() error {
	if c == nil {
		return platformerrors.New(platformerrors.CodeInvalidConfig, "config is required")
	}

	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if _, err := c.FileMode(); err != nil {
		fail("permissions must be an octal mode, got %q", c.Permissions)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		fail("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		fail("log.format %q is not one of text, json", f)
	}

	switch c.Backend {
	case BackendLocal:
		if c.Local.Root == "" {
			fail("local.root must be configured")
		}
	case BackendMemory:
	case BackendS3:
		switch c.S3.Driver {
		case DriverMinIO:
			validateMinIO(c.S3.MinIOConfig, "s3", fail)
		case DriverMemory:
		default:
			fail("s3.driver %q is not one of minio, memory", c.S3.Driver)
		}
	case BackendAzure:
		switch c.Azure.Driver {
		case DriverAzBlob:
			if c.Azure.Container == "" {
				fail("azure.container must be configured")
			}
			if c.Azure.ServiceURL == "" && c.Azure.AccountName == "" {
				fail("azure.service_url or azure.account_name must be configured")
			}
		case DriverMinIO:
			validateMinIO(c.Azure.MinIO, "azure.minio", fail)
		case DriverMemory:
		default:
			fail("azure.driver %q is not one of azblob, minio, memory", c.Azure.Driver)
		}
	default:
		fail("backend %q is not one of local, memory, s3, azure", c.Backend)
	}

	if len(problems) > 0 {
		return platformerrors.WrapWithContext(
			fmt.Errorf("%s", strings.Join(problems, "; ")),
			platformerrors.CodeInvalidConfig,
			"invalid storage configuration",
			map[string]interface{}{"backend": c.Backend},
		)
	}
	return nil
}

func validateMinIO(cfg MinIOConfig, section string, fail func(string, ...any)) {
	if cfg.Endpoint == "" {
		fail("%s.endpoint must be configured", section)
	}
	if cfg.Bucket == "" {
		fail("%s.bucket must be configured", section)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// NewLogger builds a logger writing to w in the configured format and level.
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "log level %q", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, platformerrors.Newf(platformerrors.CodeInvalidConfig, "log format %q", cfg.Format)
	}
}
