package azure

import "log/slog"

// DefaultMarkerName is the name of the marker object MakeDirectories writes.
const DefaultMarkerName = "dir.azr"

// Option configures a Storage.
type Option func(*options)

type options struct {
	prefix            string
	markerName        string
	treeOps           bool
	logger            *slog.Logger
	deleteConcurrency int
}

// WithPrefix places every key under prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithMarkerName overrides DefaultMarkerName. Empty names are ignored.
func WithMarkerName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.markerName = name
		}
	}
}

// WithTreeOperations enables Move and RemoveTree. Without it both return
// core.ErrUnsupported.
func WithTreeOperations() Option {
	return func(o *options) {
		o.treeOps = true
	}
}

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDeleteConcurrency sets how many deletes RemoveTree may issue at once
// when tree operations are enabled.
func WithDeleteConcurrency(n int) Option {
	return func(o *options) {
		o.deleteConcurrency = max(1, n)
	}
}
