package s3

import "log/slog"

// Option configures a Storage.
type Option func(*options)

type options struct {
	prefix            string
	logger            *slog.Logger
	deleteConcurrency int
}

// WithPrefix places every key under prefix, so the backend root maps to a
// "folder" inside the bucket.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
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

// WithDeleteConcurrency sets how many deletes RemoveTree may issue at once.
// The default of 1 deletes keys one after another.
func WithDeleteConcurrency(n int) Option {
	return func(o *options) {
		o.deleteConcurrency = max(1, n)
	}
}
