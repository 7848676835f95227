package billy

import (
	"io/fs"
	"log/slog"

	"github.com/jmgilman/go/storage/core"
)

// Option configures a Storage.
type Option func(*options)

type options struct {
	perm   fs.FileMode
	logger *slog.Logger
}

func defaultOptions() options {
	return options{
		perm:   core.DefaultPermissions,
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithPermissions sets the mode applied by SetPermissions and used for
// directories created by MakeDirectories. Defaults to core.DefaultPermissions.
func WithPermissions(perm fs.FileMode) Option {
	return func(o *options) {
		o.perm = perm.Perm()
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
