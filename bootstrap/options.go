package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/voicemap/logger"
)

// Option configures NewApp.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	summaryOut      io.Writer
}

func resolveOptions(opts []Option) appOptions {
	o := appOptions{gracefulTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger uses l instead of initializing the global logger from config.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds shutdown. Defaults to 15s.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		if d > 0 {
			o.gracefulTimeout = d
		}
	}
}

// WithSummaryOutput sends the startup summary to w instead of stdout.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) { o.summaryOut = w }
}
