package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	logWriter io.Writer
	version   string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogWriter redirects structured logs; stdout is used by default.
// Stdio protocol servers must log elsewhere.
func WithLogWriter(w io.Writer) Option {
	return func(a *application) {
		a.logWriter = w
	}
}

// WithVersion sets the version reported to protocol clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}
