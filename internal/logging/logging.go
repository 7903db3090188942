// Package logging wires a single shared zap logger used by `mq serve`, the
// query server, and the `log` built-in. The shared logger defaults to a
// no-op logger so a library consumer never pays for logging it didn't ask
// for.
package logging

import "go.uber.org/zap"

var current = zap.NewNop().Sugar()

// Set installs logger as the process-wide default. Called once during CLI
// or server startup; never called from evaluation itself.
func Set(logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	current = logger
}

// Get returns the currently installed logger.
func Get() *zap.SugaredLogger {
	return current
}

// NewDevelopment builds a human-readable, colorized-by-terminal development
// logger, the shape `mq serve --verbose` installs.
func NewDevelopment() (*zap.SugaredLogger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// NewProduction builds a JSON-structured logger, the shape the query server
// installs by default.
func NewProduction() (*zap.SugaredLogger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
