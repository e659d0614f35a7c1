// Package logging builds the zap loggers used across tabula.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// New returns a production logger, or a development logger when debug is set.
// With a non-empty path the logger writes to that file instead of stderr,
// which keeps the terminal UI clean.
func New(debug bool, path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}

	return cfg.Build()
}
