package cmd

import (
	"github.com/conneroisu/pagekit/internal/config"
	"github.com/conneroisu/pagekit/internal/logging"
)

// newLogger builds the process logger from the logging config section.
func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
	})
}
