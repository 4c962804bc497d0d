// internal/observability/logger.go
package observability

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/config"
)

const serviceName = "ecommerce-api"

// NewLogger builds the process logger. Entries carry the service, environment,
// hostname and version fields.
func NewLogger(cfg *config.Config, out io.Writer) *logrus.Entry {
	logger := logrus.New()
	if out == nil {
		out = os.Stdout
	}
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	hostname, _ := os.Hostname()
	return logger.WithFields(logrus.Fields{
		"service":     serviceName,
		"environment": cfg.Environment,
		"hostname":    hostname,
		"version":     cfg.Version,
	})
}

// NewNopLogger discards everything; used by tests.
func NewNopLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
