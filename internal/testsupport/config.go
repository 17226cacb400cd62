package testsupport

import (
	"path/filepath"
	"testing"

	"procwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DBPath = filepath.Join(base, "data", "procwatch.db")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.SMTP.Host = ""
	cfg.Monitor.CycleInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithCycleInterval overrides the scheduler interval on the test config.
func WithCycleInterval(seconds int) ConfigOption {
	return func(c *config.Config) {
		c.Monitor.CycleInterval = seconds
	}
}

// WithSMTP points the mail transport at a test server.
func WithSMTP(host string, port int, sender string) ConfigOption {
	return func(c *config.Config) {
		c.SMTP.Host = host
		c.SMTP.Port = port
		c.SMTP.Sender = sender
	}
}
