package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMarkers(); err != nil {
		return err
	}
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateSMTP(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateMarkers() error {
	for name, value := range map[string]string{
		"markers.success_file": c.Markers.SuccessFile,
		"markers.failure_file": c.Markers.FailureFile,
		"markers.uc4_file":     c.Markers.UC4File,
	} {
		if value == "" {
			return fmt.Errorf("%s must be set", name)
		}
		if strings.ContainsAny(value, "/\\") {
			return fmt.Errorf("%s must be a bare file name, got %q", name, value)
		}
	}
	return nil
}

func (c *Config) validateMonitor() error {
	if c.Monitor.CycleInterval <= 0 {
		return errors.New("monitor.cycle_interval must be positive")
	}
	return nil
}

func (c *Config) validateSMTP() error {
	if c.SMTP.Host == "" {
		// Mail is optional; the notify service degrades to a noop.
		return nil
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port must be between 1 and 65535, got %d", c.SMTP.Port)
	}
	if c.SMTP.Sender == "" {
		return errors.New("smtp.sender must be set when smtp.host is configured")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
