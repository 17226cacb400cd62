// Package config loads, normalizes, and validates procwatch configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PROCWATCH_DB_PATH. The Config type centralizes every knob the daemon and
// CLI need: data/log directories, marker file names, the monitoring cycle
// interval, SMTP settings, and the API bind address.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
