// Package logging builds the slog loggers used across procwatch.
//
// It provides a console handler with aligned key=value output, a JSON
// handler for machine-readable logs, typed attribute helpers, and
// component loggers carrying a standardized component field. Tests use
// NewNop to silence output.
package logging
