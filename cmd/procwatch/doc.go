// Package main hosts the procwatch CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the foreground daemon, report
// rendering, registry maintenance (tags, folders, recipients), fatal
// event inspection, the notification email, and configuration
// scaffolding. Registry and report commands operate directly on the
// shared SQLite store; only `status` talks to a running daemon.
package main
