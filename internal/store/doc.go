// Package store persists procwatch state in SQLite and exposes helpers
// for the monitored-process registry, the run history, the fatal-event
// log, and the notification recipient set.
//
// The Store manages database connections, schema initialization, and all
// statement execution. Check outcomes are append-only; the latest run for
// a tag is the row with the greatest run time, ties broken by insert
// order. Reasons persist as a JSON array of strings; rows with missing
// or malformed reasons decode to an empty list.
//
// Treat this package as the single source of truth for persistence
// semantics; schema changes bump the version in schema.go and require
// users to recreate the database.
package store
