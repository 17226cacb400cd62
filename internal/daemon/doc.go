// Package daemon wires the scheduler loop, monitoring store, and HTTP
// API into a long-running single-instance process. Instance exclusivity
// is enforced with a file lock in the data directory.
package daemon
