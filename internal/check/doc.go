// Package check evaluates the health probes procwatch runs against
// monitored processes: marker-file inspection of a drop folder and a
// row-existence probe against the monitoring database.
//
// Evaluators never return errors. Every failure mode, including I/O
// problems, is folded into an explicit Result carrying a human-readable
// reason so one broken check cannot abort a monitoring cycle.
package check
