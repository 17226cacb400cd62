// Package monitor drives the monitoring cycle: deciding per process
// whether a check fires, invoking the folder or query evaluator, and
// appending the outcome to the run history.
//
// The Engine evaluates all registered processes once per cycle, in tag
// order, isolating each process so a malformed configuration or evaluator
// failure becomes a recorded Failed outcome instead of aborting the
// cycle. Time-scheduled query checks fire at most once per calendar day.
//
// The Scheduler owns the background loop: it runs one cycle immediately
// on start, then repeats on a fixed interval until stopped. Stop is
// prompt; the inter-cycle sleep is interruptible.
package monitor
