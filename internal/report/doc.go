// Package report joins the latest recorded run and the fatal-event log
// for every registered tag into presentation-ready status rows. Rows are
// derived purely from stored state, never from live filesystem or query
// checks.
package report
