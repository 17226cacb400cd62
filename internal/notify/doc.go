// Package notify delivers the on-demand failure digest email. Delivery
// is synchronous and never retried; a transport failure is returned to
// the caller. When no SMTP host is configured a noop implementation is
// used so the rest of the system works without a mail relay.
package notify
