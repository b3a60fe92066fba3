// Package notifications pushes job outcomes to ntfy.
//
// NewService returns a noop implementation when no topic is configured, so
// callers never need to check whether notifications are enabled.
package notifications
