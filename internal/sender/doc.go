// Package sender is the outbound side of TCPEvents: one connection per call,
// handshake when a password is set, then a fixed command sequence.
//
// Calls block until the exchange finishes or a timeout fires. Failures are
// returned to the caller and never retried.
package sender
