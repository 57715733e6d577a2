// Package session owns the TCPEvents connection preamble.
//
// Ownership boundary:
// - connect/communication timeout defaults
// - sender side of the cookie/digest handshake
// - classification of the receiver's acceptance line
//
// The receiver side runs inside the receiver event loop as a state machine
// built on auth.Challenge.
package session
