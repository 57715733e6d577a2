// Package protocol owns the TCPEvents wire contract.
//
// Ownership boundary:
// - wire literals and command keywords
// - peer kinds negotiated by the handshake
// - error taxonomy shared by receiver and sender
//
// Subpackages:
// - frame: newline framing
// - literal: value encoding carried by payload/data/dataRequest/result
// - schema: Ready-state command grammar
// - session: handshake line exchange and timeouts
package protocol
