// Package receiver accepts TCPEvents connections and runs the per-connection
// command state machine.
//
// Every connection gets a reader goroutine that frames lines and a writer
// goroutine that drains a bounded outbox. Handler state lives on a single loop
// goroutine, which consumes lines from all connections in arrival order. The
// loop never blocks on a peer: a full outbox closes that connection.
package receiver
