// Package host defines the capabilities the protocol engine borrows from its
// embedding application: expression evaluation and event dispatch.
package host

import "strings"

// Event is one dispatched event. Prefix is already resolved against the
// receiver default.
type Event struct {
	Prefix     string
	Name       string
	Payload    any
	HasPayload bool
	Source     string
}

// String renders the event the way the embedding host names it.
func (e Event) String() string {
	if strings.TrimSpace(e.Prefix) == "" {
		return e.Name
	}
	return e.Prefix + "." + e.Name
}

// Evaluator turns an expression into a value.
type Evaluator interface {
	Evaluate(expression string) (any, error)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(expression string) (any, error)

func (f EvaluatorFunc) Evaluate(expression string) (any, error) {
	return f(expression)
}

// Dispatcher delivers events to the host. Enduring events stay open until
// DispatchEnduringEventEnd is called for them.
type Dispatcher interface {
	DispatchEvent(ev Event)
	DispatchEnduringEventStart(ev Event)
	DispatchEnduringEventEnd(ev Event)
}
