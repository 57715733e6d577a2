package host

import (
	"sync"

	logs "github.com/danmuck/tcpevents/internal/logging"
	"github.com/danmuck/tcpevents/internal/protocol/literal"
)

// LogDispatcher reports every event through the package logger.
type LogDispatcher struct{}

func (LogDispatcher) DispatchEvent(ev Event) {
	logs.Infof("host.event name=%q payload=%s source=%q", ev.String(), payloadText(ev), ev.Source)
}

func (LogDispatcher) DispatchEnduringEventStart(ev Event) {
	logs.Infof("host.event.start name=%q payload=%s source=%q", ev.String(), payloadText(ev), ev.Source)
}

func (LogDispatcher) DispatchEnduringEventEnd(ev Event) {
	logs.Infof("host.event.end name=%q", ev.String())
}

func payloadText(ev Event) string {
	if !ev.HasPayload {
		return "-"
	}
	return literal.Render(ev.Payload)
}

// CallKind distinguishes recorded dispatcher calls.
type CallKind string

const (
	CallEvent CallKind = "event"
	CallStart CallKind = "start"
	CallEnd   CallKind = "end"
)

// Call is one recorded dispatcher invocation.
type Call struct {
	Kind  CallKind
	Event Event
}

// Recorder keeps every dispatch in order and optionally forwards to Next.
type Recorder struct {
	Next Dispatcher

	mu     sync.Mutex
	calls  []Call
	notify chan struct{}
}

func NewRecorder(next Dispatcher) *Recorder {
	return &Recorder{Next: next, notify: make(chan struct{}, 1)}
}

func (r *Recorder) DispatchEvent(ev Event) {
	r.record(Call{Kind: CallEvent, Event: ev})
	if r.Next != nil {
		r.Next.DispatchEvent(ev)
	}
}

func (r *Recorder) DispatchEnduringEventStart(ev Event) {
	r.record(Call{Kind: CallStart, Event: ev})
	if r.Next != nil {
		r.Next.DispatchEnduringEventStart(ev)
	}
}

func (r *Recorder) DispatchEnduringEventEnd(ev Event) {
	r.record(Call{Kind: CallEnd, Event: ev})
	if r.Next != nil {
		r.Next.DispatchEnduringEventEnd(ev)
	}
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Changed fires after at least one new call has been recorded.
func (r *Recorder) Changed() <-chan struct{} {
	return r.notify
}
