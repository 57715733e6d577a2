// Package store holds the state shared by every receiver connection: the
// named data table and the single outstanding enduring event.
//
// Event dispatch and the enduring slot are serialized by one dispatch lock so
// that two connections never interleave a prefix resolution with the other's
// dispatch. Named data has its own read/write lock.
package store

import (
	"sort"
	"sync"

	"github.com/danmuck/tcpevents/internal/host"
	logs "github.com/danmuck/tcpevents/internal/logging"
)

type Store struct {
	dataMu sync.RWMutex
	data   map[string]any

	dispatchMu sync.Mutex
	dispatcher host.Dispatcher
	enduring   *host.Event
}

// New returns an empty store dispatching to d. A nil dispatcher logs events.
func New(d host.Dispatcher) *Store {
	if d == nil {
		d = host.LogDispatcher{}
	}
	return &Store{
		data:       make(map[string]any),
		dispatcher: d,
	}
}

func (s *Store) Put(name string, v any) {
	s.dataMu.Lock()
	s.data[name] = v
	s.dataMu.Unlock()
	logs.Debugf("store.Put name=%q", name)
}

func (s *Store) Get(name string) (any, bool) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	v, ok := s.data[name]
	return v, ok
}

// Names returns the stored names in sorted order.
func (s *Store) Names() []string {
	s.dataMu.RLock()
	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	s.dataMu.RUnlock()
	sort.Strings(names)
	return names
}

func (s *Store) Len() int {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return len(s.data)
}

// Dispatch runs fn while holding the dispatch lock. fn must not call back
// into the Store's locking methods; use the Tx instead.
func (s *Store) Dispatch(fn func(tx *Tx)) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	fn(&Tx{s: s})
}

// Trigger dispatches a single-shot event under the dispatch lock.
func (s *Store) Trigger(ev host.Event) {
	s.Dispatch(func(tx *Tx) { tx.Trigger(ev) })
}

// StartEnduring opens ev as the outstanding enduring event.
func (s *Store) StartEnduring(ev host.Event) {
	s.Dispatch(func(tx *Tx) { tx.StartEnduring(ev) })
}

// EndEnduring ends the outstanding enduring event, if any, and reports
// whether one was open.
func (s *Store) EndEnduring() bool {
	var ended bool
	s.Dispatch(func(tx *Tx) { ended = tx.EndEnduring() })
	return ended
}

// Enduring returns the outstanding enduring event.
func (s *Store) Enduring() (host.Event, bool) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	if s.enduring == nil {
		return host.Event{}, false
	}
	return *s.enduring, true
}

// Tx is the view of the store available inside Dispatch.
type Tx struct {
	s *Store
}

// Trigger ends any outstanding enduring event and dispatches ev once.
func (tx *Tx) Trigger(ev host.Event) {
	tx.EndEnduring()
	tx.s.dispatcher.DispatchEvent(ev)
}

// StartEnduring ends any outstanding enduring event and opens ev.
func (tx *Tx) StartEnduring(ev host.Event) {
	tx.EndEnduring()
	tx.s.dispatcher.DispatchEnduringEventStart(ev)
	open := ev
	tx.s.enduring = &open
}

func (tx *Tx) EndEnduring() bool {
	if tx.s.enduring == nil {
		return false
	}
	ev := *tx.s.enduring
	tx.s.enduring = nil
	tx.s.dispatcher.DispatchEnduringEventEnd(ev)
	return true
}
