package receiver

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/danmuck/tcpevents/internal/host"
	logs "github.com/danmuck/tcpevents/internal/logging"
	"github.com/danmuck/tcpevents/internal/observability"
	"github.com/danmuck/tcpevents/internal/store"
)

var ErrAlreadyServing = errors.New("receiver: service already serving")

// Options carries the host capabilities. Nil fields fall back to the
// expr-lang evaluator and the log dispatcher.
type Options struct {
	Evaluator  host.Evaluator
	Dispatcher host.Dispatcher
}

// Service is one TCPEvents receiver.
type Service struct {
	cfg   Config
	store *store.Store
	eval  host.Evaluator

	serving  atomic.Bool
	events   chan connEvent
	loopDone chan struct{}

	wg     sync.WaitGroup
	active atomic.Int64
}

func NewService(cfg Config, opts Options) *Service {
	cfg = cfg.WithDefaults()
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = host.LogDispatcher{}
	}
	eval := opts.Evaluator
	if eval == nil {
		eval = host.NewExprEvaluator(nil)
	}
	return &Service{
		cfg:      cfg,
		store:    store.New(countingDispatcher{node: cfg.Node, next: dispatcher}),
		eval:     eval,
		events:   make(chan connEvent),
		loopDone: make(chan struct{}),
	}
}

func (s *Service) Config() Config {
	return s.cfg
}

// Store exposes the shared data table and enduring slot.
func (s *Service) Store() *store.Store {
	return s.store
}

// GetData returns the value stored under name.
func (s *Service) GetData(name string) (any, bool) {
	return s.store.Get(name)
}

// ActiveConnections reports the number of open sockets.
func (s *Service) ActiveConnections() int64 {
	return s.active.Load()
}

// Run listens on the configured address and serves until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	logs.Infof("receiver.Service.Run listening addr=%q auth=%t", ln.Addr().String(), s.cfg.Password != "")
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or Accept fails.
// Every open connection is sent "close" and torn down before Serve returns.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	if !s.serving.CompareAndSwap(false, true) {
		return ErrAlreadyServing
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer ln.Close()

	go s.runLoop(ctx)
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	var serveErr error
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				serveErr = err
			}
			break
		}
		s.startConn(nc)
	}

	cancel()
	<-s.loopDone
	s.wg.Wait()
	return serveErr
}

func (s *Service) startConn(nc net.Conn) {
	c := newConn(nc, s.cfg.OutboxSize)
	s.wg.Add(1)
	go s.runConn(c)
}

// runConn registers c with the loop, reads on a second goroutine, and
// writes on this one until the loop closes the outbox.
func (s *Service) runConn(c *conn) {
	defer s.wg.Done()

	active := s.active.Add(1)
	observability.RecordConnectionOpened(s.cfg.Node)
	logs.Infof("receiver.conn connected conn=%s remote=%q active=%d", c.id, c.nc.RemoteAddr(), active)
	defer func() {
		remaining := s.active.Add(-1)
		observability.RecordConnectionClosed(s.cfg.Node)
		logs.Infof("receiver.conn disconnected conn=%s active=%d", c.id, remaining)
	}()

	if !s.post(connEvent{kind: evOpen, conn: c}) {
		_ = c.nc.Close()
		return
	}
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		s.readConn(c)
	}()
	c.writeLoop(s.cfg.WriteTimeout)
	_ = c.nc.Close()
	<-readerDone
}

// countingDispatcher records event metrics before forwarding.
type countingDispatcher struct {
	node string
	next host.Dispatcher
}

func (d countingDispatcher) DispatchEvent(ev host.Event) {
	observability.RecordEvent(d.node, "single")
	d.next.DispatchEvent(ev)
}

func (d countingDispatcher) DispatchEnduringEventStart(ev host.Event) {
	observability.RecordEvent(d.node, "start")
	d.next.DispatchEnduringEventStart(ev)
}

func (d countingDispatcher) DispatchEnduringEventEnd(ev host.Event) {
	observability.RecordEvent(d.node, "end")
	d.next.DispatchEnduringEventEnd(ev)
}
