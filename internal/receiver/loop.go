package receiver

import (
	"context"

	logs "github.com/danmuck/tcpevents/internal/logging"
	"github.com/danmuck/tcpevents/internal/protocol/frame"
)

type eventKind int

const (
	evOpen eventKind = iota
	evLine
	evClosed
)

type connEvent struct {
	kind eventKind
	conn *conn
	line string
	err  error
}

// post hands ev to the loop. It reports false once the loop has stopped.
func (s *Service) post(ev connEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.loopDone:
		return false
	}
}

// runLoop owns every handler. On cancellation each live connection is told to
// close and the loop exits.
func (s *Service) runLoop(ctx context.Context) {
	defer close(s.loopDone)
	live := make(map[*conn]*handler)
	for {
		select {
		case ev := <-s.events:
			h := live[ev.conn]
			switch ev.kind {
			case evOpen:
				h = newHandler(s, ev.conn)
				live[ev.conn] = h
			case evLine:
				if h == nil {
					continue
				}
				h.handleLine(ev.line)
			case evClosed:
				if h == nil {
					continue
				}
				h.transportClosed(ev.err)
			}
			if h != nil && h.closed() {
				delete(live, ev.conn)
			}
		case <-ctx.Done():
			logs.Debugf("receiver.loop stopping live=%d", len(live))
			for c, h := range live {
				h.shutdown()
				delete(live, c)
			}
			return
		}
	}
}

// readConn frames lines off the socket and posts them to the loop.
func (s *Service) readConn(c *conn) {
	lr := frame.NewLineReader(c.nc, s.cfg.Limits)
	for {
		line, err := lr.ReadLine()
		if err != nil {
			s.post(connEvent{kind: evClosed, conn: c, err: err})
			return
		}
		if !s.post(connEvent{kind: evLine, conn: c, line: line}) {
			return
		}
	}
}
