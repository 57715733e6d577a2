package receiver

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	logs "github.com/danmuck/tcpevents/internal/logging"
	"github.com/danmuck/tcpevents/internal/protocol/frame"
)

var errOutboxFull = errors.New("receiver: outbox full")

// conn is one accepted socket. The outbox is written and closed only by the
// loop goroutine.
type conn struct {
	id     string
	nc     net.Conn
	source string
	outbox chan string
}

func newConn(nc net.Conn, outboxSize int) *conn {
	return &conn{
		id:     uuid.NewString(),
		nc:     nc,
		source: sourceHost(nc.RemoteAddr()),
		outbox: make(chan string, outboxSize),
	}
}

// sourceHost is the address without its port, the form events carry.
func sourceHost(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// enqueue never blocks.
func (c *conn) enqueue(line string) error {
	select {
	case c.outbox <- line:
		return nil
	default:
		return errOutboxFull
	}
}

// writeLoop drains the outbox until it is closed or a write fails.
func (c *conn) writeLoop(timeout time.Duration) {
	for line := range c.outbox {
		if timeout > 0 {
			_ = c.nc.SetWriteDeadline(time.Now().Add(timeout))
		}
		if err := frame.WriteLine(c.nc, line); err != nil {
			logs.Warnf("receiver.conn write failed conn=%s err=%v", c.id, err)
			return
		}
	}
}

func isQuietClose(err error) bool {
	return err == nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
