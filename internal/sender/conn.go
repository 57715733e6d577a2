package sender

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/danmuck/tcpevents/internal/protocol"
	"github.com/danmuck/tcpevents/internal/protocol/frame"
	"github.com/danmuck/tcpevents/internal/protocol/session"
)

// deadlineConn bounds every Read and Write by the communication timeout.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c deadlineConn) Read(p []byte) (int, error) {
	_ = c.Conn.SetReadDeadline(time.Now().Add(c.timeout))
	return c.Conn.Read(p)
}

func (c deadlineConn) Write(p []byte) (int, error) {
	_ = c.Conn.SetWriteDeadline(time.Now().Add(c.timeout))
	return c.Conn.Write(p)
}

// exchange is one authenticated connection.
type exchange struct {
	conn deadlineConn
	lr   *frame.LineReader
	peer protocol.PeerKind
}

// open dials dest and runs the handshake.
func (c *Client) open(ctx context.Context, dest Destination) (*exchange, error) {
	addr, err := dest.hostPort(c.cfg.DefaultPort)
	if err != nil {
		return nil, err
	}
	dialer := net.Dialer{Timeout: pickTimeout(dest.ConnectTimeout, c.cfg.Session.ConnectTimeout)}
	nc, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", protocol.ErrTransport, addr, err)
	}
	conn := deadlineConn{
		Conn:    nc,
		timeout: pickTimeout(dest.CommunicationTimeout, c.cfg.Session.CommunicationTimeout),
	}
	lr := frame.NewLineReader(conn, c.cfg.Session.Limits)
	peer, err := session.Handshake(conn, lr, dest.Password)
	if err != nil {
		_ = nc.Close()
		return nil, err
	}
	return &exchange{conn: conn, lr: lr, peer: peer}, nil
}

func (x *exchange) send(lines ...string) error {
	for _, line := range lines {
		if err := frame.WriteLine(x.conn, line); err != nil {
			if errors.Is(err, frame.ErrEmbeddedNewline) {
				return fmt.Errorf("%w: line %q", err, line)
			}
			return fmt.Errorf("%w: write: %v", protocol.ErrTransport, err)
		}
	}
	return nil
}

func (x *exchange) close() {
	_ = x.conn.Close()
}
