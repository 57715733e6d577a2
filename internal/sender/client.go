package sender

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logs "github.com/danmuck/tcpevents/internal/logging"
	"github.com/danmuck/tcpevents/internal/observability"
	"github.com/danmuck/tcpevents/internal/protocol"
	"github.com/danmuck/tcpevents/internal/protocol/literal"
)

var ErrInvalidRequest = errors.New("sender: invalid request")

// EventRequest fires Prefix.Suffix on the receiver.
type EventRequest struct {
	Destination
	Prefix     string
	Suffix     string
	Payload    any
	HasPayload bool
}

// EventResult reports what was sent.
type EventResult struct {
	Event      string
	Payload    any
	HasPayload bool
	Peer       protocol.PeerKind
}

// DataRequest stores Value under Name on the receiver.
type DataRequest struct {
	Destination
	Name  string
	Value any
}

// ExpressionRequest asks the receiver to evaluate Expression.
type ExpressionRequest struct {
	Destination
	Expression string
}

type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg.WithDefaults()}
}

// SendEvent sends the optional payload, the event line and close. Legacy
// receivers get neither a prefix nor a decoded payload.
func (c *Client) SendEvent(ctx context.Context, req EventRequest) (res EventResult, err error) {
	start := time.Now()
	peer := "unknown"
	defer func() { c.record("send_event", peer, start, err) }()

	if err := checkLine(req.Prefix, req.Suffix); err != nil {
		return EventResult{}, err
	}
	var wrapped string
	if req.HasPayload {
		if wrapped, err = literal.EncodeWrapped(req.Payload); err != nil {
			return EventResult{}, err
		}
	}

	x, err := c.open(ctx, req.Destination)
	if err != nil {
		return EventResult{}, err
	}
	defer x.close()
	peer = x.peer.String()

	event := req.Suffix
	if x.peer == protocol.PeerFull && req.Prefix != "" {
		event = req.Prefix + "." + req.Suffix
	}
	var lines []string
	if req.HasPayload {
		if x.peer == protocol.PeerFull {
			lines = append(lines, protocol.CmdPayload+wrapped)
		} else {
			lines = append(lines, protocol.CmdPayload+literal.Render(req.Payload))
		}
	}
	lines = append(lines, event, protocol.CmdClose)
	if err := x.send(lines...); err != nil {
		return EventResult{}, err
	}
	logs.Debugf("sender.SendEvent event=%q peer=%s", event, x.peer)
	return EventResult{Event: event, Payload: req.Payload, HasPayload: req.HasPayload, Peer: x.peer}, nil
}

// SendData stores a named value. Legacy receivers see a SendData event whose
// payload carries the name and the rendered value.
func (c *Client) SendData(ctx context.Context, req DataRequest) (err error) {
	start := time.Now()
	peer := "unknown"
	defer func() { c.record("send_data", peer, start, err) }()

	if err := checkLine(req.Name); err != nil {
		return err
	}
	wrapped, err := literal.EncodeWrapped(req.Value)
	if err != nil {
		return err
	}

	x, err := c.open(ctx, req.Destination)
	if err != nil {
		return err
	}
	defer x.close()
	peer = x.peer.String()

	if x.peer == protocol.PeerFull {
		return x.send(
			protocol.CmdDataName+req.Name,
			protocol.CmdData+wrapped,
			protocol.CmdClose,
		)
	}
	logs.Warnf("sender.SendData receiver is legacy, sending as payload name=%q", req.Name)
	return x.send(
		protocol.CmdPayload+req.Name,
		protocol.CmdPayload+literal.Render(req.Value),
		protocol.CmdPayload+protocol.WithoutRelease,
		protocol.LegacySendDataEvent,
		protocol.CmdClose,
	)
}

// RequestData evaluates an expression on the receiver. found is false when
// the receiver is legacy and cannot answer.
func (c *Client) RequestData(ctx context.Context, req ExpressionRequest) (value any, found bool, err error) {
	start := time.Now()
	peer := "unknown"
	defer func() { c.record("request_data", peer, start, err) }()

	if err := checkLine(req.Expression); err != nil {
		return nil, false, err
	}
	wrapped, err := literal.EncodeWrapped(req.Expression)
	if err != nil {
		return nil, false, err
	}

	x, err := c.open(ctx, req.Destination)
	if err != nil {
		return nil, false, err
	}
	defer x.close()
	peer = x.peer.String()

	if x.peer != protocol.PeerFull {
		logs.Warnf("sender.RequestData receiver is legacy, sending as payload")
		err := x.send(
			protocol.CmdPayload+req.Expression,
			protocol.CmdPayload+protocol.WithoutRelease,
			protocol.LegacyRequestDataEvent,
			protocol.CmdClose,
		)
		return nil, false, err
	}

	if err := x.send(protocol.CmdDataRequest + wrapped); err != nil {
		return nil, false, err
	}
	answer, readErr := x.lr.ReadLineWithin(c.cfg.Session.MaxResponseReads)
	closed := answer == protocol.CmdClose
	if readErr == nil && !closed && x.lr.Buffered() {
		if next, err := x.lr.ReadLine(); err == nil && next == protocol.CmdClose {
			closed = true
		}
	}
	if !closed {
		_ = x.send(protocol.CmdClose)
	}
	if readErr != nil {
		return nil, false, fmt.Errorf("%w: %v", protocol.ErrNoResult, readErr)
	}

	answer = strings.TrimSpace(answer)
	encoded, ok := strings.CutPrefix(answer, protocol.CmdResult)
	if !ok {
		return nil, false, fmt.Errorf("%w: answer %q", protocol.ErrNoResult, answer)
	}
	value, err = literal.DecodeWrapped(encoded)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *Client) record(op, peer string, start time.Time, err error) {
	observability.RecordClientSend(op, peer, time.Since(start), err == nil)
	if err != nil {
		logs.Warnf("sender.%s failed peer=%s err=%v", op, peer, err)
	}
}

// checkLine rejects values that would split into several protocol lines.
func checkLine(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("%w: %q contains a line break", ErrInvalidRequest, v)
		}
	}
	return nil
}
