package receiver

import (
	"errors"
	"fmt"

	"github.com/danmuck/tcpevents/internal/auth"
	"github.com/danmuck/tcpevents/internal/host"
	logs "github.com/danmuck/tcpevents/internal/logging"
	"github.com/danmuck/tcpevents/internal/observability"
	"github.com/danmuck/tcpevents/internal/protocol"
	"github.com/danmuck/tcpevents/internal/protocol/literal"
	"github.com/danmuck/tcpevents/internal/protocol/schema"
	"github.com/danmuck/tcpevents/internal/store"
)

// State is the handshake/command phase of one connection.
type State int

const (
	StateAwaitingWake State = iota
	StateAwaitingDigest
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingWake:
		return "awaiting_wake"
	case StateAwaitingDigest:
		return "awaiting_digest"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// handler is confined to the loop goroutine.
type handler struct {
	svc *Service
	c   *conn

	state       State
	peer        protocol.PeerKind
	challenge   auth.Challenge
	payload     []any
	pendingName string
}

func newHandler(svc *Service, c *conn) *handler {
	h := &handler{svc: svc, c: c}
	if svc.cfg.Password == "" {
		h.state = StateReady
		h.peer = protocol.PeerFull
	} else {
		h.state = StateAwaitingWake
		h.peer = protocol.PeerLegacy
		h.challenge = auth.NewChallenge(svc.cfg.Password, svc.cfg.CookieSource)
	}
	h.resetPayload()
	logs.Debugf("receiver.handler open conn=%s source=%q state=%s", c.id, c.source, h.state)
	return h
}

func (h *handler) closed() bool {
	return h.state == StateClosed
}

func (h *handler) handleLine(line string) {
	switch h.state {
	case StateAwaitingWake:
		h.onWake(line)
	case StateAwaitingDigest:
		h.onDigest(line)
	case StateReady:
		h.onCommand(line)
	}
}

func (h *handler) onWake(line string) {
	if line != protocol.WakeLiteral {
		logs.Warnf("receiver.handler unexpected wake conn=%s line=%q", h.c.id, line)
		h.initiateClose()
		return
	}
	h.state = StateAwaitingDigest
	h.send(h.challenge.Cookie)
}

func (h *handler) onDigest(line string) {
	peer, err := h.challenge.Verify(line)
	switch {
	case errors.Is(err, auth.ErrEmptyResponse):
		return
	case err != nil:
		logs.Warnf("receiver.handler conn=%s source=%q err=%v", h.c.id, h.c.source, err)
		observability.RecordHandshake(h.svc.cfg.Node, "rejected")
		h.initiateClose()
		return
	}
	h.peer = peer
	h.state = StateReady
	observability.RecordHandshake(h.svc.cfg.Node, peer.String())
	logs.Infof("receiver.handler accepted conn=%s source=%q peer=%s", h.c.id, h.c.source, peer)
	h.send(protocol.AcceptLine)
}

func (h *handler) onCommand(line string) {
	cmd := schema.Parse(line, h.peer)
	observability.RecordCommand(h.svc.cfg.Node, cmd.Kind.String(), h.peer.String())
	switch cmd.Kind {
	case schema.KindClose:
		h.initiateClose()
	case schema.KindPayload:
		h.appendPayload(cmd.Arg)
	case schema.KindDataRequest:
		h.answerDataRequest(cmd.Arg)
	case schema.KindDataName:
		h.pendingName = cmd.Arg
	case schema.KindData:
		h.storeData(cmd.Arg)
	case schema.KindButtonReleased:
		h.svc.store.EndEnduring()
		h.resetPayload()
	default:
		h.dispatchEvent(cmd.Line)
	}
}

// appendPayload decodes Full-peer literals and keeps undecodable text raw.
func (h *handler) appendPayload(arg string) {
	if h.peer != protocol.PeerFull {
		h.payload = append(h.payload, arg)
		return
	}
	v, err := literal.Unwrap(arg)
	if err != nil {
		if arg != protocol.WithoutRelease {
			logs.Warnf("receiver.handler payload kept raw conn=%s err=%v", h.c.id, err)
		}
		h.payload = append(h.payload, arg)
		return
	}
	h.payload = append(h.payload, v)
}

func (h *handler) answerDataRequest(arg string) {
	result, err := h.evaluate(arg)
	if err != nil {
		logs.Warnf("receiver.handler dataRequest conn=%s err=%v", h.c.id, err)
		h.initiateClose()
		return
	}
	h.send(protocol.CmdResult + result)
	h.initiateClose()
}

// evaluate returns the wrapped literal for the expression carried in arg.
func (h *handler) evaluate(arg string) (string, error) {
	expr, err := literal.Unwrap(arg)
	if err != nil {
		return "", err
	}
	out, err := h.svc.eval.Evaluate(literal.Render(expr))
	if err != nil {
		return "", fmt.Errorf("%w: %v", protocol.ErrEvaluation, err)
	}
	encoded, err := literal.EncodeWrapped(out)
	if err != nil {
		return "", fmt.Errorf("%w: %v", protocol.ErrEvaluation, err)
	}
	return encoded, nil
}

func (h *handler) storeData(arg string) {
	defer h.initiateClose()
	if h.pendingName == "" {
		logs.Warnf("receiver.handler conn=%s err=%v", h.c.id,
			fmt.Errorf("%w: data before dataName", protocol.ErrProtocolViolation))
		return
	}
	v, err := literal.Unwrap(arg)
	if err != nil {
		logs.Warnf("receiver.handler data name=%q conn=%s err=%v", h.pendingName, h.c.id, err)
		return
	}
	h.svc.store.Put(h.pendingName, v)
	observability.RecordDataStored(h.svc.cfg.Node)
	logs.Infof("receiver.handler stored name=%q conn=%s", h.pendingName, h.c.id)
}

func (h *handler) dispatchEvent(line string) {
	h.svc.store.Dispatch(func(tx *store.Tx) {
		defer h.resetPayload()
		payload := h.payload
		enduring := len(payload) > 0 && payload[len(payload)-1] == protocol.WithoutRelease
		if enduring {
			payload = payload[:len(payload)-1]
		}

		parsed := schema.ParseEventLine(line, h.peer)
		if parsed.Name == "" {
			logs.Warnf("receiver.handler empty event line ignored conn=%s", h.c.id)
			return
		}
		ev := host.Event{
			Prefix: h.svc.cfg.DefaultPrefix,
			Name:   parsed.Name,
			Source: h.c.source,
		}
		if parsed.HasPrefix {
			ev.Prefix = parsed.Prefix
		}
		switch len(payload) {
		case 0:
		case 1:
			ev.Payload, ev.HasPayload = payload[0], true
		default:
			list := make([]any, len(payload))
			copy(list, payload)
			ev.Payload, ev.HasPayload = list, true
		}

		if enduring {
			tx.StartEnduring(ev)
			return
		}
		tx.Trigger(ev)
	})
}

func (h *handler) resetPayload() {
	if h.svc.cfg.IncludeSourceAddress {
		h.payload = []any{h.c.source}
		return
	}
	h.payload = []any{}
}

func (h *handler) send(line string) {
	if h.closed() {
		return
	}
	if err := h.c.enqueue(line); err != nil {
		logs.Warnf("receiver.handler conn=%s err=%v", h.c.id, err)
		h.finish()
	}
}

// initiateClose answers "close", ends the enduring event and closes the socket
// once the outbox drains.
func (h *handler) initiateClose() {
	h.send(protocol.CmdClose)
	h.finish()
}

// transportClosed handles EOF or a read failure.
func (h *handler) transportClosed(err error) {
	if h.closed() {
		return
	}
	if isQuietClose(err) {
		logs.Debugf("receiver.handler peer closed conn=%s", h.c.id)
	} else {
		logs.Warnf("receiver.handler conn=%s err=%v", h.c.id, fmt.Errorf("%w: %v", protocol.ErrTransport, err))
	}
	h.finish()
}

// shutdown is initiateClose on receiver stop.
func (h *handler) shutdown() {
	h.initiateClose()
}

func (h *handler) finish() {
	if h.closed() {
		return
	}
	h.state = StateClosed
	h.svc.store.EndEnduring()
	close(h.c.outbox)
}
