package session

import (
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/tcpevents/internal/auth"
	"github.com/danmuck/tcpevents/internal/protocol"
	"github.com/danmuck/tcpevents/internal/protocol/frame"
)

// ClassifyAcceptance maps the receiver's answer line to a peer kind.
// Full receivers answer " accept"; legacy receivers answer "accept" without
// the leading space. Anything else is a rejection.
func ClassifyAcceptance(line string) (protocol.PeerKind, error) {
	if strings.TrimSpace(line) != protocol.AcceptWord {
		return protocol.PeerLegacy, fmt.Errorf("%w: answer %q", protocol.ErrAuthRejected, line)
	}
	if line == protocol.AcceptLine {
		return protocol.PeerFull, nil
	}
	return protocol.PeerLegacy, nil
}

// Handshake runs the sender side of the preamble. Without a password the
// receiver is assumed to be a full peer and nothing is exchanged. Deadlines
// are the caller's responsibility.
func Handshake(w io.Writer, r *frame.LineReader, password string) (protocol.PeerKind, error) {
	if password == "" {
		return protocol.PeerFull, nil
	}
	if err := frame.WriteLine(w, protocol.WakeLiteral); err != nil {
		return protocol.PeerLegacy, transportErr("write wake", err)
	}
	cookie, err := r.ReadLine()
	if err != nil {
		return protocol.PeerLegacy, transportErr("read cookie", err)
	}
	if err := frame.WriteLine(w, auth.Response(cookie, password)); err != nil {
		return protocol.PeerLegacy, transportErr("write digest", err)
	}
	answer, err := r.ReadLine()
	if err != nil {
		if err == io.EOF {
			return protocol.PeerLegacy, fmt.Errorf("%w: receiver closed during handshake", protocol.ErrAuthRejected)
		}
		return protocol.PeerLegacy, transportErr("read answer", err)
	}
	return ClassifyAcceptance(answer)
}

func transportErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", protocol.ErrTransport, op, err)
}
