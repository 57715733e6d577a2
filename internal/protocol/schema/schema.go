package schema

import (
	"fmt"
	"strings"

	"github.com/danmuck/tcpevents/internal/protocol"
)

// Kind identifies one Ready-state command.
type Kind int

const (
	KindClose Kind = iota + 1
	KindPayload
	KindDataRequest
	KindDataName
	KindData
	KindButtonReleased
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindClose:
		return "close"
	case KindPayload:
		return "payload"
	case KindDataRequest:
		return "dataRequest"
	case KindDataName:
		return "dataName"
	case KindData:
		return "data"
	case KindButtonReleased:
		return "ButtonReleased"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Rule matches one keyword. Prefix rules carry the rest of the line as the argument.
type Rule struct {
	Kind     Kind
	Keyword  string
	Prefix   bool
	FullOnly bool
}

// grammar is evaluated top to bottom; the first match wins and anything
// unmatched is an event line.
var grammar = []Rule{
	{KindClose, protocol.CmdClose, false, false},
	{KindPayload, protocol.CmdPayload, true, false},
	{KindDataRequest, protocol.CmdDataRequest, true, true},
	{KindDataName, protocol.CmdDataName, true, true},
	{KindData, protocol.CmdData, true, true},
	{KindButtonReleased, protocol.CmdButtonReleased, false, false},
}

// Grammar returns the rule table in priority order.
func Grammar() []Rule {
	out := make([]Rule, len(grammar))
	copy(out, grammar)
	return out
}

// Command is one parsed Ready-state line.
type Command struct {
	Kind Kind
	Arg  string
	Line string
}

// Parse classifies line for a peer of the given kind. Keywords reserved for
// full peers fall through to the event rule when sent by a legacy peer.
func Parse(line string, peer protocol.PeerKind) Command {
	for _, rule := range grammar {
		if rule.FullOnly && peer != protocol.PeerFull {
			continue
		}
		if rule.Prefix {
			if strings.HasPrefix(line, rule.Keyword) {
				return Command{Kind: rule.Kind, Arg: line[len(rule.Keyword):], Line: line}
			}
			continue
		}
		if line == rule.Keyword {
			return Command{Kind: rule.Kind, Line: line}
		}
	}
	return Command{Kind: KindEvent, Arg: line, Line: line}
}

// EventLine is the name/prefix split of one event line.
type EventLine struct {
	Name string
	// Prefix overrides the receiver's default prefix when HasPrefix is set.
	Prefix    string
	HasPrefix bool
}

// ParseEventLine strips one leading and one trailing dot and splits the rest
// at its first dot. Legacy peers never carry a prefix, so their line is the name.
func ParseEventLine(line string, peer protocol.PeerKind) EventLine {
	if peer != protocol.PeerFull {
		return EventLine{Name: line}
	}
	line = strings.TrimPrefix(line, ".")
	line = strings.TrimSuffix(line, ".")
	if idx := strings.IndexByte(line, '.'); idx > 0 {
		return EventLine{Name: line[idx+1:], Prefix: line[:idx], HasPrefix: true}
	}
	return EventLine{Name: line}
}
