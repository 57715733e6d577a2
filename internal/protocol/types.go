package protocol

// Handshake lines.
const (
	// WakeLiteral is the first line a client sends when a password is configured.
	WakeLiteral = "quintessence"
	// FullMarker prefixes the digest line of clients speaking the full command set.
	FullMarker = "TCPEvents"
	// AcceptLine is sent by full servers; legacy clients key off the leading space.
	AcceptLine = " accept"
	// AcceptWord is the trimmed acceptance every server variant sends.
	AcceptWord = "accept"
)

// Ready-state keywords.
const (
	CmdClose          = "close"
	CmdPayload        = "payload "
	CmdDataRequest    = "dataRequest "
	CmdDataName       = "dataName "
	CmdData           = "data "
	CmdButtonReleased = "ButtonReleased"
	CmdResult         = "result "
)

// WithoutRelease is the payload sentinel that turns the next event line into an enduring start.
const WithoutRelease = "withoutRelease"

// Marker event lines sent to legacy receivers in place of data commands.
const (
	LegacySendDataEvent    = "SendData"
	LegacyRequestDataEvent = "RequestData"
)

// PeerKind records which command set the remote side speaks.
type PeerKind int

const (
	PeerFull PeerKind = iota
	PeerLegacy
)

func (k PeerKind) String() string {
	switch k {
	case PeerFull:
		return "full"
	case PeerLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}
