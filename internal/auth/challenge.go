package auth

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/danmuck/tcpevents/internal/protocol"
)

const (
	// CookieLen is fixed; legacy senders strip the line and hash it verbatim.
	CookieLen = 4
	// DigestLen is the hex length of an MD5 digest.
	DigestLen = 32
)

var ErrEmptyResponse = errors.New("auth: empty digest response")

// CookieSource returns a value in [0, 65536).
type CookieSource func() int

// DefaultCookieSource is not cryptographically strong; the cookie only salts the digest.
func DefaultCookieSource() int {
	return rand.Intn(1 << 16)
}

// NewCookie renders a source draw as exactly four lowercase hex digits, zero padded.
func NewCookie(src CookieSource) string {
	if src == nil {
		src = DefaultCookieSource
	}
	return fmt.Sprintf("%04x", src()&0xffff)
}

// Digest is hex(md5(cookie ":" password)) in lowercase, as senders compute it.
func Digest(cookie, password string) string {
	sum := md5.Sum([]byte(cookie + ":" + password))
	return hex.EncodeToString(sum[:])
}

// Challenge is the receiver half of one handshake.
type Challenge struct {
	Cookie   string
	expected string
}

func NewChallenge(password string, src CookieSource) Challenge {
	cookie := NewCookie(src)
	return Challenge{
		Cookie:   cookie,
		expected: strings.ToUpper(Digest(cookie, password)),
	}
}

// Expected returns the uppercase digest the peer must answer with.
func (c Challenge) Expected() string {
	return c.expected
}

// SplitResponse trims line and splits it into the client tag and the trailing digest.
func SplitResponse(line string) (tag, digest string) {
	line = strings.TrimSpace(line)
	if len(line) <= DigestLen {
		return "", line
	}
	return line[:len(line)-DigestLen], line[len(line)-DigestLen:]
}

// Verify checks a digest response line. A matching digest sent behind the
// full-protocol marker yields PeerFull; any other tag yields PeerLegacy.
func (c Challenge) Verify(line string) (protocol.PeerKind, error) {
	tag, digest := SplitResponse(line)
	if digest == "" {
		return protocol.PeerLegacy, ErrEmptyResponse
	}
	got := strings.ToUpper(digest)
	if subtle.ConstantTimeCompare([]byte(got), []byte(c.expected)) != 1 {
		return protocol.PeerLegacy, fmt.Errorf("%w: digest mismatch", protocol.ErrAuthRejected)
	}
	if tag == protocol.FullMarker {
		return protocol.PeerFull, nil
	}
	return protocol.PeerLegacy, nil
}

// Response builds the sender's digest line for a received cookie line.
func Response(cookieLine, password string) string {
	return protocol.FullMarker + Digest(strings.TrimSpace(cookieLine), password)
}
