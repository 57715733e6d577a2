package receiver

import (
	"strings"
	"time"

	"github.com/danmuck/tcpevents/internal/auth"
	"github.com/danmuck/tcpevents/internal/protocol/frame"
	"github.com/danmuck/tcpevents/internal/protocol/session"
)

const (
	DefaultPort       = 1024
	DefaultListenAddr = ":1024"
	DefaultPrefix     = "TCP"
	DefaultOutboxSize = 64
)

// Config is the receiver runtime configuration.
type Config struct {
	ListenAddr string
	Node       string
	// Password enables the cookie handshake when non-empty.
	Password             string
	DefaultPrefix        string
	IncludeSourceAddress bool
	WriteTimeout         time.Duration
	OutboxSize           int
	Limits               frame.Limits
	CookieSource         auth.CookieSource
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:           DefaultListenAddr,
		Node:                 "tcpevents",
		DefaultPrefix:        DefaultPrefix,
		IncludeSourceAddress: true,
		WriteTimeout:         session.DefaultTimeout,
		OutboxSize:           DefaultOutboxSize,
		Limits:               frame.DefaultLimits(),
	}
}

// WithDefaults fills unset numeric and address fields. Password, prefix and
// the source-address flag are taken as given.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = def.ListenAddr
	}
	if strings.TrimSpace(c.Node) == "" {
		c.Node = def.Node
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = def.OutboxSize
	}
	if c.Limits.MaxLineBytes <= 0 {
		c.Limits = def.Limits
	}
	if c.CookieSource == nil {
		c.CookieSource = auth.DefaultCookieSource
	}
	return c
}
