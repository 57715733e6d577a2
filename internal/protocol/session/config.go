package session

import (
	"time"

	"github.com/danmuck/tcpevents/internal/protocol/frame"
)

const (
	DefaultTimeout = 5 * time.Second
	// DefaultMaxResponseReads bounds the reads spent waiting for a result line.
	DefaultMaxResponseReads = 128
)

// Config defines transport timeouts for one sender or receiver.
type Config struct {
	ConnectTimeout       time.Duration
	CommunicationTimeout time.Duration
	MaxResponseReads     int
	Limits               frame.Limits
}

// DefaultConfig uses 5s timeouts and the default line limit.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:       DefaultTimeout,
		CommunicationTimeout: DefaultTimeout,
		MaxResponseReads:     DefaultMaxResponseReads,
		Limits:               frame.DefaultLimits(),
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.CommunicationTimeout <= 0 {
		c.CommunicationTimeout = def.CommunicationTimeout
	}
	if c.MaxResponseReads <= 0 {
		c.MaxResponseReads = def.MaxResponseReads
	}
	if c.Limits.MaxLineBytes <= 0 {
		c.Limits = def.Limits
	}
	return c
}
