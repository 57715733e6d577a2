package sender

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/tcpevents/internal/protocol/session"
)

const DefaultPort = 1024

var ErrAddressRequired = errors.New("sender: destination address required")

// Config holds the defaults every request falls back to.
type Config struct {
	Session     session.Config
	DefaultPort int
}

func DefaultConfig() Config {
	return Config{
		Session:     session.DefaultConfig(),
		DefaultPort: DefaultPort,
	}
}

func (c Config) WithDefaults() Config {
	c.Session = c.Session.WithDefaults()
	if c.DefaultPort <= 0 {
		c.DefaultPort = DefaultPort
	}
	return c
}

// Destination names one receiver. Zero timeouts use the client defaults.
type Destination struct {
	// Address is a host, or host:port when Port is zero.
	Address              string
	Port                 int
	Password             string
	ConnectTimeout       time.Duration
	CommunicationTimeout time.Duration
}

func (d Destination) hostPort(defaultPort int) (string, error) {
	addr := strings.TrimSpace(d.Address)
	if addr == "" {
		return "", ErrAddressRequired
	}
	if d.Port > 0 {
		return net.JoinHostPort(addr, strconv.Itoa(d.Port)), nil
	}
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr, nil
	}
	return net.JoinHostPort(addr, strconv.Itoa(defaultPort)), nil
}

func pickTimeout(override, fallback time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return fallback
}
