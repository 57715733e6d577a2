package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joeshaw/envdecode"
)

// envConfig holds raw TCPEVENTS_* values; empty means unset.
type envConfig struct {
	Port                 string `env:"TCPEVENTS_PORT"`
	Password             string `env:"TCPEVENTS_PASSWORD"`
	Prefix               string `env:"TCPEVENTS_PREFIX"`
	IncludeSourceAddress string `env:"TCPEVENTS_INCLUDE_SOURCE_ADDRESS"`
	Node                 string `env:"TCPEVENTS_NODE"`
	ConnectTimeout       string `env:"TCPEVENTS_CONNECT_TIMEOUT"`
	CommunicationTimeout string `env:"TCPEVENTS_COMMUNICATION_TIMEOUT"`
	AdminAddr            string `env:"TCPEVENTS_ADMIN_ADDR"`
	AdminToken           string `env:"TCPEVENTS_ADMIN_TOKEN"`
}

// ApplyEnv overlays TCPEVENTS_* environment variables onto cfg.
func ApplyEnv(cfg *Runtime) error {
	var env envConfig
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("config env: %w", err)
	}

	if v := strings.TrimSpace(env.Port); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse TCPEVENTS_PORT: %w", err)
		}
		cfg.Receiver.ListenAddr = listenAddr(port)
	}
	if env.Password != "" {
		cfg.Receiver.Password = env.Password
	}
	if v := strings.TrimSpace(env.Prefix); v != "" {
		cfg.Receiver.DefaultPrefix = v
	}
	if v := strings.TrimSpace(env.IncludeSourceAddress); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse TCPEVENTS_INCLUDE_SOURCE_ADDRESS: %w", err)
		}
		cfg.Receiver.IncludeSourceAddress = b
	}
	if v := strings.TrimSpace(env.Node); v != "" {
		cfg.Receiver.Node = v
	}
	if v := strings.TrimSpace(env.ConnectTimeout); v != "" {
		d, err := parseDuration("TCPEVENTS_CONNECT_TIMEOUT", v)
		if err != nil {
			return err
		}
		cfg.Sender.Session.ConnectTimeout = d
	}
	if v := strings.TrimSpace(env.CommunicationTimeout); v != "" {
		d, err := parseDuration("TCPEVENTS_COMMUNICATION_TIMEOUT", v)
		if err != nil {
			return err
		}
		cfg.Sender.Session.CommunicationTimeout = d
	}
	if v := strings.TrimSpace(env.AdminAddr); v != "" {
		cfg.Admin.Addr = v
	}
	if env.AdminToken != "" {
		cfg.Admin.Token = env.AdminToken
	}
	return nil
}
