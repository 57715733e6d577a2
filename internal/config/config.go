package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/tcpevents/internal/receiver"
	"github.com/danmuck/tcpevents/internal/sender"
)

// Runtime is the resolved configuration for the daemon and the client CLI.
type Runtime struct {
	Receiver receiver.Config
	Admin    receiver.AdminConfig
	Sender   sender.Config
}

func Default() Runtime {
	return Runtime{
		Receiver: receiver.DefaultConfig(),
		Sender:   sender.DefaultConfig(),
	}
}

type fileConfig struct {
	Receiver receiverFile `toml:"receiver"`
	Sender   senderFile   `toml:"sender"`
	Admin    adminFile    `toml:"admin"`
}

type receiverFile struct {
	Port                 int    `toml:"port"`
	Password             string `toml:"password"`
	Prefix               string `toml:"prefix"`
	IncludeSourceAddress bool   `toml:"include_source_address"`
	Node                 string `toml:"node"`
	WriteTimeout         string `toml:"write_timeout"`
	OutboxSize           int    `toml:"outbox_size"`
	MaxLineBytes         int    `toml:"max_line_bytes"`
}

type senderFile struct {
	Port                 int    `toml:"port"`
	ConnectTimeout       string `toml:"connect_timeout"`
	CommunicationTimeout string `toml:"communication_timeout"`
	MaxResponseReads     int    `toml:"max_response_reads"`
}

type adminFile struct {
	Addr        string   `toml:"addr"`
	Token       string   `toml:"token"`
	CorsOrigins []string `toml:"cors_origins"`
}

// Load resolves defaults, then the TOML file at path (if any), then
// TCPEVENTS_* environment overrides, and validates the result.
func Load(path string) (Runtime, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Runtime{}, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Runtime{}, err
	}
	if err := Validate(cfg); err != nil {
		return Runtime{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Runtime, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	r := &cfg.Receiver
	if meta.IsDefined("receiver", "port") {
		r.ListenAddr = listenAddr(raw.Receiver.Port)
	}
	if meta.IsDefined("receiver", "password") {
		r.Password = raw.Receiver.Password
	}
	if meta.IsDefined("receiver", "prefix") {
		r.DefaultPrefix = strings.TrimSpace(raw.Receiver.Prefix)
	}
	if meta.IsDefined("receiver", "include_source_address") {
		r.IncludeSourceAddress = raw.Receiver.IncludeSourceAddress
	}
	if meta.IsDefined("receiver", "node") {
		r.Node = strings.TrimSpace(raw.Receiver.Node)
	}
	if meta.IsDefined("receiver", "write_timeout") {
		d, err := parseDuration("receiver.write_timeout", raw.Receiver.WriteTimeout)
		if err != nil {
			return err
		}
		r.WriteTimeout = d
	}
	if meta.IsDefined("receiver", "outbox_size") {
		r.OutboxSize = raw.Receiver.OutboxSize
	}
	if meta.IsDefined("receiver", "max_line_bytes") {
		r.Limits.MaxLineBytes = raw.Receiver.MaxLineBytes
		cfg.Sender.Session.Limits.MaxLineBytes = raw.Receiver.MaxLineBytes
	}

	s := &cfg.Sender
	if meta.IsDefined("sender", "port") {
		s.DefaultPort = raw.Sender.Port
	}
	if meta.IsDefined("sender", "connect_timeout") {
		d, err := parseDuration("sender.connect_timeout", raw.Sender.ConnectTimeout)
		if err != nil {
			return err
		}
		s.Session.ConnectTimeout = d
	}
	if meta.IsDefined("sender", "communication_timeout") {
		d, err := parseDuration("sender.communication_timeout", raw.Sender.CommunicationTimeout)
		if err != nil {
			return err
		}
		s.Session.CommunicationTimeout = d
	}
	if meta.IsDefined("sender", "max_response_reads") {
		s.Session.MaxResponseReads = raw.Sender.MaxResponseReads
	}

	if meta.IsDefined("admin", "addr") {
		cfg.Admin.Addr = strings.TrimSpace(raw.Admin.Addr)
	}
	if meta.IsDefined("admin", "token") {
		cfg.Admin.Token = raw.Admin.Token
	}
	if meta.IsDefined("admin", "cors_origins") {
		cfg.Admin.CORSOrigins = normalizeList(raw.Admin.CorsOrigins)
	}
	return nil
}

// Validate rejects configurations the receiver or sender cannot run with.
func Validate(cfg Runtime) error {
	var errs []error
	r := cfg.Receiver
	if _, err := portOf(r.ListenAddr); err != nil {
		errs = append(errs, fmt.Errorf("receiver.port: %w", err))
	}
	if strings.ContainsAny(r.Password, "\r\n") {
		errs = append(errs, fmt.Errorf("receiver.password must be a single line"))
	}
	if strings.ContainsAny(r.DefaultPrefix, "\r\n") {
		errs = append(errs, fmt.Errorf("receiver.prefix must be a single line"))
	}
	if r.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("receiver.write_timeout must be positive"))
	}
	if r.OutboxSize <= 0 {
		errs = append(errs, fmt.Errorf("receiver.outbox_size must be positive"))
	}
	if r.Limits.MaxLineBytes < minLineBytes {
		errs = append(errs, fmt.Errorf("receiver.max_line_bytes must be at least %d", minLineBytes))
	}

	s := cfg.Sender
	if s.DefaultPort <= 0 || s.DefaultPort > maxPort {
		errs = append(errs, fmt.Errorf("sender.port out of range: %d", s.DefaultPort))
	}
	if s.Session.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("sender.connect_timeout must be positive"))
	}
	if s.Session.CommunicationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("sender.communication_timeout must be positive"))
	}
	if s.Session.MaxResponseReads <= 0 {
		errs = append(errs, fmt.Errorf("sender.max_response_reads must be positive"))
	}

	if cfg.Admin.Token != "" && strings.TrimSpace(cfg.Admin.Addr) == "" {
		errs = append(errs, fmt.Errorf("admin.token set without admin.addr"))
	}
	return errors.Join(errs...)
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
