package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/tcpevents/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tcpevents.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ReceiverPort() != 1024 || cfg.Receiver.DefaultPrefix != "TCP" || !cfg.Receiver.IncludeSourceAddress {
		t.Fatalf("unexpected receiver defaults: %+v", cfg.Receiver)
	}
	if cfg.Sender.Session.ConnectTimeout != 5*time.Second || cfg.Sender.Session.CommunicationTimeout != 5*time.Second {
		t.Fatalf("unexpected sender defaults: %+v", cfg.Sender.Session)
	}
	if cfg.Admin.Addr != "" {
		t.Fatalf("admin should be disabled by default: %+v", cfg.Admin)
	}
}

func TestTemplateLoadsAsDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, Template()))
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	def := Default()
	if cfg.Receiver.ListenAddr != def.Receiver.ListenAddr || cfg.Receiver.Limits != def.Receiver.Limits {
		t.Fatalf("template drifted from defaults: %+v", cfg.Receiver)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
[receiver]
port = 2048
password = "secret"
include_source_address = false
write_timeout = "750ms"

[sender]
communication_timeout = "2s"

[admin]
addr = "127.0.0.1:2049"
token = "t"
cors_origins = [" http://a ", ""]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ReceiverPort() != 2048 || cfg.Receiver.Password != "secret" || cfg.Receiver.IncludeSourceAddress {
		t.Fatalf("unexpected receiver: %+v", cfg.Receiver)
	}
	if cfg.Receiver.DefaultPrefix != "TCP" {
		t.Fatalf("undefined keys must keep defaults, prefix=%q", cfg.Receiver.DefaultPrefix)
	}
	if cfg.Receiver.WriteTimeout != 750*time.Millisecond || cfg.Sender.Session.CommunicationTimeout != 2*time.Second {
		t.Fatalf("unexpected timeouts: %v %v", cfg.Receiver.WriteTimeout, cfg.Sender.Session.CommunicationTimeout)
	}
	if len(cfg.Admin.CORSOrigins) != 1 || cfg.Admin.CORSOrigins[0] != "http://a" {
		t.Fatalf("unexpected cors origins: %q", cfg.Admin.CORSOrigins)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "[receiver]\nport = 2048\nprefix = \"File\"\n")
	t.Setenv("TCPEVENTS_PORT", "3000")
	t.Setenv("TCPEVENTS_PREFIX", "Env")
	t.Setenv("TCPEVENTS_INCLUDE_SOURCE_ADDRESS", "false")
	t.Setenv("TCPEVENTS_CONNECT_TIMEOUT", "1s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ReceiverPort() != 3000 || cfg.Receiver.DefaultPrefix != "Env" || cfg.Receiver.IncludeSourceAddress {
		t.Fatalf("env overrides not applied: %+v", cfg.Receiver)
	}
	if cfg.Sender.Session.ConnectTimeout != time.Second {
		t.Fatalf("unexpected connect timeout: %v", cfg.Sender.Session.ConnectTimeout)
	}

	t.Setenv("TCPEVENTS_PORT", "not-a-port")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected bad env port to fail")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"unknown key":  "[receiver]\nprot = 1\n",
		"bad duration": "[sender]\nconnect_timeout = \"soon\"\n",
		"port range":   "[receiver]\nport = 70000\n",
		"tiny lines":   "[receiver]\nmax_line_bytes = 10\n",
		"token only":   "[admin]\ntoken = \"t\"\n",
		"syntax":       "[receiver\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil || !strings.Contains(err.Error(), "config load failed") {
		t.Fatalf("expected load failure, got %v", err)
	}
}

func TestWriteTemplate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "cfg.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}
