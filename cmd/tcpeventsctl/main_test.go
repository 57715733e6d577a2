package main

import (
	"bytes"
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/danmuck/tcpevents/internal/host"
	"github.com/danmuck/tcpevents/internal/receiver"
	"github.com/danmuck/tcpevents/internal/testutil/testlog"
)

const testPassword = "hunter2"

func startReceiver(t *testing.T) (*receiver.Service, string, *host.Recorder) {
	t.Helper()
	cfg := receiver.DefaultConfig()
	cfg.Node = "ctl-test"
	cfg.Password = testPassword
	cfg.IncludeSourceAddress = false
	rec := host.NewRecorder(nil)
	svc := receiver.NewService(cfg, receiver.Options{Dispatcher: rec})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Errorf("receiver did not stop")
		}
	})
	return svc, ln.Addr().String(), rec
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func waitData(t *testing.T, svc *receiver.Service, name string) any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if v, ok := svc.GetData(name); ok {
			return v
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("data %q never stored", name)
	return nil
}

func TestSendEventCommand(t *testing.T) {
	testlog.Start(t)
	_, addr, rec := startReceiver(t)

	out, err := execute(t, "--address", addr, "--password", testPassword,
		"send-event", "Ping", "--prefix", "Remote", "--payload", "5")
	if err != nil {
		t.Fatalf("send-event: %v", err)
	}
	if strings.TrimSpace(out) != "sent Remote.Ping peer=full" {
		t.Fatalf("unexpected output: %q", out)
	}

	deadline := time.After(3 * time.Second)
	for {
		calls := rec.Calls()
		if len(calls) > 0 {
			ev := calls[0].Event
			if ev.Prefix != "Remote" || ev.Name != "Ping" || ev.Payload != int64(5) {
				t.Fatalf("unexpected event: %+v", ev)
			}
			return
		}
		select {
		case <-rec.Changed():
		case <-deadline:
			t.Fatalf("event never dispatched")
		}
	}
}

func TestSendDataAndRequestDataCommands(t *testing.T) {
	testlog.Start(t)
	svc, addr, _ := startReceiver(t)

	if _, err := execute(t, "-a", addr, "--password", testPassword, "send-data", "volume", "[1, 2]"); err != nil {
		t.Fatalf("send-data: %v", err)
	}
	got := waitData(t, svc, "volume")
	list, ok := got.([]any)
	if !ok || len(list) != 2 || list[0] != int64(1) {
		t.Fatalf("unexpected stored value: %#v", got)
	}

	out, err := execute(t, "-a", addr, "--password", testPassword, "request-data", "40 + 2")
	if err != nil {
		t.Fatalf("request-data: %v", err)
	}
	if strings.TrimSpace(out) != "42" {
		t.Fatalf("unexpected result: %q", out)
	}
}

func TestWrongPasswordFails(t *testing.T) {
	testlog.Start(t)
	_, addr, _ := startReceiver(t)
	if _, err := execute(t, "-a", addr, "--password", "nope", "send-event", "Ping"); err == nil {
		t.Fatalf("expected handshake failure")
	}
}

func TestGetDataCommand(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	svc, _, _ := startReceiver(t)
	svc.Store().Put("mode", "night")

	admin := receiver.NewAdmin(svc, receiver.AdminConfig{Token: "tok"}, zerolog.Nop())
	srv := httptest.NewServer(admin.Handler())
	defer srv.Close()

	out, err := execute(t, "get-data", "mode", "--admin", srv.URL, "--token", "tok")
	if err != nil {
		t.Fatalf("get-data: %v", err)
	}
	if strings.TrimSpace(out) != `"night"` {
		t.Fatalf("unexpected output: %q", out)
	}

	if _, err := execute(t, "get-data", "missing", "--admin", srv.URL, "--token", "tok"); err == nil {
		t.Fatalf("expected not found error")
	}
	if _, err := execute(t, "get-data", "mode", "--admin", srv.URL); err == nil {
		t.Fatalf("expected unauthorized error")
	}
}

func TestParseValue(t *testing.T) {
	if v := parseValue("5"); v != int64(5) {
		t.Fatalf("expected int64 literal, got %#v", v)
	}
	if v := parseValue("lights on"); v != "lights on" {
		t.Fatalf("expected raw text fallback, got %#v", v)
	}
}
