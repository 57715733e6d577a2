package receiver

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/danmuck/tcpevents/internal/auth"
	"github.com/danmuck/tcpevents/internal/host"
	"github.com/danmuck/tcpevents/internal/protocol"
	"github.com/danmuck/tcpevents/internal/protocol/frame"
)

const testTimeout = 3 * time.Second

func fixedCookie(v int) auth.CookieSource {
	return func() int { return v }
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Node = "recv-test"
	cfg.IncludeSourceAddress = false
	cfg.WriteTimeout = testTimeout
	return cfg
}

// startService serves on loopback and stops the service at cleanup.
func startService(t *testing.T, cfg Config, opts Options) (*Service, string, *host.Recorder) {
	t.Helper()
	rec := host.NewRecorder(opts.Dispatcher)
	opts.Dispatcher = rec
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	svc := NewService(cfg, opts)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve returned: %v", err)
			}
		case <-time.After(2 * testTimeout):
			t.Errorf("serve did not stop")
		}
	})
	return svc, ln.Addr().String(), rec
}

type testPeer struct {
	t  *testing.T
	nc net.Conn
	lr *frame.LineReader
}

func dialPeer(t *testing.T, addr string) *testPeer {
	t.Helper()
	nc, err := net.DialTimeout("tcp", addr, testTimeout)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = nc.Close() })
	_ = nc.SetDeadline(time.Now().Add(2 * testTimeout))
	return &testPeer{t: t, nc: nc, lr: frame.NewLineReader(nc, frame.DefaultLimits())}
}

func (p *testPeer) send(lines ...string) {
	p.t.Helper()
	for _, line := range lines {
		if err := frame.WriteLine(p.nc, line); err != nil {
			p.t.Fatalf("write %q: %v", line, err)
		}
	}
}

func (p *testPeer) expect(want string) {
	p.t.Helper()
	got, err := p.lr.ReadLine()
	if err != nil {
		p.t.Fatalf("read (want %q): %v", want, err)
	}
	if got != want {
		p.t.Fatalf("unexpected line: got %q want %q", got, want)
	}
}

func (p *testPeer) expectEOF() {
	p.t.Helper()
	line, err := p.lr.ReadLine()
	if err == nil {
		p.t.Fatalf("expected connection close, got line %q", line)
	}
	var netErr net.Error
	if !errors.Is(err, io.EOF) && !(errors.As(err, &netErr) && !netErr.Timeout()) {
		p.t.Fatalf("expected EOF, got %v", err)
	}
}

// handshake runs the sender side with the given tag and returns the answer line.
func (p *testPeer) handshake(password, tag string) string {
	p.t.Helper()
	p.send(protocol.WakeLiteral)
	cookie, err := p.lr.ReadLine()
	if err != nil {
		p.t.Fatalf("read cookie: %v", err)
	}
	p.send(tag + auth.Digest(cookie, password))
	answer, err := p.lr.ReadLine()
	if err != nil {
		p.t.Fatalf("read answer: %v", err)
	}
	return answer
}

// waitCalls blocks until rec holds at least n calls.
func waitCalls(t *testing.T, rec *host.Recorder, n int) []host.Call {
	t.Helper()
	deadline := time.After(testTimeout)
	for {
		if calls := rec.Calls(); len(calls) >= n {
			return calls
		}
		select {
		case <-rec.Changed():
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for %d calls, have %+v", n, rec.Calls())
		}
	}
}

func listenLoopback(t *testing.T) (net.Listener, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return ln, ln.Addr().String()
}

func contextWithCancel() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}
