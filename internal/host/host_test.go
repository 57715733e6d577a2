package host

import (
	"testing"

	"github.com/danmuck/tcpevents/internal/testutil/testlog"
)

func TestExprEvaluator(t *testing.T) {
	testlog.Start(t)
	ev := NewExprEvaluator(map[string]any{
		"greeting": "hi",
		"lookup":   func(name string) string { return "v:" + name },
	})
	out, err := ev.Evaluate("1+1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out != 2 {
		t.Fatalf("unexpected result: %#v", out)
	}
	out, err = ev.Evaluate(`greeting + " " + lookup("x")`)
	if err != nil || out != "hi v:x" {
		t.Fatalf("unexpected env result: %#v %v", out, err)
	}
	for _, bad := range []string{"", "1 +", "undefinedName.field"} {
		if _, err := ev.Evaluate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestEventString(t *testing.T) {
	testlog.Start(t)
	if s := (Event{Prefix: "TCP", Name: "Ping"}).String(); s != "TCP.Ping" {
		t.Fatalf("unexpected name: %q", s)
	}
	if s := (Event{Name: "Ping"}).String(); s != "Ping" {
		t.Fatalf("unexpected name: %q", s)
	}
}

func TestRecorderForwardsAndRecords(t *testing.T) {
	testlog.Start(t)
	inner := NewRecorder(nil)
	rec := NewRecorder(inner)
	rec.DispatchEvent(Event{Name: "a"})
	rec.DispatchEnduringEventStart(Event{Name: "b"})
	rec.DispatchEnduringEventEnd(Event{Name: "b"})

	select {
	case <-rec.Changed():
	default:
		t.Fatalf("expected change notification")
	}
	for _, r := range []*Recorder{rec, inner} {
		calls := r.Calls()
		if len(calls) != 3 || calls[0].Kind != CallEvent || calls[1].Kind != CallStart || calls[2].Kind != CallEnd {
			t.Fatalf("unexpected calls: %+v", calls)
		}
	}
	LogDispatcher{}.DispatchEvent(Event{Name: "logged", Payload: []any{int64(1)}, HasPayload: true})
}
