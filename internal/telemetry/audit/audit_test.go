package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/csrfguard/internal/core/service"
	"github.com/yndnr/csrfguard/internal/telemetry/logger"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newAuditor(t *testing.T, perSecond float64, burst int) (*Auditor, *bytes.Buffer, *fakeClock) {
	t.Helper()
	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	return New(l, perSecond, burst, WithClock(clock.Now)), &buf, clock
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

var rejected = service.ValidationEvent{Valid: false, Source: service.SourceHeader}

func TestAuditor_IgnoresValid(t *testing.T) {
	a, buf, _ := newAuditor(t, 10, 10)
	hook := a.Hook()

	hook(context.Background(), service.ValidationEvent{Valid: true, Source: service.SourceParam})
	hook(context.Background(), service.ValidationEvent{Valid: true, Bypassed: true, Source: service.SourceNone})

	if buf.Len() != 0 {
		t.Errorf("valid checks logged: %s", buf.String())
	}
	if total, _ := a.Stats(); total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}

func TestAuditor_LogsRejected(t *testing.T) {
	a, buf, _ := newAuditor(t, 10, 10)

	ctx := logger.WithRequestID(context.Background(), "req-1")
	a.Hook()(ctx, rejected)

	entries := lines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", e["level"])
	}
	if e["msg"] != "csrf check rejected" {
		t.Errorf("msg = %v", e["msg"])
	}
	if e["source"] != service.SourceHeader {
		t.Errorf("source = %v, want header", e["source"])
	}
	if e["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", e["request_id"])
	}
	if _, ok := e["suppressed"]; ok {
		t.Error("suppressed reported without drops")
	}
}

func TestAuditor_Throttles(t *testing.T) {
	a, buf, clock := newAuditor(t, 1, 2)
	hook := a.Hook()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		hook(ctx, rejected)
	}
	if got := len(lines(t, buf)); got != 2 {
		t.Fatalf("logged %d entries in burst, want 2", got)
	}
	if total, suppressed := a.Stats(); total != 5 || suppressed != 3 {
		t.Errorf("Stats() = %d, %d; want 5, 3", total, suppressed)
	}

	clock.Advance(time.Second)
	hook(ctx, rejected)

	entries := lines(t, buf)
	if len(entries) != 3 {
		t.Fatalf("logged %d entries, want 3", len(entries))
	}
	if got := entries[2]["suppressed"]; got != float64(3) {
		t.Errorf("suppressed = %v, want 3", got)
	}
	if _, suppressed := a.Stats(); suppressed != 0 {
		t.Errorf("suppressed after report = %d, want 0", suppressed)
	}
}

func TestAuditor_Unlimited(t *testing.T) {
	a, buf, _ := newAuditor(t, 0, 0)
	for i := 0; i < 20; i++ {
		a.Hook()(context.Background(), rejected)
	}
	if got := len(lines(t, buf)); got != 20 {
		t.Errorf("logged %d entries, want 20", got)
	}
}

func TestAuditor_WithGuard(t *testing.T) {
	a, buf, _ := newAuditor(t, 10, 10)
	store := &memStore{data: map[string]string{"_csrf": "stored"}}

	guard, err := service.NewTokenGuard(store, srcFunc(func() (string, error) { return "x", nil }),
		service.WithHooks(a.Hook()))
	if err != nil {
		t.Fatal(err)
	}

	guard.Check(context.Background(), "stored", nil)
	guard.Check(context.Background(), "forged", nil)

	entries := lines(t, buf)
	if len(entries) != 1 || entries[0]["source"] != service.SourceParam {
		t.Errorf("entries = %v, want one rejected param check", entries)
	}
}

type srcFunc func() (string, error)

func (f srcFunc) Next() (string, error) { return f() }

type memStore struct{ data map[string]string }

func (m *memStore) Get(_ context.Context, k string) (string, error) {
	return m.data[k], nil
}

func (m *memStore) Add(_ context.Context, k, v string) error {
	m.data[k] = v
	return nil
}

func (m *memStore) Remove(_ context.Context, k string) error {
	delete(m.data, k)
	return nil
}

func (m *memStore) Exists(_ context.Context, k string) (bool, error) {
	_, ok := m.data[k]
	return ok, nil
}
