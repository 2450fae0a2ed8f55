package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/yndnr/csrfguard/internal/core/domain"
	"github.com/yndnr/csrfguard/pkg/token"
)

// mockStore is an in-memory TokenStore that counts calls.
type mockStore struct {
	data    map[string]string
	writes  int
	reads   int
	removes int
	getErr  error
	addErr  error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.reads++
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.data[key], nil
}

func (m *mockStore) Add(ctx context.Context, key, value string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.writes++
	m.data[key] = value
	return nil
}

func (m *mockStore) Remove(ctx context.Context, key string) error {
	m.removes++
	delete(m.data, key)
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	_, ok := m.data[key]
	return ok, nil
}

// seqSource returns tok-1, tok-2, ... so tests can predict values.
type seqSource struct {
	n   int
	err error
}

func (s *seqSource) Next() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.n++
	return fmt.Sprintf("tok-%d", s.n), nil
}

func newTestGuard(t *testing.T, store TokenStore, opts ...Option) *TokenGuard {
	t.Helper()
	g, err := NewTokenGuard(store, &token.Source{}, opts...)
	if err != nil {
		t.Fatalf("NewTokenGuard failed: %v", err)
	}
	return g
}

func TestNewTokenGuard(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		g := newTestGuard(t, newMockStore())

		if !g.Enabled() {
			t.Error("validation should be enabled by default")
		}
		if g.ParamName() != "_csrf" {
			t.Errorf("ParamName() = %q, want _csrf", g.ParamName())
		}
		if g.HeaderName() != "X-CSRF-Token" {
			t.Errorf("HeaderName() = %q, want X-CSRF-Token", g.HeaderName())
		}
	})

	t.Run("empty param name while enabled", func(t *testing.T) {
		_, err := NewTokenGuard(newMockStore(), &token.Source{}, WithParamName(""))
		if !errors.Is(err, domain.ErrInvalidParamName) {
			t.Errorf("error = %v, want ErrInvalidParamName", err)
		}
	})

	t.Run("empty param name while disabled", func(t *testing.T) {
		_, err := NewTokenGuard(newMockStore(), &token.Source{}, WithParamName(""), WithValidation(false))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing collaborators", func(t *testing.T) {
		if _, err := NewTokenGuard(nil, &token.Source{}); !errors.Is(err, domain.ErrMissingStore) {
			t.Errorf("nil store error = %v, want ErrMissingStore", err)
		}
		if _, err := NewTokenGuard(newMockStore(), nil); !errors.Is(err, domain.ErrMissingSource) {
			t.Errorf("nil source error = %v, want ErrMissingSource", err)
		}
	})
}

func TestTokenGuard_Disabled(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()

	var events []ValidationEvent
	g := newTestGuard(t, store, WithValidation(false), WithHooks(func(_ context.Context, ev ValidationEvent) {
		events = append(events, ev)
	}))

	tok, err := g.Generate(ctx)
	if err != nil || tok != "" {
		t.Errorf("Generate() = %q, %v; want empty, nil", tok, err)
	}

	tok, err = g.Get(ctx, true)
	if err != nil || tok != "" {
		t.Errorf("Get(true) = %q, %v; want empty, nil", tok, err)
	}

	for _, submitted := range []string{"", "anything"} {
		ok, err := g.Check(ctx, submitted, nil)
		if err != nil || !ok {
			t.Errorf("Check(%q) = %v, %v; want true, nil", submitted, ok, err)
		}
	}

	if store.writes != 0 {
		t.Errorf("store writes = %d, want 0", store.writes)
	}
	if len(events) != 2 {
		t.Fatalf("hook fired %d times, want 2", len(events))
	}
	if !events[0].Valid || !events[0].Bypassed {
		t.Errorf("event = %+v, want valid bypass", events[0])
	}
}

func TestTokenGuard_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("lazy creation and idempotence", func(t *testing.T) {
		store := newMockStore()
		g := newTestGuard(t, store)

		first, err := g.Get(ctx, false)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if first == "" {
			t.Fatal("Get returned empty token")
		}
		if store.writes != 1 {
			t.Errorf("writes after first Get = %d, want 1", store.writes)
		}

		for i := 0; i < 3; i++ {
			again, err := g.Get(ctx, false)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if again != first {
				t.Errorf("Get() = %q, want %q", again, first)
			}
		}
		if store.writes != 1 {
			t.Errorf("writes after repeated Get = %d, want 1", store.writes)
		}
	})

	t.Run("regenerate replaces token", func(t *testing.T) {
		store := newMockStore()
		g := newTestGuard(t, store)

		first, _ := g.Get(ctx, false)
		second, err := g.Get(ctx, true)
		if err != nil {
			t.Fatalf("Get(true) failed: %v", err)
		}
		if second == first {
			t.Error("regenerated token equals previous token")
		}
		if store.data["_csrf"] != second {
			t.Errorf("stored = %q, want %q", store.data["_csrf"], second)
		}
		if store.writes != 2 {
			t.Errorf("writes = %d, want 2", store.writes)
		}
	})

	t.Run("store read error propagates", func(t *testing.T) {
		store := newMockStore()
		store.getErr = errors.New("session closed")
		g := newTestGuard(t, store)

		if _, err := g.Get(ctx, false); !errors.Is(err, store.getErr) {
			t.Errorf("error = %v, want %v", err, store.getErr)
		}
	})
}

func TestTokenGuard_Generate(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	g, err := NewTokenGuard(store, &seqSource{}, WithParamName("authenticity_token"))
	if err != nil {
		t.Fatalf("NewTokenGuard failed: %v", err)
	}

	t1, _ := g.Generate(ctx)
	t2, _ := g.Generate(ctx)

	if t1 != "tok-1" || t2 != "tok-2" {
		t.Fatalf("Generate() sequence = %q, %q", t1, t2)
	}
	if store.data["authenticity_token"] != t2 {
		t.Errorf("stored = %q, want %q", store.data["authenticity_token"], t2)
	}

	got, _ := g.Get(ctx, false)
	if got != t2 {
		t.Errorf("Get() after two Generate = %q, want %q", got, t2)
	}

	t.Run("source error propagates without write", func(t *testing.T) {
		store := newMockStore()
		srcErr := errors.New("entropy exhausted")
		g, _ := NewTokenGuard(store, &seqSource{err: srcErr})

		if _, err := g.Generate(ctx); !errors.Is(err, srcErr) {
			t.Errorf("error = %v, want %v", err, srcErr)
		}
		if store.writes != 0 {
			t.Errorf("writes = %d, want 0", store.writes)
		}
	})

	t.Run("store write error propagates", func(t *testing.T) {
		store := newMockStore()
		store.addErr = errors.New("cookie too large")
		g, _ := NewTokenGuard(store, &seqSource{})

		if tok, err := g.Generate(ctx); !errors.Is(err, store.addErr) || tok != "" {
			t.Errorf("Generate() = %q, %v; want empty, %v", tok, err, store.addErr)
		}
	})
}

func TestTokenGuard_Check(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	g := newTestGuard(t, store)

	tok, err := g.Get(ctx, false)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	tests := []struct {
		name      string
		submitted string
		header    http.Header
		want      bool
	}{
		{"matching param", tok, nil, true},
		{"mismatched param", tok + "x", nil, false},
		{"empty param no header", "", nil, false},
		{"matching header", "", http.Header{"X-Csrf-Token": {tok}}, true},
		{"header set via canonicalizing Set", "", headerOf("x-csrf-token", tok), true},
		{"raw lowercase header key", "", http.Header{"x-csrf-token": {tok}}, true},
		{"raw mixed-case header key", "", http.Header{"X-CSRF-Token": {tok}}, true},
		{"raw key with empty value list", "", http.Header{"x-csrf-token": {}}, false},
		{"mismatched header", "", http.Header{"X-Csrf-Token": {"nope"}}, false},
		{"empty header value", "", http.Header{"X-Csrf-Token": {""}}, false},
		{"param wins over header", "wrong", http.Header{"X-Csrf-Token": {tok}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Check(ctx, tt.submitted, tt.header)
			if err != nil {
				t.Fatalf("Check failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Check(%q) = %v, want %v", tt.submitted, got, tt.want)
			}
		})
	}

	t.Run("no stored token", func(t *testing.T) {
		g := newTestGuard(t, newMockStore())
		ok, err := g.Check(ctx, "", nil)
		if err != nil || ok {
			t.Errorf("Check on empty store = %v, %v; want false, nil", ok, err)
		}
	})
}

func TestTokenGuard_CheckHooks(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()

	var events []ValidationEvent
	record := func(_ context.Context, ev ValidationEvent) {
		events = append(events, ev)
	}
	g := newTestGuard(t, store, WithHooks(record))

	var late int
	g.OnValidate(func(context.Context, ValidationEvent) { late++ })

	tok, _ := g.Get(ctx, false)
	g.Check(ctx, tok, nil)
	g.Check(ctx, "", http.Header{"X-Csrf-Token": {"bad"}})
	g.Check(ctx, "", nil)

	store.getErr = errors.New("backend down")
	if _, err := g.Check(ctx, tok, nil); err == nil {
		t.Error("Check should return the store error")
	}

	want := []ValidationEvent{
		{Valid: true, Source: SourceParam},
		{Valid: false, Source: SourceHeader},
		{Valid: false, Source: SourceNone},
		{Valid: false, Source: SourceParam},
	}
	if len(events) != len(want) {
		t.Fatalf("hook fired %d times, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event[%d] = %+v, want %+v", i, events[i], want[i])
		}
	}
	if late != len(want) {
		t.Errorf("OnValidate hook fired %d times, want %d", late, len(want))
	}
}

func TestTokenGuard_HeaderToken(t *testing.T) {
	g := newTestGuard(t, newMockStore())

	if got := g.HeaderToken(nil); got != "" {
		t.Errorf("HeaderToken(nil) = %q, want empty", got)
	}
	if got := g.HeaderToken(http.Header{}); got != "" {
		t.Errorf("HeaderToken(empty) = %q, want empty", got)
	}

	h := domain.HeaderFromEnv([]string{"HTTP_X_CSRF_TOKEN=from-env"})
	if got := g.HeaderToken(h); got != "from-env" {
		t.Errorf("HeaderToken(env) = %q, want from-env", got)
	}

	custom := newTestGuard(t, newMockStore(), WithHeaderName("X-XSRF-Token"))
	h = http.Header{}
	h.Set("X-XSRF-Token", "angular")
	if got := custom.HeaderToken(h); got != "angular" {
		t.Errorf("HeaderToken(custom) = %q, want angular", got)
	}
	if got := custom.HeaderToken(http.Header{"X-XSRF-Token": {"raw"}}); got != "raw" {
		t.Errorf("HeaderToken(custom raw) = %q, want raw", got)
	}

	raw := []struct {
		name   string
		header http.Header
		want   string
	}{
		{"lowercase", http.Header{"x-csrf-token": {"a"}}, "a"},
		{"as declared", http.Header{"X-CSRF-Token": {"b"}}, "b"},
		{"upper", http.Header{"X-CSRF-TOKEN": {"c", "d"}}, "c"},
		{"other header", http.Header{"x-csrf": {"e"}}, ""},
		{"empty values", http.Header{"x-csrf-token": nil}, ""},
	}
	for _, tt := range raw {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.HeaderToken(tt.header); got != tt.want {
				t.Errorf("HeaderToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenGuard_ExistsRemove(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	g := newTestGuard(t, store)

	if ok, _ := g.Exists(ctx); ok {
		t.Error("Exists() on empty store = true")
	}

	if _, err := g.Generate(ctx); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if ok, _ := g.Exists(ctx); !ok {
		t.Error("Exists() after Generate = false")
	}

	if err := g.Remove(ctx); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if ok, _ := g.Exists(ctx); ok {
		t.Error("Exists() after Remove = true")
	}

	if err := g.Remove(ctx); err != nil {
		t.Errorf("second Remove error = %v, want nil", err)
	}

	store.data["_csrf"] = ""
	if ok, _ := g.Exists(ctx); ok {
		t.Error("Exists() with empty stored value = true")
	}
}

// TestTokenGuard_Lifecycle walks ABSENT -> PRESENT -> ABSENT.
func TestTokenGuard_Lifecycle(t *testing.T) {
	ctx := context.Background()
	g := newTestGuard(t, newMockStore())

	t1, err := g.Get(ctx, false)
	if err != nil || t1 == "" {
		t.Fatalf("Get() = %q, %v", t1, err)
	}
	if ok, _ := g.Exists(ctx); !ok {
		t.Fatal("Exists() = false after Get")
	}
	if ok, _ := g.Check(ctx, t1, nil); !ok {
		t.Fatal("Check(t1) = false")
	}
	if err := g.Remove(ctx); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if ok, _ := g.Exists(ctx); ok {
		t.Fatal("Exists() = true after Remove")
	}
	if ok, _ := g.Check(ctx, t1, nil); ok {
		t.Fatal("Check(t1) = true after Remove")
	}
}

func headerOf(name, value string) http.Header {
	h := http.Header{}
	h.Set(name, value)
	return h
}

func BenchmarkTokenGuard_Check(b *testing.B) {
	ctx := context.Background()
	g, _ := NewTokenGuard(newMockStore(), &token.Source{})
	tok, _ := g.Get(ctx, false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Check(ctx, tok, nil)
	}
}
