package live

import (
	"context"
	"errors"
	"testing"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := newSession(newTestCore(t, testConfig()), "sess-1")
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func TestSessionMount(t *testing.T) {
	s := newTestSession(t)

	res, err := s.Mount(context.Background(), counterTemplate, map[string]any{"count": 0}, nil)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if res.ViewID == "" {
		t.Error("expected a generated view id")
	}
	if res.SessionKey != "sess-1" {
		t.Errorf("unexpected session key %q", res.SessionKey)
	}
	mustContain(t, res.HTML, "count=0")
	if res.Version != 1 {
		t.Errorf("expected version 1 on mount, got %d", res.Version)
	}
}

func TestSessionDoubleMountYieldsTwoViews(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	first, err := s.Mount(ctx, counterTemplate, map[string]any{"count": 1}, nil)
	if err != nil {
		t.Fatalf("mount 1: %v", err)
	}
	second, err := s.Mount(ctx, counterTemplate, map[string]any{"count": 2}, nil)
	if err != nil {
		t.Fatalf("mount 2: %v", err)
	}

	if first.ViewID == second.ViewID {
		t.Fatal("double mount must not replace: ids collide")
	}

	// Both views are independently addressable with independent state.
	resA, err := s.Event(ctx, "set", map[string]any{"count": 10}, first.ViewID)
	if err != nil {
		t.Fatalf("event to first: %v", err)
	}
	mustContain(t, resA.HTML, "count=10")

	resB, err := s.Event(ctx, "noop", nil, second.ViewID)
	if err != nil {
		t.Fatalf("event to second: %v", err)
	}
	mustContain(t, resB.HTML, "count=2")
}

func TestSessionDefaultRoutingIsFirstMounted(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	first, err := s.Mount(ctx, counterTemplate, map[string]any{"count": 1}, nil)
	if err != nil {
		t.Fatalf("mount 1: %v", err)
	}
	if _, err := s.Mount(ctx, counterTemplate, map[string]any{"count": 2}, nil); err != nil {
		t.Fatalf("mount 2: %v", err)
	}

	// Repeated untargeted events always land on the first-mounted view.
	for i := 0; i < 5; i++ {
		res, err := s.Event(ctx, "noop", nil, "")
		if err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		if res.ViewID != first.ViewID {
			t.Fatalf("event %d routed to %q, want first-mounted %q", i, res.ViewID, first.ViewID)
		}
	}
}

func TestSessionDefaultRoutingSurvivesUnmountOfFirst(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	first, _ := s.Mount(ctx, counterTemplate, nil, nil)
	second, _ := s.Mount(ctx, counterTemplate, nil, nil)

	if err := s.Unmount(ctx, first.ViewID); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	res, err := s.Event(ctx, "noop", nil, "")
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	if res.ViewID != second.ViewID {
		t.Errorf("default routing should follow insertion order, got %q want %q", res.ViewID, second.ViewID)
	}
}

func TestSessionEventRoutingErrors(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	if _, err := s.Event(ctx, "x", nil, ""); !errors.Is(err, ErrNoViews) {
		t.Errorf("expected ErrNoViews, got %v", err)
	}
	if _, err := s.Event(ctx, "x", nil, "ghost"); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("expected ErrViewNotFound, got %v", err)
	}
}

func TestSessionUnmountUnknownView(t *testing.T) {
	s := newTestSession(t)

	if err := s.Unmount(context.Background(), "ghost"); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("expected ErrViewNotFound, got %v", err)
	}
}

func TestSessionPing(t *testing.T) {
	s := newTestSession(t)

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestSessionPingDoesNotBumpActivity(t *testing.T) {
	s := newTestSession(t)

	before := s.LastActive()
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if s.LastActive().After(before) {
		t.Error("ping must not count as activity")
	}

	s.Touch()
	if !s.LastActive().After(before) {
		t.Error("touch should bump activity")
	}
}

func TestSessionShutdownCascades(t *testing.T) {
	core := newTestCore(t, testConfig())
	s := newSession(core, "sess-1")
	ctx := context.Background()

	mounted, err := s.Mount(ctx, counterTemplate, nil, nil)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	view := s.views[mounted.ViewID]
	if _, err := view.CreateComponent(ctx, "a", itemTemplate, nil, nil); err != nil {
		t.Fatalf("create component: %v", err)
	}
	comp := view.components["a"]

	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if _, err := s.Mount(ctx, counterTemplate, nil, nil); !errors.Is(err, ErrShutdown) {
		t.Errorf("session should reject after shutdown: %v", err)
	}
	if _, err := view.Render(ctx); !errors.Is(err, ErrShutdown) {
		t.Errorf("view should be gone: %v", err)
	}
	if _, err := comp.Render(ctx); !errors.Is(err, ErrShutdown) {
		t.Errorf("component should be gone: %v", err)
	}
}

// The canonical counter scenario: mount with a bound handler implementing
// increment/get_context_data, send one increment of 5, expect count=5 and a
// version bump of exactly 1.
func TestSessionCounterScenario(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	mounted, err := s.Mount(ctx, counterTemplate, map[string]any{"count": 0}, &counterHandler{})
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	mustContain(t, mounted.HTML, "count=0")

	res, err := s.Event(ctx, "increment", map[string]any{"amount": 5}, "")
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	mustContain(t, res.HTML, "count=5")
	if res.Version != mounted.Version+1 {
		t.Errorf("version should bump by exactly 1: %d -> %d", mounted.Version, res.Version)
	}
	if len(res.Patches) == 0 {
		t.Error("expected a minimal patch set for the text change")
	}
}
