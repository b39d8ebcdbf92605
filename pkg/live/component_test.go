package live

import (
	"context"
	"errors"
	"testing"
)

func newTestComponent(t *testing.T, handler Handler, parent *viewRef) *Component {
	t.Helper()
	c := newComponent(newTestCore(t, testConfig()), "c1", counterTemplate,
		map[string]any{"count": 0}, handler, parent)
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })
	return c
}

func TestComponentUpdatePropsAndRender(t *testing.T) {
	c := newTestComponent(t, nil, nil)
	ctx := context.Background()

	if err := c.UpdateProps(ctx, map[string]any{"count": 3}); err != nil {
		t.Fatalf("update props: %v", err)
	}
	res, err := c.Render(ctx)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	mustContain(t, res.HTML, "count=3")
	if res.Version != 1 {
		t.Errorf("expected version 1, got %d", res.Version)
	}
}

func TestComponentFirstRenderHasNoPatches(t *testing.T) {
	c := newTestComponent(t, nil, nil)
	ctx := context.Background()

	res, err := c.RenderWithDiff(ctx)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(res.Patches) != 0 {
		t.Errorf("first render should carry no patches, got %v", res.Patches)
	}

	if err := c.UpdateProps(ctx, map[string]any{"count": 9}); err != nil {
		t.Fatalf("update props: %v", err)
	}
	res, err = c.RenderWithDiff(ctx)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if len(res.Patches) == 0 {
		t.Error("expected patches after state change")
	}
	if res.Version != 2 {
		t.Errorf("expected version 2, got %d", res.Version)
	}
}

func TestComponentEventFallbackMergesParams(t *testing.T) {
	c := newTestComponent(t, nil, nil)

	res, err := c.Event(context.Background(), "set", map[string]any{"count": 42})
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	mustContain(t, res.HTML, "count=42")
}

func TestComponentEventSyncOverwritesLocalState(t *testing.T) {
	h := &counterHandler{count: 100}
	c := newTestComponent(t, h, nil)
	ctx := context.Background()

	// Local state says count=0; the handler's derived state is authoritative.
	res, err := c.Event(ctx, "increment", map[string]any{"amount": 5})
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	mustContain(t, res.HTML, "count=105")
}

func TestComponentVersionIncrementsByOnePerRender(t *testing.T) {
	c := newTestComponent(t, &counterHandler{}, nil)
	ctx := context.Background()

	var last uint64
	for i := 0; i < 3; i++ {
		res, err := c.Event(ctx, "increment", nil)
		if err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		if res.Version != last+1 {
			t.Fatalf("version jumped from %d to %d", last, res.Version)
		}
		last = res.Version
	}
}

func TestComponentUnknownEventIsError(t *testing.T) {
	c := newTestComponent(t, &counterHandler{}, nil)

	_, err := c.Event(context.Background(), "no_such_method", nil)
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestComponentHandlerErrorLeavesStateUntouched(t *testing.T) {
	h := &counterHandler{count: 7}
	c := newTestComponent(t, h, nil)
	ctx := context.Background()

	if _, err := c.Event(ctx, "increment", nil); err != nil {
		t.Fatalf("priming event: %v", err)
	}

	_, err := c.Event(ctx, "fail", nil)
	if !errors.Is(err, ErrHandlerInvocation) {
		t.Fatalf("expected ErrHandlerInvocation, got %v", err)
	}

	// State and version are exactly what they were before the failed call.
	res, err := c.Render(ctx)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	mustContain(t, res.HTML, "count=8")
	if res.Version != 2 {
		t.Errorf("expected version 2 (one event + this render), got %d", res.Version)
	}
}

func TestComponentHandlerPanicContained(t *testing.T) {
	c := newTestComponent(t, &counterHandler{}, nil)
	ctx := context.Background()

	_, err := c.Event(ctx, "explode", nil)
	if !errors.Is(err, ErrHandlerInvocation) {
		t.Fatalf("expected ErrHandlerInvocation, got %v", err)
	}

	// The actor survived the panic.
	if _, err := c.Render(ctx); err != nil {
		t.Errorf("actor should still answer after handler panic: %v", err)
	}
}

func TestComponentRenderErrorPropagates(t *testing.T) {
	core := newTestCore(t, testConfig())
	core.renderer = failingRenderer{}
	c := newComponent(core, "c1", counterTemplate, nil, nil, nil)
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })

	_, err := c.Render(context.Background())
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("expected ErrRenderFailed, got %v", err)
	}
}

func TestComponentShutdownRejectsFurtherMessages(t *testing.T) {
	c := newTestComponent(t, nil, nil)
	ctx := context.Background()

	if err := c.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := c.UpdateProps(ctx, map[string]any{"x": 1}); !errors.Is(err, ErrShutdown) {
		t.Errorf("expected ErrShutdown, got %v", err)
	}
	if _, err := c.Event(ctx, "set", nil); !errors.Is(err, ErrShutdown) {
		t.Errorf("expected ErrShutdown, got %v", err)
	}
	// Shutdown is idempotent.
	if err := c.Shutdown(ctx); err != nil {
		t.Errorf("second shutdown should be nil, got %v", err)
	}
}

func TestComponentSendToParentWithoutParentIsNoop(t *testing.T) {
	c := newTestComponent(t, nil, nil)
	ctx := context.Background()

	if err := c.SendToParent(ctx, "selected", map[string]any{"row": 1}); err != nil {
		t.Fatalf("send to parent: %v", err)
	}
	// Still responsive.
	if _, err := c.Render(ctx); err != nil {
		t.Errorf("render after no-op forward: %v", err)
	}
}

func TestComponentInitialStateIsCopied(t *testing.T) {
	initial := map[string]any{"count": 1}
	core := newTestCore(t, testConfig())
	c := newComponent(core, "c1", counterTemplate, initial, nil, nil)
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })

	// Mutating the caller's map must not reach into actor-owned state.
	initial["count"] = 999

	res, err := c.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	mustContain(t, res.HTML, "count=1")
}
