package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
)

// Handler is an embedding-layer callback object bound to a view or component.
//
// Invoke dispatches the named event method with its parameters.
// Implementations must return ErrUnknownEvent when no method matches name;
// that is a reportable condition, distinct from having no handler at all.
type Handler interface {
	Invoke(ctx context.Context, event string, params map[string]any) error
}

// StateProvider is the optional derived-state accessor on a Handler. After
// each invocation the bridge overwrites the actor's local state with
// ContextData() — sync is authoritative, never a merge. A nil return leaves
// state unchanged (warning only), mirroring an absent accessor.
type StateProvider interface {
	ContextData() map[string]any
}

// ComponentEventListener is the optional upward-notification method on a
// view's Handler, called when an owned component forwards an event via
// SendToParent. Handlers without it silently drop child notifications.
type ComponentEventListener interface {
	HandleComponentEvent(componentID, event string, data map[string]any)
}

// HandlerFuncs is a map-backed Handler for embedding layers that have no
// dynamic dispatch of their own (and for tests).
type HandlerFuncs struct {
	// Events maps event names to methods.
	Events map[string]func(params map[string]any) error

	// State is the derived-state accessor. Nil means no accessor.
	State func() map[string]any

	// OnComponentEvent receives upward notifications from owned components.
	OnComponentEvent func(componentID, event string, data map[string]any)
}

// Invoke implements Handler.
func (h *HandlerFuncs) Invoke(_ context.Context, event string, params map[string]any) error {
	fn, ok := h.Events[event]
	if !ok {
		return ErrUnknownEvent.WithDetail("event %q", event)
	}
	return fn(params)
}

// ContextData implements StateProvider.
func (h *HandlerFuncs) ContextData() map[string]any {
	if h.State == nil {
		return nil
	}
	return h.State()
}

// HandleComponentEvent implements ComponentEventListener.
func (h *HandlerFuncs) HandleComponentEvent(componentID, event string, data map[string]any) {
	if h.OnComponentEvent != nil {
		h.OnComponentEvent(componentID, event, data)
	}
}

// Bridge serializes all call-outs into the embedding layer. The layer may
// hold a single shared execution lock (e.g. an interpreter), so every actor
// under one Supervisor shares one Bridge and enters it one at a time. The
// lock is held for one call-out plus one state-read and nothing else; actor
// mailboxes keep draining for unrelated sessions in the meantime.
type Bridge struct {
	mu     sync.Mutex
	logger *slog.Logger
}

// NewBridge creates a bridge. A nil logger falls back to slog.Default().
func NewBridge(logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{logger: logger}
}

// InvokeEvent calls the named method on h under the shared lock, then reads
// the derived-state snapshot. It returns the snapshot to overwrite local
// state with, or nil when the handler exposes no usable accessor.
//
// A panic in embedding code is contained here: it becomes an
// ErrHandlerInvocation reply, never a dead actor.
func (b *Bridge) InvokeEvent(ctx context.Context, h Handler, event string, params map[string]any) (snapshot map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			snapshot = nil
			err = ErrHandlerInvocation.WithDetail("event %q panicked", event).Wrap(fmt.Errorf("%v", r))
		}
	}()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := h.Invoke(ctx, event, params); err != nil {
		if errors.Is(err, ErrUnknownEvent) {
			return nil, err
		}
		return nil, ErrHandlerInvocation.WithDetail("event %q", event).Wrap(err)
	}

	sp, ok := h.(StateProvider)
	if !ok {
		b.logger.Warn("handler has no state accessor, local state unchanged", "event", event)
		return nil, nil
	}
	data := sp.ContextData()
	if data == nil {
		b.logger.Warn("handler state accessor returned nothing, local state unchanged", "event", event)
		return nil, nil
	}
	return maps.Clone(data), nil
}

// NotifyChildEvent delivers a component's upward notification to the view's
// handler, if it listens. Missing listeners drop the notification, and
// panics are logged, not propagated.
func (b *Bridge) NotifyChildEvent(h Handler, componentID, event string, data map[string]any) {
	listener, ok := h.(ComponentEventListener)
	if !ok {
		b.logger.Debug("handler ignores component events", "component_id", componentID, "event", event)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("component event listener panicked",
				"component_id", componentID, "event", event, "panic", r)
		}
	}()

	b.mu.Lock()
	defer b.mu.Unlock()
	listener.HandleComponentEvent(componentID, event, data)
}
