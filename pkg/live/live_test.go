package live

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/djust-dev/djust/pkg/render"
	"github.com/prometheus/client_golang/prometheus"
)

// =============================================================================
// Test fixtures
// =============================================================================

const counterTemplate = `<div class="counter"><span>count={{ count }}</span></div>`

func testRenderer() render.Renderer {
	return render.NewTemplateRenderer("")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		TTL:                time.Hour,
		SweepInterval:      time.Hour, // tests trigger sweeps explicitly
		AskTimeout:         3 * time.Second,
		HealthCheckTimeout: time.Second,
	}
}

func newTestCore(t *testing.T, cfg Config) *core {
	t.Helper()
	return newCore(cfg, render.NewTemplateRenderer(""), quietLogger(), newMetrics(prometheus.NewRegistry()))
}

func newTestSupervisor(t *testing.T, cfg Config) *Supervisor {
	t.Helper()
	sup := NewSupervisor(cfg, render.NewTemplateRenderer(""), WithLogger(quietLogger()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sup.ShutdownAll(ctx)
	})
	return sup
}

// counterHandler implements increment/get_context_data for the canonical
// counter scenario. The bridge serializes invocations, so no lock is needed
// around count.
type counterHandler struct {
	count int
}

func (h *counterHandler) Invoke(_ context.Context, event string, params map[string]any) error {
	switch event {
	case "increment":
		amount := 1
		if raw, ok := params["amount"]; ok {
			if n, ok := raw.(int); ok {
				amount = n
			}
		}
		h.count += amount
		return nil
	case "fail":
		return fmt.Errorf("intentional failure")
	case "explode":
		panic("intentional panic")
	default:
		return ErrUnknownEvent.WithDetail("event %q", event)
	}
}

func (h *counterHandler) ContextData() map[string]any {
	return map[string]any{"count": h.count}
}

// failingRenderer always errors, for RenderError propagation tests.
type failingRenderer struct{}

func (failingRenderer) Render(string, map[string]any) (*render.Result, error) {
	return nil, fmt.Errorf("template exploded")
}

// recordingListener captures upward component notifications.
type recordingListener struct {
	mu     sync.Mutex
	events []string
	notify chan struct{}
}

func newRecordingListener() *recordingListener {
	return &recordingListener{notify: make(chan struct{}, 16)}
}

func (l *recordingListener) Invoke(context.Context, string, map[string]any) error {
	return ErrUnknownEvent
}

func (l *recordingListener) HandleComponentEvent(componentID, event string, data map[string]any) {
	l.mu.Lock()
	l.events = append(l.events, componentID+"/"+event)
	l.mu.Unlock()
	l.notify <- struct{}{}
}

func (l *recordingListener) recorded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func mustContain(t *testing.T, html, want string) {
	t.Helper()
	if !strings.Contains(html, want) {
		t.Fatalf("expected %q in %q", want, html)
	}
}
