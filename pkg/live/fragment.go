package live

import (
	"context"
	"log/slog"
	"maps"

	"github.com/djust-dev/djust/pkg/render"
	"github.com/djust-dev/djust/pkg/vdom"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// fragment is the minimal reactive unit shared by view and component actors:
// exclusively-owned state, an optional embedding-layer handler, and the
// render/version/snapshot bookkeeping. All methods run on the owning actor's
// goroutine only.
type fragment struct {
	scope    string // "view" or "component", for logs and trace attrs
	id       string
	template string
	state    map[string]any
	handler  Handler
	bridge   *Bridge
	renderer render.Renderer
	version  uint64
	snapshot *vdom.Node
	logger   *slog.Logger
	tracer   trace.Tracer
}

// mergeState merges key/value pairs into local state. The merge is staged
// and swapped in whole: either every update lands or none does.
func (f *fragment) mergeState(updates map[string]any) {
	if len(updates) == 0 {
		return
	}
	staged := maps.Clone(f.state)
	if staged == nil {
		staged = make(map[string]any, len(updates))
	}
	maps.Copy(staged, updates)
	f.state = staged
}

// render invokes the external render function with the current state. On
// success the version and snapshot advance; on failure both stay put and the
// error propagates with state unchanged. withDiff additionally computes the
// patch set against the previous snapshot (empty on first render).
func (f *fragment) render(withDiff bool) (RenderResult, error) {
	res, err := f.renderer.Render(f.template, f.state)
	if err != nil {
		return RenderResult{}, ErrRenderFailed.WithDetail("%s %q", f.scope, f.id).Wrap(err)
	}

	var patches vdom.PatchSet
	if withDiff {
		patches = vdom.Diff(f.snapshot, res.Snapshot)
	}

	f.version++
	f.snapshot = res.Snapshot
	return RenderResult{HTML: res.HTML, Patches: patches, Version: f.version}, nil
}

// handleEvent is the core state-machine transition:
//
//  1. No handler bound: merge params directly into state (best-effort
//     default) and render. Always succeeds unless rendering fails.
//  2. Handler bound: invoke the named method through the bridge, then
//     overwrite local state with the handler's derived snapshot. On any
//     invocation error the local state is exactly what it was before.
//  3. Handler bound but event unrecognized: error, never a silent fallback.
//  4. Render with diff and return.
func (f *fragment) handleEvent(ctx context.Context, event string, params map[string]any) (RenderResult, error) {
	ctx, span := f.tracer.Start(ctx, "live.event", trace.WithAttributes(
		attribute.String("live.scope", f.scope),
		attribute.String("live.id", f.id),
		attribute.String("live.event", event),
	))
	defer span.End()

	if f.handler == nil {
		f.mergeState(params)
	} else {
		snapshot, err := f.bridge.InvokeEvent(ctx, f.handler, event, params)
		if err != nil {
			f.logger.Error("handler invocation failed", "event", event, "err", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return RenderResult{}, err
		}
		if snapshot != nil {
			// Authoritative sync: the handler's derived state replaces
			// local state outright.
			f.state = snapshot
		}
	}

	res, err := f.render(true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RenderResult{}, err
	}
	return res, nil
}
