package live

import (
	"context"
	"time"

	"github.com/djust-dev/djust/pkg/vdom"
)

// RenderResult is the outcome of a render pass.
type RenderResult struct {
	// HTML is the full rendered markup.
	HTML string

	// Patches is the minimal change-set against the previous snapshot.
	// Empty on a first render or when diffing was not requested.
	Patches vdom.PatchSet

	// Version is the render version after this pass. Monotonic per
	// view/component, incremented only by the owning actor.
	Version uint64
}

// MountResult is returned by Session.Mount.
type MountResult struct {
	ViewID     string
	SessionKey string
	HTML       string
	Version    uint64
}

// EventResult is returned by Session.Event, identifying which view handled
// the event.
type EventResult struct {
	ViewID string
	RenderResult
}

// result carries exactly one reply for a request message.
type result[T any] struct {
	val T
	err error
}

// newReply creates a single-use reply channel. Buffered so the replying
// actor never blocks, even if the asker timed out and walked away.
func newReply[T any]() chan result[T] {
	return make(chan result[T], 1)
}

func reply[T any](ch chan<- result[T], val T) {
	ch <- result[T]{val: val}
}

func replyErr[T any](ch chan<- result[T], err error) {
	ch <- result[T]{err: err}
}

// send enqueues msg, blocking while the mailbox is full. Blocking is the
// backpressure mechanism, bounded by ctx; the send never drops a message.
func send[M any](ctx context.Context, mailbox chan<- M, done <-chan struct{}, msg M) error {
	select {
	case <-done:
		return ErrShutdown
	default:
	}
	select {
	case mailbox <- msg:
		return nil
	case <-done:
		return ErrShutdown
	case <-ctx.Done():
		return ErrMailboxFull.Wrap(ctx.Err())
	}
}

// await waits for the single reply on ch.
func await[T any](ctx context.Context, ch <-chan result[T]) (T, error) {
	select {
	case res := <-ch:
		return res.val, res.err
	case <-ctx.Done():
		var zero T
		return zero, ErrTimeout.Wrap(ctx.Err())
	}
}

// ask performs one request/response round trip within timeout. The timeout
// covers both the enqueue (mailbox backpressure) and the reply wait.
func ask[M any, T any](ctx context.Context, mailbox chan<- M, done <-chan struct{}, msg M, replyCh <-chan result[T], timeout time.Duration) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := send(ctx, mailbox, done, msg); err != nil {
		var zero T
		return zero, err
	}
	return await(ctx, replyCh)
}

// =============================================================================
// Component messages
// =============================================================================

type componentMsg interface{ componentMsg() }

type componentUpdateProps struct {
	props map[string]any
	reply chan result[struct{}]
}

type componentEvent struct {
	ctx    context.Context
	event  string
	params map[string]any
	reply  chan result[RenderResult]
}

type componentRender struct {
	withDiff bool
	reply    chan result[RenderResult]
}

type componentSendToParent struct {
	event string
	data  map[string]any
}

type componentShutdown struct {
	reply chan result[struct{}]
}

func (componentUpdateProps) componentMsg() {}
func (componentEvent) componentMsg()       {}
func (componentRender) componentMsg()      {}
func (componentSendToParent) componentMsg() {}
func (componentShutdown) componentMsg()    {}

// =============================================================================
// View messages
// =============================================================================

type viewMsg interface{ viewMsg() }

type viewUpdateState struct {
	updates map[string]any
	reply   chan result[struct{}]
}

type viewRender struct {
	withDiff bool
	reply    chan result[RenderResult]
}

type viewEvent struct {
	ctx    context.Context
	event  string
	params map[string]any
	reply  chan result[RenderResult]
}

type viewCreateComponent struct {
	ctx     context.Context
	id      string
	tmpl    string
	state   map[string]any
	handler Handler
	reply   chan result[RenderResult]
}

type viewComponentEvent struct {
	ctx    context.Context
	id     string
	event  string
	params map[string]any
	reply  chan result[RenderResult]
}

type viewUpdateComponentProps struct {
	ctx   context.Context
	id    string
	props map[string]any
	reply chan result[struct{}]
}

type viewRemoveComponent struct {
	ctx   context.Context
	id    string
	reply chan result[struct{}]
}

// viewChildEvent is the upward forward from a component's SendToParent.
// Fire-and-forget: no reply channel.
type viewChildEvent struct {
	componentID string
	event       string
	data        map[string]any
}

type viewReset struct {
	reply chan result[struct{}]
}

type viewShutdown struct {
	reply chan result[struct{}]
}

func (viewUpdateState) viewMsg()          {}
func (viewRender) viewMsg()               {}
func (viewEvent) viewMsg()                {}
func (viewCreateComponent) viewMsg()      {}
func (viewComponentEvent) viewMsg()       {}
func (viewUpdateComponentProps) viewMsg() {}
func (viewRemoveComponent) viewMsg()      {}
func (viewChildEvent) viewMsg()           {}
func (viewReset) viewMsg()                {}
func (viewShutdown) viewMsg()             {}

// =============================================================================
// Session messages
// =============================================================================

type sessionMsg interface{ sessionMsg() }

type sessionMount struct {
	ctx     context.Context
	path    string
	params  map[string]any
	handler Handler
	reply   chan result[MountResult]
}

type sessionEvent struct {
	ctx    context.Context
	event  string
	params map[string]any
	viewID string // empty routes to the first-mounted view
	reply  chan result[EventResult]
}

type sessionUnmount struct {
	ctx    context.Context
	viewID string
	reply  chan result[struct{}]
}

type sessionPing struct {
	reply chan result[struct{}]
}

// sessionTouch bumps the last-activity timestamp without other side effects.
// Sent by the transport on inbound client traffic.
type sessionTouch struct{}

type sessionShutdown struct {
	reply chan result[struct{}]
}

func (sessionMount) sessionMsg()    {}
func (sessionEvent) sessionMsg()    {}
func (sessionUnmount) sessionMsg()  {}
func (sessionPing) sessionMsg()     {}
func (sessionTouch) sessionMsg()    {}
func (sessionShutdown) sessionMsg() {}
