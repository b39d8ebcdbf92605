package live

import (
	"context"
	"errors"
)

// viewRef is a non-owning back-reference from a component to its owning
// view's mailbox. It is relation + lookup, never ownership: the component
// cannot keep the view alive and never touches view state directly.
type viewRef struct {
	mailbox chan<- viewMsg
	done    <-chan struct{}
}

// notifyChildEvent forwards an upward notification without blocking. A
// component must never wait on its parent — the parent may at that moment be
// waiting on the component (e.g. during removal) — so a full view mailbox
// drops the notification with a best-effort semantic instead of deadlocking.
func (r *viewRef) notifyChildEvent(componentID, event string, data map[string]any) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.mailbox <- viewChildEvent{componentID: componentID, event: event, data: data}:
		return true
	case <-r.done:
		return false
	default:
		return false
	}
}

// Component is the actor owning one nested reactive fragment inside a view:
// its own state map, optional handler, and render version/snapshot. A
// component never outlives its view.
type Component struct {
	fragment
	core    *core
	mailbox chan componentMsg
	done    chan struct{}
	parent  *viewRef
}

// newComponent spawns the component actor.
func newComponent(core *core, id, template string, initialState map[string]any, handler Handler, parent *viewRef) *Component {
	c := &Component{
		fragment: fragment{
			scope:    "component",
			id:       id,
			template: template,
			state:    cloneState(initialState),
			handler:  handler,
			bridge:   core.bridge,
			renderer: core.renderer,
			logger:   core.logger.With("component_id", id),
			tracer:   core.tracer,
		},
		core:    core,
		mailbox: make(chan componentMsg, core.cfg.ComponentMailbox),
		done:    make(chan struct{}),
		parent:  parent,
	}
	go c.run()
	return c
}

// ID returns the caller-supplied component id.
func (c *Component) ID() string {
	return c.id
}

// UpdateProps merges props into the component's state.
func (c *Component) UpdateProps(ctx context.Context, props map[string]any) error {
	ch := newReply[struct{}]()
	msg := componentUpdateProps{props: props, reply: ch}
	_, err := ask(ctx, c.mailbox, c.done, componentMsg(msg), ch, c.core.cfg.AskTimeout)
	return err
}

// Event runs the event transition and returns the resulting render.
func (c *Component) Event(ctx context.Context, event string, params map[string]any) (RenderResult, error) {
	ch := newReply[RenderResult]()
	msg := componentEvent{ctx: ctx, event: event, params: params, reply: ch}
	return ask(ctx, c.mailbox, c.done, componentMsg(msg), ch, c.core.cfg.AskTimeout)
}

// Render renders the current state without diffing.
func (c *Component) Render(ctx context.Context) (RenderResult, error) {
	ch := newReply[RenderResult]()
	msg := componentRender{reply: ch}
	return ask(ctx, c.mailbox, c.done, componentMsg(msg), ch, c.core.cfg.AskTimeout)
}

// RenderWithDiff renders and diffs against the previous snapshot.
func (c *Component) RenderWithDiff(ctx context.Context) (RenderResult, error) {
	ch := newReply[RenderResult]()
	msg := componentRender{withDiff: true, reply: ch}
	return ask(ctx, c.mailbox, c.done, componentMsg(msg), ch, c.core.cfg.AskTimeout)
}

// SendToParent asks the component to forward an event to its owning view.
// Fire-and-forget: the send is acknowledged by enqueueing, not by delivery.
func (c *Component) SendToParent(ctx context.Context, event string, data map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, c.core.cfg.AskTimeout)
	defer cancel()
	return send(ctx, c.mailbox, c.done, componentMsg(componentSendToParent{event: event, data: data}))
}

// Shutdown stops the component and waits until its mailbox has drained, so
// no further message can reach it afterward.
func (c *Component) Shutdown(ctx context.Context) error {
	ch := newReply[struct{}]()
	msg := componentShutdown{reply: ch}
	_, err := ask(ctx, c.mailbox, c.done, componentMsg(msg), ch, c.core.cfg.AskTimeout)
	if err != nil && errors.Is(err, ErrShutdown) {
		// Already gone; treat as success.
		return nil
	}
	return err
}

// run is the actor loop. It owns every field of the embedded fragment;
// nothing else reads or writes them.
func (c *Component) run() {
	for {
		msg := <-c.mailbox
		switch m := msg.(type) {
		case componentUpdateProps:
			c.mergeState(m.props)
			reply(m.reply, struct{}{})

		case componentEvent:
			res, err := c.handleEvent(m.ctx, m.event, m.params)
			if err != nil {
				replyErr(m.reply, err)
				continue
			}
			reply(m.reply, res)

		case componentRender:
			res, err := c.render(m.withDiff)
			if err != nil {
				replyErr(m.reply, err)
				continue
			}
			reply(m.reply, res)

		case componentSendToParent:
			if c.parent == nil {
				continue // no back-reference: no-op
			}
			if !c.parent.notifyChildEvent(c.id, m.event, m.data) {
				c.logger.Warn("dropped upward notification", "event", m.event)
			}

		case componentShutdown:
			c.terminate(m)
			return
		}
	}
}

// terminate closes the mailbox to senders, drains what already got in with
// shutdown errors, then acknowledges the shutdown request.
func (c *Component) terminate(req componentShutdown) {
	close(c.done)
	for {
		select {
		case msg := <-c.mailbox:
			rejectComponentMsg(msg)
		default:
			reply(req.reply, struct{}{})
			return
		}
	}
}

func rejectComponentMsg(msg componentMsg) {
	err := ErrShutdown.WithDetail("component shutting down")
	switch m := msg.(type) {
	case componentUpdateProps:
		replyErr(m.reply, err)
	case componentEvent:
		replyErr(m.reply, err)
	case componentRender:
		replyErr(m.reply, err)
	case componentShutdown:
		reply(m.reply, struct{}{}) // idempotent
	case componentSendToParent:
		// fire-and-forget, nothing to reject
	}
}

func cloneState(state map[string]any) map[string]any {
	out := make(map[string]any, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out
}
