package live

import (
	"context"
	"errors"
)

// View is the actor owning one mounted reactive view: its serialized
// template state, an optional embedding-layer handler, and zero or more
// component actors keyed by id in insertion order.
type View struct {
	fragment
	core    *core
	mailbox chan viewMsg
	done    chan struct{}

	// Component ownership. Insertion order is load-bearing: removal keeps
	// the order of survivors, and iteration for shutdown follows it.
	components     map[string]*Component
	componentOrder []string
}

// newView spawns the view actor. The template reference is the mounted
// view path; resolution belongs to the renderer.
func newView(core *core, id, template string, handler Handler) *View {
	v := &View{
		fragment: fragment{
			scope:    "view",
			id:       id,
			template: template,
			state:    make(map[string]any),
			handler:  handler,
			bridge:   core.bridge,
			renderer: core.renderer,
			logger:   core.logger.With("view_id", id),
			tracer:   core.tracer,
		},
		core:       core,
		mailbox:    make(chan viewMsg, core.cfg.ViewMailbox),
		done:       make(chan struct{}),
		components: make(map[string]*Component),
	}
	go v.run()
	return v
}

// ID returns the generated view id.
func (v *View) ID() string {
	return v.id
}

// ref returns the non-owning handle handed to child components.
func (v *View) ref() *viewRef {
	return &viewRef{mailbox: v.mailbox, done: v.done}
}

// UpdateState merges updates into the view's state.
func (v *View) UpdateState(ctx context.Context, updates map[string]any) error {
	ch := newReply[struct{}]()
	msg := viewUpdateState{updates: updates, reply: ch}
	_, err := ask(ctx, v.mailbox, v.done, viewMsg(msg), ch, v.core.cfg.AskTimeout)
	return err
}

// Render renders the current state without diffing.
func (v *View) Render(ctx context.Context) (RenderResult, error) {
	ch := newReply[RenderResult]()
	msg := viewRender{reply: ch}
	return ask(ctx, v.mailbox, v.done, viewMsg(msg), ch, v.core.cfg.AskTimeout)
}

// RenderWithDiff renders and diffs against the previous snapshot.
func (v *View) RenderWithDiff(ctx context.Context) (RenderResult, error) {
	ch := newReply[RenderResult]()
	msg := viewRender{withDiff: true, reply: ch}
	return ask(ctx, v.mailbox, v.done, viewMsg(msg), ch, v.core.cfg.AskTimeout)
}

// Event runs the event transition against the view's own handler/state.
func (v *View) Event(ctx context.Context, event string, params map[string]any) (RenderResult, error) {
	ch := newReply[RenderResult]()
	msg := viewEvent{ctx: ctx, event: event, params: params, reply: ch}
	return ask(ctx, v.mailbox, v.done, viewMsg(msg), ch, v.core.cfg.AskTimeout)
}

// CreateComponent creates a child component and returns its first render.
func (v *View) CreateComponent(ctx context.Context, id, template string, initialState map[string]any, handler Handler) (RenderResult, error) {
	ch := newReply[RenderResult]()
	msg := viewCreateComponent{ctx: ctx, id: id, tmpl: template, state: initialState, handler: handler, reply: ch}
	return ask(ctx, v.mailbox, v.done, viewMsg(msg), ch, v.core.cfg.AskTimeout)
}

// ComponentEvent routes an event to an owned component.
func (v *View) ComponentEvent(ctx context.Context, id, event string, params map[string]any) (RenderResult, error) {
	ch := newReply[RenderResult]()
	msg := viewComponentEvent{ctx: ctx, id: id, event: event, params: params, reply: ch}
	return ask(ctx, v.mailbox, v.done, viewMsg(msg), ch, v.core.cfg.AskTimeout)
}

// UpdateComponentProps merges props into an owned component's state.
func (v *View) UpdateComponentProps(ctx context.Context, id string, props map[string]any) error {
	ch := newReply[struct{}]()
	msg := viewUpdateComponentProps{ctx: ctx, id: id, props: props, reply: ch}
	_, err := ask(ctx, v.mailbox, v.done, viewMsg(msg), ch, v.core.cfg.AskTimeout)
	return err
}

// RemoveComponent shuts the component down and waits for it to drain before
// returning, guaranteeing no further message reaches it.
func (v *View) RemoveComponent(ctx context.Context, id string) error {
	ch := newReply[struct{}]()
	msg := viewRemoveComponent{ctx: ctx, id: id, reply: ch}
	_, err := ask(ctx, v.mailbox, v.done, viewMsg(msg), ch, v.core.cfg.AskTimeout)
	return err
}

// Reset clears the view's state back to empty.
func (v *View) Reset(ctx context.Context) error {
	ch := newReply[struct{}]()
	msg := viewReset{reply: ch}
	_, err := ask(ctx, v.mailbox, v.done, viewMsg(msg), ch, v.core.cfg.AskTimeout)
	return err
}

// Shutdown stops the view. Every owned component is shut down and drained
// first; the view's own mailbox drains before the acknowledgement.
func (v *View) Shutdown(ctx context.Context) error {
	ch := newReply[struct{}]()
	msg := viewShutdown{reply: ch}
	_, err := ask(ctx, v.mailbox, v.done, viewMsg(msg), ch, v.core.cfg.AskTimeout)
	if err != nil && errors.Is(err, ErrShutdown) {
		return nil
	}
	return err
}

// run is the actor loop.
func (v *View) run() {
	for {
		msg := <-v.mailbox
		switch m := msg.(type) {
		case viewUpdateState:
			v.mergeState(m.updates)
			reply(m.reply, struct{}{})

		case viewRender:
			res, err := v.render(m.withDiff)
			if err != nil {
				replyErr(m.reply, err)
				continue
			}
			reply(m.reply, res)

		case viewEvent:
			res, err := v.handleEvent(m.ctx, m.event, m.params)
			if err != nil {
				replyErr(m.reply, err)
				continue
			}
			reply(m.reply, res)

		case viewCreateComponent:
			v.createComponent(m)

		case viewComponentEvent:
			comp, ok := v.components[m.id]
			if !ok {
				replyErr(m.reply, ErrComponentNotFound.WithDetail("component %q in view %q", m.id, v.id))
				continue
			}
			res, err := comp.Event(m.ctx, m.event, m.params)
			if err != nil {
				replyErr(m.reply, err)
				continue
			}
			reply(m.reply, res)

		case viewUpdateComponentProps:
			comp, ok := v.components[m.id]
			if !ok {
				replyErr(m.reply, ErrComponentNotFound.WithDetail("component %q in view %q", m.id, v.id))
				continue
			}
			if err := comp.UpdateProps(m.ctx, m.props); err != nil {
				replyErr(m.reply, err)
				continue
			}
			reply(m.reply, struct{}{})

		case viewRemoveComponent:
			v.removeComponent(m)

		case viewChildEvent:
			if v.handler == nil {
				// Non-fatal: nothing listens upward.
				v.logger.Debug("dropping component event, no handler bound",
					"component_id", m.componentID, "event", m.event)
				continue
			}
			v.bridge.NotifyChildEvent(v.handler, m.componentID, m.event, m.data)

		case viewReset:
			v.state = make(map[string]any)
			reply(m.reply, struct{}{})

		case viewShutdown:
			v.terminate(m)
			return
		}
	}
}

func (v *View) createComponent(m viewCreateComponent) {
	if _, exists := v.components[m.id]; exists {
		replyErr(m.reply, ErrDuplicateComponent.WithDetail("component %q in view %q", m.id, v.id))
		return
	}

	comp := newComponent(v.core, m.id, m.tmpl, m.state, m.handler, v.ref())
	res, err := comp.RenderWithDiff(m.ctx)
	if err != nil {
		// Creation failed cleanly: tear the fresh actor down again.
		_ = comp.Shutdown(context.Background())
		replyErr(m.reply, err)
		return
	}

	v.components[m.id] = comp
	v.componentOrder = append(v.componentOrder, m.id)
	reply(m.reply, res)
}

func (v *View) removeComponent(m viewRemoveComponent) {
	comp, ok := v.components[m.id]
	if !ok {
		replyErr(m.reply, ErrComponentNotFound.WithDetail("component %q in view %q", m.id, v.id))
		return
	}

	if err := comp.Shutdown(m.ctx); err != nil {
		replyErr(m.reply, err)
		return
	}

	delete(v.components, m.id)
	for i, id := range v.componentOrder {
		if id == m.id {
			v.componentOrder = append(v.componentOrder[:i], v.componentOrder[i+1:]...)
			break
		}
	}
	reply(m.reply, struct{}{})
}

// terminate cascades shutdown to owned components in insertion order, waits
// for each to drain, then drains the view's own mailbox and acknowledges.
func (v *View) terminate(req viewShutdown) {
	close(v.done)

	ctx, cancel := context.WithTimeout(context.Background(), v.core.cfg.AskTimeout)
	defer cancel()
	for _, id := range v.componentOrder {
		if err := v.components[id].Shutdown(ctx); err != nil {
			v.logger.Warn("component did not drain on shutdown", "component_id", id, "err", err)
		}
	}
	v.components = nil
	v.componentOrder = nil

	for {
		select {
		case msg := <-v.mailbox:
			rejectViewMsg(msg)
		default:
			reply(req.reply, struct{}{})
			return
		}
	}
}

func rejectViewMsg(msg viewMsg) {
	err := ErrShutdown.WithDetail("view shutting down")
	switch m := msg.(type) {
	case viewUpdateState:
		replyErr(m.reply, err)
	case viewRender:
		replyErr(m.reply, err)
	case viewEvent:
		replyErr(m.reply, err)
	case viewCreateComponent:
		replyErr(m.reply, err)
	case viewComponentEvent:
		replyErr(m.reply, err)
	case viewUpdateComponentProps:
		replyErr(m.reply, err)
	case viewRemoveComponent:
		replyErr(m.reply, err)
	case viewReset:
		replyErr(m.reply, err)
	case viewShutdown:
		reply(m.reply, struct{}{}) // idempotent
	case viewChildEvent:
		// fire-and-forget, nothing to reject
	}
}
