package live

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session is the actor owning one client connection's view set. It routes
// inbound messages to the right view and is the unit of lifecycle: TTL
// expiry and health checks operate on sessions.
type Session struct {
	key       string
	createdAt time.Time

	// lastActive is read by the supervisor's sweep from outside the actor
	// goroutine, hence the atomic. Unix nanoseconds.
	lastActive atomic.Int64

	core    *core
	mailbox chan sessionMsg
	done    chan struct{}

	// Views keyed by generated id, insertion-ordered. Default routing goes
	// to the first-inserted view, never to map iteration order.
	views     map[string]*View
	viewOrder []string
}

// newSession spawns the session actor for a session key.
func newSession(core *core, key string) *Session {
	now := time.Now()
	s := &Session{
		key:       key,
		createdAt: now,
		core:      core,
		mailbox:   make(chan sessionMsg, core.cfg.SessionMailbox),
		done:      make(chan struct{}),
		views:     make(map[string]*View),
	}
	s.lastActive.Store(now.UnixNano())
	go s.run()
	return s
}

// Key returns the opaque session key.
func (s *Session) Key() string {
	return s.key
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastActive returns the last-activity timestamp.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Mount allocates a new view for viewPath, seeds it with params, renders it,
// and returns the generated view id plus the rendered HTML. Mounting the
// same path twice deliberately creates two independent views.
func (s *Session) Mount(ctx context.Context, viewPath string, params map[string]any, handler Handler) (MountResult, error) {
	ch := newReply[MountResult]()
	msg := sessionMount{ctx: ctx, path: viewPath, params: params, handler: handler, reply: ch}
	return ask(ctx, s.mailbox, s.done, sessionMsg(msg), ch, s.core.cfg.AskTimeout)
}

// Event routes an event to the view named by viewID, or to the
// first-mounted view when viewID is empty.
func (s *Session) Event(ctx context.Context, event string, params map[string]any, viewID string) (EventResult, error) {
	ch := newReply[EventResult]()
	msg := sessionEvent{ctx: ctx, event: event, params: params, viewID: viewID, reply: ch}
	return ask(ctx, s.mailbox, s.done, sessionMsg(msg), ch, s.core.cfg.AskTimeout)
}

// Unmount destroys one view (cascading to its components).
func (s *Session) Unmount(ctx context.Context, viewID string) error {
	ch := newReply[struct{}]()
	msg := sessionUnmount{ctx: ctx, viewID: viewID, reply: ch}
	_, err := ask(ctx, s.mailbox, s.done, sessionMsg(msg), ch, s.core.cfg.AskTimeout)
	return err
}

// Ping is a pure liveness check: it answers promptly even under load and
// does not count as activity for TTL purposes.
func (s *Session) Ping(ctx context.Context) error {
	ch := newReply[struct{}]()
	msg := sessionPing{reply: ch}
	_, err := ask(ctx, s.mailbox, s.done, sessionMsg(msg), ch, s.core.cfg.AskTimeout)
	return err
}

// Touch bumps the last-activity timestamp. The transport calls it on any
// inbound client traffic so connected-but-idle clients are not expired.
func (s *Session) Touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// Shutdown stops the session, cascading shutdown through every owned view
// and its components before the acknowledgement.
func (s *Session) Shutdown(ctx context.Context) error {
	ch := newReply[struct{}]()
	msg := sessionShutdown{reply: ch}
	_, err := ask(ctx, s.mailbox, s.done, sessionMsg(msg), ch, s.core.cfg.AskTimeout)
	if err != nil && errors.Is(err, ErrShutdown) {
		return nil
	}
	return err
}

// run is the actor loop. Mount, event, and unmount count as activity.
func (s *Session) run() {
	for {
		msg := <-s.mailbox
		switch m := msg.(type) {
		case sessionMount:
			s.Touch()
			s.mount(m)

		case sessionEvent:
			s.Touch()
			s.event(m)

		case sessionUnmount:
			s.Touch()
			s.unmount(m)

		case sessionPing:
			reply(m.reply, struct{}{})

		case sessionTouch:
			s.Touch()

		case sessionShutdown:
			s.terminate(m)
			return
		}
	}
}

func (s *Session) mount(m sessionMount) {
	id := uuid.NewString()
	view := newView(s.core, id, m.path, m.handler)

	if err := view.UpdateState(m.ctx, m.params); err != nil {
		_ = view.Shutdown(context.Background())
		replyErr(m.reply, err)
		return
	}
	res, err := view.RenderWithDiff(m.ctx)
	if err != nil {
		_ = view.Shutdown(context.Background())
		replyErr(m.reply, err)
		return
	}

	s.views[id] = view
	s.viewOrder = append(s.viewOrder, id)
	s.core.metrics.viewMounted()
	s.core.logger.Info("mounted view", "session_key", s.key, "view_id", id, "path", m.path)

	reply(m.reply, MountResult{
		ViewID:     id,
		SessionKey: s.key,
		HTML:       res.HTML,
		Version:    res.Version,
	})
}

func (s *Session) event(m sessionEvent) {
	view, err := s.route(m.viewID)
	if err != nil {
		replyErr(m.reply, err)
		return
	}

	start := time.Now()
	res, err := view.Event(m.ctx, m.event, m.params)
	s.core.metrics.eventObserved(time.Since(start), err)
	if err != nil {
		replyErr(m.reply, err)
		return
	}
	reply(m.reply, EventResult{ViewID: view.ID(), RenderResult: res})
}

// route resolves the target view: explicit id, or the first-inserted view
// when the id is omitted. Insertion order is the contract — callers that
// omit the id rely on deterministic default routing.
func (s *Session) route(viewID string) (*View, error) {
	if viewID != "" {
		view, ok := s.views[viewID]
		if !ok {
			return nil, ErrViewNotFound.WithDetail("view %q in session %q", viewID, s.key)
		}
		return view, nil
	}
	if len(s.viewOrder) == 0 {
		return nil, ErrNoViews.WithDetail("session %q", s.key)
	}
	return s.views[s.viewOrder[0]], nil
}

func (s *Session) unmount(m sessionUnmount) {
	view, ok := s.views[m.viewID]
	if !ok {
		replyErr(m.reply, ErrViewNotFound.WithDetail("view %q in session %q", m.viewID, s.key))
		return
	}

	if err := view.Shutdown(m.ctx); err != nil {
		replyErr(m.reply, err)
		return
	}

	delete(s.views, m.viewID)
	for i, id := range s.viewOrder {
		if id == m.viewID {
			s.viewOrder = append(s.viewOrder[:i], s.viewOrder[i+1:]...)
			break
		}
	}
	s.core.metrics.viewUnmounted()
	reply(m.reply, struct{}{})
}

// terminate cascades shutdown through every view in insertion order, then
// drains the session mailbox and acknowledges.
func (s *Session) terminate(req sessionShutdown) {
	close(s.done)

	ctx, cancel := context.WithTimeout(context.Background(), s.core.cfg.AskTimeout)
	defer cancel()
	for _, id := range s.viewOrder {
		if err := s.views[id].Shutdown(ctx); err != nil {
			s.core.logger.Warn("view did not drain on shutdown",
				"session_key", s.key, "view_id", id, "err", err)
		}
		s.core.metrics.viewUnmounted()
	}
	s.views = nil
	s.viewOrder = nil

	for {
		select {
		case msg := <-s.mailbox:
			rejectSessionMsg(msg)
		default:
			reply(req.reply, struct{}{})
			return
		}
	}
}

func rejectSessionMsg(msg sessionMsg) {
	err := ErrShutdown.WithDetail("session shutting down")
	switch m := msg.(type) {
	case sessionMount:
		replyErr(m.reply, err)
	case sessionEvent:
		replyErr(m.reply, err)
	case sessionUnmount:
		replyErr(m.reply, err)
	case sessionPing:
		replyErr(m.reply, err)
	case sessionShutdown:
		reply(m.reply, struct{}{}) // idempotent
	case sessionTouch:
		// fire-and-forget, nothing to reject
	}
}
