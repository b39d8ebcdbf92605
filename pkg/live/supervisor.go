package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/djust-dev/djust/pkg/render"
	"github.com/prometheus/client_golang/prometheus"
)

// Stats is a point-in-time snapshot of supervisor state.
type Stats struct {
	ActiveSessions int     `json:"active_sessions"`
	TTLSeconds     float64 `json:"ttl_seconds"`
}

// Supervisor manages session actor lifecycle: creation and retrieval by
// session key, periodic idle expiry and health-check sweeps, and bulk
// shutdown. It is an explicitly constructed singleton — callers inject it
// where needed and own its Start/ShutdownAll lifecycle; tests build isolated
// instances.
type Supervisor struct {
	core *core

	mu       sync.RWMutex
	sessions map[string]*Session
	stopped  bool

	done chan struct{}
	wg   sync.WaitGroup
}

// Option configures a Supervisor.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
}

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetricsRegisterer sets where the live collectors register. The default
// is a private registry so isolated supervisors never collide; pass a shared
// registry to expose metrics.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// NewSupervisor creates a supervisor. Call Start to begin sweeping and
// ShutdownAll to tear everything down.
func NewSupervisor(cfg Config, renderer render.Renderer, opts ...Option) *Supervisor {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registerer == nil {
		o.registerer = prometheus.NewRegistry()
	}

	return &Supervisor{
		core:     newCore(cfg, renderer, o.logger, newMetrics(o.registerer)),
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
}

// Start launches the periodic expiry/health-check sweep.
func (s *Supervisor) Start() {
	s.wg.Add(1)
	go s.sweepLoop()
}

// GetOrCreateSession returns the session for key, creating it on first use.
// Returns nil after ShutdownAll.
func (s *Supervisor) GetOrCreateSession(key string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[key]; ok {
		return sess
	}
	if s.stopped {
		return nil
	}
	sess = newSession(s.core, key)
	s.sessions[key] = sess
	s.core.metrics.sessionCreated()
	s.core.logger.Info("created session", "session_key", key)
	return sess
}

// Session returns the session for key without creating one.
func (s *Supervisor) Session(key string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[key]
	return sess, ok
}

// RemoveSession shuts the session down and forgets it. Callers use it when a
// request timed out and the session must be treated as unresponsive.
func (s *Supervisor) RemoveSession(ctx context.Context, key string) {
	s.mu.Lock()
	sess, ok := s.sessions[key]
	if ok {
		delete(s.sessions, key)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	if err := sess.Shutdown(ctx); err != nil {
		s.core.logger.Warn("session did not drain on removal", "session_key", key, "err", err)
	}
	s.core.metrics.sessionRemoved()
}

// Stats reports the active session count and the configured TTL.
func (s *Supervisor) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		ActiveSessions: len(s.sessions),
		TTLSeconds:     s.core.cfg.TTL.Seconds(),
	}
}

// ShutdownAll stops the sweep loop and shuts down every session, cascading
// through views and components. The supervisor is unusable afterward.
func (s *Supervisor) ShutdownAll(ctx context.Context) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	sessions := make(map[string]*Session, len(s.sessions))
	for key, sess := range s.sessions {
		sessions[key] = sess
	}
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()

	for key, sess := range sessions {
		if err := sess.Shutdown(ctx); err != nil {
			s.core.logger.Warn("session did not drain on shutdown", "session_key", key, "err", err)
		}
		s.core.metrics.sessionRemoved()
	}
	s.core.logger.Info("supervisor shut down", "sessions", len(sessions))
}

// sweepLoop runs expiry and health checks at the configured interval.
func (s *Supervisor) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.core.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep removes idle sessions past their TTL, then pings the survivors and
// removes any that fail to answer within the health-check bound. An
// unresponsive session forces the client layer to re-mount.
func (s *Supervisor) sweep() {
	now := time.Now()

	s.mu.RLock()
	candidates := make(map[string]*Session, len(s.sessions))
	for key, sess := range s.sessions {
		candidates[key] = sess
	}
	s.mu.RUnlock()

	for key, sess := range candidates {
		idle := now.Sub(sess.LastActive())
		if idle > s.core.cfg.TTL {
			s.core.logger.Info("expiring idle session", "session_key", key, "idle", idle)
			s.RemoveSession(context.Background(), key)
			s.core.metrics.sessionExpired()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.core.cfg.HealthCheckTimeout)
		err := sess.Ping(ctx)
		cancel()
		if err != nil {
			s.core.logger.Warn("session failed health check", "session_key", key, "err", err)
			s.RemoveSession(context.Background(), key)
			s.core.metrics.healthCheckFail()
		}
	}
}
