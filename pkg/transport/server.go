package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/djust-dev/djust/pkg/live"
)

// ServerConfig configures the transport bridge.
type ServerConfig struct {
	// ReadLimit bounds inbound message size in bytes. Default: 64 KiB.
	ReadLimit int64

	// CheckOrigin overrides the upgrader's origin check. Nil keeps the
	// gorilla default (same-origin).
	CheckOrigin func(*http.Request) bool

	// MetricsHandler, if set, is mounted at /metrics.
	MetricsHandler http.Handler

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server exposes the live core over WebSocket at /live, plus /healthz and
// optionally /metrics.
type Server struct {
	supervisor *live.Supervisor
	upgrader   websocket.Upgrader
	readLimit  int64
	logger     *slog.Logger
	router     chi.Router
}

// NewServer builds the HTTP surface around a supervisor.
func NewServer(supervisor *live.Supervisor, config ServerConfig) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.ReadLimit <= 0 {
		config.ReadLimit = 64 << 10
	}

	s := &Server{
		supervisor: supervisor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		readLimit: config.ReadLimit,
		logger:    config.Logger,
	}

	r := chi.NewRouter()
	r.Get("/live", s.handleLive)
	r.Get("/healthz", s.handleHealthz)
	if config.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", config.MetricsHandler)
	}
	s.router = r
	return s
}

// Handler returns the HTTP handler for mounting into a server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleLive upgrades the connection and pumps envelopes between the client
// and its session actor. The session key comes from the ?session= query
// param so reconnecting clients find their state; absent that, a fresh key
// is generated. Closing the connection does NOT shut the session down — it
// lingers for the TTL so the client can reconnect.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.readLimit)

	sessionKey := r.URL.Query().Get("session")
	if sessionKey == "" {
		sessionKey = uuid.NewString()
	}
	session := s.supervisor.GetOrCreateSession(sessionKey)
	if session == nil {
		s.logger.Warn("rejecting connection, supervisor shut down")
		return
	}
	logger := s.logger.With("session_key", sessionKey)
	logger.Info("client connected")

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("read failed", "err", err)
			}
			logger.Info("client disconnected")
			return
		}
		session.Touch()

		reply := s.dispatch(r.Context(), session, env)
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("write failed", "err", err)
			return
		}
	}
}

// dispatch translates one inbound envelope into a session call and its
// outcome into an outbound envelope. Core errors never tear the connection
// down; they surface as typed error envelopes.
func (s *Server) dispatch(ctx context.Context, session *live.Session, env Envelope) Reply {
	switch env.Type {
	case TypeMount:
		res, err := session.Mount(ctx, env.View, env.Params, nil)
		if err != nil {
			return errorReply(err)
		}
		return Reply{
			Type:       TypeMounted,
			SessionKey: res.SessionKey,
			ViewID:     res.ViewID,
			HTML:       res.HTML,
			Version:    res.Version,
		}

	case TypeEvent:
		res, err := session.Event(ctx, env.Event, env.Params, env.ViewID)
		if err != nil {
			return errorReply(err)
		}
		if len(res.Patches) > 0 {
			return Reply{
				Type:    TypePatch,
				ViewID:  res.ViewID,
				Patches: res.Patches,
				Version: res.Version,
			}
		}
		return Reply{
			Type:    TypeHTMLUpdate,
			ViewID:  res.ViewID,
			HTML:    res.HTML,
			Version: res.Version,
		}

	case TypePing:
		if err := session.Ping(ctx); err != nil {
			return errorReply(err)
		}
		return Reply{Type: TypePong}

	default:
		return errorReply(errInvalidEnvelope(env.Type))
	}
}
