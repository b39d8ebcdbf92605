package live

import (
	"log/slog"
	"time"

	"github.com/djust-dev/djust/pkg/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config tunes the actor core.
type Config struct {
	// TTL is the idle time after which a session is eligible for removal.
	// Default: 1 hour.
	TTL time.Duration

	// SweepInterval is how often the supervisor runs expiry and health
	// checks. Default: 30 seconds.
	SweepInterval time.Duration

	// AskTimeout bounds every request/response round trip, covering both
	// mailbox backpressure and the reply wait. Default: 5 seconds.
	AskTimeout time.Duration

	// HealthCheckTimeout bounds the supervisor's liveness ping. A session
	// that cannot answer within it is removed. Default: 2 seconds.
	HealthCheckTimeout time.Duration

	// Mailbox capacities, ordered session > view > component to reflect
	// fan-out: one session feeds many views feeding many components.
	// Defaults: 64 / 32 / 16.
	SessionMailbox   int
	ViewMailbox      int
	ComponentMailbox int
}

// withDefaults fills zero fields with defaults.
func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = time.Hour
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 30 * time.Second
	}
	if c.AskTimeout <= 0 {
		c.AskTimeout = 5 * time.Second
	}
	if c.HealthCheckTimeout <= 0 {
		c.HealthCheckTimeout = 2 * time.Second
	}
	if c.SessionMailbox <= 0 {
		c.SessionMailbox = 64
	}
	if c.ViewMailbox <= 0 {
		c.ViewMailbox = 32
	}
	if c.ComponentMailbox <= 0 {
		c.ComponentMailbox = 16
	}
	return c
}

// core bundles what every actor under one supervisor shares: configuration,
// the render function, the embedding-layer bridge, and observability.
type core struct {
	cfg      Config
	renderer render.Renderer
	bridge   *Bridge
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *metrics
}

func newCore(cfg Config, renderer render.Renderer, logger *slog.Logger, m *metrics) *core {
	if logger == nil {
		logger = slog.Default()
	}
	return &core{
		cfg:      cfg.withDefaults(),
		renderer: renderer,
		bridge:   NewBridge(logger),
		logger:   logger,
		tracer:   otel.Tracer("djust"),
		metrics:  m,
	}
}
