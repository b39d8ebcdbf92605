package live

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the supervisor-scoped Prometheus collectors. Each supervisor
// registers on its own registerer so isolated instances (tests included)
// never collide.
type metrics struct {
	activeSessions      prometheus.Gauge
	mountedViews        prometheus.Gauge
	eventsTotal         *prometheus.CounterVec
	eventDuration       prometheus.Histogram
	sessionsExpired     prometheus.Counter
	healthCheckFailures prometheus.Counter
}

// newMetrics registers the live core collectors on reg.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "djust",
			Subsystem: "live",
			Name:      "active_sessions",
			Help:      "Number of live sessions currently managed by the supervisor.",
		}),
		mountedViews: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "djust",
			Subsystem: "live",
			Name:      "mounted_views",
			Help:      "Number of views currently mounted across all sessions.",
		}),
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "djust",
			Subsystem: "live",
			Name:      "events_total",
			Help:      "Total events processed, by result.",
		}, []string{"result"}),
		eventDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "djust",
			Subsystem: "live",
			Name:      "event_duration_seconds",
			Help:      "Event processing duration including handler call-out and render.",
			Buckets:   prometheus.DefBuckets,
		}),
		sessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "djust",
			Subsystem: "live",
			Name:      "sessions_expired_total",
			Help:      "Sessions removed by the TTL sweep.",
		}),
		healthCheckFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "djust",
			Subsystem: "live",
			Name:      "health_check_failures_total",
			Help:      "Sessions removed after failing a liveness ping.",
		}),
	}
}

func (m *metrics) sessionCreated()  { m.activeSessions.Inc() }
func (m *metrics) sessionRemoved()  { m.activeSessions.Dec() }
func (m *metrics) viewMounted()     { m.mountedViews.Inc() }
func (m *metrics) viewUnmounted()   { m.mountedViews.Dec() }
func (m *metrics) sessionExpired()  { m.sessionsExpired.Inc() }
func (m *metrics) healthCheckFail() { m.healthCheckFailures.Inc() }

func (m *metrics) eventObserved(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsTotal.WithLabelValues(result).Inc()
	m.eventDuration.Observe(d.Seconds())
}
