package showcase

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "showcase"

// Metrics groups the collectors shared by the renderer and the dispatcher. A
// nil *Metrics is valid and records nothing.
type Metrics struct {
	renderDuration prometheus.Histogram
	renderFailures *prometheus.CounterVec

	sends        *prometheus.CounterVec
	sendAttempts prometheus.Histogram
	limiterSwept prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "og_render_duration_seconds",
			Help:      "Time spent rendering a share card, end to end.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		renderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "og_render_failures_total",
			Help:      "Share card renders that failed, by pipeline stage.",
		}, []string{"stage"}),
		sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "email_sends_total",
			Help:      "Email dispatches by operation and outcome.",
		}, []string{"operation", "outcome"}),
		sendAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "email_send_attempts",
			Help:      "Provider calls made per dispatch.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8},
		}),
		limiterSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rate_limiter_swept_keys_total",
			Help:      "Idle rate limiter keys removed by the sweeper.",
		}),
	}

	collectors := []prometheus.Collector{
		m.renderDuration,
		m.renderFailures,
		m.sends,
		m.sendAttempts,
		m.limiterSwept,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "Failed to register collector")
		}
	}

	return m, nil
}

func (m *Metrics) observeRender(d time.Duration) {
	if m == nil {
		return
	}

	m.renderDuration.Observe(d.Seconds())
}

func (m *Metrics) renderFailed(stage string) {
	if m == nil {
		return
	}

	m.renderFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) observeSend(op Operation, result SendResult) {
	if m == nil {
		return
	}

	outcome := "failed"
	switch {
	case result.RateLimited:
		outcome = "rate_limited"
	case result.Success:
		outcome = "sent"
	}

	m.sends.WithLabelValues(string(op), outcome).Inc()

	if result.Attempts > 0 {
		m.sendAttempts.Observe(float64(result.Attempts))
	}
}

func (m *Metrics) swept(n int) {
	if m == nil {
		return
	}

	m.limiterSwept.Add(float64(n))
}
