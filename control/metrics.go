// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for the bridge: frames, keystrokes, handshakes,
// teardowns and the acceptor state. All methods are safe on a nil *Metrics.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/momentics/hioload-canvas/api"
)

// MetricsConfig configures the collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "hioload_canvas").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry receives the collectors (default: prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the bridge collectors.
type Metrics struct {
	framesSent   *prometheus.CounterVec
	frameBytes   prometheus.Counter
	changedRatio prometheus.Histogram
	keystrokes   prometheus.Counter
	handshakes   *prometheus.CounterVec
	teardowns    *prometheus.CounterVec
	sessions     prometheus.Counter
	state        prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "hioload_canvas",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		framesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "frames_sent_total",
			Help:        "Binary frames sent to the client, by kind (full or delta)",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind"}),

		frameBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "frame_payload_bytes_total",
			Help:        "Encoded image bytes sent in binary frames",
			ConstLabels: cfg.ConstLabels,
		}),

		changedRatio: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "frame_changed_pixel_ratio",
			Help:        "Fraction of pixels carrying color data per sent frame",
			ConstLabels: cfg.ConstLabels,
			Buckets:     []float64{0, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		keystrokes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "keystrokes_total",
			Help:        "Keystrokes received from the client",
			ConstLabels: cfg.ConstLabels,
		}),

		handshakes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "handshakes_total",
			Help:        "Requests seen on freshly accepted sockets, by outcome",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind"}),

		teardowns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "session_teardowns_total",
			Help:        "Established sessions torn down, by reason",
			ConstLabels: cfg.ConstLabels,
		}, []string{"reason"}),

		sessions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "sessions_established_total",
			Help:        "Websocket sessions established",
			ConstLabels: cfg.ConstLabels,
		}),

		state: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "acceptor_state",
			Help:        "Acceptor state: 0 listening, 1 handshaking, 2 established, 3 closed",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// FrameSent records one binary frame.
func (m *Metrics) FrameSent(payloadBytes int, full bool, changed, total int) {
	if m == nil {
		return
	}
	kind := "delta"
	if full {
		kind = "full"
	}
	m.framesSent.WithLabelValues(kind).Inc()
	m.frameBytes.Add(float64(payloadBytes))
	if total > 0 {
		m.changedRatio.Observe(float64(changed) / float64(total))
	}
}

// KeyReceived records one keystroke.
func (m *Metrics) KeyReceived() {
	if m == nil {
		return
	}
	m.keystrokes.Inc()
}

// Handshake records the classification of one accepted socket.
func (m *Metrics) Handshake(kind string) {
	if m == nil {
		return
	}
	m.handshakes.WithLabelValues(kind).Inc()
}

// SessionStarted records a successful upgrade.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

// Teardown records a session teardown.
func (m *Metrics) Teardown(reason api.Result) {
	if m == nil {
		return
	}
	m.teardowns.WithLabelValues(reason.String()).Inc()
}

// SetState publishes the acceptor state.
func (m *Metrics) SetState(s api.State) {
	if m == nil {
		return
	}
	m.state.Set(float64(s))
}
