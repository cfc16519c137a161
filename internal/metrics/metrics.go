package metrics

import (
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dj-oyu/plant-monitor/pkg/types"
)

const namespace = "plantmon"

// Metrics holds all application metrics
type Metrics struct {
	// Frame pipeline counters
	FramesCaptured atomic.Uint64
	FramesAnalyzed atomic.Uint64
	FramesStreamed atomic.Uint64

	// Error counters
	CaptureErrors     atomic.Uint64
	EncodeErrors      atomic.Uint64
	StreamDisconnects atomic.Uint64
	AcceptErrors      atomic.Uint64
	HandlerPanics     atomic.Uint64
	OpsFailures       atomic.Uint64

	// Network
	ListenerRebinds atomic.Uint64
	WiFiAttempts    atomic.Uint64
	ClientsServed   atomic.Uint64
	ActiveStream    atomic.Uint64 // 0 = idle, 1 = a client is streaming

	// Last analysis, stored as float64 bits
	lastHealth     atomic.Uint64
	lastPlant      atomic.Uint64
	lastFruit      atomic.Uint64
	lastGreenArea  atomic.Uint64
	lastYellowArea atomic.Uint64

	AnalyzeLatencyUs atomic.Uint64 // Last analysis latency in microseconds

	requests *prometheus.CounterVec

	// Prometheus collectors
	registry *prometheus.Registry
	started  time.Time
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests served, by route",
		}, []string{"route"}),
	}

	m.registerPrometheusMetrics()
	return m
}

type counterDef struct {
	name string
	help string
	v    *atomic.Uint64
}

// registerPrometheusMetrics registers all metrics with Prometheus
func (m *Metrics) registerPrometheusMetrics() {
	counters := []counterDef{
		{"frames_captured_total", "Frames delivered by the frame source", &m.FramesCaptured},
		{"frames_analyzed_total", "Frames run through the plant analyzer", &m.FramesAnalyzed},
		{"frames_streamed_total", "JPEG parts written to stream clients", &m.FramesStreamed},
		{"capture_errors_total", "Frame source failures", &m.CaptureErrors},
		{"encode_errors_total", "JPEG encode failures", &m.EncodeErrors},
		{"stream_disconnects_total", "Streams closed by a write or capture failure", &m.StreamDisconnects},
		{"accept_errors_total", "Listener accept failures", &m.AcceptErrors},
		{"handler_panics_total", "Connection handlers recovered from a panic", &m.HandlerPanics},
		{"ops_failures_total", "Times the ops listener failed and was restarted", &m.OpsFailures},
		{"listener_rebinds_total", "Times the listening socket was recreated", &m.ListenerRebinds},
		{"wifi_attempts_total", "Wi-Fi association polls", &m.WiFiAttempts},
		{"clients_served_total", "Accepted client connections", &m.ClientsServed},
	}
	for _, c := range counters {
		v := c.v
		m.registry.MustRegister(prometheus.NewCounterFunc(
			prometheus.CounterOpts{Namespace: namespace, Name: c.name, Help: c.help},
			func() float64 { return float64(v.Load()) },
		))
	}

	gauges := []struct {
		name string
		help string
		fn   func() float64
	}{
		{"stream_active", "Stream client connected (0=idle, 1=streaming)", func() float64 { return float64(m.ActiveStream.Load()) }},
		{"health_ratio", "Last computed health ratio (0-100)", loadFloat(&m.lastHealth)},
		{"plant_detected", "Plant present in the last analyzed frame", loadFloat(&m.lastPlant)},
		{"fruit_detected", "Fruit present in the last analyzed frame", loadFloat(&m.lastFruit)},
		{"green_area", "Green blob area in the last analyzed frame", loadFloat(&m.lastGreenArea)},
		{"yellow_area", "Yellow blob area in the last analyzed frame", loadFloat(&m.lastYellowArea)},
		{"analyze_latency_us", "Last plant analysis latency in microseconds", func() float64 { return float64(m.AnalyzeLatencyUs.Load()) }},
		{"uptime_seconds", "Seconds since the process started", func() float64 { return time.Since(m.started).Seconds() }},
	}
	for _, g := range gauges {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Namespace: namespace, Name: g.name, Help: g.help},
			g.fn,
		))
	}

	m.registry.MustRegister(m.requests)
}

func loadFloat(v *atomic.Uint64) func() float64 {
	return func() float64 { return math.Float64frombits(v.Load()) }
}

func storeFloat(v *atomic.Uint64, f float64) {
	v.Store(math.Float64bits(f))
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ObserveResult records one analysis and how long it took.
func (m *Metrics) ObserveResult(r types.AnalysisResult, took time.Duration) {
	m.FramesAnalyzed.Add(1)
	storeFloat(&m.lastHealth, r.HealthRatio)
	storeFloat(&m.lastPlant, boolFloat(r.PlantDetected))
	storeFloat(&m.lastFruit, boolFloat(r.FruitDetected))
	storeFloat(&m.lastGreenArea, float64(r.GreenArea))
	storeFloat(&m.lastYellowArea, float64(r.YellowArea))
	m.AnalyzeLatencyUs.Store(uint64(took.Microseconds()))
}

// CountRequest increments the per-route request counter.
func (m *Metrics) CountRequest(route string) {
	m.requests.WithLabelValues(route).Inc()
}

// Snapshot is a point-in-time copy used by the health endpoint.
type Snapshot struct {
	Uptime         string  `json:"uptime"`
	ClientsServed  uint64  `json:"clients_served"`
	FramesAnalyzed uint64  `json:"frames_analyzed"`
	FramesStreamed uint64  `json:"frames_streamed"`
	Streaming      bool    `json:"streaming"`
	HealthRatio    float64 `json:"health_ratio"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Uptime:         time.Since(m.started).Truncate(time.Second).String(),
		ClientsServed:  m.ClientsServed.Load(),
		FramesAnalyzed: m.FramesAnalyzed.Load(),
		FramesStreamed: m.FramesStreamed.Load(),
		Streaming:      m.ActiveStream.Load() == 1,
		HealthRatio:    math.Float64frombits(m.lastHealth.Load()),
	}
}

// Registry exposes the private registry for Gather in tests and tooling.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
