package uitest

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/qaharness/uiharness/framework"
)

// MetricsTestLogger counts test outcomes in a Prometheus registry of its own. At the end of a
// run the registry is written out with WriteTextfile, in the format the node exporter's
// textfile collector reads.
type MetricsTestLogger struct {
	registry *prometheus.Registry
	started  prometheus.Counter
	outcomes *prometheus.CounterVec
	retries  prometheus.Counter
	duration *prometheus.HistogramVec
	starts   map[string]time.Time
	lock     sync.Mutex
}

func NewMetricsTestLogger(constLabels prometheus.Labels) *MetricsTestLogger {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &MetricsTestLogger{
		registry: registry,
		started: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "uiharness",
			Name:        "tests_started_total",
			Help:        "Number of test scopes started.",
			ConstLabels: constLabels,
		}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "uiharness",
			Name:        "tests_total",
			Help:        "Number of finished test scopes by outcome.",
			ConstLabels: constLabels,
		}, []string{"suite", "outcome"}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "uiharness",
			Name:        "test_retries_total",
			Help:        "Number of times a failed test method was run again.",
			ConstLabels: constLabels,
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "uiharness",
			Name:        "test_duration_seconds",
			Help:        "Wall time of finished test scopes, including retries.",
			Buckets:     []float64{1, 5, 15, 30, 60, 120, 300},
			ConstLabels: constLabels,
		}, []string{"suite"}),
		starts: make(map[string]time.Time),
	}
}

// Registry exposes the collectors, for serving them or for tests.
func (m *MetricsTestLogger) Registry() *prometheus.Registry { return m.registry }

func (m *MetricsTestLogger) TestStarted(id TestID) {
	m.started.Inc()
	m.lock.Lock()
	m.starts[id.String()] = time.Now()
	m.lock.Unlock()
}

func (m *MetricsTestLogger) TestError(TestID, error) {}

func (m *MetricsTestLogger) TestRetrying(TestID, int, int) {
	m.retries.Inc()
}

func (m *MetricsTestLogger) TestFinished(id TestID, result TestResult, _ framework.CapturedOutput) {
	m.outcomes.WithLabelValues(suiteLabel(id), string(result.Outcome)).Inc()
	m.lock.Lock()
	start, ok := m.starts[id.String()]
	delete(m.starts, id.String())
	m.lock.Unlock()
	if ok {
		m.duration.WithLabelValues(suiteLabel(id)).Observe(time.Since(start).Seconds())
	}
}

func (m *MetricsTestLogger) TestSkipped(id TestID, _ string) {
	m.outcomes.WithLabelValues(suiteLabel(id), string(OutcomeSkipped)).Inc()
	m.lock.Lock()
	delete(m.starts, id.String())
	m.lock.Unlock()
}

// WriteTextfile writes the current values of all metrics to path.
func (m *MetricsTestLogger) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func suiteLabel(id TestID) string {
	if len(id) == 0 {
		return ""
	}
	return id[0]
}
