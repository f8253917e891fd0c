// Package metrics exposes the outcome of a run as prometheus metrics, for
// instance as a node_exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"batrun/internal/domain"
	"batrun/internal/execution"
)

const MetricsNamespace = "batrun"

var scopeKinds = map[domain.ScopeKind]string{
	domain.ScopeSuite: "suite",
	domain.ScopeFile:  "file",
	domain.ScopeTest:  "test",
}

// Collector records the events of a run. It implements execution.Reporter.
type Collector struct {
	registry *prometheus.Registry

	testsTotal     *prometheus.CounterVec
	fixturesTotal  *prometheus.CounterVec
	scopeDuration  *prometheus.HistogramVec
	runInfo        *prometheus.GaugeVec
	runDuration    prometheus.Gauge
	plannedTests   prometheus.Gauge
	lastRunSuccess prometheus.Gauge
}

// NewCollector creates a Collector with its own registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		testsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "tests_total",
			Help:      "Count of test results per outcome",
		}, []string{
			"device",
			"result",
		}),
		fixturesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "fixtures_total",
			Help:      "Count of setup and teardown results per scope and outcome",
		}, []string{
			"scope",
			"function",
			"result",
		}),
		scopeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "scope_duration_seconds",
			Help:      "Duration of executed fixtures and tests",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		}, []string{
			"scope",
		}),
		runInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_info",
			Help:      "Identity of the last run",
		}, []string{
			"run_id",
			"dry_run",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		plannedTests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "planned_tests",
			Help:      "Number of test triples planned for the last run",
		}),
		lastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "last_run_success",
			Help:      "1 if the last run had no failed test",
		}),
	}
}

// Registry returns the registry holding the collector's metrics
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RunStarted(info execution.RunInfo) {
	c.runInfo.WithLabelValues(info.ID, fmt.Sprint(info.DryRun)).Set(1)
	c.plannedTests.Set(float64(info.Planned))
}

func (c *Collector) Progress(int, int, string) {}

func (c *Collector) ScopeFinished(result domain.ScopeResult) {
	kind := scopeKinds[result.Scope.Kind]
	outcome := strings.ToLower(result.Outcome.String())

	if result.Scope.Kind == domain.ScopeTest {
		c.testsTotal.WithLabelValues(result.Scope.Device, outcome).Inc()
	} else {
		c.fixturesTotal.WithLabelValues(kind, result.Scope.Function, outcome).Inc()
	}

	// Skipped scopes never ran
	if result.LogPath != "" {
		c.scopeDuration.WithLabelValues(kind).Observe(result.Duration.Seconds())
	}
}

func (c *Collector) Summary(stats domain.RunStats, elapsed time.Duration) {
	c.runDuration.Set(elapsed.Seconds())
	if stats.Failed == 0 {
		c.lastRunSuccess.Set(1)
	} else {
		c.lastRunSuccess.Set(0)
	}
}

// WriteTextfile atomically writes the metrics in the text exposition format
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
