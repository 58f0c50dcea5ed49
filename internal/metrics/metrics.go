package metrics

import (
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

// Run outcome labels
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	backtestsTotal   *prometheus.CounterVec
	backtestDuration *prometheus.HistogramVec
	barsProcessed    *prometheus.CounterVec
	trades           *prometheus.CounterVec
	runsActive       prometheus.Gauge
	dataLoads        *prometheus.CounterVec
	dataLoadDuration *prometheus.HistogramVec
}

// NewRegistry creates a new metrics registry with all metrics registered
// under namespace.
func NewRegistry(namespace string) *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backtests_total",
				Help:      "Total number of backtests",
			},
			[]string{"strategy", "status"},
		),
		backtestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backtest_duration_seconds",
				Help:      "Backtest duration in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"strategy"},
		),
		barsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bars_processed_total",
				Help:      "Total number of price bars simulated",
			},
			[]string{"strategy"},
		),
		trades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trades_total",
				Help:      "Total number of position changes",
			},
			[]string{"strategy"},
		),
		runsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "runs_active",
				Help:      "Number of backtests currently running",
			},
		),
		dataLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "data_loads_total",
				Help:      "Total number of price table loads",
			},
			[]string{"format", "status"},
		),
		dataLoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "data_load_duration_seconds",
				Help:      "Price table load duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"format"},
		),
	}

	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.barsProcessed)
	reg.MustRegister(r.trades)
	reg.MustRegister(r.runsActive)
	reg.MustRegister(r.dataLoads)
	reg.MustRegister(r.dataLoadDuration)

	return r
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(strategy, status string, duration float64, bars, trades int) {
	r.backtestsTotal.WithLabelValues(strategy, status).Inc()
	r.backtestDuration.WithLabelValues(strategy).Observe(duration)
	if status == StatusSuccess {
		r.barsProcessed.WithLabelValues(strategy).Add(float64(bars))
		r.trades.WithLabelValues(strategy).Add(float64(trades))
	}
}

// RecordDataLoad records a price table load.
func (r *Registry) RecordDataLoad(format string, err error, duration float64) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailed
	}
	r.dataLoads.WithLabelValues(format, status).Inc()
	r.dataLoadDuration.WithLabelValues(format).Observe(duration)
}

// RunStarted increments the active runs gauge.
func (r *Registry) RunStarted() {
	r.runsActive.Inc()
}

// RunFinished decrements the active runs gauge.
func (r *Registry) RunFinished() {
	r.runsActive.Dec()
}

// WriteText writes every gathered family whose name starts with prefix in
// the Prometheus text exposition format. An empty prefix writes all.
func (r *Registry) WriteText(w io.Writer, prefix string) error {
	mfs, err := r.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if prefix != "" && !strings.HasPrefix(mf.GetName(), prefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

