package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "dupefinder"

// Metrics holds the duplicate-analysis metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal           *prometheus.CounterVec
	AnalysisDurationSeconds prometheus.Histogram
	AnalysesInFlight        prometheus.Gauge
	FilesAnalyzedTotal      prometheus.Counter

	// Strategy metrics
	StrategyDurationSeconds *prometheus.HistogramVec
	StrategyGroupsTotal     *prometheus.CounterVec

	// Result metrics
	GroupsFoundTotal   *prometheus.CounterVec
	LastWastedSpace    prometheus.Gauge
	LowSimilarityTotal prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of duplicate analyses by outcome",
			},
			[]string{"status"},
		),
		AnalysisDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Duration of duplicate analyses in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		AnalysesInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "analyses_in_flight",
				Help:      "Number of analyses currently running",
			},
		),
		FilesAnalyzedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_analyzed_total",
				Help:      "Total number of file records analyzed",
			},
		),
		StrategyDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "strategy_duration_seconds",
				Help:      "Duration of a single detection strategy in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"strategy", "status"},
		),
		StrategyGroupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "strategy_groups_total",
				Help:      "Raw groups emitted by each strategy before reconciliation",
			},
			[]string{"strategy"},
		),
		GroupsFoundTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "groups_found_total",
				Help:      "Reconciled duplicate groups by classification",
			},
			[]string{"classification"},
		),
		LastWastedSpace: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_wasted_space_bytes",
				Help:      "Estimated wasted space reported by the most recent analysis",
			},
		),
		LowSimilarityTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "metadata_low_similarity_groups_total",
				Help:      "Metadata groups whose raw tags fall below the similarity threshold",
			},
		),
	}
}

// AnalysisStarted marks an analysis as in flight
func (m *Metrics) AnalysisStarted() {
	if m == nil {
		return
	}
	m.AnalysesInFlight.Inc()
}

// AnalysisFinished records the outcome of an analysis
func (m *Metrics) AnalysisFinished(status string, files int, duration time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesInFlight.Dec()
	m.AnalysesTotal.WithLabelValues(status).Inc()
	m.AnalysisDurationSeconds.Observe(duration.Seconds())
	m.FilesAnalyzedTotal.Add(float64(files))
}

// ObserveStrategy records one strategy run
func (m *Metrics) ObserveStrategy(strategy, status string, groups int, duration time.Duration) {
	if m == nil {
		return
	}
	m.StrategyDurationSeconds.WithLabelValues(strategy, status).Observe(duration.Seconds())
	m.StrategyGroupsTotal.WithLabelValues(strategy).Add(float64(groups))
}

// ObserveGroups records the reconciled group counts and wasted space of an analysis
func (m *Metrics) ObserveGroups(byClassification map[string]int, wastedBytes int64) {
	if m == nil {
		return
	}
	for classification, n := range byClassification {
		m.GroupsFoundTotal.WithLabelValues(classification).Add(float64(n))
	}
	m.LastWastedSpace.Set(float64(wastedBytes))
}

// LowSimilarityGroup counts a metadata group below the similarity threshold
func (m *Metrics) LowSimilarityGroup() {
	if m == nil {
		return
	}
	m.LowSimilarityTotal.Inc()
}
