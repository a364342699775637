package tree

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Metrics は学習ループの Prometheus メトリクス
// nil の *Metrics に対する記録はすべて何もしない
type Metrics struct {
	batches        prometheus.Counter
	weight         prometheus.Counter
	splits         prometheus.Counter
	grafts         prometheus.Counter
	unroutable     prometheus.Counter
	mergeFailures  *prometheus.CounterVec
	partialFitTime prometheus.Histogram
	leaves         prometheus.Gauge
	depth          prometheus.Gauge
}

// NewMetrics registers the tree metrics on reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		batches: factory.NewCounter(prometheus.CounterOpts{
			Name: "vfdt_batches_total",
			Help: "Micro-batches learned",
		}),
		weight: factory.NewCounter(prometheus.CounterOpts{
			Name: "vfdt_records_weight_total",
			Help: "Total record weight learned",
		}),
		splits: factory.NewCounter(prometheus.CounterOpts{
			Name: "vfdt_splits_total",
			Help: "Leaves replaced by split nodes",
		}),
		grafts: factory.NewCounter(prometheus.CounterOpts{
			Name: "vfdt_grafts_total",
			Help: "Leaves created at absent child slots",
		}),
		unroutable: factory.NewCounter(prometheus.CounterOpts{
			Name: "vfdt_unroutable_records_total",
			Help: "Records absorbed by a split node because no branch applied",
		}),
		mergeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vfdt_merge_failures_total",
			Help: "Failed merges by merge mode",
		}, []string{"try_split"}),
		partialFitTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vfdt_partial_fit_duration_seconds",
			Help:    "PartialFit duration",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		leaves: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vfdt_tree_leaves",
			Help: "Leaves in the canonical tree",
		}),
		depth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vfdt_tree_depth",
			Help: "Depth of the canonical tree",
		}),
	}
}

func (m *Metrics) observeBatch(weight, seconds float64, res blockResult, stats TreeStats) {
	if m == nil {
		return
	}
	m.batches.Inc()
	m.weight.Add(weight)
	m.grafts.Add(float64(res.grafts))
	m.unroutable.Add(float64(res.count))
	m.partialFitTime.Observe(seconds)
	m.leaves.Set(float64(stats.Leaves))
	m.depth.Set(float64(stats.Depth))
}

func (m *Metrics) observeSplit() {
	if m == nil {
		return
	}
	m.splits.Inc()
}

func (m *Metrics) observeMergeFailure(trySplit bool) {
	if m == nil {
		return
	}
	label := "false"
	if trySplit {
		label = "true"
	}
	m.mergeFailures.WithLabelValues(label).Inc()
}

var (
	tracerOnce sync.Once
	treeTracer trace.Tracer
)

// getTracer はグローバルな TracerProvider から遅延取得する
// OTel が未設定の場合は no-op トレーサーになる
func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		treeTracer = otel.Tracer("github.com/YuminosukeSato/vfdt/sklearn/tree")
	})
	return treeTracer
}

func failSpan(span trace.Span, err error, description string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
	return err
}
