package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Indexer Prometheus metrics, labeled by the indexer type tag.
var (
	documentsAddedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sunburnt",
			Name:      "documents_added_total",
			Help:      "Total documents transformed and written to the backend",
		},
		[]string{"type"},
	)

	documentsDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sunburnt",
			Name:      "documents_deleted_total",
			Help:      "Total documents deleted by id",
		},
		[]string{"type"},
	)

	transformFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sunburnt",
			Name:      "transform_failures_total",
			Help:      "Total records whose transformation failed on a required field",
		},
		[]string{"type"},
	)

	batchesFlushedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sunburnt",
			Name:      "batches_flushed_total",
			Help:      "Total reindex batches flushed to the backend",
		},
		[]string{"type"},
	)

	reindexDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sunburnt",
			Name:      "reindex_duration_seconds",
			Help:      "Full reindex pass duration",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"type"},
	)
)

var indexerMetricsRegistered bool

// RegisterIndexerMetrics registers the indexer metrics. Must be called once
// from main; library use without registration keeps the counters inert.
func RegisterIndexerMetrics() {
	if indexerMetricsRegistered {
		return
	}
	prometheus.MustRegister(documentsAddedTotal)
	prometheus.MustRegister(documentsDeletedTotal)
	prometheus.MustRegister(transformFailuresTotal)
	prometheus.MustRegister(batchesFlushedTotal)
	prometheus.MustRegister(reindexDuration)
	indexerMetricsRegistered = true
}

// DocumentsAdded counts documents submitted in one backend add.
func DocumentsAdded(typeTag string, n int) {
	documentsAddedTotal.WithLabelValues(typeTag).Add(float64(n))
}

// DocumentsDeleted counts documents submitted in one delete-by-id batch.
func DocumentsDeleted(typeTag string, n int) {
	documentsDeletedTotal.WithLabelValues(typeTag).Add(float64(n))
}

// TransformFailed counts a record aborted by a required-field failure.
func TransformFailed(typeTag string) {
	transformFailuresTotal.WithLabelValues(typeTag).Inc()
}

// BatchFlushed counts one flushed reindex chunk and its documents.
func BatchFlushed(typeTag string, n int) {
	batchesFlushedTotal.WithLabelValues(typeTag).Inc()
	documentsAddedTotal.WithLabelValues(typeTag).Add(float64(n))
}

// ReindexCompleted observes the duration of a finished reindex pass.
func ReindexCompleted(typeTag string, elapsed time.Duration) {
	reindexDuration.WithLabelValues(typeTag).Observe(elapsed.Seconds())
}
