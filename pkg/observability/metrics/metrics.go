// Package metrics exposes Prometheus collectors for the scoring service.
package metrics

import (
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cvdrisk"

// Outcome labels.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

var (
	scoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scoring",
		Name:      "scores_total",
		Help:      "Risk scores computed, by model and outcome.",
	}, []string{"model", "status"})

	scoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scoring",
		Name:      "score_duration_seconds",
		Help:      "Time spent evaluating one model on one record.",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	}, []string{"model"})

	riskValues = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scoring",
		Name:      "risk",
		Help:      "Distribution of predicted risk by model.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.075, 0.1, 0.15, 0.2, 0.3, 0.5, 0.75, 1},
	}, []string{"model"})

	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scoring",
		Name:      "batch_records",
		Help:      "Records per batch scoring request.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "consumed_total",
		Help:      "Clinical record events consumed, by outcome.",
	}, []string{"status"})
)

// ObserveScore records one model evaluation. risk is ignored unless status
// is StatusOK; a non-finite risk counts as StatusError and is not observed.
func ObserveScore(model, status string, risk float64, elapsed time.Duration) {
	if status == StatusOK && (math.IsNaN(risk) || math.IsInf(risk, 0)) {
		status = StatusError
	}
	scoresTotal.WithLabelValues(model, status).Inc()
	scoreDuration.WithLabelValues(model).Observe(elapsed.Seconds())
	if status == StatusOK {
		riskValues.WithLabelValues(model).Observe(risk)
	}
}

func ObserveBatch(records int) {
	batchSize.Observe(float64(records))
}

func ObserveEvent(status string) {
	eventsTotal.WithLabelValues(status).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
