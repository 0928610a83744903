package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	inferenceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "classifyd",
			Subsystem: "inference",
			Name:      "duration_seconds",
			Help:      "Time spent inside the classifier per image",
			Buckets:   prometheus.DefBuckets,
		},
	)

	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifyd",
			Subsystem: "inference",
			Name:      "predictions_total",
			Help:      "Predictions returned, by label",
		},
		[]string{"label"},
	)

	analyzeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifyd",
			Subsystem: "inference",
			Name:      "failures_total",
			Help:      "Analyze requests that did not produce a prediction",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(inferenceDuration, predictionsTotal, analyzeFailures)
}
