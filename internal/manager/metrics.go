package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	inferenceDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "detectd",
		Name:      "inference_duration_seconds",
		Help:      "End-to-end Infer duration including payload decoding",
		Buckets:   prometheus.DefBuckets,
	})

	detectionsPerRequest = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "detectd",
		Name:      "inference_detections",
		Help:      "Number of predictions returned per successful request",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 300},
	})

	inferenceErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "detectd",
		Name:      "inference_errors_total",
		Help:      "Failed Infer calls by kind",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(inferenceDuration, detectionsPerRequest, inferenceErrors)
}
