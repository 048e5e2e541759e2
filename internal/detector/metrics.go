package detector

import "github.com/prometheus/client_golang/prometheus"

var (
	poolWaitSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "detectd",
		Subsystem: "detector",
		Name:      "pool_wait_seconds",
		Help:      "Time spent waiting for a free inference session",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	})

	forwardSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "detectd",
		Subsystem: "detector",
		Name:      "forward_seconds",
		Help:      "Duration of detector stages in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})
)

func init() {
	prometheus.MustRegister(poolWaitSeconds, forwardSeconds)
}
