package services

import "github.com/prometheus/client_golang/prometheus"

var remoteFallbacks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "feed_remote_fallbacks_total",
		Help: "Feed operations that fell back to the local store after a remote failure",
	},
	[]string{"operation"},
)

// InitMetrics registers service metrics. Call this from main.go
func InitMetrics() {
	prometheus.MustRegister(remoteFallbacks)
}
