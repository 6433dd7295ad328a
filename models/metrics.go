package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	amiSessionCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "session_count",
		Help: "The number of sessions.",
	})

	amiSessionCountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_count_total",
		Help: "The total number of sessions.",
	})

	amiBodyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "body_count",
		Help: "The number of indexed bodies across all sessions.",
	})
)

func instrumentIncreaseSessionGauge() {
	amiSessionCount.Inc()
}

func instrumentDecreaseSessionGauge() {
	amiSessionCount.Dec()
}

func instrumentCountSession() {
	amiSessionCountTotal.Inc()
}

func instrumentIncreaseBodyGauge() {
	amiBodyCount.Inc()
}

func instrumentDecreaseBodyGauge() {
	amiBodyCount.Dec()
}
