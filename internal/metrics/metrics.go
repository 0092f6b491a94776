package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "homelib_build_info",
		Help: "Build information of homelib",
	}, []string{"version"})

	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homelib_operations_total", Help: "Library operations by outcome.",
	}, []string{"op", "result"})
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "homelib_operation_duration_seconds",
		Help:    "Duration of library operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	RowsAffected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homelib_rows_affected_total", Help: "Rows changed by insert, update and delete.",
	}, []string{"op"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homelib_http_requests_total", Help: "HTTP API requests by route and status.",
	}, []string{"route", "status"})
)
