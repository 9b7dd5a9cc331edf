package restapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rinkdesk",
			Name:      "upstream_requests_total",
			Help:      "REST API calls by operation and status code.",
		},
		[]string{"op", "code"},
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rinkdesk",
			Name:      "upstream_request_duration_seconds",
			Help:      "REST API call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)
