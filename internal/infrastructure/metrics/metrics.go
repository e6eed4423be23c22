// Package metrics khai báo các prometheus collectors của service.
// Collectors đăng ký vào default registry qua promauto, expose ở GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "books_commons_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "books_commons_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	LoanTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "books_commons_loan_transitions_total",
		Help: "Loan state transitions by outcome (ok, not_found, invalid_state, forbidden, error)",
	}, []string{"transition", "outcome"})

	MetadataRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "books_commons_metadata_requests_total",
		Help: "External metadata provider calls by outcome (hit, miss, error, cached)",
	}, []string{"provider", "operation", "outcome"})

	MetadataRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "books_commons_metadata_request_duration_seconds",
		Help:    "External metadata provider latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
	}, []string{"provider", "operation"})

	CatalogSearchResults = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "books_commons_catalog_search_results",
		Help:    "Number of merged search results by source",
		Buckets: []float64{0, 1, 5, 10, 20, 30, 50},
	}, []string{"source"})
)
