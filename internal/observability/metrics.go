package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	documentUploadsTotal  *prometheus.CounterVec
	documentRejectedTotal *prometheus.CounterVec
	documentUploadLatency prometheus.Histogram
	allocationItemsTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		documentUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_document_uploads_total",
			Help: "Total number of stored documents by storage method.",
		}, []string{"method", "document_type"})

		documentRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_document_rejected_total",
			Help: "Total number of rejected document uploads by reason.",
		}, []string{"reason"})

		documentUploadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_document_upload_seconds",
			Help:    "Latency distribution for document uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		allocationItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_allocation_items_total",
			Help: "Total number of per-unit allocation outcomes.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			documentUploadsTotal,
			documentRejectedTotal,
			documentUploadLatency,
			allocationItemsTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// DocumentUploads exposes the counter for stored documents.
func DocumentUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return documentUploadsTotal
}

// DocumentRejected exposes the counter for rejected uploads.
func DocumentRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return documentRejectedTotal
}

// DocumentUploadLatency exposes the upload latency histogram.
func DocumentUploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return documentUploadLatency
}

// AllocationItems exposes the counter for allocation outcomes.
func AllocationItems() *prometheus.CounterVec {
	RegisterMetrics()
	return allocationItemsTotal
}
