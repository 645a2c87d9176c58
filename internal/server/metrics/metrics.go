// Package metrics exposes marketd's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the services report to. Nop discards everything.
type Recorder interface {
	RecordUpload(bytes int)
	RecordTransferCreated()
	RecordTransferCancelled()
	RecordTransfersCompleted(n int)
	RecordAuthFailure()
	RecordRateLimited()
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	uploads            prometheus.Counter
	bytesStored        prometheus.Counter
	transfers          *prometheus.CounterVec
	authFailures       prometheus.Counter
	rateLimitedRequest prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datamarket_uploads_total",
			Help: "Number of payloads stored.",
		}),
		bytesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datamarket_bytes_stored_total",
			Help: "Bytes written to the blob store.",
		}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datamarket_transfers_total",
			Help: "Payment transfers by lifecycle event.",
		}, []string{"event"}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datamarket_rpc_auth_failures_total",
			Help: "RPC requests rejected for a bad token.",
		}),
		rateLimitedRequest: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datamarket_rpc_rate_limited_total",
			Help: "RPC requests rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(c.uploads, c.bytesStored, c.transfers, c.authFailures, c.rateLimitedRequest)
	return c
}

func (c *Collector) RecordUpload(bytes int) {
	c.uploads.Inc()
	c.bytesStored.Add(float64(bytes))
}

func (c *Collector) RecordTransferCreated() {
	c.transfers.WithLabelValues("created").Inc()
}

func (c *Collector) RecordTransferCancelled() {
	c.transfers.WithLabelValues("cancelled").Inc()
}

func (c *Collector) RecordTransfersCompleted(n int) {
	c.transfers.WithLabelValues("completed").Add(float64(n))
}

func (c *Collector) RecordAuthFailure() {
	c.authFailures.Inc()
}

func (c *Collector) RecordRateLimited() {
	c.rateLimitedRequest.Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type Nop struct{}

func (Nop) RecordUpload(int)             {}
func (Nop) RecordTransferCreated()       {}
func (Nop) RecordTransferCancelled()     {}
func (Nop) RecordTransfersCompleted(int) {}
func (Nop) RecordAuthFailure()           {}
func (Nop) RecordRateLimited()           {}
