package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts accepted uploads.
	UploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ocr_uploads_total",
		Help: "Number of accepted file uploads.",
	})

	// JobsFinalizedTotal counts terminal transitions by outcome.
	JobsFinalizedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocr_jobs_finalized_total",
		Help: "Number of jobs reaching a terminal state.",
	}, []string{"status"})

	// ProcessingDuration observes claim-to-finalize wall time.
	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ocr_processing_duration_seconds",
		Help:    "Wall time from claim to finalize.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	// WorkersInflight tracks running worker tasks.
	WorkersInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ocr_workers_inflight",
		Help: "Currently running worker tasks.",
	})

	// WebhookDeliveriesTotal counts webhook attempts by outcome.
	WebhookDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocr_webhook_deliveries_total",
		Help: "Webhook delivery attempts.",
	}, []string{"outcome"})
)
