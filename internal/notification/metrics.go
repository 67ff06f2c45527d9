package notification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeDelivered   = "delivered"
	outcomeRetried     = "retried"
	outcomeBuffered    = "buffered"
	outcomeDropped     = "dropped"
	outcomeParked      = "parked"
	outcomeRescheduled = "rescheduled"
)

var (
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_jobs_total",
		Help: "Notification delivery attempts by job type and outcome",
	}, []string{"type", "outcome"})

	deliveryDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "notification_delivery_duration_seconds",
		Help:       "Duration of a single email delivery in seconds",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"type"})

	queueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notification_queue_length",
		Help: "Jobs waiting in the in-memory queue",
	})

	bufferSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "notification_buffer_size",
		Help: "Records in the durable buffer by partition",
	}, []string{"partition"})
)
