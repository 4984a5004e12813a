package server

import (
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/scoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scoringOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unwindia_cricket",
		Name:      "scoring_operations_total",
		Help:      "Scoring operations by operation and outcome",
	}, []string{"operation", "outcome"})

	scoringDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "unwindia_cricket",
		Name:      "scoring_operation_duration_seconds",
		Help:      "Duration of scoring operations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	commandsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unwindia_cricket",
		Name:      "commands_received_total",
		Help:      "Scoring commands consumed from the message broker",
	}, []string{"type"})

	outboxPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "unwindia_cricket",
		Name:      "outbox_events_published_total",
		Help:      "Outbox events published to the message broker",
	})

	outboxFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unwindia_cricket",
		Name:      "outbox_publish_failures_total",
		Help:      "Failed outbox publish attempts; final is true when the event was given up",
	}, []string{"final"})
)

// observe records the outcome and duration of one scoring operation.
func observe(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(scoring.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	scoringOperations.WithLabelValues(operation, outcome).Inc()
	scoringDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
