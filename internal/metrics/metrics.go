// Package metrics provides Prometheus metrics for the split token publisher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "split_token_publisher"

// Event results.
const (
	EventPublished   = "published"
	EventUnconfirmed = "unconfirmed"
	EventSkipped     = "skipped"
	EventFailed      = "failed"
)

// Role exchange results.
const (
	ExchangeSuccess  = "success"
	ExchangeFallback = "fallback"
	ExchangeFailure  = "failure"
)

// Publish results.
const (
	PublishSuccess      = "success"
	PublishUnsuccessful = "unsuccessful_status"
	PublishFailure      = "failure"
)

// Metrics groups the collectors one listener reports to.
type Metrics struct {
	// EventsTotal counts handled events by outcome.
	EventsTotal *prometheus.CounterVec

	// RoleExchangeTotal counts AssumeRole calls by outcome.
	RoleExchangeTotal *prometheus.CounterVec

	// PublishTotal counts PutItem calls by outcome.
	PublishTotal *prometheus.CounterVec

	// PublishDuration observes PutItem latency.
	PublishDuration prometheus.Histogram
}

// New creates the collectors and registers them on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of issued access token events handled",
			},
			[]string{"result"},
		),
		RoleExchangeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sts",
				Name:      "role_exchange_total",
				Help:      "Total number of role assumption attempts",
			},
			[]string{"result"},
		),
		PublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dynamodb",
				Name:      "publish_total",
				Help:      "Total number of split token records written",
			},
			[]string{"result"},
		),
		PublishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dynamodb",
				Name:      "publish_duration_seconds",
				Help:      "Latency of PutItem calls",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.EventsTotal, m.RoleExchangeTotal, m.PublishTotal, m.PublishDuration)
	}

	return m
}
