// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BotRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_runs_completed_total",
			Help: "Total number of bot executions that produced a success result",
		},
		[]string{"bot"},
	)

	BotRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_runs_failed_total",
			Help: "Total number of bot executions that produced an error result",
		},
		[]string{"bot", "error_code"},
	)

	BotRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_run_duration_seconds",
			Help:    "Duration of a single bot execution in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
		[]string{"bot"},
	)

	BotsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bots_active",
			Help: "Number of bot executions currently holding a pool slot",
		},
	)

	DispatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatches_total",
			Help: "Total number of dispatch runs started",
		},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "Wall-clock duration of a full dispatch run in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	WebhookTriggers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_triggers_total",
			Help: "Inbound webhook requests by outcome",
		},
		[]string{"outcome"},
	)

	SinkPushFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sink_push_failures_total",
			Help: "Notification pushes that failed, by sink",
		},
		[]string{"sink"},
	)
)
