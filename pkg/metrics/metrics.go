package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Dispatch pipeline metrics
	DispatchesTotal  prometheus.Counter
	DispatchSkips    *prometheus.CounterVec
	DispatchDuration prometheus.Histogram

	// Channel delivery metrics
	ChannelSends        *prometheus.CounterVec
	PushTokensPruned    prometheus.Counter
	EmailTemplateErrors prometheus.Counter

	// Store metrics
	DatabaseOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DispatchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Total number of notification dispatch attempts",
		}),
		DispatchSkips: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_skips_total",
			Help:      "Dispatches skipped before any channel call",
		}, []string{"reason"}),
		DispatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching one notification across channels",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		ChannelSends: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_sends_total",
			Help:      "Channel delivery attempts by channel and outcome",
		}, []string{"channel", "status"}),
		PushTokensPruned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_tokens_pruned_total",
			Help:      "Invalid push tokens removed from user devices",
		}),
		EmailTemplateErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_template_errors_total",
			Help:      "Email template renders that fell back to the plain email",
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}

// New creates an unregistered metrics set, used by tests to avoid duplicate
// collector registration.
func New(namespace string) *Metrics {
	return &Metrics{
		DispatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Total number of notification dispatch attempts",
		}),
		DispatchSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_skips_total",
			Help:      "Dispatches skipped before any channel call",
		}, []string{"reason"}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching one notification across channels",
		}),
		ChannelSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_sends_total",
			Help:      "Channel delivery attempts by channel and outcome",
		}, []string{"channel", "status"}),
		PushTokensPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_tokens_pruned_total",
			Help:      "Invalid push tokens removed from user devices",
		}),
		EmailTemplateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_template_errors_total",
			Help:      "Email template renders that fell back to the plain email",
		}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}
