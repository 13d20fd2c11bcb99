package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the clan ledger
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Ledger Metrics
	AwardsTotal            *prometheus.CounterVec
	PointsAwardedTotal     *prometheus.CounterVec
	RolloversTotal         prometheus.Counter
	AchievementsTotal      *prometheus.CounterVec
	AwardDuration          prometheus.Histogram
	WeeklySummaryRunsTotal *prometheus.CounterVec

	// Activity queue metrics
	QueueMessagesTotal *prometheus.CounterVec
	QueueDepth         *prometheus.GaugeVec
}

// NewMetricsRegistry registers every metric with reg. The server passes
// prometheus.DefaultRegisterer; tests pass a fresh prometheus.NewRegistry().
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanledger_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clanledger_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "clanledger_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanledger_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanledger_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Ledger Metrics
		AwardsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanledger_awards_total",
				Help: "Award attempts by source kind and outcome code",
			},
			[]string{"source", "outcome"},
		),
		PointsAwardedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanledger_points_awarded_total",
				Help: "Absolute points moved through the ledger by source kind",
			},
			[]string{"source"},
		),
		RolloversTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "clanledger_weekly_rollovers_total",
				Help: "Clan weekly rollovers performed",
			},
		),
		AchievementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanledger_achievements_total",
				Help: "Achievements newly earned by name",
			},
			[]string{"achievement"},
		),
		AwardDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "clanledger_award_duration_seconds",
				Help:    "Time spent applying an award, including the store transaction",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		WeeklySummaryRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanledger_weekly_summary_runs_total",
				Help: "Weekly summary job runs by result",
			},
			[]string{"result"},
		),

		// Activity queue metrics
		QueueMessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanledger_activity_queue_messages_total",
				Help: "Queued activity messages handled by outcome",
			},
			[]string{"outcome"},
		),
		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "clanledger_activity_queue_depth",
				Help: "Activity stream entries by state (length, pending)",
			},
			[]string{"state"},
		),
	}
}

// SourceKind collapses free-form log sources onto a bounded label set.
func SourceKind(source string) string {
	switch {
	case source == "message", source == "admin", source == "admin_removal":
		return source
	case strings.HasPrefix(source, "purchase:"):
		return "purchase"
	case strings.HasPrefix(source, "challenge:"):
		return "challenge"
	default:
		return "other"
	}
}
