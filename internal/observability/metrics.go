// Package observability exposes Prometheus metrics for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedQueryLatency records feed ranking query latency by feed variant.
	FeedQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_feed_query_latency_seconds",
		Help:    "Feed ranking query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"feed"})

	// TweetsCreated counts created tweets by type.
	TweetsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_tweets_created_total",
		Help: "Total number of tweets created by type",
	}, []string{"type"})

	// NotificationsPublished counts notifications fanned out by type.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_notifications_published_total",
		Help: "Total number of notifications published by type",
	}, []string{"type"})

	// CacheHits counts cache lookups by key prefix and outcome.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_cache_lookups_total",
		Help: "Total number of cache lookups by key prefix and outcome",
	}, []string{"prefix", "outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveFeedQuery records feed query latency for the given feed variant.
func ObserveFeedQuery(feed string, start time.Time) {
	FeedQueryLatency.WithLabelValues(feed).Observe(time.Since(start).Seconds())
}
