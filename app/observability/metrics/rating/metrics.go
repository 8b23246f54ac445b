// Package ratingmetrics records rating engine metrics.
package ratingmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RatingMetrics is the metrics surface of the rating module.
type RatingMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	// RecordRatingDelta observes the absolute side delta of one rated game.
	RecordRatingDelta(ctx context.Context, leagueID string, delta int)

	// RecordRegeneration observes one completed league regeneration.
	RecordRegeneration(ctx context.Context, leagueID string, gamesReplayed, gamesSkipped int, duration time.Duration)
}

type prometheusMetrics struct {
	attempts      *prometheus.CounterVec
	successes     *prometheus.CounterVec
	failures      *prometheus.CounterVec
	durations     *prometheus.HistogramVec
	deltas        *prometheus.HistogramVec
	regenerations *prometheus.HistogramVec
	gamesReplayed *prometheus.CounterVec
	gamesSkipped  *prometheus.CounterVec
}

// NewPrometheus registers the rating metrics on reg.
func NewPrometheus(reg prometheus.Registerer) RatingMetrics {
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "operation_success_total",
			Help:      "Service operations that returned without an infrastructure error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "operation_failures_total",
			Help:      "Service operations that failed.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rating",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		deltas: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rating",
			Name:      "game_delta_points",
			Help:      "Absolute rating delta awarded per rated game side.",
			Buckets:   []float64{1, 2, 4, 8, 12, 16, 20, 24, 28, 32, 64},
		}, []string{"league_id"}),
		regenerations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rating",
			Name:      "regeneration_duration_seconds",
			Help:      "League regeneration latency.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"league_id"}),
		gamesReplayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "regeneration_games_replayed_total",
			Help:      "Finished games rated during regenerations.",
		}, []string{"league_id"}),
		gamesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "regeneration_games_skipped_total",
			Help:      "Unfinished games skipped during regenerations.",
		}, []string{"league_id"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.attempts, m.successes, m.failures, m.durations,
			m.deltas, m.regenerations, m.gamesReplayed, m.gamesSkipped,
		)
	}
	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordRatingDelta(_ context.Context, leagueID string, delta int) {
	if delta < 0 {
		delta = -delta
	}
	m.deltas.WithLabelValues(leagueID).Observe(float64(delta))
}

func (m *prometheusMetrics) RecordRegeneration(_ context.Context, leagueID string, gamesReplayed, gamesSkipped int, duration time.Duration) {
	m.regenerations.WithLabelValues(leagueID).Observe(duration.Seconds())
	m.gamesReplayed.WithLabelValues(leagueID).Add(float64(gamesReplayed))
	m.gamesSkipped.WithLabelValues(leagueID).Add(float64(gamesSkipped))
}

type noop struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() RatingMetrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordRatingDelta(context.Context, string, int)                         {}
func (noop) RecordRegeneration(context.Context, string, int, int, time.Duration)    {}
