package ratingmetrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		require.NotEmpty(t, mf.GetMetric())
		m := mf.GetMetric()[0]
		if c := m.GetCounter(); c != nil {
			return c.GetValue()
		}
		if h := m.GetHistogram(); h != nil {
			return float64(h.GetSampleCount())
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg)
	ctx := context.Background()

	m.RecordOperationAttempt(ctx, "ApplyGameResult", "RatingService")
	m.RecordOperationAttempt(ctx, "ApplyGameResult", "RatingService")
	m.RecordOperationFailure(ctx, "ApplyGameResult", "RatingService")
	m.RecordRegeneration(ctx, "league-1", 12, 3, 40*time.Millisecond)
	m.RecordRatingDelta(ctx, "league-1", -16)

	assert.Equal(t, 2.0, gatherValue(t, reg, "rating_operation_attempts_total"))
	assert.Equal(t, 1.0, gatherValue(t, reg, "rating_operation_failures_total"))
	assert.Equal(t, 12.0, gatherValue(t, reg, "rating_regeneration_games_replayed_total"))
	assert.Equal(t, 3.0, gatherValue(t, reg, "rating_regeneration_games_skipped_total"))
	assert.Equal(t, 1.0, gatherValue(t, reg, "rating_game_delta_points"))
	assert.Equal(t, 1.0, gatherValue(t, reg, "rating_regeneration_duration_seconds"))
}

func TestNoopDoesNotPanic(t *testing.T) {
	m := NewNoop()
	ctx := context.Background()
	m.RecordOperationAttempt(ctx, "op", "svc")
	m.RecordOperationDuration(ctx, "op", "svc", time.Second)
	m.RecordRegeneration(ctx, "l", 1, 0, time.Second)
}
