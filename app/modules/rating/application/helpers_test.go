package ratingservice

import (
	"log/slog"
	"testing"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/repositories"
	ratingmetrics "github.com/Black-And-White-Club/league-ratings/app/observability/metrics/rating"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

const testLeague ratingdomain.LeagueID = "league-1"

var baseTime = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

// scored returns blue goals followed by red goals, one point every 30 seconds.
func scored(blue, red ratingdomain.EntityID, blueGoals, redGoals int) []ratingdomain.Point {
	points := make([]ratingdomain.Point, 0, blueGoals+redGoals)
	for i := 0; i < blueGoals; i++ {
		points = append(points, ratingdomain.Point{Time: len(points) * 30, Scorer: blue})
	}
	for i := 0; i < redGoals; i++ {
		points = append(points, ratingdomain.Point{Time: len(points) * 30, Scorer: red})
	}
	return points
}

func singlesGame(id ratingdomain.GameID, at time.Time, blue, red ratingdomain.EntityID, blueGoals, redGoals int) ratingdomain.Game {
	return ratingdomain.Game{
		ID:       id,
		LeagueID: testLeague,
		PlayedAt: at,
		Points:   scored(blue, red, blueGoals, redGoals),
		Blue:     ratingdomain.Lineup{Players: []ratingdomain.EntityID{blue}},
		Red:      ratingdomain.Lineup{Players: []ratingdomain.EntityID{red}},
	}
}

// seededStore returns a memory store holding testLeague with default rules and
// the given players at the global default rating.
func seededStore(players ...ratingdomain.EntityID) *ratingdb.MemoryRepository {
	repo := ratingdb.NewMemoryRepository()
	repo.PutLeague(ratingdomain.League{
		ID:       testLeague,
		Name:     "Tuesday Night Table",
		Rules:    ratingdomain.DefaultRules(),
		Entities: players,
	})
	for _, id := range players {
		repo.PutEntity(ratingdomain.Entity{ID: id, Kind: ratingdomain.EntityKindPlayer})
	}
	return repo
}

func newTestService(t *testing.T, repo ratingdb.Repository) *RatingService {
	t.Helper()
	svc, err := NewRatingService(
		repo,
		slog.Default(),
		ratingmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		ratingdomain.DefaultParams(),
	)
	require.NoError(t, err)
	return svc
}
