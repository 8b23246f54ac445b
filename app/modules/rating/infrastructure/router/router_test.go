package ratingrouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/league-ratings/app/eventbus"
	ratingevents "github.com/Black-And-White-Club/league-ratings/app/events/rating"
	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	ratinghandlers "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/handlers"
	ratingdb "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/repositories"
	ratingmetrics "github.com/Black-And-White-Club/league-ratings/app/observability/metrics/rating"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestRatingRouterRatesFinishedGames(t *testing.T) {
	t.Setenv(TestEnvironmentFlag, TestEnvironmentValue)
	logger := slog.Default()
	tracer := noop.NewTracerProvider().Tracer("test")

	played := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	store := ratingdb.NewMemoryRepository()
	store.PutLeague(ratingdomain.League{ID: "league-1", Rules: ratingdomain.DefaultRules(), Entities: []ratingdomain.EntityID{"alice", "bob"}})
	store.PutEntity(ratingdomain.Entity{ID: "alice", Kind: ratingdomain.EntityKindPlayer})
	store.PutEntity(ratingdomain.Entity{ID: "bob", Kind: ratingdomain.EntityKindPlayer})
	points := make([]ratingdomain.Point, 0, 10)
	for i := 0; i < 10; i++ {
		points = append(points, ratingdomain.Point{Time: i * 30, Scorer: "alice"})
	}
	store.PutGame(ratingdomain.Game{
		ID:       "g1",
		LeagueID: "league-1",
		PlayedAt: played,
		Points:   points,
		Blue:     ratingdomain.Lineup{Players: []ratingdomain.EntityID{"alice"}},
		Red:      ratingdomain.Lineup{Players: []ratingdomain.EntityID{"bob"}},
	})

	svc, err := ratingservice.NewRatingService(store, logger, ratingmetrics.NewNoop(), tracer, nil, ratingdomain.DefaultParams())
	require.NoError(t, err)

	bus := eventbus.NewMemoryEventBus(logger)
	t.Cleanup(func() { _ = bus.Close() })

	wmRouter, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	r := NewRatingRouter(logger, wmRouter, bus, bus, tracer, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Configure(ctx, ratinghandlers.NewRatingHandlers(svc, nil, logger, tracer)))

	updates, err := bus.Subscribe(ctx, ratingevents.RatingUpdatedV1)
	require.NoError(t, err)

	go func() { _ = wmRouter.Run(ctx) }()
	<-wmRouter.Running()
	t.Cleanup(func() { _ = r.Close() })

	body, err := json.Marshal(ratingevents.GameFinishedPayloadV1{LeagueID: "league-1", GameID: "g1"})
	require.NoError(t, err)
	msg := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID("corr-42", msg)
	require.NoError(t, bus.Publish(ratingevents.GameFinishedV1, msg))

	select {
	case out := <-updates:
		out.Ack()
		assert.Equal(t, "corr-42", middleware.MessageCorrelationID(out))
		var payload ratingevents.RatingUpdatedPayloadV1
		require.NoError(t, json.Unmarshal(out.Payload, &payload))
		assert.Equal(t, "g1", payload.GameID)
		require.Len(t, payload.Entries, 2)
		assert.Equal(t, 1516, payload.Entries[0].RatingAfter)
	case <-time.After(5 * time.Second):
		t.Fatal("no rating update published")
	}
}
