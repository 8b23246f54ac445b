package ratinghandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	ratingevents "github.com/Black-And-White-Club/league-ratings/app/events/rating"
	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var playedAt = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newHandlers(svc ratingservice.Service, scheduler RegenerationScheduler) Handlers {
	return NewRatingHandlers(svc, scheduler, slog.Default(), noop.NewTracerProvider().Tracer("test"))
}

func TestRatingHandlers_HandleGameFinished(t *testing.T) {
	payload := &ratingevents.GameFinishedPayloadV1{LeagueID: "league-1", GameID: "g1"}

	tests := []struct {
		name       string
		setup      func(*FakeRatingService)
		wantErr    bool
		wantTopics []string
		validate   func(t *testing.T, payloads []any)
	}{
		{
			name: "rated game publishes update",
			setup: func(f *FakeRatingService) {
				f.ApplyStoredGameFunc = func(_ context.Context, gameID ratingdomain.GameID) ([]ratingdomain.RatingRecord, error) {
					return []ratingdomain.RatingRecord{
						{LeagueID: "league-1", EntityID: "alice", GameID: gameID, Timestamp: playedAt, RatingBefore: 1500, Delta: 16, RatingAfter: 1516},
						{LeagueID: "league-1", EntityID: "bob", GameID: gameID, Timestamp: playedAt, RatingBefore: 1500, Delta: -16, RatingAfter: 1484},
					}, nil
				}
			},
			wantTopics: []string{ratingevents.RatingUpdatedV1},
			validate: func(t *testing.T, payloads []any) {
				updated, ok := payloads[0].(*ratingevents.RatingUpdatedPayloadV1)
				require.True(t, ok, "got %T", payloads[0])
				require.Len(t, updated.Entries, 2)
				assert.Equal(t, "alice", updated.Entries[0].EntityID)
				assert.Equal(t, 1516, updated.Entries[0].RatingAfter)
				assert.Equal(t, -16, updated.Entries[1].Delta)
			},
		},
		{
			name: "late game requests regeneration",
			setup: func(f *FakeRatingService) {
				f.ApplyStoredGameFunc = func(context.Context, ratingdomain.GameID) ([]ratingdomain.RatingRecord, error) {
					return nil, fmt.Errorf("%w: alice", ratingdomain.ErrOutOfOrderEntry)
				}
			},
			wantTopics: []string{ratingevents.ApplyFailedV1, ratingevents.RegenerateRequestedV1},
			validate: func(t *testing.T, payloads []any) {
				failed := payloads[0].(*ratingevents.ApplyFailedPayloadV1)
				assert.True(t, failed.Retryable)
				regen := payloads[1].(*ratingevents.RegenerateRequestedPayloadV1)
				assert.Equal(t, "league-1", regen.LeagueID)
			},
		},
		{
			name: "unfinished game is reported",
			setup: func(f *FakeRatingService) {
				f.ApplyStoredGameFunc = func(context.Context, ratingdomain.GameID) ([]ratingdomain.RatingRecord, error) {
					return nil, fmt.Errorf("%w: game g1 is 7-3", ratingdomain.ErrGameNotFinished)
				}
			},
			wantTopics: []string{ratingevents.ApplyFailedV1},
			validate: func(t *testing.T, payloads []any) {
				failed := payloads[0].(*ratingevents.ApplyFailedPayloadV1)
				assert.False(t, failed.Retryable)
				assert.Contains(t, failed.Reason, "7-3")
			},
		},
		{
			name: "unknown game is reported",
			setup: func(f *FakeRatingService) {
				f.ApplyStoredGameFunc = func(context.Context, ratingdomain.GameID) ([]ratingdomain.RatingRecord, error) {
					return nil, ratingservice.ErrGameNotFound
				}
			},
			wantTopics: []string{ratingevents.ApplyFailedV1},
		},
		{
			name: "redelivery of a rated game is acknowledged",
			setup: func(f *FakeRatingService) {
				f.ApplyStoredGameFunc = func(context.Context, ratingdomain.GameID) ([]ratingdomain.RatingRecord, error) {
					return nil, ratingdomain.ErrConflict
				}
			},
			wantTopics: []string{},
		},
		{
			name: "infrastructure error is retried",
			setup: func(f *FakeRatingService) {
				f.ApplyStoredGameFunc = func(context.Context, ratingdomain.GameID) ([]ratingdomain.RatingRecord, error) {
					return nil, errors.New("ApplyStoredGame: connection reset")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := NewFakeRatingService()
			tt.setup(fake)

			results, err := newHandlers(fake, nil).HandleGameFinished(context.Background(), payload)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, results)
				return
			}
			require.NoError(t, err)

			topics := make([]string, 0, len(results))
			payloads := make([]any, 0, len(results))
			for _, r := range results {
				topics = append(topics, r.Topic)
				payloads = append(payloads, r.Payload)
			}
			assert.Equal(t, tt.wantTopics, topics)
			if tt.validate != nil {
				tt.validate(t, payloads)
			}
			assert.Equal(t, []string{"ApplyStoredGame"}, fake.Trace())
		})
	}
}

func TestRatingHandlers_HandleRegenerateRequested(t *testing.T) {
	payload := &ratingevents.RegenerateRequestedPayloadV1{LeagueID: "league-1", Reason: "late game g0"}

	t.Run("enqueues when a scheduler is configured", func(t *testing.T) {
		fake := NewFakeRatingService()
		scheduler := &FakeScheduler{}

		results, err := newHandlers(fake, scheduler).HandleRegenerateRequested(context.Background(), payload)
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Equal(t, []string{"league-1"}, scheduler.Enqueued)
		assert.Empty(t, fake.Trace())
	})

	t.Run("enqueue failure is retried", func(t *testing.T) {
		scheduler := &FakeScheduler{Err: errors.New("queue unavailable")}
		_, err := newHandlers(NewFakeRatingService(), scheduler).HandleRegenerateRequested(context.Background(), payload)
		assert.Error(t, err)
	})

	t.Run("runs inline and publishes summary", func(t *testing.T) {
		fake := NewFakeRatingService()
		fake.RegenerateLeagueRankingFunc = func(_ context.Context, leagueID ratingdomain.LeagueID) (ratingservice.RegenerationResult, error) {
			return ratingservice.RegenerationResult{
				LeagueID:       leagueID,
				GamesReplayed:  3,
				GamesSkipped:   1,
				FlagsCorrected: []ratingdomain.GameID{"g4"},
				Entries:        6,
				Digest:         "abc",
				Duration:       1500 * time.Millisecond,
			}, nil
		}

		results, err := newHandlers(fake, nil).HandleRegenerateRequested(context.Background(), payload)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, ratingevents.RegeneratedV1, results[0].Topic)
		summary := results[0].Payload.(*ratingevents.RegeneratedPayloadV1)
		assert.Equal(t, 3, summary.GamesReplayed)
		assert.Equal(t, []string{"g4"}, summary.FlagsCorrected)
		assert.Equal(t, int64(1500), summary.DurationMs)
	})

	t.Run("concurrent regeneration is retried", func(t *testing.T) {
		fake := NewFakeRatingService()
		fake.RegenerateLeagueRankingFunc = func(context.Context, ratingdomain.LeagueID) (ratingservice.RegenerationResult, error) {
			return ratingservice.RegenerationResult{}, ratingdomain.ErrConcurrentRegeneration
		}
		_, err := newHandlers(fake, nil).HandleRegenerateRequested(context.Background(), payload)
		assert.ErrorIs(t, err, ratingdomain.ErrConcurrentRegeneration)
	})

	t.Run("unknown league publishes failure", func(t *testing.T) {
		fake := NewFakeRatingService()
		fake.RegenerateLeagueRankingFunc = func(context.Context, ratingdomain.LeagueID) (ratingservice.RegenerationResult, error) {
			return ratingservice.RegenerationResult{}, ratingservice.ErrLeagueNotFound
		}
		results, err := newHandlers(fake, nil).HandleRegenerateRequested(context.Background(), payload)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, ratingevents.RegenerationFailedV1, results[0].Topic)
	})
}
