package ratingqueue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	ratingevents "github.com/Black-And-White-Club/league-ratings/app/events/rating"
	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	ratinghandlers "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/handlers"
	"github.com/Black-And-White-Club/league-ratings/app/observability/attr"
	"github.com/Black-And-White-Club/league-ratings/app/utils/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
)

// SnoozeInterval is how long a job waits when its league is already regenerating.
const SnoozeInterval = 5 * time.Second

// RegenerateLeagueWorker runs RegenerateLeagueJob.
type RegenerateLeagueWorker struct {
	river.WorkerDefaults[RegenerateLeagueJob]
	service   ratingservice.Service
	publisher message.Publisher
	logger    *slog.Logger
}

// NewRegenerateLeagueWorker creates a worker publishing results to publisher.
func NewRegenerateLeagueWorker(service ratingservice.Service, publisher message.Publisher, logger *slog.Logger) *RegenerateLeagueWorker {
	return &RegenerateLeagueWorker{
		service:   service,
		publisher: publisher,
		logger:    logger,
	}
}

// Timeout allows large leagues to finish replaying.
func (w *RegenerateLeagueWorker) Timeout(*river.Job[RegenerateLeagueJob]) time.Duration {
	return 10 * time.Minute
}

// Work regenerates the league. A league that is already regenerating snoozes
// the job; business failures cancel it so it is not retried.
func (w *RegenerateLeagueWorker) Work(ctx context.Context, job *river.Job[RegenerateLeagueJob]) error {
	leagueID := job.Args.LeagueID
	logger := w.logger.With(
		attr.LeagueID(leagueID),
		attr.String("reason", job.Args.Reason),
		attr.Int("attempt", job.Attempt),
	)

	result, err := w.service.RegenerateLeagueRanking(ctx, ratingdomain.LeagueID(leagueID))
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Regeneration job completed", attr.Int("games_replayed", result.GamesReplayed))
		return w.publish(ctx, handlerwrapper.Result{
			Topic:   ratingevents.RegeneratedV1,
			Payload: ratinghandlers.RegeneratedPayload(result),
		})

	case errors.Is(err, ratingdomain.ErrConcurrentRegeneration):
		logger.InfoContext(ctx, "League already regenerating, snoozing job")
		return river.JobSnooze(SnoozeInterval)

	case ratingservice.IsBusinessError(err):
		logger.WarnContext(ctx, "Regeneration job abandoned", attr.Error(err))
		if pubErr := w.publish(ctx, handlerwrapper.Result{
			Topic: ratingevents.RegenerationFailedV1,
			Payload: &ratingevents.RegenerationFailedPayloadV1{
				LeagueID: leagueID,
				Reason:   err.Error(),
			},
		}); pubErr != nil {
			logger.ErrorContext(ctx, "Failed to publish regeneration failure", attr.Error(pubErr))
		}
		return river.JobCancel(err)

	default:
		logger.ErrorContext(ctx, "Regeneration job failed", attr.Error(err))
		return err
	}
}

func (w *RegenerateLeagueWorker) publish(ctx context.Context, r handlerwrapper.Result) error {
	if w.publisher == nil {
		return nil
	}
	msg, err := handlerwrapper.NewResultMessage(ctx, r)
	if err != nil {
		return err
	}
	return w.publisher.Publish(r.Topic, msg)
}
