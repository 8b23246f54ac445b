package ratinghandlers

import (
	"context"

	ratingevents "github.com/Black-And-White-Club/league-ratings/app/events/rating"
	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/Black-And-White-Club/league-ratings/app/observability/attr"
	"github.com/Black-And-White-Club/league-ratings/app/utils/handlerwrapper"
)

// HandleRegenerateRequested enqueues a league replay, or runs it inline when
// no scheduler is configured. A replay rejected because another one is running
// is returned as an error so the message is redelivered later.
func (h *RatingHandlers) HandleRegenerateRequested(
	ctx context.Context,
	payload *ratingevents.RegenerateRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if h.scheduler != nil {
		if err := h.scheduler.EnqueueRegeneration(ctx, payload.LeagueID, payload.Reason); err != nil {
			return nil, err
		}
		h.logger.InfoContext(ctx, "League regeneration enqueued",
			attr.ExtractCorrelationID(ctx),
			attr.LeagueID(payload.LeagueID),
			attr.String("reason", payload.Reason),
		)
		return nil, nil
	}

	result, err := h.service.RegenerateLeagueRanking(ctx, ratingdomain.LeagueID(payload.LeagueID))
	if err != nil {
		if ratingdomain.IsRetryable(err) || !ratingservice.IsBusinessError(err) {
			return nil, err
		}
		return []handlerwrapper.Result{
			{Topic: ratingevents.RegenerationFailedV1, Payload: &ratingevents.RegenerationFailedPayloadV1{
				LeagueID: payload.LeagueID,
				Reason:   err.Error(),
			}},
		}, nil
	}

	return []handlerwrapper.Result{
		{Topic: ratingevents.RegeneratedV1, Payload: RegeneratedPayload(result)},
	}, nil
}

// RegeneratedPayload converts a regeneration summary to its event payload.
func RegeneratedPayload(result ratingservice.RegenerationResult) *ratingevents.RegeneratedPayloadV1 {
	flags := make([]string, 0, len(result.FlagsCorrected))
	for _, id := range result.FlagsCorrected {
		flags = append(flags, string(id))
	}
	return &ratingevents.RegeneratedPayloadV1{
		LeagueID:       string(result.LeagueID),
		GamesReplayed:  result.GamesReplayed,
		GamesSkipped:   result.GamesSkipped,
		FlagsCorrected: flags,
		Entries:        result.Entries,
		Digest:         result.Digest,
		DurationMs:     result.Duration.Milliseconds(),
	}
}
