package ratinghandlers

import (
	"context"
	"errors"

	ratingevents "github.com/Black-And-White-Club/league-ratings/app/events/rating"
	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/Black-And-White-Club/league-ratings/app/observability/attr"
	"github.com/Black-And-White-Club/league-ratings/app/utils/handlerwrapper"
)

// HandleGameFinished applies a stored game to its league ledger.
//
// A game played before the league's latest rated game cannot be appended; it
// is reported as a retryable failure and a regeneration of the league is
// requested. A game that is already rated is a redelivery and is acknowledged
// without publishing anything.
func (h *RatingHandlers) HandleGameFinished(
	ctx context.Context,
	payload *ratingevents.GameFinishedPayloadV1,
) ([]handlerwrapper.Result, error) {
	records, err := h.service.ApplyStoredGame(ctx, ratingdomain.GameID(payload.GameID))
	switch {
	case err == nil:
		return []handlerwrapper.Result{
			{Topic: ratingevents.RatingUpdatedV1, Payload: ratingUpdatedPayload(payload, records)},
		}, nil

	case errors.Is(err, ratingdomain.ErrConflict):
		h.logger.InfoContext(ctx, "Game already rated, acknowledging redelivery",
			attr.ExtractCorrelationID(ctx),
			attr.GameID(payload.GameID),
		)
		return nil, nil

	case errors.Is(err, ratingdomain.ErrOutOfOrderEntry):
		return []handlerwrapper.Result{
			{Topic: ratingevents.ApplyFailedV1, Payload: applyFailedPayload(payload, err)},
			{Topic: ratingevents.RegenerateRequestedV1, Payload: &ratingevents.RegenerateRequestedPayloadV1{
				LeagueID: payload.LeagueID,
				Reason:   "late game " + payload.GameID,
			}},
		}, nil

	case ratingservice.IsBusinessError(err):
		return []handlerwrapper.Result{
			{Topic: ratingevents.ApplyFailedV1, Payload: applyFailedPayload(payload, err)},
		}, nil

	default:
		return nil, err
	}
}

func ratingUpdatedPayload(payload *ratingevents.GameFinishedPayloadV1, records []ratingdomain.RatingRecord) *ratingevents.RatingUpdatedPayloadV1 {
	out := &ratingevents.RatingUpdatedPayloadV1{
		LeagueID: payload.LeagueID,
		GameID:   payload.GameID,
		Entries:  make([]ratingevents.RatingEntryV1, 0, len(records)),
	}
	for _, rec := range records {
		out.LeagueID = string(rec.LeagueID)
		out.Entries = append(out.Entries, ratingevents.RatingEntryV1{
			EntityID:     string(rec.EntityID),
			RatingBefore: rec.RatingBefore,
			Delta:        rec.Delta,
			RatingAfter:  rec.RatingAfter,
			Timestamp:    rec.Timestamp,
		})
	}
	return out
}

func applyFailedPayload(payload *ratingevents.GameFinishedPayloadV1, err error) *ratingevents.ApplyFailedPayloadV1 {
	return &ratingevents.ApplyFailedPayloadV1{
		LeagueID:  payload.LeagueID,
		GameID:    payload.GameID,
		Reason:    err.Error(),
		Retryable: ratingdomain.IsRetryable(err),
	}
}
