package ratinghandlers

import (
	"context"

	ratingevents "github.com/Black-And-White-Club/league-ratings/app/events/rating"
	"github.com/Black-And-White-Club/league-ratings/app/utils/handlerwrapper"
)

// Handlers defines the interface for rating event handlers.
type Handlers interface {
	// HandleGameFinished rates a game the game service has stored.
	HandleGameFinished(ctx context.Context, payload *ratingevents.GameFinishedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleRegenerateRequested schedules or runs a league replay.
	HandleRegenerateRequested(ctx context.Context, payload *ratingevents.RegenerateRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// RegenerationScheduler hands league replays to a background queue.
type RegenerationScheduler interface {
	EnqueueRegeneration(ctx context.Context, leagueID, reason string) error
}
