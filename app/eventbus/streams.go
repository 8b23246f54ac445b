package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	ratingevents "github.com/Black-And-White-Club/league-ratings/app/events/rating"
)

// InitializeStreams creates the streams the service publishes to and consumes
// from. It runs once during application startup, before any router starts.
func InitializeStreams(ctx context.Context, bus EventBus, logger *slog.Logger) error {
	streams := map[string][]string{
		ratingevents.RatingStream: {ratingevents.RatingStreamSubjects},
	}

	for name, subjects := range streams {
		if err := bus.CreateStream(ctx, name, subjects...); err != nil {
			logger.ErrorContext(ctx, "Failed to create JetStream stream",
				slog.String("stream", name),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}
		logger.InfoContext(ctx, "Stream ready", slog.String("stream", name))
	}
	return nil
}
