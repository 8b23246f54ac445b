package ratinghandlers

import (
	"log/slog"

	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	"go.opentelemetry.io/otel/trace"
)

// RatingHandlers handles rating-related events.
type RatingHandlers struct {
	service   ratingservice.Service
	scheduler RegenerationScheduler
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewRatingHandlers creates a new instance of RatingHandlers. A nil scheduler
// runs regenerations inline on the handler goroutine.
func NewRatingHandlers(
	service ratingservice.Service,
	scheduler RegenerationScheduler,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &RatingHandlers{
		service:   service,
		scheduler: scheduler,
		logger:    logger,
		tracer:    tracer,
	}
}
