package rating

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/league-ratings/app/eventbus"
	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	ratinghandlers "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/handlers"
	ratinghttp "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/http"
	ratingqueue "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/queue"
	ratingdb "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/repositories"
	ratingrouter "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/router"
	"github.com/Black-And-White-Club/league-ratings/app/observability"
	"github.com/Black-And-White-Club/league-ratings/app/observability/attr"
	ratingmetrics "github.com/Black-And-White-Club/league-ratings/app/observability/metrics/rating"
	"github.com/Black-And-White-Club/league-ratings/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the rating module.
type Module struct {
	EventBus      eventbus.EventBus
	RatingService ratingservice.Service
	RatingRouter  *ratingrouter.RatingRouter
	Queue         ratingqueue.QueueService
	config        *config.Config
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewRatingModule creates the rating service and binds it to the event router,
// the regeneration queue and the HTTP router. db is nil for the memory driver.
func NewRatingModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	repo ratingdb.Repository,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer
	metrics := ratingmetrics.NewPrometheus(obs.Registry)

	logger.InfoContext(ctx, "rating.NewRatingModule called")

	ratingService, err := ratingservice.NewRatingService(repo, logger, metrics, tracer, db, cfg.Rating)
	if err != nil {
		return nil, fmt.Errorf("failed to create rating service: %w", err)
	}

	module := &Module{
		EventBus:      eventBus,
		RatingService: ratingService,
		config:        cfg,
		observability: obs,
	}

	var handlerScheduler ratinghandlers.RegenerationScheduler
	var httpScheduler ratinghttp.RegenerationScheduler
	if cfg.Queue.Enabled {
		queue, err := ratingqueue.NewService(ctx, cfg.Postgres.DSN, cfg.Queue.MaxWorkers, ratingService, eventBus, logger, metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create rating queue: %w", err)
		}
		module.Queue = queue
		handlerScheduler = queue
		httpScheduler = queue
	}

	ratingRouter := ratingrouter.NewRatingRouter(logger, router, eventBus, eventBus, tracer, obs.Registry)
	handlers := ratinghandlers.NewRatingHandlers(ratingService, handlerScheduler, logger, tracer)
	if err := ratingRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure rating router: %w", err)
	}
	module.RatingRouter = ratingRouter

	if httpRouter != nil {
		ratinghttp.Mount(httpRouter, ratinghttp.NewHandlers(ratingService, httpScheduler, logger, tracer), ratinghttp.RouteConfig{
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			Tokens:         ratinghttp.NewTokenProvider(cfg.Auth.AdminJWTSecret),
			AdminLimiter: ratinghttp.NewIPRateLimiter(
				rate.Every(time.Minute/time.Duration(max(cfg.HTTP.AdminRatePerMinute, 1))),
				max(cfg.HTTP.AdminBurst, 1),
			),
		})
	}

	return module, nil
}

// Run starts the rating module and blocks until ctx is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting rating module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start rating queue", attr.Error(err))
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Rating module goroutine stopped")
}

// Close stops the rating module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping rating module")

	var err error
	if m.Queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err = m.Queue.Stop(ctx)
	}

	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if err != nil {
		return err
	}

	logger.Info("Rating module stopped")
	return nil
}
