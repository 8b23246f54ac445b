package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Black-And-White-Club/league-ratings/app/eventbus"
	"github.com/Black-And-White-Club/league-ratings/app/modules/rating"
	ratingdb "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-ratings/app/observability"
	"github.com/Black-And-White-Club/league-ratings/app/observability/attr"
	"github.com/Black-And-White-Club/league-ratings/config"
	"github.com/Black-And-White-Club/league-ratings/db/bundb"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// App holds the wired service.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bundb.DBService
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPRouter    chi.Router
	RatingModule  *rating.Module

	httpServer    *http.Server
	metricsServer *http.Server
	wg            sync.WaitGroup
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	app := &App{Config: cfg, Observability: obs}
	logger := obs.Logger

	var (
		repo ratingdb.Repository
		db   *bun.DB
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logger.WarnContext(ctx, "Using in-memory storage, ratings are lost on restart")
		memory := ratingdb.NewMemoryRepository()
		if cfg.Storage.SeedFile != "" {
			if err := memory.LoadSeedFile(cfg.Storage.SeedFile); err != nil {
				return nil, fmt.Errorf("failed to load storage seed: %w", err)
			}
			logger.InfoContext(ctx, "Loaded storage seed", attr.String("seed_file", cfg.Storage.SeedFile))
		}
		repo = memory
	default:
		dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database service: %w", err)
		}
		app.DB = dbService
		repo = dbService.RatingDB
		db = dbService.GetDB()
	}

	bus, err := newEventBus(ctx, cfg, obs)
	if err != nil {
		app.closeDB()
		return nil, err
	}
	app.EventBus = bus

	if err := eventbus.InitializeStreams(ctx, bus, logger); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize streams: %w", err)
	}

	router, err := newMessageRouter(logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Router = router
	app.HTTPRouter = newHTTPRouter(logger)

	ratingModule, err := rating.NewRatingModule(ctx, cfg, obs, repo, db, bus, router, app.HTTPRouter)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize rating module: %w", err)
	}
	app.RatingModule = ratingModule

	return app, nil
}

func newEventBus(ctx context.Context, cfg *config.Config, obs observability.Observability) (eventbus.EventBus, error) {
	if cfg.NATS.URL == "" {
		obs.Logger.WarnContext(ctx, "NATS_URL not set, using in-process event bus")
		return eventbus.NewMemoryEventBus(obs.Logger), nil
	}
	bus, err := eventbus.NewNATSEventBus(ctx, cfg.NATS.URL, cfg.NATS.QueueGroup, obs.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	return bus, nil
}

// Run starts the modules, the message router and the HTTP servers, and blocks
// until ctx is canceled or the message router stops.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	app.wg.Add(1)
	go app.RatingModule.Run(ctx, &app.wg)

	app.startHTTP(ctx)

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.InfoContext(ctx, "Shutdown requested")
		return nil
	case err := <-routerErr:
		if err != nil {
			logger.ErrorContext(ctx, "Message router stopped", attr.Error(err))
			return fmt.Errorf("message router stopped: %w", err)
		}
		return nil
	}
}

// Close releases every resource in reverse start order.
func (app *App) Close() error {
	var errs []error

	app.shutdownServers(&errs)

	if app.RatingModule != nil {
		if err := app.RatingModule.Close(); err != nil {
			errs = append(errs, fmt.Errorf("rating module: %w", err))
		}
	}
	// Close waits out the close timeout on a router that never ran.
	if app.Router != nil && app.Router.IsRunning() {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("message router: %w", err))
		}
	}
	app.wg.Wait()

	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
	}
	if err := app.closeDB(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	return errors.Join(errs...)
}

func (app *App) closeDB() error {
	if app.DB == nil {
		return nil
	}
	return app.DB.Close()
}
