package ratingqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	"github.com/Black-And-White-Club/league-ratings/app/observability/attr"
	ratingmetrics "github.com/Black-And-White-Club/league-ratings/app/observability/metrics/rating"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
)

const serviceName = "river"

// QueueService schedules rating background jobs.
type QueueService interface {
	// EnqueueRegeneration inserts a league replay job. A pending job for the
	// same league absorbs the request.
	EnqueueRegeneration(ctx context.Context, leagueID, reason string) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service runs rating jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics ratingmetrics.RatingMetrics
}

// NewService creates a River client for the rating queue. River needs pgx,
// so it opens its own pool on dsn.
func NewService(
	ctx context.Context,
	dsn string,
	maxWorkers int,
	ratingService ratingservice.Service,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics ratingmetrics.RatingMetrics,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_rating_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", serviceName)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if maxWorkers <= 0 {
		maxWorkers = 2
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRegenerateLeagueWorker(ratingService, publisher, ctxLogger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", serviceName)
	metrics.RecordOperationDuration(ctx, "initialize_service", serviceName, time.Since(start))
	ctxLogger.Info("Rating queue service initialized")

	return &Service{
		client:  client,
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Rating queue service started")
	return nil
}

// Stop waits for running jobs and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Rating queue service stopped")
	return nil
}

func (s *Service) EnqueueRegeneration(ctx context.Context, leagueID, reason string) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_regeneration", serviceName)

	res, err := s.client.Insert(ctx, RegenerateLeagueJob{LeagueID: leagueID, Reason: reason}, regenerationInsertOpts())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue regeneration",
			attr.ExtractCorrelationID(ctx),
			attr.LeagueID(leagueID),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, "enqueue_regeneration", serviceName)
		return fmt.Errorf("failed to enqueue regeneration: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_regeneration", serviceName)
	s.metrics.RecordOperationDuration(ctx, "enqueue_regeneration", serviceName, time.Since(start))
	s.logger.InfoContext(ctx, "Regeneration job enqueued",
		attr.ExtractCorrelationID(ctx),
		attr.LeagueID(leagueID),
		attr.Any("job_id", res.Job.ID),
		attr.Bool("deduplicated", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// regenerationInsertOpts keeps one unfinished job per league. Completed jobs
// are left out of the unique states so a later request always runs again.
func regenerationInsertOpts() *river.InsertOpts {
	return &river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 5,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRetryable,
				rivertype.JobStateRunning,
				rivertype.JobStateScheduled,
			},
		},
	}
}
