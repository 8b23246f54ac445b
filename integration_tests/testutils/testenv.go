//go:build integration

package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/league-ratings/app/eventbus"
	"github.com/Black-And-White-Club/league-ratings/config"
	"github.com/Black-And-White-Club/league-ratings/db/bundb"
	"github.com/Black-And-White-Club/league-ratings/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	PgConnStr     string
	NatsURL       string
	DB            *bun.DB
	DBService     *bundb.DBService
	EventBus      eventbus.EventBus
	Config        *config.Config
	Logger        *slog.Logger
}

// NewTestEnvironment starts Postgres and NATS containers and migrates the schema.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer, env.PgConnStr = pgContainer, pgConnStr

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer, env.NatsURL = natsContainer, natsURL

	env.Config = config.Default()
	env.Config.Postgres.DSN = pgConnStr
	env.Config.NATS.URL = natsURL
	env.Config.Queue.Enabled = true

	dbService, err := bundb.NewBunDBService(ctx, env.Config.Postgres, env.Logger)
	if err != nil {
		env.Cleanup()
		return nil, err
	}
	env.DBService, env.DB = dbService, dbService.GetDB()

	if err := runMigrations(ctx, env.DB, pgConnStr); err != nil {
		env.Cleanup()
		return nil, err
	}

	bus, err := eventbus.NewNATSEventBus(ctx, natsURL, "rating-it", env.Logger)
	if err != nil {
		env.Cleanup()
		return nil, err
	}
	env.EventBus = bus
	if err := eventbus.InitializeStreams(ctx, bus, env.Logger); err != nil {
		env.Cleanup()
		return nil, err
	}

	return env, nil
}

// Reset empties the database between tests.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	if err := truncateTables(env.Ctx, env.DB); err != nil {
		t.Fatalf("reset: %v", err)
	}
}

// Cleanup releases connections and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	if env.EventBus != nil {
		_ = env.EventBus.Close()
	}
	if env.DBService != nil {
		_ = env.DBService.Close()
	}
	ctx := context.Background()
	if env.NatsContainer != nil {
		_ = env.NatsContainer.Terminate(ctx)
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(ctx)
	}
	env.CancelContext()
}
