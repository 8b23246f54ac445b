package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	ratinghttp "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/http"
	ratingmigrations "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/league-ratings/app/observability"
	ratingmetrics "github.com/Black-And-White-Club/league-ratings/app/observability/metrics/rating"
	"github.com/Black-And-White-Club/league-ratings/config"
	"github.com/Black-And-White-Club/league-ratings/db/bundb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/trace/noop"
)

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "league ratings operations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "Path to the configuration file"},
		},
		Commands: []*cli.Command{
			newMigrateCommand(),
			newRegenerateCommand(),
			newExportCommand(),
			newTokenCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// withDB opens the database for the duration of fn.
func withDB(c *cli.Context, fn func(cfg *config.Config, dbService *bundb.DBService) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := observability.NewLogger("development", cfg.Observability.LogLevel)

	dbService, err := bundb.NewBunDBService(c.Context, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer dbService.Close()

	return fn(cfg, dbService)
}

func withMigrator(c *cli.Context, fn func(migrator *migrate.Migrator) error) error {
	return withDB(c, func(_ *config.Config, dbService *bundb.DBService) error {
		return fn(migrate.NewMigrator(dbService.GetDB(), ratingmigrations.Migrations))
	})
}

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(migrator *migrate.Migrator) error {
						return migrator.Init(c.Context)
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(migrator *migrate.Migrator) error {
						if err := migrator.Lock(c.Context); err != nil {
							return err
						}
						defer migrator.Unlock(c.Context) //nolint:errcheck

						group, err := migrator.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Println("No new migrations to run")
						} else {
							fmt.Printf("Migrated to %s\n", group)
						}
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(migrator *migrate.Migrator) error {
						group, err := migrator.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Println("No groups to roll back")
						} else {
							fmt.Printf("Rolled back %s\n", group)
						}
						return nil
					})
				},
			},
			{
				Name:  "create_go",
				Usage: "create Go migration",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(migrator *migrate.Migrator) error {
						name := strings.Join(c.Args().Slice(), "_")
						mf, err := migrator.CreateGoMigration(c.Context, name)
						if err != nil {
							return err
						}
						fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(migrator *migrate.Migrator) error {
						ms, err := migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations: %s\n", ms)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
						return nil
					})
				},
			},
			{
				Name:  "river",
				Usage: "apply the River job queue migrations",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					return migrateRiver(c.Context, cfg.Postgres.DSN)
				},
			},
		},
	}
}

func migrateRiver(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return fmt.Errorf("failed to migrate river: %w", err)
	}
	if len(res.Versions) == 0 {
		fmt.Println("River schema is up to date")
	}
	for _, v := range res.Versions {
		fmt.Printf("Applied River migration %d\n", v.Version)
	}
	return nil
}

// newRatingService builds a standalone service over Postgres. Metrics and
// traces are discarded.
func newRatingService(cfg *config.Config, dbService *bundb.DBService) (*ratingservice.RatingService, error) {
	logger := observability.NewLogger("development", cfg.Observability.LogLevel)
	return ratingservice.NewRatingService(
		dbService.RatingDB,
		logger,
		ratingmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("bun"),
		dbService.GetDB(),
		cfg.Rating,
	)
}

func newRegenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "regenerate",
		Usage: "rebuild a league's rating ledger from its game history",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "league", Required: true, Usage: "league id, repeatable"},
		},
		Action: func(c *cli.Context) error {
			return withDB(c, func(cfg *config.Config, dbService *bundb.DBService) error {
				svc, err := newRatingService(cfg, dbService)
				if err != nil {
					return err
				}
				for _, leagueID := range c.StringSlice("league") {
					result, err := svc.RegenerateLeagueRanking(c.Context, ratingdomain.LeagueID(leagueID))
					if err != nil {
						return fmt.Errorf("league %s: %w", leagueID, err)
					}
					fmt.Printf("League %s: %d games replayed, %d skipped, %d entries, %d flags corrected, digest %s (%s)\n",
						leagueID, result.GamesReplayed, result.GamesSkipped, result.Entries,
						len(result.FlagsCorrected), result.Digest, result.Duration.Round(time.Millisecond))
				}
				return nil
			})
		},
	}
}

func newExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write a league ranking to an XLSX workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "league", Required: true},
			&cli.StringFlag{Name: "out", Usage: "output path, defaults to <league>-ranking.xlsx"},
		},
		Action: func(c *cli.Context) error {
			return withDB(c, func(cfg *config.Config, dbService *bundb.DBService) error {
				svc, err := newRatingService(cfg, dbService)
				if err != nil {
					return err
				}
				leagueID := c.String("league")
				book, err := svc.ExportRanking(c.Context, ratingdomain.LeagueID(leagueID))
				if err != nil {
					return err
				}
				out := c.String("out")
				if out == "" {
					out = leagueID + "-ranking.xlsx"
				}
				if err := os.WriteFile(out, book, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				fmt.Printf("Wrote %s\n", out)
				return nil
			})
		},
	}
}

func newTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint an admin API token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Value: "ops"},
			&cli.DurationFlag{Name: "ttl", Value: time.Hour},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.Auth.AdminJWTSecret == "" {
				return fmt.Errorf("auth.admin_jwt_secret is not set")
			}
			token, err := ratinghttp.NewTokenProvider(cfg.Auth.AdminJWTSecret).GenerateAdminToken(c.String("subject"), c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
