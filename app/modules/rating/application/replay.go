package ratingservice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-ratings/app/observability/attr"
	"github.com/uptrace/bun"
)

// RegenerationResult summarizes a league regeneration.
type RegenerationResult struct {
	LeagueID       ratingdomain.LeagueID `json:"league_id"`
	GamesReplayed  int                   `json:"games_replayed"`
	GamesSkipped   int                   `json:"games_skipped"`
	FlagsCorrected []ratingdomain.GameID `json:"flags_corrected"`
	Entries        int                   `json:"entries"`
	Digest         string                `json:"digest"`
	Duration       time.Duration         `json:"duration"`
}

// RegenerateLeagueRanking rebuilds a league's ledger from its full game history
// and swaps it in atomically. A second call for a league that is already
// regenerating fails with ErrConcurrentRegeneration; applies for the league
// wait until the swap commits.
func (s *RatingService) RegenerateLeagueRanking(ctx context.Context, leagueID ratingdomain.LeagueID) (RegenerationResult, error) {
	return withTelemetry(s, ctx, "RegenerateLeagueRanking", string(leagueID), func(ctx context.Context) (RegenerationResult, error) {
		gate := s.gates.get(leagueID)
		if !gate.regenerating.CompareAndSwap(false, true) {
			return RegenerationResult{}, fmt.Errorf("%w: league %s", ratingdomain.ErrConcurrentRegeneration, leagueID)
		}
		defer gate.regenerating.Store(false)

		if err := gate.acquire(ctx); err != nil {
			return RegenerationResult{}, err
		}
		defer gate.release()

		start := time.Now()
		result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (RegenerationResult, error) {
			return s.regenerateLogic(ctx, db, leagueID)
		})
		if err != nil {
			return RegenerationResult{}, err
		}
		result.Duration = time.Since(start)

		s.metrics.RecordRegeneration(ctx, string(leagueID), result.GamesReplayed, result.GamesSkipped, result.Duration)
		s.logger.InfoContext(ctx, "League ranking regenerated",
			attr.ExtractCorrelationID(ctx),
			attr.LeagueID(string(leagueID)),
			attr.Int("games_replayed", result.GamesReplayed),
			attr.Int("games_skipped", result.GamesSkipped),
			attr.Int("flags_corrected", len(result.FlagsCorrected)),
			attr.Int("entries", result.Entries),
			attr.String("digest", result.Digest),
			attr.Duration("duration", result.Duration),
		)
		return result, nil
	})
}

// regenerateLogic contains the core logic.
func (s *RatingService) regenerateLogic(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) (RegenerationResult, error) {
	if err := s.repo.AcquireLeagueLock(ctx, db, leagueID); err != nil {
		return RegenerationResult{}, fmt.Errorf("failed to lock league: %w", err)
	}

	league, err := s.repo.GetLeague(ctx, db, leagueID)
	if err != nil {
		if errors.Is(err, ratingdb.ErrNotFound) {
			return RegenerationResult{}, fmt.Errorf("%w: %s", ErrLeagueNotFound, leagueID)
		}
		return RegenerationResult{}, fmt.Errorf("failed to load league: %w", err)
	}

	games, err := s.repo.GetGamesByLeagueOrdered(ctx, db, leagueID)
	if err != nil {
		return RegenerationResult{}, fmt.Errorf("failed to load games: %w", err)
	}

	ids := slices.Clone(league.Entities)
	for _, g := range games {
		ids = append(ids, g.Participants()...)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	entities, err := s.repo.GetEntities(ctx, db, ids)
	if err != nil {
		return RegenerationResult{}, fmt.Errorf("failed to load entities: %w", err)
	}

	replayed, err := ratingdomain.Replay(ctx, ratingdomain.ReplayInput{
		LeagueID: leagueID,
		Games:    games,
		Rules:    league.Rules,
		Params:   s.params,
		Entities: entities,
	})
	if err != nil {
		if errors.Is(err, ratingdomain.ErrNonZeroSumViolation) {
			s.logger.ErrorContext(ctx, "Replayed ledger failed verification",
				attr.ExtractCorrelationID(ctx),
				attr.LeagueID(string(leagueID)),
				attr.Error(err),
			)
		}
		return RegenerationResult{}, err
	}

	// A cancelled context must not reach the swap.
	if err := ctx.Err(); err != nil {
		return RegenerationResult{}, err
	}
	if err := s.repo.ReplaceLedger(ctx, db, leagueID, replayed.Records); err != nil {
		return RegenerationResult{}, fmt.Errorf("failed to replace ledger: %w", err)
	}

	return RegenerationResult{
		LeagueID:       leagueID,
		GamesReplayed:  replayed.GamesReplayed,
		GamesSkipped:   replayed.GamesSkipped,
		FlagsCorrected: replayed.FlagsCorrected,
		Entries:        len(replayed.Records),
		Digest:         replayed.Digest,
	}, nil
}
