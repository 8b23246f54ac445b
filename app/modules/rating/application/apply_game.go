package ratingservice

import (
	"context"
	"errors"
	"fmt"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-ratings/app/observability/attr"
	"github.com/uptrace/bun"
)

// ApplyGameResult rates a finished game document and appends its ledger
// entries in one batch. The document is stored in the same transaction,
// replacing an unrated stored version, so a later regeneration replays exactly
// what was rated. It waits for any running regeneration of the game's league.
func (s *RatingService) ApplyGameResult(ctx context.Context, game ratingdomain.Game) ([]ratingdomain.RatingRecord, error) {
	return withTelemetry(s, ctx, "ApplyGameResult", string(game.ID), func(ctx context.Context) ([]ratingdomain.RatingRecord, error) {
		return s.applyGame(ctx, game, true)
	})
}

// ApplyStoredGame loads a game from the store and applies it.
func (s *RatingService) ApplyStoredGame(ctx context.Context, gameID ratingdomain.GameID) ([]ratingdomain.RatingRecord, error) {
	return withTelemetry(s, ctx, "ApplyStoredGame", string(gameID), func(ctx context.Context) ([]ratingdomain.RatingRecord, error) {
		game, err := s.repo.GetGame(ctx, nil, gameID)
		if err != nil {
			if errors.Is(err, ratingdb.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
			}
			return nil, err
		}
		return s.applyGame(ctx, *game, false)
	})
}

func (s *RatingService) applyGame(ctx context.Context, game ratingdomain.Game, store bool) ([]ratingdomain.RatingRecord, error) {
	if game.LeagueID == "" {
		return nil, fmt.Errorf("%w: game %s has no league", ratingdomain.ErrInvalidGame, game.ID)
	}

	gate := s.gates.get(game.LeagueID)
	if err := gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer gate.release()

	return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) ([]ratingdomain.RatingRecord, error) {
		return s.applyGameLogic(ctx, db, game, store)
	})
}

// applyGameLogic contains the core logic. With store set the game document is
// persisted after its entries are appended.
func (s *RatingService) applyGameLogic(ctx context.Context, db bun.IDB, game ratingdomain.Game, store bool) ([]ratingdomain.RatingRecord, error) {
	if err := s.repo.AcquireLeagueLock(ctx, db, game.LeagueID); err != nil {
		return nil, fmt.Errorf("failed to lock league: %w", err)
	}

	rules, err := s.repo.GetRules(ctx, db, game.LeagueID)
	if err != nil {
		if errors.Is(err, ratingdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrLeagueNotFound, game.LeagueID)
		}
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	if err := ratingdomain.ValidateLineups(game); err != nil {
		return nil, err
	}

	rated, err := s.repo.HasGameEntries(ctx, db, game.LeagueID, game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger: %w", err)
	}
	if rated {
		return nil, fmt.Errorf("%w: game %s already rated", ratingdomain.ErrConflict, game.ID)
	}

	if store {
		stored, err := s.repo.GetGame(ctx, db, game.ID)
		switch {
		case err == nil && stored.LeagueID != game.LeagueID:
			return nil, fmt.Errorf("%w: game %s belongs to league %s", ratingdomain.ErrConflict, game.ID, stored.LeagueID)
		case err != nil && !errors.Is(err, ratingdb.ErrNotFound):
			return nil, fmt.Errorf("failed to load stored game: %w", err)
		}
	}

	current, err := s.ledger.CurrentRatings(ctx, db, game.LeagueID, game.Participants())
	if err != nil {
		return nil, err
	}

	result, err := ratingdomain.RateGame(game, rules, s.calc, current)
	if err != nil {
		if errors.Is(err, ratingdomain.ErrNonZeroSumViolation) {
			s.logger.ErrorContext(ctx, "Rating deltas are not zero-sum",
				attr.ExtractCorrelationID(ctx),
				attr.GameID(string(game.ID)),
				attr.Error(err),
			)
		}
		return nil, err
	}

	if err := s.ledger.AppendEntries(ctx, db, game.LeagueID, result.Records); err != nil {
		return nil, err
	}

	if store {
		game.Finished, game.Winner = true, result.Outcome.Winner
		if err := s.repo.SaveGame(ctx, db, game); err != nil {
			return nil, fmt.Errorf("failed to store game: %w", err)
		}
	}

	s.metrics.RecordRatingDelta(ctx, string(game.LeagueID), result.SideDelta[result.Outcome.Winner])
	s.logger.InfoContext(ctx, "Game rated",
		attr.ExtractCorrelationID(ctx),
		attr.LeagueID(string(game.LeagueID)),
		attr.GameID(string(game.ID)),
		attr.String("winner", string(result.Outcome.Winner)),
		attr.Int("score_blue", result.Outcome.ScoreBlue),
		attr.Int("score_red", result.Outcome.ScoreRed),
		attr.Int("delta", result.SideDelta[result.Outcome.Winner]),
	)
	return result.Records, nil
}
