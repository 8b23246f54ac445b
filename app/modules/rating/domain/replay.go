package ratingdomain

import (
	"context"
	"fmt"
	"slices"
)

// ReplayInput is everything a league replay reads.
type ReplayInput struct {
	LeagueID LeagueID
	Games    []Game
	Rules    Rules
	Params   Params
	Entities map[EntityID]Entity
}

// ReplayResult is a fully staged league ledger.
type ReplayResult struct {
	Records        []RatingRecord
	Ratings        map[EntityID]int
	GamesReplayed  int
	GamesSkipped   int
	FlagsCorrected []GameID
	Digest         string
}

// Replay rebuilds a league ledger from scratch by rating every finished game in
// (time, id) order against a working rating map seeded with default ratings.
// Persisted finished flags are ignored; games whose stored flags disagree with
// the evaluated outcome are reported in FlagsCorrected.
func Replay(ctx context.Context, in ReplayInput) (ReplayResult, error) {
	if err := in.Rules.Validate(); err != nil {
		return ReplayResult{}, err
	}
	if err := in.Params.Validate(); err != nil {
		return ReplayResult{}, err
	}
	calc, err := NewCalculator(in.Params.KFactor, in.Params.Scale)
	if err != nil {
		return ReplayResult{}, err
	}

	games := slices.Clone(in.Games)
	slices.SortStableFunc(games, CompareGames)

	working := make(map[EntityID]int)
	defaults := make(map[EntityID]int)
	seed := func(id EntityID) error {
		if _, ok := working[id]; ok {
			return nil
		}
		e, ok := in.Entities[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownEntity, id)
		}
		working[id] = in.Params.DefaultFor(e)
		defaults[id] = working[id]
		return nil
	}

	result := ReplayResult{}
	for _, game := range games {
		if err := ctx.Err(); err != nil {
			return ReplayResult{}, err
		}
		if game.LeagueID != in.LeagueID {
			return ReplayResult{}, fmt.Errorf("%w: game %s belongs to league %s, not %s",
				ErrInvalidGame, game.ID, game.LeagueID, in.LeagueID)
		}
		if err := ValidateLineups(game); err != nil {
			return ReplayResult{}, err
		}

		outcome, err := Evaluate(game, in.Rules)
		if err != nil {
			return ReplayResult{}, err
		}
		if outcome.Finished != game.Finished || (outcome.Finished && outcome.Winner != game.Winner) {
			result.FlagsCorrected = append(result.FlagsCorrected, game.ID)
		}
		if !outcome.Finished {
			result.GamesSkipped++
			continue
		}

		for _, id := range game.Participants() {
			if err := seed(id); err != nil {
				return ReplayResult{}, fmt.Errorf("game %s: %w", game.ID, err)
			}
		}

		rated, err := RateGame(game, in.Rules, calc, working)
		if err != nil {
			return ReplayResult{}, err
		}
		for _, rec := range rated.Records {
			working[rec.EntityID] = rec.RatingAfter
		}
		result.Records = append(result.Records, rated.Records...)
		result.GamesReplayed++
	}

	if err := VerifyLedger(result.Records, defaults); err != nil {
		return ReplayResult{}, err
	}

	result.Ratings = working
	result.Digest = LedgerDigest(result.Records)
	return result, nil
}
