package ratingservice

import (
	"context"
	"fmt"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
)

// ExpectedScore is a pre-game win probability for a side and its opponent.
type ExpectedScore struct {
	Side            float64 `json:"side"`
	Opposing        float64 `json:"opposing"`
	SidePercent     int     `json:"side_percent"`
	OpposingPercent int     `json:"opposing_percent"`
}

// ComputeExpectedScore returns the win probability of side against opposing
// from the entities' current league ratings.
func (s *RatingService) ComputeExpectedScore(ctx context.Context, leagueID ratingdomain.LeagueID, side, opposing []ratingdomain.EntityID) (ExpectedScore, error) {
	return withTelemetry(s, ctx, "ComputeExpectedScore", string(leagueID), func(ctx context.Context) (ExpectedScore, error) {
		if err := validateSide(side); err != nil {
			return ExpectedScore{}, err
		}
		if err := validateSide(opposing); err != nil {
			return ExpectedScore{}, err
		}

		ratingsOf := func(ids []ratingdomain.EntityID) ([]int, error) {
			out := make([]int, 0, len(ids))
			for _, id := range ids {
				r, err := s.ledger.CurrentRating(ctx, nil, leagueID, id)
				if err != nil {
					return nil, err
				}
				out = append(out, r)
			}
			return out, nil
		}

		sideRatings, err := ratingsOf(side)
		if err != nil {
			return ExpectedScore{}, err
		}
		opposingRatings, err := ratingsOf(opposing)
		if err != nil {
			return ExpectedScore{}, err
		}

		p, q := s.calc.ExpectedScore(sideRatings, opposingRatings)
		sp, op := ratingdomain.PercentPair(p)
		return ExpectedScore{Side: p, Opposing: q, SidePercent: sp, OpposingPercent: op}, nil
	})
}

func validateSide(ids []ratingdomain.EntityID) error {
	if len(ids) < 1 || len(ids) > 2 {
		return fmt.Errorf("%w: a side has 1 or 2 players, got %d", ratingdomain.ErrInvalidGame, len(ids))
	}
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty entity id", ratingdomain.ErrInvalidGame)
		}
	}
	return nil
}
