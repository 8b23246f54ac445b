package ratingservice

import (
	"context"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
)

// RankingPage is one page of a league ranking.
type RankingPage struct {
	Standings []ratingdomain.Standing `json:"standings"`
	PageInfo  PageInfo                `json:"page_info"`
}

// GetRanking returns a page of the league ranking.
func (s *RatingService) GetRanking(ctx context.Context, leagueID ratingdomain.LeagueID, opts PageOptions) (RankingPage, error) {
	return withTelemetry(s, ctx, "GetRanking", string(leagueID), func(ctx context.Context) (RankingPage, error) {
		after := 0
		if opts.After != "" {
			position, err := decodeCursor(opts.After)
			if err != nil {
				return RankingPage{}, err
			}
			after = position
		}

		standings, err := s.ledger.Ranking(ctx, nil, leagueID)
		if err != nil {
			return RankingPage{}, err
		}
		return paginate(standings, after, opts.First), nil
	})
}

// paginate slices standings ranked 1..n to the rows after position after.
func paginate(standings []ratingdomain.Standing, after, first int) RankingPage {
	total := len(standings)
	start := min(after, total)
	end := total
	if first > 0 {
		end = min(start+first, total)
	}

	page := RankingPage{
		Standings: standings[start:end],
		PageInfo: PageInfo{
			TotalCount:  total,
			HasNextPage: end < total,
		},
	}
	if end > start {
		page.PageInfo.EndCursor = encodeCursor(standings[end-1].Position)
	}
	return page
}

// GetEntityRatingHistory returns an entity's ledger entries, from since when non-zero.
func (s *RatingService) GetEntityRatingHistory(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]ratingdomain.RatingRecord, error) {
	return withTelemetry(s, ctx, "GetEntityRatingHistory", string(entityID), func(ctx context.Context) ([]ratingdomain.RatingRecord, error) {
		return s.ledger.History(ctx, nil, leagueID, entityID, since)
	})
}

// GetCurrentRating returns an entity's current league rating.
func (s *RatingService) GetCurrentRating(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID) (int, error) {
	return withTelemetry(s, ctx, "GetCurrentRating", string(entityID), func(ctx context.Context) (int, error) {
		return s.ledger.CurrentRating(ctx, nil, leagueID, entityID)
	})
}
