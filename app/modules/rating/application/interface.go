package ratingservice

import (
	"context"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
)

// Service defines the contract for the rating engine.
type Service interface {
	// ComputeExpectedScore returns the win probability of side against opposing
	// from the entities' current league ratings.
	ComputeExpectedScore(ctx context.Context, leagueID ratingdomain.LeagueID, side, opposing []ratingdomain.EntityID) (ExpectedScore, error)

	// ApplyGameResult stores a finished game, rates it and appends its ledger entries.
	ApplyGameResult(ctx context.Context, game ratingdomain.Game) ([]ratingdomain.RatingRecord, error)

	// ApplyStoredGame loads a game from the store and applies it.
	ApplyStoredGame(ctx context.Context, gameID ratingdomain.GameID) ([]ratingdomain.RatingRecord, error)

	// RegenerateLeagueRanking rebuilds a league's ledger from its full game history.
	RegenerateLeagueRanking(ctx context.Context, leagueID ratingdomain.LeagueID) (RegenerationResult, error)

	// GetRanking returns a page of the league ranking.
	GetRanking(ctx context.Context, leagueID ratingdomain.LeagueID, opts PageOptions) (RankingPage, error)

	// GetEntityRatingHistory returns an entity's ledger entries, from since when non-zero.
	GetEntityRatingHistory(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]ratingdomain.RatingRecord, error)

	// GetCurrentRating returns an entity's current league rating.
	GetCurrentRating(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID) (int, error)

	// RatingHistoryChart renders an entity's rating history as a PNG.
	RatingHistoryChart(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]byte, error)

	// ExportRanking renders the full league ranking as an XLSX workbook.
	ExportRanking(ctx context.Context, leagueID ratingdomain.LeagueID) ([]byte, error)
}
