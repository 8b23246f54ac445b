package ratinghandlers

import (
	"context"
	"sync"
	"time"

	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
)

// FakeRatingService implements ratingservice.Service for handler testing.
type FakeRatingService struct {
	mu    sync.Mutex
	trace []string

	ComputeExpectedScoreFunc    func(ctx context.Context, leagueID ratingdomain.LeagueID, side, opposing []ratingdomain.EntityID) (ratingservice.ExpectedScore, error)
	ApplyGameResultFunc         func(ctx context.Context, game ratingdomain.Game) ([]ratingdomain.RatingRecord, error)
	ApplyStoredGameFunc         func(ctx context.Context, gameID ratingdomain.GameID) ([]ratingdomain.RatingRecord, error)
	RegenerateLeagueRankingFunc func(ctx context.Context, leagueID ratingdomain.LeagueID) (ratingservice.RegenerationResult, error)
	GetRankingFunc              func(ctx context.Context, leagueID ratingdomain.LeagueID, opts ratingservice.PageOptions) (ratingservice.RankingPage, error)
	GetEntityRatingHistoryFunc  func(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]ratingdomain.RatingRecord, error)
	GetCurrentRatingFunc        func(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID) (int, error)
	RatingHistoryChartFunc      func(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]byte, error)
	ExportRankingFunc           func(ctx context.Context, leagueID ratingdomain.LeagueID) ([]byte, error)
}

func NewFakeRatingService() *FakeRatingService {
	return &FakeRatingService{trace: []string{}}
}

func (f *FakeRatingService) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeRatingService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// --- Interface Implementation ---

func (f *FakeRatingService) ComputeExpectedScore(ctx context.Context, leagueID ratingdomain.LeagueID, side, opposing []ratingdomain.EntityID) (ratingservice.ExpectedScore, error) {
	f.record("ComputeExpectedScore")
	if f.ComputeExpectedScoreFunc != nil {
		return f.ComputeExpectedScoreFunc(ctx, leagueID, side, opposing)
	}
	return ratingservice.ExpectedScore{}, nil
}

func (f *FakeRatingService) ApplyGameResult(ctx context.Context, game ratingdomain.Game) ([]ratingdomain.RatingRecord, error) {
	f.record("ApplyGameResult")
	if f.ApplyGameResultFunc != nil {
		return f.ApplyGameResultFunc(ctx, game)
	}
	return nil, nil
}

func (f *FakeRatingService) ApplyStoredGame(ctx context.Context, gameID ratingdomain.GameID) ([]ratingdomain.RatingRecord, error) {
	f.record("ApplyStoredGame")
	if f.ApplyStoredGameFunc != nil {
		return f.ApplyStoredGameFunc(ctx, gameID)
	}
	return nil, nil
}

func (f *FakeRatingService) RegenerateLeagueRanking(ctx context.Context, leagueID ratingdomain.LeagueID) (ratingservice.RegenerationResult, error) {
	f.record("RegenerateLeagueRanking")
	if f.RegenerateLeagueRankingFunc != nil {
		return f.RegenerateLeagueRankingFunc(ctx, leagueID)
	}
	return ratingservice.RegenerationResult{LeagueID: leagueID}, nil
}

func (f *FakeRatingService) GetRanking(ctx context.Context, leagueID ratingdomain.LeagueID, opts ratingservice.PageOptions) (ratingservice.RankingPage, error) {
	f.record("GetRanking")
	if f.GetRankingFunc != nil {
		return f.GetRankingFunc(ctx, leagueID, opts)
	}
	return ratingservice.RankingPage{}, nil
}

func (f *FakeRatingService) GetEntityRatingHistory(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]ratingdomain.RatingRecord, error) {
	f.record("GetEntityRatingHistory")
	if f.GetEntityRatingHistoryFunc != nil {
		return f.GetEntityRatingHistoryFunc(ctx, leagueID, entityID, since)
	}
	return nil, nil
}

func (f *FakeRatingService) GetCurrentRating(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID) (int, error) {
	f.record("GetCurrentRating")
	if f.GetCurrentRatingFunc != nil {
		return f.GetCurrentRatingFunc(ctx, leagueID, entityID)
	}
	return 0, nil
}

func (f *FakeRatingService) RatingHistoryChart(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]byte, error) {
	f.record("RatingHistoryChart")
	if f.RatingHistoryChartFunc != nil {
		return f.RatingHistoryChartFunc(ctx, leagueID, entityID, since)
	}
	return nil, nil
}

func (f *FakeRatingService) ExportRanking(ctx context.Context, leagueID ratingdomain.LeagueID) ([]byte, error) {
	f.record("ExportRanking")
	if f.ExportRankingFunc != nil {
		return f.ExportRankingFunc(ctx, leagueID)
	}
	return nil, nil
}

var _ ratingservice.Service = (*FakeRatingService)(nil)

// FakeScheduler records enqueued regenerations.
type FakeScheduler struct {
	Enqueued []string
	Err      error
}

func (f *FakeScheduler) EnqueueRegeneration(_ context.Context, leagueID, _ string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Enqueued = append(f.Enqueued, leagueID)
	return nil
}

var _ RegenerationScheduler = (*FakeScheduler)(nil)
