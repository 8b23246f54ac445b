package ratingservice

import (
	"context"
	"sync"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Rating Repository
// ------------------------

// FakeRepository records calls and falls back to an in-memory store for any
// method whose Func field is nil.
type FakeRepository struct {
	mu    sync.Mutex
	trace []string
	base  *ratingdb.MemoryRepository

	GetLeagueFunc               func(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) (*ratingdomain.League, error)
	GetRulesFunc                func(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) (ratingdomain.Rules, error)
	GetGameFunc                 func(ctx context.Context, db bun.IDB, gameID ratingdomain.GameID) (*ratingdomain.Game, error)
	SaveGameFunc                func(ctx context.Context, db bun.IDB, game ratingdomain.Game) error
	GetGamesByLeagueOrderedFunc func(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) ([]ratingdomain.Game, error)
	AppendLedgerEntriesFunc     func(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) error
	ReplaceLedgerFunc           func(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) error
}

func NewFakeRepository(base *ratingdb.MemoryRepository) *FakeRepository {
	if base == nil {
		base = ratingdb.NewMemoryRepository()
	}
	return &FakeRepository{
		trace: []string{},
		base:  base,
	}
}

func (f *FakeRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeRepository) GetLeague(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) (*ratingdomain.League, error) {
	f.record("GetLeague")
	if f.GetLeagueFunc != nil {
		return f.GetLeagueFunc(ctx, db, leagueID)
	}
	return f.base.GetLeague(ctx, db, leagueID)
}

func (f *FakeRepository) GetRules(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) (ratingdomain.Rules, error) {
	f.record("GetRules")
	if f.GetRulesFunc != nil {
		return f.GetRulesFunc(ctx, db, leagueID)
	}
	return f.base.GetRules(ctx, db, leagueID)
}

func (f *FakeRepository) GetGame(ctx context.Context, db bun.IDB, gameID ratingdomain.GameID) (*ratingdomain.Game, error) {
	f.record("GetGame")
	if f.GetGameFunc != nil {
		return f.GetGameFunc(ctx, db, gameID)
	}
	return f.base.GetGame(ctx, db, gameID)
}

func (f *FakeRepository) SaveGame(ctx context.Context, db bun.IDB, game ratingdomain.Game) error {
	f.record("SaveGame")
	if f.SaveGameFunc != nil {
		return f.SaveGameFunc(ctx, db, game)
	}
	return f.base.SaveGame(ctx, db, game)
}

func (f *FakeRepository) GetGamesByLeagueOrdered(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) ([]ratingdomain.Game, error) {
	f.record("GetGamesByLeagueOrdered")
	if f.GetGamesByLeagueOrderedFunc != nil {
		return f.GetGamesByLeagueOrderedFunc(ctx, db, leagueID)
	}
	return f.base.GetGamesByLeagueOrdered(ctx, db, leagueID)
}

func (f *FakeRepository) GetEntities(ctx context.Context, db bun.IDB, ids []ratingdomain.EntityID) (map[ratingdomain.EntityID]ratingdomain.Entity, error) {
	f.record("GetEntities")
	return f.base.GetEntities(ctx, db, ids)
}

func (f *FakeRepository) GetEntityDefaultRating(ctx context.Context, db bun.IDB, entityID ratingdomain.EntityID) (int, error) {
	f.record("GetEntityDefaultRating")
	return f.base.GetEntityDefaultRating(ctx, db, entityID)
}

func (f *FakeRepository) ReadLedgerHead(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID) (*ratingdomain.RatingRecord, error) {
	f.record("ReadLedgerHead")
	return f.base.ReadLedgerHead(ctx, db, leagueID, entityID)
}

func (f *FakeRepository) ReadLedger(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) ([]ratingdomain.RatingRecord, error) {
	f.record("ReadLedger")
	return f.base.ReadLedger(ctx, db, leagueID)
}

func (f *FakeRepository) ReadEntityHistory(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]ratingdomain.RatingRecord, error) {
	f.record("ReadEntityHistory")
	return f.base.ReadEntityHistory(ctx, db, leagueID, entityID, since)
}

func (f *FakeRepository) HasGameEntries(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, gameID ratingdomain.GameID) (bool, error) {
	f.record("HasGameEntries")
	return f.base.HasGameEntries(ctx, db, leagueID, gameID)
}

func (f *FakeRepository) AppendLedgerEntries(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) error {
	f.record("AppendLedgerEntries")
	if f.AppendLedgerEntriesFunc != nil {
		return f.AppendLedgerEntriesFunc(ctx, db, leagueID, entries)
	}
	return f.base.AppendLedgerEntries(ctx, db, leagueID, entries)
}

func (f *FakeRepository) WipeLedger(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) error {
	f.record("WipeLedger")
	return f.base.WipeLedger(ctx, db, leagueID)
}

func (f *FakeRepository) ReplaceLedger(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) error {
	f.record("ReplaceLedger")
	if f.ReplaceLedgerFunc != nil {
		return f.ReplaceLedgerFunc(ctx, db, leagueID, entries)
	}
	return f.base.ReplaceLedger(ctx, db, leagueID, entries)
}

func (f *FakeRepository) AcquireLeagueLock(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) error {
	f.record("AcquireLeagueLock")
	return f.base.AcquireLeagueLock(ctx, db, leagueID)
}

// --- Accessors for assertions ---

func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ ratingdb.Repository = (*FakeRepository)(nil)
