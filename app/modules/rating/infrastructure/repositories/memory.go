package ratingdb

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/uptrace/bun"
)

// MemoryRepository is an in-process Repository used by the "memory" storage
// driver and by tests. The db argument of every method is ignored.
type MemoryRepository struct {
	mu       sync.RWMutex
	leagues  map[ratingdomain.LeagueID]ratingdomain.League
	entities map[ratingdomain.EntityID]ratingdomain.Entity
	games    map[ratingdomain.GameID]ratingdomain.Game
	ledger   map[ratingdomain.LeagueID][]ratingdomain.RatingRecord
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		leagues:  make(map[ratingdomain.LeagueID]ratingdomain.League),
		entities: make(map[ratingdomain.EntityID]ratingdomain.Entity),
		games:    make(map[ratingdomain.GameID]ratingdomain.Game),
		ledger:   make(map[ratingdomain.LeagueID][]ratingdomain.RatingRecord),
	}
}

var _ Repository = (*MemoryRepository)(nil)

// PutLeague stores or replaces a league.
func (m *MemoryRepository) PutLeague(league ratingdomain.League) {
	m.mu.Lock()
	defer m.mu.Unlock()
	league.Entities = slices.Clone(league.Entities)
	m.leagues[league.ID] = league
}

// PutEntity stores or replaces an entity.
func (m *MemoryRepository) PutEntity(entity ratingdomain.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entity.Members = slices.Clone(entity.Members)
	m.entities[entity.ID] = entity
}

// PutGame stores or replaces a game.
func (m *MemoryRepository) PutGame(game ratingdomain.Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[game.ID] = cloneGame(game)
}

func cloneGame(g ratingdomain.Game) ratingdomain.Game {
	g.Points = slices.Clone(g.Points)
	g.Blue.Players = slices.Clone(g.Blue.Players)
	g.Red.Players = slices.Clone(g.Red.Players)
	return g
}

func (m *MemoryRepository) GetLeague(_ context.Context, _ bun.IDB, leagueID ratingdomain.LeagueID) (*ratingdomain.League, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	league, ok := m.leagues[leagueID]
	if !ok {
		return nil, fmt.Errorf("ratingdb.GetLeague: %w", ErrNotFound)
	}
	league.Entities = slices.Clone(league.Entities)
	league.Rules = resolveRules(league.Rules)
	return &league, nil
}

func (m *MemoryRepository) GetRules(_ context.Context, _ bun.IDB, leagueID ratingdomain.LeagueID) (ratingdomain.Rules, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	league, ok := m.leagues[leagueID]
	if !ok {
		return ratingdomain.Rules{}, fmt.Errorf("ratingdb.GetRules: %w", ErrNotFound)
	}
	return resolveRules(league.Rules), nil
}

// resolveRules treats a zero Rules value as a league that never set its rules,
// matching the nil rule columns of the Postgres store.
func resolveRules(rules ratingdomain.Rules) ratingdomain.Rules {
	if rules == (ratingdomain.Rules{}) {
		return ratingdomain.DefaultRules()
	}
	return rules
}

func (m *MemoryRepository) GetGame(_ context.Context, _ bun.IDB, gameID ratingdomain.GameID) (*ratingdomain.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	game, ok := m.games[gameID]
	if !ok {
		return nil, fmt.Errorf("ratingdb.GetGame: %w", ErrNotFound)
	}
	game = cloneGame(game)
	return &game, nil
}

func (m *MemoryRepository) SaveGame(_ context.Context, _ bun.IDB, game ratingdomain.Game) error {
	m.PutGame(game)
	return nil
}

func (m *MemoryRepository) GetGamesByLeagueOrdered(_ context.Context, _ bun.IDB, leagueID ratingdomain.LeagueID) ([]ratingdomain.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	games := make([]ratingdomain.Game, 0)
	for _, g := range m.games {
		if g.LeagueID == leagueID {
			games = append(games, cloneGame(g))
		}
	}
	slices.SortFunc(games, ratingdomain.CompareGames)
	return games, nil
}

func (m *MemoryRepository) GetEntities(_ context.Context, _ bun.IDB, ids []ratingdomain.EntityID) (map[ratingdomain.EntityID]ratingdomain.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[ratingdomain.EntityID]ratingdomain.Entity, len(ids))
	for _, id := range ids {
		if e, ok := m.entities[id]; ok {
			e.Members = slices.Clone(e.Members)
			out[id] = e
		}
	}
	return out, nil
}

func (m *MemoryRepository) GetEntityDefaultRating(_ context.Context, _ bun.IDB, entityID ratingdomain.EntityID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[entityID]
	if !ok {
		return 0, fmt.Errorf("ratingdb.GetEntityDefaultRating: %w", ErrNotFound)
	}
	return e.DefaultRating, nil
}

func (m *MemoryRepository) ReadLedgerHead(_ context.Context, _ bun.IDB, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID) (*ratingdomain.RatingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.ledger[leagueID]
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].EntityID == entityID {
			head := entries[i]
			return &head, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) ReadLedger(_ context.Context, _ bun.IDB, leagueID ratingdomain.LeagueID) ([]ratingdomain.RatingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.ledger[leagueID]), nil
}

func (m *MemoryRepository) ReadEntityHistory(_ context.Context, _ bun.IDB, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]ratingdomain.RatingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ratingdomain.RatingRecord
	for _, e := range m.ledger[leagueID] {
		if e.EntityID != entityID {
			continue
		}
		if !since.IsZero() && e.Timestamp.Before(since) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *MemoryRepository) HasGameEntries(_ context.Context, _ bun.IDB, leagueID ratingdomain.LeagueID, gameID ratingdomain.GameID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.ContainsFunc(m.ledger[leagueID], func(e ratingdomain.RatingRecord) bool {
		return e.GameID == gameID
	}), nil
}

// AppendLedgerEntries inserts entries atomically. A batch that repeats an
// existing (entity, game) pair is rejected as a whole.
func (m *MemoryRepository) AppendLedgerEntries(_ context.Context, _ bun.IDB, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := appendChecked(m.ledger[leagueID], leagueID, entries)
	if err != nil {
		return fmt.Errorf("ratingdb.AppendLedgerEntries: %w", err)
	}
	m.ledger[leagueID] = next
	return nil
}

func (m *MemoryRepository) WipeLedger(_ context.Context, _ bun.IDB, leagueID ratingdomain.LeagueID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ledger, leagueID)
	return nil
}

// ReplaceLedger swaps the league's ledger in a single critical section.
func (m *MemoryRepository) ReplaceLedger(_ context.Context, _ bun.IDB, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) error {
	next, err := appendChecked(nil, leagueID, entries)
	if err != nil {
		return fmt.Errorf("ratingdb.ReplaceLedger: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger[leagueID] = next
	return nil
}

// AcquireLeagueLock is a no-op; the store is never shared between processes.
func (m *MemoryRepository) AcquireLeagueLock(_ context.Context, _ bun.IDB, _ ratingdomain.LeagueID) error {
	return nil
}

type entryKey struct {
	entity ratingdomain.EntityID
	game   ratingdomain.GameID
}

func appendChecked(existing []ratingdomain.RatingRecord, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) ([]ratingdomain.RatingRecord, error) {
	seen := make(map[entryKey]struct{}, len(existing)+len(entries))
	for _, e := range existing {
		seen[entryKey{e.EntityID, e.GameID}] = struct{}{}
	}
	next := slices.Clone(existing)
	for _, e := range entries {
		if e.LeagueID != leagueID {
			return nil, fmt.Errorf("entry for league %s in batch for %s", e.LeagueID, leagueID)
		}
		k := entryKey{e.EntityID, e.GameID}
		if _, dup := seen[k]; dup {
			return nil, ErrDuplicateEntry
		}
		seen[k] = struct{}{}
		next = append(next, e)
	}
	ratingdomain.SortRecords(next)
	return next, nil
}
