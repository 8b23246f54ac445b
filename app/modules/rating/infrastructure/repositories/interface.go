package ratingdb

import (
	"context"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for rating persistence.
// All methods are context-aware for cancellation and timeout propagation.
// A nil db runs against the repository's default connection.
//
// Error semantics:
//   - ErrNotFound: league, game or entity does not exist
//   - ErrDuplicateEntry: a ledger entry for (league, entity, game) already exists
//   - Other errors: Infrastructure failures (DB connection, query errors)
type Repository interface {
	// GetLeague returns a league with its rules and participating entity ids.
	GetLeague(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) (*ratingdomain.League, error)

	// GetRules returns a league's rules with unset fields filled from defaults.
	GetRules(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) (ratingdomain.Rules, error)

	// GetGame returns one game with its points and lineups.
	GetGame(ctx context.Context, db bun.IDB, gameID ratingdomain.GameID) (*ratingdomain.Game, error)

	// SaveGame stores a game with its points and lineup, replacing any stored
	// version with the same id.
	SaveGame(ctx context.Context, db bun.IDB, game ratingdomain.Game) error

	// GetGamesByLeagueOrdered returns every game of a league ascending by (played_at, id).
	GetGamesByLeagueOrdered(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) ([]ratingdomain.Game, error)

	// GetEntities returns the requested entities keyed by id. Missing ids are omitted.
	GetEntities(ctx context.Context, db bun.IDB, ids []ratingdomain.EntityID) (map[ratingdomain.EntityID]ratingdomain.Entity, error)

	// GetEntityDefaultRating returns the stored default rating; 0 means unset.
	GetEntityDefaultRating(ctx context.Context, db bun.IDB, entityID ratingdomain.EntityID) (int, error)

	// ReadLedgerHead returns the last entry for an entity, or nil when it has none.
	ReadLedgerHead(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID) (*ratingdomain.RatingRecord, error)

	// ReadLedger returns every entry of a league in ledger order.
	ReadLedger(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) ([]ratingdomain.RatingRecord, error)

	// ReadEntityHistory returns an entity's entries in ledger order, from since
	// onwards when since is non-zero.
	ReadEntityHistory(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]ratingdomain.RatingRecord, error)

	// HasGameEntries reports whether a game already has ledger entries.
	HasGameEntries(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, gameID ratingdomain.GameID) (bool, error)

	// AppendLedgerEntries inserts entries as one batch.
	AppendLedgerEntries(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) error

	// WipeLedger deletes every entry of a league.
	WipeLedger(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) error

	// ReplaceLedger wipes a league's ledger and inserts entries. Callers pass a
	// transaction so the swap is atomic.
	ReplaceLedger(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) error

	// AcquireLeagueLock takes a transaction-scoped lock serializing rating
	// writes for a league across processes.
	AcquireLeagueLock(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) error
}
