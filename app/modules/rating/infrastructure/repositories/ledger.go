package ratingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation
}

// ReadLedgerHead returns the last entry for an entity, or nil when it has none.
func (r *Impl) ReadLedgerHead(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID) (*ratingdomain.RatingRecord, error) {
	row := new(LedgerEntry)
	err := r.resolveDB(db).NewSelect().
		Model(row).
		Where("league_id = ?", string(leagueID)).
		Where("entity_id = ?", string(entityID)).
		Order("game_time DESC", "game_id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ratingdb.ReadLedgerHead: %w", err)
	}
	head := row.toDomain()
	return &head, nil
}

// ReadLedger returns every entry of a league in ledger order.
func (r *Impl) ReadLedger(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) ([]ratingdomain.RatingRecord, error) {
	var rows []LedgerEntry
	err := r.resolveDB(db).NewSelect().
		Model(&rows).
		Where("league_id = ?", string(leagueID)).
		Order("game_time ASC", "game_id ASC", "entity_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.ReadLedger: %w", err)
	}
	return toRecords(rows), nil
}

// ReadEntityHistory returns an entity's entries in ledger order, from since
// onwards when since is non-zero.
func (r *Impl) ReadEntityHistory(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]ratingdomain.RatingRecord, error) {
	var rows []LedgerEntry
	q := r.resolveDB(db).NewSelect().
		Model(&rows).
		Where("league_id = ?", string(leagueID)).
		Where("entity_id = ?", string(entityID))
	if !since.IsZero() {
		q = q.Where("game_time >= ?", since.UTC())
	}
	if err := q.Order("game_time ASC", "game_id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ratingdb.ReadEntityHistory: %w", err)
	}
	return toRecords(rows), nil
}

// HasGameEntries reports whether a game already has ledger entries.
func (r *Impl) HasGameEntries(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, gameID ratingdomain.GameID) (bool, error) {
	exists, err := r.resolveDB(db).NewSelect().
		Model((*LedgerEntry)(nil)).
		Where("league_id = ?", string(leagueID)).
		Where("game_id = ?", string(gameID)).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("ratingdb.HasGameEntries: %w", err)
	}
	return exists, nil
}

// AppendLedgerEntries inserts entries as one batch.
func (r *Impl) AppendLedgerEntries(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([]LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.LeagueID != leagueID {
			return fmt.Errorf("ratingdb.AppendLedgerEntries: entry for league %s in batch for %s", e.LeagueID, leagueID)
		}
		rows = append(rows, toLedgerEntry(e))
	}

	if _, err := r.resolveDB(db).NewInsert().Model(&rows).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ratingdb.AppendLedgerEntries: %w", ErrDuplicateEntry)
		}
		return fmt.Errorf("ratingdb.AppendLedgerEntries: %w", err)
	}
	return nil
}

// WipeLedger deletes every entry of a league.
func (r *Impl) WipeLedger(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) error {
	_, err := r.resolveDB(db).NewDelete().
		Model((*LedgerEntry)(nil)).
		Where("league_id = ?", string(leagueID)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.WipeLedger: %w", err)
	}
	return nil
}

// ReplaceLedger wipes a league's ledger and inserts entries.
func (r *Impl) ReplaceLedger(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) error {
	if err := r.WipeLedger(ctx, db, leagueID); err != nil {
		return err
	}
	// Large leagues are inserted in chunks to stay under the bind parameter limit.
	const chunk = 1000
	for start := 0; start < len(entries); start += chunk {
		end := min(start+chunk, len(entries))
		if err := r.AppendLedgerEntries(ctx, db, leagueID, entries[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// AcquireLeagueLock takes a pg_advisory_xact_lock for the league.
func (r *Impl) AcquireLeagueLock(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) error {
	// Use hashtext() for a stable int8 from the league id
	_, err := r.resolveDB(db).NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", string(leagueID)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.AcquireLeagueLock: %w", err)
	}
	return nil
}

func toRecords(rows []LedgerEntry) []ratingdomain.RatingRecord {
	out := make([]ratingdomain.RatingRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
