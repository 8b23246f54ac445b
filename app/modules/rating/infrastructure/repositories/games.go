package ratingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new rating repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) getLeagueRow(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) (*League, error) {
	league := new(League)
	err := r.resolveDB(db).NewSelect().
		Model(league).
		Relation("Members", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("le.entity_id ASC")
		}).
		Where("l.id = ?", string(leagueID)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return league, nil
}

// GetLeague returns a league with its rules and participating entity ids.
func (r *Impl) GetLeague(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) (*ratingdomain.League, error) {
	row, err := r.getLeagueRow(ctx, db, leagueID)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.GetLeague: %w", err)
	}

	league := &ratingdomain.League{
		ID:       ratingdomain.LeagueID(row.ID),
		Name:     row.Name,
		Rules:    row.Rules(),
		Entities: make([]ratingdomain.EntityID, 0, len(row.Members)),
	}
	for _, m := range row.Members {
		league.Entities = append(league.Entities, ratingdomain.EntityID(m.EntityID))
	}
	return league, nil
}

// GetRules returns a league's rules with unset fields filled from defaults.
func (r *Impl) GetRules(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) (ratingdomain.Rules, error) {
	row := new(League)
	err := r.resolveDB(db).NewSelect().
		Model(row).
		Where("l.id = ?", string(leagueID)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ratingdomain.Rules{}, fmt.Errorf("ratingdb.GetRules: %w", ErrNotFound)
		}
		return ratingdomain.Rules{}, fmt.Errorf("ratingdb.GetRules: %w", err)
	}
	return row.Rules(), nil
}

func withLineup(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Points", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("gp.seq ASC")
		}).
		Relation("Participants", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("gpa.entity_id ASC")
		})
}

// GetGame returns one game with its points and lineups.
func (r *Impl) GetGame(ctx context.Context, db bun.IDB, gameID ratingdomain.GameID) (*ratingdomain.Game, error) {
	row := new(Game)
	err := r.resolveDB(db).NewSelect().
		Model(row).
		Apply(withLineup).
		Where("g.id = ?", string(gameID)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ratingdb.GetGame: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("ratingdb.GetGame: %w", err)
	}
	game := row.toDomain()
	return &game, nil
}

// SaveGame upserts the game row and rewrites its points and participants.
// Callers pass a transaction so the game is never observed half written.
func (r *Impl) SaveGame(ctx context.Context, db bun.IDB, game ratingdomain.Game) error {
	row, points, participants := toGameRows(game)
	idb := r.resolveDB(db)

	if _, err := idb.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("league_id = EXCLUDED.league_id").
		Set("played_at = EXCLUDED.played_at").
		Set("finished = EXCLUDED.finished").
		Set("winner = EXCLUDED.winner").
		Exec(ctx); err != nil {
		return fmt.Errorf("ratingdb.SaveGame: %w", err)
	}

	if _, err := idb.NewDelete().
		Model((*GamePoint)(nil)).
		Where("game_id = ?", row.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("ratingdb.SaveGame: failed to clear points: %w", err)
	}
	if _, err := idb.NewDelete().
		Model((*GameParticipant)(nil)).
		Where("game_id = ?", row.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("ratingdb.SaveGame: failed to clear participants: %w", err)
	}

	if len(points) > 0 {
		if _, err := idb.NewInsert().Model(&points).Exec(ctx); err != nil {
			return fmt.Errorf("ratingdb.SaveGame: failed to insert points: %w", err)
		}
	}
	if len(participants) > 0 {
		if _, err := idb.NewInsert().Model(&participants).Exec(ctx); err != nil {
			return fmt.Errorf("ratingdb.SaveGame: failed to insert participants: %w", err)
		}
	}
	return nil
}

// GetGamesByLeagueOrdered returns every game of a league ascending by (played_at, id).
func (r *Impl) GetGamesByLeagueOrdered(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) ([]ratingdomain.Game, error) {
	var rows []*Game
	err := r.resolveDB(db).NewSelect().
		Model(&rows).
		Apply(withLineup).
		Where("g.league_id = ?", string(leagueID)).
		Order("g.played_at ASC", "g.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.GetGamesByLeagueOrdered: %w", err)
	}

	games := make([]ratingdomain.Game, 0, len(rows))
	for _, row := range rows {
		games = append(games, row.toDomain())
	}
	return games, nil
}

// GetEntities returns the requested entities keyed by id. Missing ids are omitted.
func (r *Impl) GetEntities(ctx context.Context, db bun.IDB, ids []ratingdomain.EntityID) (map[ratingdomain.EntityID]ratingdomain.Entity, error) {
	out := make(map[ratingdomain.EntityID]ratingdomain.Entity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	var rows []*Entity
	err := r.resolveDB(db).NewSelect().
		Model(&rows).
		Relation("Members", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("tm.player_id ASC")
		}).
		Where("e.id IN (?)", bun.In(raw)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.GetEntities: %w", err)
	}

	for _, row := range rows {
		out[ratingdomain.EntityID(row.ID)] = row.toDomain()
	}
	return out, nil
}

// GetEntityDefaultRating returns the stored default rating; 0 means unset.
func (r *Impl) GetEntityDefaultRating(ctx context.Context, db bun.IDB, entityID ratingdomain.EntityID) (int, error) {
	var rating int
	err := r.resolveDB(db).NewSelect().
		Model((*Entity)(nil)).
		Column("default_rating").
		Where("id = ?", string(entityID)).
		Scan(ctx, &rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("ratingdb.GetEntityDefaultRating: %w", ErrNotFound)
		}
		return 0, fmt.Errorf("ratingdb.GetEntityDefaultRating: %w", err)
	}
	return rating, nil
}
