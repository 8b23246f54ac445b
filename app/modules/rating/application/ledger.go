package ratingservice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Ledger is the append-only rating ledger of every league, backed by a
// Repository. It validates ordering and continuity on append; callers hold the
// league's write lock.
type Ledger struct {
	repo   ratingdb.Repository
	params ratingdomain.Params
}

// NewLedger creates a Ledger.
func NewLedger(repo ratingdb.Repository, params ratingdomain.Params) *Ledger {
	return &Ledger{repo: repo, params: params}
}

// DefaultRating returns the rating an entity starts a league with.
func (l *Ledger) DefaultRating(ctx context.Context, db bun.IDB, entityID ratingdomain.EntityID) (int, error) {
	rating, err := l.repo.GetEntityDefaultRating(ctx, db, entityID)
	if err != nil {
		if errors.Is(err, ratingdb.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", ratingdomain.ErrUnknownEntity, entityID)
		}
		return 0, err
	}
	if rating <= 0 {
		return l.params.DefaultRating, nil
	}
	return rating, nil
}

// CurrentRating returns the entity's head ratingAfter, or its default rating
// when it has no entries in the league.
func (l *Ledger) CurrentRating(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID) (int, error) {
	head, err := l.repo.ReadLedgerHead(ctx, db, leagueID, entityID)
	if err != nil {
		return 0, err
	}
	if head != nil {
		return head.RatingAfter, nil
	}
	return l.DefaultRating(ctx, db, entityID)
}

// CurrentRatings returns the current rating of every id.
func (l *Ledger) CurrentRatings(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, ids []ratingdomain.EntityID) (map[ratingdomain.EntityID]int, error) {
	out := make(map[ratingdomain.EntityID]int, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		rating, err := l.CurrentRating(ctx, db, leagueID, id)
		if err != nil {
			return nil, err
		}
		out[id] = rating
	}
	return out, nil
}

// AppendEntries appends entries as one batch. Every entry must strictly follow
// its entity's head and start from the entity's current rating; a game that
// already has entries is a conflict.
func (l *Ledger) AppendEntries(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entries []ratingdomain.RatingRecord) error {
	if len(entries) == 0 {
		return nil
	}

	type key struct {
		entity ratingdomain.EntityID
		game   ratingdomain.GameID
	}
	var games []ratingdomain.GameID
	seen := make(map[key]struct{}, len(entries))
	for _, e := range entries {
		if e.LeagueID != leagueID {
			return fmt.Errorf("%w: entry for league %s appended to %s", ratingdomain.ErrOutOfOrderEntry, e.LeagueID, leagueID)
		}
		if !slices.Contains(games, e.GameID) {
			games = append(games, e.GameID)
		}
		k := key{e.EntityID, e.GameID}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: %s appears twice for game %s", ratingdomain.ErrConflict, e.EntityID, e.GameID)
		}
		seen[k] = struct{}{}
	}

	for _, gameID := range games {
		exists, err := l.repo.HasGameEntries(ctx, db, leagueID, gameID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: game %s already rated in league %s", ratingdomain.ErrConflict, gameID, leagueID)
		}
	}

	batch := make(map[ratingdomain.EntityID]ratingdomain.RatingRecord, len(entries))
	for _, e := range entries {
		var head *ratingdomain.RatingRecord
		var current int
		if prev, ok := batch[e.EntityID]; ok {
			head, current = &prev, prev.RatingAfter
		} else {
			h, err := l.repo.ReadLedgerHead(ctx, db, leagueID, e.EntityID)
			if err != nil {
				return err
			}
			if h != nil {
				head, current = h, h.RatingAfter
			} else if current, err = l.DefaultRating(ctx, db, e.EntityID); err != nil {
				return err
			}
		}
		if err := ratingdomain.ValidateAppend(head, current, e); err != nil {
			return err
		}
		batch[e.EntityID] = e
	}

	if err := l.repo.AppendLedgerEntries(ctx, db, leagueID, entries); err != nil {
		if errors.Is(err, ratingdb.ErrDuplicateEntry) {
			return fmt.Errorf("%w: %v", ratingdomain.ErrConflict, err)
		}
		return err
	}
	return nil
}

// History returns an entity's entries in ledger order, from since when non-zero.
// Every call is a fresh read.
func (l *Ledger) History(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]ratingdomain.RatingRecord, error) {
	records, err := l.repo.ReadEntityHistory(ctx, db, leagueID, entityID, since)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		if _, err := l.DefaultRating(ctx, db, entityID); err != nil {
			return nil, err
		}
		return []ratingdomain.RatingRecord{}, nil
	}
	return records, nil
}

// Ranking ranks every league participant and every entity present in the
// league's ledger from a single ledger read.
func (l *Ledger) Ranking(ctx context.Context, db bun.IDB, leagueID ratingdomain.LeagueID) ([]ratingdomain.Standing, error) {
	league, err := l.repo.GetLeague(ctx, db, leagueID)
	if err != nil {
		if errors.Is(err, ratingdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrLeagueNotFound, leagueID)
		}
		return nil, err
	}

	records, err := l.repo.ReadLedger(ctx, db, leagueID)
	if err != nil {
		return nil, err
	}

	ids := slices.Clone(league.Entities)
	for _, rec := range records {
		ids = append(ids, rec.EntityID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	known, err := l.repo.GetEntities(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	entities := make([]ratingdomain.Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := known[id]; ok {
			entities = append(entities, e)
		} else if slices.Contains(league.Entities, id) {
			entities = append(entities, ratingdomain.Entity{ID: id})
		}
	}
	return ratingdomain.BuildStandings(entities, l.params, records), nil
}
