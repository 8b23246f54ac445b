package ratingdomain

import (
	"cmp"
	"slices"
	"time"
)

// Standing is one row of a league ranking.
type Standing struct {
	EntityID    EntityID   `json:"entity_id"`
	Kind        EntityKind `json:"kind,omitempty"`
	Rating      int        `json:"rating"`
	Position    int        `json:"position"`
	AchievedAt  time.Time  `json:"achieved_at"`
	GamesPlayed int        `json:"games_played"`
}

// BuildStandings folds a league ledger into one standing per entity. entities
// lists the league's participants; entities that only appear in records are
// included as well. records may be in any order.
func BuildStandings(entities []Entity, params Params, records []RatingRecord) []Standing {
	ordered := slices.Clone(records)
	SortRecords(ordered)

	byID := make(map[EntityID]*Standing, len(entities))
	for _, e := range entities {
		byID[e.ID] = &Standing{
			EntityID: e.ID,
			Kind:     e.Kind,
			Rating:   params.DefaultFor(e),
		}
	}

	for _, rec := range ordered {
		s, ok := byID[rec.EntityID]
		if !ok {
			s = &Standing{EntityID: rec.EntityID, Rating: rec.RatingBefore}
			byID[rec.EntityID] = s
		}
		// AchievedAt marks the start of the trailing run at the current rating.
		if rec.RatingAfter != s.Rating {
			s.AchievedAt = rec.Timestamp
		}
		s.Rating = rec.RatingAfter
		s.GamesPlayed++
	}

	out := make([]Standing, 0, len(byID))
	for _, s := range byID {
		out = append(out, *s)
	}
	return RankStandings(out)
}

// RankStandings sorts by rating descending, then by the time the rating was
// reached, then by entity id, and assigns positions 1..n.
func RankStandings(standings []Standing) []Standing {
	slices.SortFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		if c := a.AchievedAt.Compare(b.AchievedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.EntityID, b.EntityID)
	})
	for i := range standings {
		standings[i].Position = i + 1
	}
	return standings
}
