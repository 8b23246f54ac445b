package ratingdomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStandingsWithoutGames(t *testing.T) {
	entities := []Entity{
		{ID: "carol", Kind: EntityKindPlayer},
		{ID: "alice", Kind: EntityKindPlayer},
		{ID: "bob", Kind: EntityKindPlayer},
	}

	got := BuildStandings(entities, DefaultParams(), nil)
	require.Len(t, got, 3)
	for i, want := range []EntityID{"alice", "bob", "carol"} {
		assert.Equal(t, want, got[i].EntityID)
		assert.Equal(t, DefaultInitialRating, got[i].Rating)
		assert.Equal(t, i+1, got[i].Position)
		assert.True(t, got[i].AchievedAt.IsZero())
	}
}

func TestBuildStandingsTieBreaks(t *testing.T) {
	t1 := baseTime
	t2 := baseTime.Add(time.Hour)
	t3 := baseTime.Add(2 * time.Hour)

	entities := []Entity{{ID: "amy"}, {ID: "ben"}, {ID: "cal"}, {ID: "dot"}, {ID: "eve"}}
	records := []RatingRecord{
		// amy and ben both reach 1516, ben first.
		rec("ben", "g1", t1, 1500, 16), rec("cal", "g1", t1, 1500, -16),
		rec("amy", "g2", t2, 1500, 16), rec("dot", "g2", t2, 1500, -16),
		// a zero delta keeps ben's earlier timestamp.
		rec("ben", "g3", t3, 1516, 0), rec("amy", "g3", t3, 1516, 0),
	}

	got := BuildStandings(entities, DefaultParams(), records)
	var order []EntityID
	for _, s := range got {
		order = append(order, s.EntityID)
	}
	assert.Equal(t, []EntityID{"ben", "amy", "eve", "cal", "dot"}, order)

	assert.Equal(t, t1, got[0].AchievedAt)
	assert.Equal(t, 2, got[0].GamesPlayed)
	assert.Equal(t, t2, got[1].AchievedAt)
	// eve never played and has held 1500 the longest
	assert.Equal(t, 1500, got[2].Rating)
	assert.Equal(t, 3, got[2].Position)
}

func TestBuildStandingsIncludesLedgerOnlyEntities(t *testing.T) {
	records := []RatingRecord{rec("ghost", "g1", baseTime, 1500, 16), rec("known", "g1", baseTime, 1500, -16)}

	got := BuildStandings([]Entity{{ID: "known"}}, DefaultParams(), records)
	require.Len(t, got, 2)
	assert.Equal(t, EntityID("ghost"), got[0].EntityID)
	assert.Equal(t, 1516, got[0].Rating)
	assert.Equal(t, 1484, got[1].Rating)
}

func TestRankStandingsIsTotal(t *testing.T) {
	standings := []Standing{
		{EntityID: "b", Rating: 1500},
		{EntityID: "a", Rating: 1500},
		{EntityID: "c", Rating: 1600},
	}
	got := RankStandings(standings)
	assert.Equal(t, EntityID("c"), got[0].EntityID)
	assert.Equal(t, EntityID("a"), got[1].EntityID)
	assert.Equal(t, EntityID("b"), got[2].EntityID)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Position, got[1].Position, got[2].Position})
}
