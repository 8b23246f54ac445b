package ratingdb

import (
	"context"
	"strings"
	"testing"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedDoc = `
leagues:
  - id: tuesday
    name: Tuesday Night Table
    rules:
      points_to_win: 6
    entities: [alice, bob, cara, dan]
  - id: friday
    name: Friday Cup
    entities: [alice, bob]
entities:
  - {id: alice}
  - {id: bob, default_rating: 1600}
  - {id: cara, kind: player}
  - {id: dan, kind: player}
  - {id: team-ab, kind: team, members: [alice, bob]}
games:
  - id: g2
    league_id: tuesday
    played_at: 2026-03-02T18:00:00Z
    blue: {players: [alice, bob], team: team-ab}
    red: {players: [cara, dan]}
    points:
      - {time: 12, scorer: alice}
      - {time: 40, scorer: cara, against: true}
  - id: g1
    league_id: tuesday
    played_at: 2026-03-01T18:00:00Z
    blue: {players: [alice]}
    red: {players: [bob]}
`

func TestMemoryRepositoryLoadSeed(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.LoadSeed(strings.NewReader(seedDoc)))

	rules, err := repo.GetRules(ctx, nil, "tuesday")
	require.NoError(t, err)
	assert.Equal(t, ratingdomain.Rules{PointsToWin: 6, MinimumDifference: 2, HalfTimeSwitch: true}, rules)

	rules, err = repo.GetRules(ctx, nil, "friday")
	require.NoError(t, err)
	assert.Equal(t, ratingdomain.DefaultRules(), rules)

	rating, err := repo.GetEntityDefaultRating(ctx, nil, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1600, rating)

	entities, err := repo.GetEntities(ctx, nil, []ratingdomain.EntityID{"alice", "team-ab"})
	require.NoError(t, err)
	assert.Equal(t, ratingdomain.EntityKindPlayer, entities["alice"].Kind)
	assert.Equal(t, []ratingdomain.EntityID{"alice", "bob"}, entities["team-ab"].Members)

	games, err := repo.GetGamesByLeagueOrdered(ctx, nil, "tuesday")
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, ratingdomain.GameID("g1"), games[0].ID)
	assert.Equal(t, ratingdomain.EntityID("team-ab"), games[1].Blue.Team)
	assert.True(t, games[1].Points[1].Against)
}

func TestMemoryRepositoryLoadSeedRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown field", doc: "leagues:\n  - id: a\n    colour: red\n"},
		{name: "league without id", doc: "leagues:\n  - name: nameless\n"},
		{name: "unknown kind", doc: "entities:\n  - {id: x, kind: robot}\n"},
		{name: "team with one member", doc: "entities:\n  - {id: t, kind: team, members: [a]}\n"},
		{name: "game in unknown league", doc: "games:\n  - {id: g1, league_id: nope, blue: {players: [a]}, red: {players: [b]}}\n"},
		{name: "player on both sides", doc: "leagues:\n  - id: l\ngames:\n  - {id: g1, league_id: l, blue: {players: [a]}, red: {players: [a]}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMemoryRepository()
			require.Error(t, repo.LoadSeed(strings.NewReader(tt.doc)))

			_, err := repo.GetRules(context.Background(), nil, "l")
			assert.ErrorIs(t, err, ErrNotFound, "nothing is stored from an invalid document")
		})
	}
}

func TestMemoryRepositoryLoadSeedFileMissing(t *testing.T) {
	err := NewMemoryRepository().LoadSeedFile("/nonexistent/seed.yaml")
	assert.Error(t, err)
}
