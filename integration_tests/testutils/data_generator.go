//go:build integration

package testutils

import (
	"context"
	"fmt"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/league-ratings/app/modules/rating/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"
)

// TestDataGenerator creates reproducible leagues and games.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  uint64
}

// NewTestDataGenerator creates a generator for seed.
func NewTestDataGenerator(seed uint64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed), seed: seed}
}

// SeededLeague is a league written to the database.
type SeededLeague struct {
	League  ratingdomain.League
	Players []ratingdomain.EntityID
	Games   []ratingdomain.Game
}

// GenerateGame plays a singles game to the default rules between two distinct
// players of players.
func (g *TestDataGenerator) GenerateGame(leagueID ratingdomain.LeagueID, id string, players []ratingdomain.EntityID, playedAt time.Time) ratingdomain.Game {
	i := g.faker.Number(0, len(players)-1)
	j := g.faker.Number(0, len(players)-2)
	if j >= i {
		j++
	}
	blue, red := players[i], players[j]

	rules := ratingdomain.DefaultRules()
	var points []ratingdomain.Point
	blueScore, redScore, clock := 0, 0, 0
	for {
		clock += g.faker.Number(5, 60)
		if g.faker.Bool() {
			blueScore++
			points = append(points, ratingdomain.Point{Time: clock, Scorer: blue})
		} else {
			redScore++
			points = append(points, ratingdomain.Point{Time: clock, Scorer: red})
		}
		lead := blueScore - redScore
		if lead < 0 {
			lead = -lead
		}
		if max(blueScore, redScore) >= rules.PointsToWin && lead >= rules.MinimumDifference {
			break
		}
	}

	winner := ratingdomain.SideBlue
	if redScore > blueScore {
		winner = ratingdomain.SideRed
	}
	return ratingdomain.Game{
		ID:       ratingdomain.GameID(id),
		LeagueID: leagueID,
		PlayedAt: playedAt,
		Points:   points,
		Blue:     ratingdomain.Lineup{Players: []ratingdomain.EntityID{blue}},
		Red:      ratingdomain.Lineup{Players: []ratingdomain.EntityID{red}},
		Finished: true,
		Winner:   winner,
	}
}

// SeedLeague writes a league with playerCount players and gameCount games one
// hour apart.
func (g *TestDataGenerator) SeedLeague(ctx context.Context, db bun.IDB, playerCount, gameCount int) (SeededLeague, error) {
	leagueID := ratingdomain.LeagueID(fmt.Sprintf("league-%d-%s", g.seed, g.faker.LetterN(6)))
	out := SeededLeague{
		League: ratingdomain.League{ID: leagueID, Name: g.faker.Company(), Rules: ratingdomain.DefaultRules()},
	}

	if _, err := db.NewInsert().Model(&ratingdb.League{ID: string(leagueID), Name: out.League.Name}).Exec(ctx); err != nil {
		return out, fmt.Errorf("insert league: %w", err)
	}

	for i := range playerCount {
		id := ratingdomain.EntityID(fmt.Sprintf("%s-%s-%d", leagueID, g.faker.FirstName(), i))
		out.Players = append(out.Players, id)
		if _, err := db.NewInsert().Model(&ratingdb.Entity{ID: string(id), Kind: string(ratingdomain.EntityKindPlayer)}).Exec(ctx); err != nil {
			return out, fmt.Errorf("insert entity: %w", err)
		}
		if _, err := db.NewInsert().Model(&ratingdb.LeagueEntity{LeagueID: string(leagueID), EntityID: string(id)}).Exec(ctx); err != nil {
			return out, fmt.Errorf("insert league entity: %w", err)
		}
	}
	out.League.Entities = out.Players

	start := time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)
	for i := range gameCount {
		game := g.GenerateGame(leagueID, fmt.Sprintf("%s-g%03d", leagueID, i), out.Players, start.Add(time.Duration(i)*time.Hour))
		if err := InsertGame(ctx, db, game); err != nil {
			return out, err
		}
		out.Games = append(out.Games, game)
	}
	return out, nil
}

// InsertGame writes a game with its points and lineup.
func InsertGame(ctx context.Context, db bun.IDB, game ratingdomain.Game) error {
	if err := ratingdb.NewRepository(db).SaveGame(ctx, nil, game); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}
