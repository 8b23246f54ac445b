package ratingdomain

import "time"

var baseTime = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

// goals returns n regular points scored by scorer.
func goals(scorer EntityID, n int) []Point {
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{Time: i * 30, Scorer: scorer}
	}
	return points
}

func ownGoals(scorer EntityID, n int) []Point {
	points := goals(scorer, n)
	for i := range points {
		points[i].Against = true
	}
	return points
}

func concat(parts ...[]Point) []Point {
	var out []Point
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func singles(id GameID, at time.Time, blue, red EntityID, points []Point) Game {
	return Game{
		ID:       id,
		LeagueID: "league-1",
		PlayedAt: at,
		Points:   points,
		Blue:     Lineup{Players: []EntityID{blue}},
		Red:      Lineup{Players: []EntityID{red}},
	}
}

func doubles(id GameID, at time.Time, blue, red [2]EntityID, points []Point) Game {
	return Game{
		ID:       id,
		LeagueID: "league-1",
		PlayedAt: at,
		Points:   points,
		Blue:     Lineup{Players: blue[:]},
		Red:      Lineup{Players: red[:]},
	}
}

func players(ids ...EntityID) map[EntityID]Entity {
	out := make(map[EntityID]Entity, len(ids))
	for _, id := range ids {
		out[id] = Entity{ID: id, Kind: EntityKindPlayer}
	}
	return out
}

func mustCalculator(k int) Calculator {
	c, err := NewCalculator(k, DefaultRatingScale)
	if err != nil {
		panic(err)
	}
	return c
}
