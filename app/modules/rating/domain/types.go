package ratingdomain

import (
	"cmp"
	"time"
)

// LeagueID identifies a league.
type LeagueID string

// EntityID identifies a rated entity (player or team).
type EntityID string

// GameID identifies a game.
type GameID string

// EntityKind distinguishes players from teams.
type EntityKind string

const (
	EntityKindPlayer EntityKind = "player"
	EntityKindTeam   EntityKind = "team"
)

// Side is one of the two competing groups of a game.
type Side string

const (
	SideBlue Side = "blue"
	SideRed  Side = "red"
)

// Opposite returns the other side. The empty side has no opposite.
func (s Side) Opposite() Side {
	switch s {
	case SideBlue:
		return SideRed
	case SideRed:
		return SideBlue
	default:
		return ""
	}
}

// Valid reports whether s is blue or red.
func (s Side) Valid() bool {
	return s == SideBlue || s == SideRed
}

// Entity is a rated participant.
type Entity struct {
	ID            EntityID
	Kind          EntityKind
	DefaultRating int
	Members       []EntityID // exactly two for teams
}

// League groups entities and games under one set of rules.
type League struct {
	ID       LeagueID
	Name     string
	Rules    Rules
	Entities []EntityID
}

// Point is a single scored point. Time is seconds since the game started.
type Point struct {
	Time    int
	Against bool
	Scorer  EntityID
}

// Lineup is the set of entities playing on one side.
type Lineup struct {
	Players []EntityID
	Team    EntityID // optional; only meaningful for doubles
}

// Game is a recorded contest between two sides.
//
// Finished and Winner mirror what the game store persisted. They are reported
// but never used to decide a rating.
type Game struct {
	ID       GameID
	LeagueID LeagueID
	PlayedAt time.Time
	Points   []Point
	Blue     Lineup
	Red      Lineup
	Finished bool
	Winner   Side
}

// Lineup returns the lineup of the given side.
func (g Game) Lineup(side Side) Lineup {
	if side == SideRed {
		return g.Red
	}
	return g.Blue
}

// SideOf returns the side a player is lined up on.
func (g Game) SideOf(player EntityID) (Side, bool) {
	for _, id := range g.Blue.Players {
		if id == player {
			return SideBlue, true
		}
	}
	for _, id := range g.Red.Players {
		if id == player {
			return SideRed, true
		}
	}
	return "", false
}

// Participants returns every rated entity of the game: players of both sides,
// then teams when both sides carry one.
func (g Game) Participants() []EntityID {
	ids := make([]EntityID, 0, len(g.Blue.Players)+len(g.Red.Players)+2)
	ids = append(ids, g.Blue.Players...)
	ids = append(ids, g.Red.Players...)
	if g.HasTeams() {
		ids = append(ids, g.Blue.Team, g.Red.Team)
	}
	return ids
}

// HasTeams reports whether both sides are doubles lineups naming a team.
func (g Game) HasTeams() bool {
	return g.Blue.Team != "" && g.Red.Team != "" &&
		len(g.Blue.Players) == 2 && len(g.Red.Players) == 2
}

// CompareGames orders games by play time, then by id.
func CompareGames(a, b Game) int {
	return CompareOrder(a.PlayedAt, a.ID, b.PlayedAt, b.ID)
}

// CompareOrder is the ledger ordering key: (time, game id) ascending.
func CompareOrder(aTime time.Time, aID GameID, bTime time.Time, bID GameID) int {
	if c := aTime.Compare(bTime); c != 0 {
		return c
	}
	return cmp.Compare(aID, bID)
}

// RatingRecord is one immutable ledger entry.
type RatingRecord struct {
	LeagueID     LeagueID
	EntityID     EntityID
	GameID       GameID
	Timestamp    time.Time
	RatingBefore int
	Delta        int
	RatingAfter  int
}

// Follows reports whether r is strictly after prev in ledger order.
func (r RatingRecord) Follows(prev RatingRecord) bool {
	return CompareOrder(r.Timestamp, r.GameID, prev.Timestamp, prev.GameID) > 0
}
