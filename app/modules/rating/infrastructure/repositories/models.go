package ratingdb

import (
	"context"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// League is a league row. Nil rule columns fall back to the documented defaults.
type League struct {
	bun.BaseModel `bun:"table:leagues,alias:l"`

	ID                string    `bun:"id,pk"`
	Name              string    `bun:"name,notnull"`
	PointsToWin       *int      `bun:"points_to_win"`
	MinimumDifference *int      `bun:"minimum_difference"`
	HalfTimeSwitch    *bool     `bun:"half_time_switch"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Members []*LeagueEntity `bun:"rel:has-many,join:id=league_id"`
}

// Rules resolves the league's rule columns.
func (l *League) Rules() ratingdomain.Rules {
	rules := ratingdomain.DefaultRules()
	if l.PointsToWin != nil {
		rules.PointsToWin = *l.PointsToWin
	}
	if l.MinimumDifference != nil {
		rules.MinimumDifference = *l.MinimumDifference
	}
	if l.HalfTimeSwitch != nil {
		rules.HalfTimeSwitch = *l.HalfTimeSwitch
	}
	return rules
}

// LeagueEntity links an entity to a league it participates in.
type LeagueEntity struct {
	bun.BaseModel `bun:"table:league_entities,alias:le"`

	LeagueID string    `bun:"league_id,pk"`
	EntityID string    `bun:"entity_id,pk"`
	JoinedAt time.Time `bun:"joined_at,nullzero,notnull,default:current_timestamp"`
}

// Entity is a player or team row.
type Entity struct {
	bun.BaseModel `bun:"table:rating_entities,alias:e"`

	ID            string `bun:"id,pk"`
	Kind          string `bun:"kind,notnull"`
	DefaultRating int    `bun:"default_rating,notnull,default:0"`

	Members []*TeamMember `bun:"rel:has-many,join:id=team_id"`
}

// TeamMember links a team to one of its two players.
type TeamMember struct {
	bun.BaseModel `bun:"table:team_members,alias:tm"`

	TeamID   string `bun:"team_id,pk"`
	PlayerID string `bun:"player_id,pk"`
}

// Game is a game row with its points and lineup.
type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID       string    `bun:"id,pk"`
	LeagueID string    `bun:"league_id,notnull"`
	PlayedAt time.Time `bun:"played_at,notnull"`
	Finished bool      `bun:"finished,notnull,default:false"`
	Winner   string    `bun:"winner"`

	Points       []*GamePoint       `bun:"rel:has-many,join:id=game_id"`
	Participants []*GameParticipant `bun:"rel:has-many,join:id=game_id"`
}

// GamePoint is one point of a game, ordered by Seq.
type GamePoint struct {
	bun.BaseModel `bun:"table:game_points,alias:gp"`

	GameID   string `bun:"game_id,pk"`
	Seq      int    `bun:"seq,pk"`
	Time     int    `bun:"time_offset,notnull"`
	Against  bool   `bun:"against,notnull,default:false"`
	ScorerID string `bun:"scorer_id,notnull"`
}

// Participant roles.
const (
	RolePlayer = "player"
	RoleTeam   = "team"
)

// GameParticipant places an entity on a side of a game.
type GameParticipant struct {
	bun.BaseModel `bun:"table:game_participants,alias:gpa"`

	GameID   string `bun:"game_id,pk"`
	EntityID string `bun:"entity_id,pk"`
	Side     string `bun:"side,notnull"`
	Role     string `bun:"role,notnull,default:'player'"`
}

// LedgerEntry is one immutable rating record.
type LedgerEntry struct {
	bun.BaseModel `bun:"table:rating_ledger,alias:rl"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	LeagueID     string    `bun:"league_id,notnull"`
	EntityID     string    `bun:"entity_id,notnull"`
	GameID       string    `bun:"game_id,notnull"`
	GameTime     time.Time `bun:"game_time,notnull"`
	RatingBefore int       `bun:"rating_before,notnull"`
	Delta        int       `bun:"delta,notnull"`
	RatingAfter  int       `bun:"rating_after,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*LedgerEntry)(nil)

func (e *LedgerEntry) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func toLedgerEntry(r ratingdomain.RatingRecord) LedgerEntry {
	return LedgerEntry{
		ID:           uuid.New(),
		LeagueID:     string(r.LeagueID),
		EntityID:     string(r.EntityID),
		GameID:       string(r.GameID),
		GameTime:     r.Timestamp.UTC(),
		RatingBefore: r.RatingBefore,
		Delta:        r.Delta,
		RatingAfter:  r.RatingAfter,
	}
}

func (e LedgerEntry) toDomain() ratingdomain.RatingRecord {
	return ratingdomain.RatingRecord{
		LeagueID:     ratingdomain.LeagueID(e.LeagueID),
		EntityID:     ratingdomain.EntityID(e.EntityID),
		GameID:       ratingdomain.GameID(e.GameID),
		Timestamp:    e.GameTime.UTC(),
		RatingBefore: e.RatingBefore,
		Delta:        e.Delta,
		RatingAfter:  e.RatingAfter,
	}
}

func (g *Game) toDomain() ratingdomain.Game {
	out := ratingdomain.Game{
		ID:       ratingdomain.GameID(g.ID),
		LeagueID: ratingdomain.LeagueID(g.LeagueID),
		PlayedAt: g.PlayedAt.UTC(),
		Finished: g.Finished,
		Winner:   ratingdomain.Side(g.Winner),
		Points:   make([]ratingdomain.Point, 0, len(g.Points)),
	}
	for _, p := range g.Points {
		out.Points = append(out.Points, ratingdomain.Point{
			Time:    p.Time,
			Against: p.Against,
			Scorer:  ratingdomain.EntityID(p.ScorerID),
		})
	}
	for _, p := range g.Participants {
		lineup := &out.Blue
		if ratingdomain.Side(p.Side) == ratingdomain.SideRed {
			lineup = &out.Red
		}
		if p.Role == RoleTeam {
			lineup.Team = ratingdomain.EntityID(p.EntityID)
			continue
		}
		lineup.Players = append(lineup.Players, ratingdomain.EntityID(p.EntityID))
	}
	return out
}

func toGameRows(game ratingdomain.Game) (*Game, []*GamePoint, []*GameParticipant) {
	row := &Game{
		ID:       string(game.ID),
		LeagueID: string(game.LeagueID),
		PlayedAt: game.PlayedAt.UTC(),
		Finished: game.Finished,
		Winner:   string(game.Winner),
	}

	points := make([]*GamePoint, 0, len(game.Points))
	for i, p := range game.Points {
		points = append(points, &GamePoint{
			GameID:   row.ID,
			Seq:      i,
			Time:     p.Time,
			Against:  p.Against,
			ScorerID: string(p.Scorer),
		})
	}

	var participants []*GameParticipant
	for _, side := range []ratingdomain.Side{ratingdomain.SideBlue, ratingdomain.SideRed} {
		lineup := game.Lineup(side)
		for _, id := range lineup.Players {
			participants = append(participants, &GameParticipant{GameID: row.ID, EntityID: string(id), Side: string(side), Role: RolePlayer})
		}
		if lineup.Team != "" {
			participants = append(participants, &GameParticipant{GameID: row.ID, EntityID: string(lineup.Team), Side: string(side), Role: RoleTeam})
		}
	}
	return row, points, participants
}

func (e *Entity) toDomain() ratingdomain.Entity {
	out := ratingdomain.Entity{
		ID:            ratingdomain.EntityID(e.ID),
		Kind:          ratingdomain.EntityKind(e.Kind),
		DefaultRating: e.DefaultRating,
	}
	for _, m := range e.Members {
		out.Members = append(out.Members, ratingdomain.EntityID(m.PlayerID))
	}
	return out
}
