package ratingdb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
)

// Seed is the YAML document loaded into a MemoryRepository.
type Seed struct {
	Leagues  []SeedLeague `yaml:"leagues"`
	Entities []SeedEntity `yaml:"entities"`
	Games    []SeedGame   `yaml:"games"`
}

// SeedLeague describes a league.
type SeedLeague struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Rules    SeedRules `yaml:"rules"`
	Entities []string  `yaml:"entities"`
}

// SeedRules mirrors the nullable rule columns: omitted fields use the defaults.
type SeedRules struct {
	PointsToWin       *int  `yaml:"points_to_win"`
	MinimumDifference *int  `yaml:"minimum_difference"`
	HalfTimeSwitch    *bool `yaml:"half_time_switch"`
}

func (r SeedRules) resolve() ratingdomain.Rules {
	row := League{PointsToWin: r.PointsToWin, MinimumDifference: r.MinimumDifference, HalfTimeSwitch: r.HalfTimeSwitch}
	return row.Rules()
}

// SeedEntity describes a player or a team.
type SeedEntity struct {
	ID            string   `yaml:"id"`
	Kind          string   `yaml:"kind"`
	DefaultRating int      `yaml:"default_rating"`
	Members       []string `yaml:"members"`
}

// SeedLineup is one side of a seeded game.
type SeedLineup struct {
	Players []string `yaml:"players"`
	Team    string   `yaml:"team"`
}

// SeedPoint is one point of a seeded game.
type SeedPoint struct {
	Time    int    `yaml:"time"`
	Scorer  string `yaml:"scorer"`
	Against bool   `yaml:"against"`
}

// SeedGame describes a recorded game.
type SeedGame struct {
	ID       string      `yaml:"id"`
	LeagueID string      `yaml:"league_id"`
	PlayedAt time.Time   `yaml:"played_at"`
	Blue     SeedLineup  `yaml:"blue"`
	Red      SeedLineup  `yaml:"red"`
	Points   []SeedPoint `yaml:"points"`
}

// LoadSeedFile reads a seed document from path into m.
func (m *MemoryRepository) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ratingdb.LoadSeedFile: %w", err)
	}
	defer f.Close()
	return m.LoadSeed(f)
}

// LoadSeed decodes a seed document and stores its leagues, entities and games.
// Nothing is stored when the document is invalid.
func (m *MemoryRepository) LoadSeed(r io.Reader) error {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("ratingdb.LoadSeed: failed to decode seed: %w", err)
	}

	leagues := make(map[ratingdomain.LeagueID]ratingdomain.League, len(seed.Leagues))
	for _, l := range seed.Leagues {
		if l.ID == "" {
			return errors.New("ratingdb.LoadSeed: league without id")
		}
		league := ratingdomain.League{ID: ratingdomain.LeagueID(l.ID), Name: l.Name, Rules: l.Rules.resolve()}
		for _, id := range l.Entities {
			league.Entities = append(league.Entities, ratingdomain.EntityID(id))
		}
		leagues[league.ID] = league
	}

	entities := make([]ratingdomain.Entity, 0, len(seed.Entities))
	for _, e := range seed.Entities {
		kind := ratingdomain.EntityKind(e.Kind)
		if kind == "" {
			kind = ratingdomain.EntityKindPlayer
		}
		switch {
		case e.ID == "":
			return errors.New("ratingdb.LoadSeed: entity without id")
		case kind != ratingdomain.EntityKindPlayer && kind != ratingdomain.EntityKindTeam:
			return fmt.Errorf("ratingdb.LoadSeed: entity %s has unknown kind %q", e.ID, e.Kind)
		case kind == ratingdomain.EntityKindTeam && len(e.Members) != 2:
			return fmt.Errorf("ratingdb.LoadSeed: team %s needs exactly two members", e.ID)
		}
		entity := ratingdomain.Entity{ID: ratingdomain.EntityID(e.ID), Kind: kind, DefaultRating: e.DefaultRating}
		for _, id := range e.Members {
			entity.Members = append(entity.Members, ratingdomain.EntityID(id))
		}
		entities = append(entities, entity)
	}

	games := make([]ratingdomain.Game, 0, len(seed.Games))
	for _, g := range seed.Games {
		game := ratingdomain.Game{
			ID:       ratingdomain.GameID(g.ID),
			LeagueID: ratingdomain.LeagueID(g.LeagueID),
			PlayedAt: g.PlayedAt.UTC(),
			Blue:     seedLineup(g.Blue),
			Red:      seedLineup(g.Red),
		}
		if _, ok := leagues[game.LeagueID]; !ok {
			return fmt.Errorf("ratingdb.LoadSeed: game %s references unknown league %s", g.ID, g.LeagueID)
		}
		if err := ratingdomain.ValidateLineups(game); err != nil {
			return fmt.Errorf("ratingdb.LoadSeed: %w", err)
		}
		for _, p := range g.Points {
			game.Points = append(game.Points, ratingdomain.Point{Time: p.Time, Against: p.Against, Scorer: ratingdomain.EntityID(p.Scorer)})
		}
		games = append(games, game)
	}

	for _, l := range leagues {
		m.PutLeague(l)
	}
	for _, e := range entities {
		m.PutEntity(e)
	}
	for _, g := range games {
		m.PutGame(g)
	}
	return nil
}

func seedLineup(l SeedLineup) ratingdomain.Lineup {
	out := ratingdomain.Lineup{Team: ratingdomain.EntityID(l.Team)}
	for _, id := range l.Players {
		out.Players = append(out.Players, ratingdomain.EntityID(id))
	}
	return out
}
