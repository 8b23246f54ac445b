package ratingdomain

import "fmt"

// PlayerStats counts a player's points in one game.
type PlayerStats struct {
	Goals    int
	OwnGoals int
}

// Outcome is the score and status derived from a game's points.
type Outcome struct {
	ScoreBlue int
	ScoreRed  int
	Finished  bool
	Winner    Side // empty until finished
	// HalfTimeAt is the index of the point after which sides are presented as
	// switched, or -1. It never affects scores or the winner.
	HalfTimeAt int
	Stats      map[EntityID]PlayerStats
}

// Score returns the score of the given side.
func (o Outcome) Score(side Side) int {
	if side == SideRed {
		return o.ScoreRed
	}
	return o.ScoreBlue
}

// ActualScore is 1 for the winner and 0 for the loser.
func (o Outcome) ActualScore(side Side) float64 {
	if o.Winner == side {
		return 1
	}
	return 0
}

// Evaluate tallies a game's points under rules. Points are attributed to the
// scorer's side, or to the opposing side when scored against.
func Evaluate(game Game, rules Rules) (Outcome, error) {
	if err := rules.Validate(); err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		HalfTimeAt: -1,
		Stats:      make(map[EntityID]PlayerStats, len(game.Blue.Players)+len(game.Red.Players)),
	}
	halfway := (rules.PointsToWin + 1) / 2

	for i, p := range game.Points {
		side, ok := game.SideOf(p.Scorer)
		if !ok {
			return Outcome{}, fmt.Errorf("%w: point %d of game %s scored by %q who is on neither side",
				ErrUnknownEntity, i, game.ID, p.Scorer)
		}

		stats := out.Stats[p.Scorer]
		if p.Against {
			side = side.Opposite()
			stats.OwnGoals++
		} else {
			stats.Goals++
		}
		out.Stats[p.Scorer] = stats

		if side == SideBlue {
			out.ScoreBlue++
		} else {
			out.ScoreRed++
		}

		if rules.HalfTimeSwitch && out.HalfTimeAt < 0 &&
			(out.ScoreBlue == halfway || out.ScoreRed == halfway) {
			out.HalfTimeAt = i
		}
	}

	diff := out.ScoreBlue - out.ScoreRed
	if diff < 0 {
		diff = -diff
	}
	leading := max(out.ScoreBlue, out.ScoreRed)
	out.Finished = leading >= rules.PointsToWin && diff >= rules.MinimumDifference

	if out.Finished {
		if out.ScoreBlue > out.ScoreRed {
			out.Winner = SideBlue
		} else {
			out.Winner = SideRed
		}
	}
	return out, nil
}

// ValidateLineups checks that each side has one or two distinct players, that
// no player appears on both sides, and that a team is only named for doubles.
func ValidateLineups(game Game) error {
	seen := make(map[EntityID]Side, 4)
	for _, side := range []Side{SideBlue, SideRed} {
		lineup := game.Lineup(side)
		if n := len(lineup.Players); n < 1 || n > 2 {
			return fmt.Errorf("%w: game %s %s side has %d players", ErrInvalidGame, game.ID, side, n)
		}
		for _, id := range lineup.Players {
			if id == "" {
				return fmt.Errorf("%w: game %s %s side has an empty player id", ErrInvalidGame, game.ID, side)
			}
			if prev, dup := seen[id]; dup {
				return fmt.Errorf("%w: game %s lists %s on %s and %s", ErrInvalidGame, game.ID, id, prev, side)
			}
			seen[id] = side
		}
		if lineup.Team != "" && len(lineup.Players) != 2 {
			return fmt.Errorf("%w: game %s %s side names team %s without two players",
				ErrInvalidGame, game.ID, side, lineup.Team)
		}
	}
	if game.Blue.Team != "" && game.Blue.Team == game.Red.Team {
		return fmt.Errorf("%w: game %s has team %s on both sides", ErrInvalidGame, game.ID, game.Blue.Team)
	}
	return nil
}
