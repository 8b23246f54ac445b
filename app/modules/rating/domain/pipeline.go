package ratingdomain

import "fmt"

// GameRating is the result of rating one finished game.
type GameRating struct {
	Outcome      Outcome
	ExpectedBlue float64
	ExpectedRed  float64
	SideDelta    map[Side]int // player-level aggregate delta per side
	Records      []RatingRecord
}

// RateGame runs a game through evaluation and rating. current must hold the
// rating of every participant; it is not modified. Both incremental
// application and replay go through this function.
func RateGame(game Game, rules Rules, calc Calculator, current map[EntityID]int) (GameRating, error) {
	if err := ValidateLineups(game); err != nil {
		return GameRating{}, err
	}

	outcome, err := Evaluate(game, rules)
	if err != nil {
		return GameRating{}, err
	}
	if !outcome.Finished {
		return GameRating{}, fmt.Errorf("%w: game %s is %d-%d", ErrGameNotFinished, game.ID, outcome.ScoreBlue, outcome.ScoreRed)
	}

	ratingsOf := func(ids []EntityID) ([]int, error) {
		out := make([]int, len(ids))
		for i, id := range ids {
			r, ok := current[id]
			if !ok {
				return nil, fmt.Errorf("%w: no rating for %s in game %s", ErrUnknownEntity, id, game.ID)
			}
			out[i] = r
		}
		return out, nil
	}

	blue, err := ratingsOf(game.Blue.Players)
	if err != nil {
		return GameRating{}, err
	}
	red, err := ratingsOf(game.Red.Players)
	if err != nil {
		return GameRating{}, err
	}

	pBlue, pRed := calc.ExpectedScore(blue, red)
	result := GameRating{
		Outcome:      outcome,
		ExpectedBlue: pBlue,
		ExpectedRed:  pRed,
		SideDelta:    sideDeltas(outcome.Winner, pBlue, pRed, calc.KFactor()),
	}

	record := func(id EntityID, delta int) RatingRecord {
		before := current[id]
		return RatingRecord{
			LeagueID:     game.LeagueID,
			EntityID:     id,
			GameID:       game.ID,
			Timestamp:    game.PlayedAt,
			RatingBefore: before,
			Delta:        delta,
			RatingAfter:  before + delta,
		}
	}

	for _, side := range []Side{SideBlue, SideRed} {
		for _, share := range SplitDelta(result.SideDelta[side], game.Lineup(side).Players) {
			result.Records = append(result.Records, record(share.EntityID, share.Delta))
		}
	}
	if err := checkZeroSum(game.ID, result.Records); err != nil {
		return GameRating{}, err
	}

	if game.HasTeams() {
		teams, err := ratingsOf([]EntityID{game.Blue.Team, game.Red.Team})
		if err != nil {
			return GameRating{}, err
		}
		tBlue, tRed := calc.ExpectedScore(teams[:1], teams[1:])
		teamDelta := sideDeltas(outcome.Winner, tBlue, tRed, calc.KFactor())
		teamRecords := []RatingRecord{
			record(game.Blue.Team, teamDelta[SideBlue]),
			record(game.Red.Team, teamDelta[SideRed]),
		}
		if err := checkZeroSum(game.ID, teamRecords); err != nil {
			return GameRating{}, err
		}
		result.Records = append(result.Records, teamRecords...)
	}

	return result, nil
}

// sideDeltas gives the winner round(k*(1-p)) and the loser its exact negation.
func sideDeltas(winner Side, pBlue, pRed float64, kFactor int) map[Side]int {
	expected := pBlue
	if winner == SideRed {
		expected = pRed
	}
	d := ComputeDelta(expected, 1, kFactor)
	return map[Side]int{winner: d, winner.Opposite(): -d}
}

func checkZeroSum(gameID GameID, records []RatingRecord) error {
	sum := 0
	for _, r := range records {
		sum += r.Delta
	}
	if sum != 0 {
		return fmt.Errorf("%w: game %s deltas sum to %d", ErrNonZeroSumViolation, gameID, sum)
	}
	return nil
}
