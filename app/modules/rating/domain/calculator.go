package ratingdomain

import (
	"math"
	"slices"
)

// Calculator computes Elo expected scores and deltas.
type Calculator struct {
	kFactor int
	scale   float64
}

// NewCalculator returns a calculator for the given K-factor and scale.
func NewCalculator(kFactor int, scale float64) (Calculator, error) {
	if err := (Params{KFactor: kFactor, Scale: scale, DefaultRating: 1}).Validate(); err != nil {
		return Calculator{}, err
	}
	return Calculator{kFactor: kFactor, scale: scale}, nil
}

// KFactor returns the configured K-factor.
func (c Calculator) KFactor() int { return c.kFactor }

// ExpectedScore returns the win probability of side against opposing, and its
// complement. Each side is represented by the mean of its member ratings.
func (c Calculator) ExpectedScore(side, opposing []int) (float64, float64) {
	meanSide := MeanRating(side)
	meanOpposing := MeanRating(opposing)
	if meanSide == meanOpposing {
		return 0.5, 0.5
	}
	p := 1 / (1 + math.Pow(10, (meanOpposing-meanSide)/c.scale))
	return p, 1 - p
}

// MeanRating is the arithmetic mean of ratings; zero for an empty slice.
func MeanRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

// ComputeDelta returns round(k * (actual - expected)), rounding half away from zero.
func ComputeDelta(expected, actual float64, kFactor int) int {
	return int(math.Round(float64(kFactor) * (actual - expected)))
}

// PercentPair converts a probability into two integer percentages summing to 100.
func PercentPair(p float64) (int, int) {
	side := int(math.Round(p * 100))
	side = max(0, min(100, side))
	return side, 100 - side
}

// MemberDelta is one member's share of a side delta.
type MemberDelta struct {
	EntityID EntityID
	Delta    int
}

// SplitDelta divides delta equally among members. The remainder is handed out
// one unit at a time, in the sign of delta, to the lexicographically smallest ids.
func SplitDelta(delta int, members []EntityID) []MemberDelta {
	if len(members) == 0 {
		return nil
	}
	ordered := slices.Clone(members)
	slices.Sort(ordered)

	n := len(ordered)
	base := delta / n
	rem := delta - base*n
	step := 1
	if rem < 0 {
		step = -1
		rem = -rem
	}

	out := make([]MemberDelta, n)
	for i, id := range ordered {
		d := base
		if i < rem {
			d += step
		}
		out[i] = MemberDelta{EntityID: id, Delta: d}
	}
	return out
}
