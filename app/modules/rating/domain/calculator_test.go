package ratingdomain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedScore(t *testing.T) {
	calc := mustCalculator(32)

	tests := []struct {
		name     string
		side     []int
		opposing []int
		wantSide float64
	}{
		{name: "equal singles", side: []int{1500}, opposing: []int{1500}, wantSide: 0.5},
		{name: "equal doubles means", side: []int{1600, 1400}, opposing: []int{1500, 1500}, wantSide: 0.5},
		{name: "100 points stronger", side: []int{1600}, opposing: []int{1500}, wantSide: 0.6400649998028851},
		{name: "400 points weaker", side: []int{1100}, opposing: []int{1500}, wantSide: 1.0 / 11.0},
		{name: "mixed sizes use the mean", side: []int{1700}, opposing: []int{1500, 1500}, wantSide: 0.7597469266479578},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, q := calc.ExpectedScore(tt.side, tt.opposing)
			assert.InDelta(t, tt.wantSide, p, 1e-12)
			assert.Equal(t, 1.0, p+q)

			rp, rq := calc.ExpectedScore(tt.opposing, tt.side)
			assert.InDelta(t, q, rp, 1e-12)
			assert.InDelta(t, p, rq, 1e-12)
		})
	}
}

func TestExpectedScoreEqualRatingsIsExact(t *testing.T) {
	calc := mustCalculator(32)
	for _, r := range []int{1, 800, 1500, 2400} {
		p, q := calc.ExpectedScore([]int{r}, []int{r})
		if p != 0.5 || q != 0.5 {
			t.Fatalf("rating %d: expected exactly 0.5/0.5, got %v/%v", r, p, q)
		}
	}
}

func TestNewCalculatorRejectsInvalidParams(t *testing.T) {
	_, err := NewCalculator(0, 400)
	assert.True(t, errors.Is(err, ErrInvalidRulesConfig))

	_, err = NewCalculator(32, -1)
	assert.True(t, errors.Is(err, ErrInvalidRatingParams))
}

func TestComputeDelta(t *testing.T) {
	tests := []struct {
		name     string
		expected float64
		actual   float64
		k        int
		want     int
	}{
		{name: "even game win", expected: 0.5, actual: 1, k: 32, want: 16},
		{name: "even game loss", expected: 0.5, actual: 0, k: 32, want: -16},
		{name: "favourite wins", expected: 0.6400649998028851, actual: 1, k: 32, want: 12},
		{name: "underdog wins", expected: 0.3599350001971149, actual: 1, k: 32, want: 20},
		{name: "half rounds away from zero", expected: 0.5, actual: 1, k: 1, want: 1},
		{name: "negative half rounds away from zero", expected: 0.5, actual: 0, k: 1, want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeDelta(tt.expected, tt.actual, tt.k))
		})
	}
}

func TestSplitDelta(t *testing.T) {
	tests := []struct {
		name    string
		delta   int
		members []EntityID
		want    []MemberDelta
	}{
		{
			name:    "singles",
			delta:   -13,
			members: []EntityID{"solo"},
			want:    []MemberDelta{{"solo", -13}},
		},
		{
			name:    "even split",
			delta:   16,
			members: []EntityID{"zed", "amy"},
			want:    []MemberDelta{{"amy", 8}, {"zed", 8}},
		},
		{
			name:    "positive remainder to smaller id",
			delta:   5,
			members: []EntityID{"zed", "amy"},
			want:    []MemberDelta{{"amy", 3}, {"zed", 2}},
		},
		{
			name:    "negative remainder to smaller id",
			delta:   -5,
			members: []EntityID{"zed", "amy"},
			want:    []MemberDelta{{"amy", -3}, {"zed", -2}},
		},
		{
			name:    "zero",
			delta:   0,
			members: []EntityID{"b", "a"},
			want:    []MemberDelta{{"a", 0}, {"b", 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitDelta(tt.delta, tt.members)
			require.Equal(t, tt.want, got)

			sum := 0
			for _, m := range got {
				sum += m.Delta
			}
			assert.Equal(t, tt.delta, sum)
		})
	}
}

func TestSplitDeltaDoesNotReorderInput(t *testing.T) {
	members := []EntityID{"zed", "amy"}
	SplitDelta(3, members)
	assert.Equal(t, []EntityID{"zed", "amy"}, members)
}

func TestPercentPair(t *testing.T) {
	for _, p := range []float64{0, 0.005, 0.125, 0.5, 0.6400649998028851, 0.995, 1} {
		a, b := PercentPair(p)
		assert.Equal(t, 100, a+b, "p=%v", p)
	}
	a, b := PercentPair(0.6400649998028851)
	assert.Equal(t, 64, a)
	assert.Equal(t, 36, b)
}
