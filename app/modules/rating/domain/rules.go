package ratingdomain

import "fmt"

// Rule defaults applied when a league leaves a field unset.
const (
	DefaultPointsToWin       = 10
	DefaultMinimumDifference = 2
	DefaultHalfTimeSwitch    = true
)

// Rating defaults.
const (
	DefaultKFactor       = 32
	DefaultRatingScale   = 400.0
	DefaultInitialRating = 1500
)

// Rules decide when a game is finished.
type Rules struct {
	PointsToWin       int  `json:"points_to_win" yaml:"points_to_win"`
	MinimumDifference int  `json:"minimum_difference" yaml:"minimum_difference"`
	HalfTimeSwitch    bool `json:"half_time_switch" yaml:"half_time_switch"`
}

// DefaultRules returns the documented rule defaults.
func DefaultRules() Rules {
	return Rules{
		PointsToWin:       DefaultPointsToWin,
		MinimumDifference: DefaultMinimumDifference,
		HalfTimeSwitch:    DefaultHalfTimeSwitch,
	}
}

// Validate rejects non-positive thresholds.
func (r Rules) Validate() error {
	if r.PointsToWin <= 0 {
		return fmt.Errorf("%w: points to win must be positive, got %d", ErrInvalidRulesConfig, r.PointsToWin)
	}
	if r.MinimumDifference <= 0 {
		return fmt.Errorf("%w: minimum difference must be positive, got %d", ErrInvalidRulesConfig, r.MinimumDifference)
	}
	return nil
}

// Params are the global rating parameters.
type Params struct {
	KFactor       int     `json:"k_factor" yaml:"k_factor"`
	Scale         float64 `json:"scale" yaml:"scale"`
	DefaultRating int     `json:"default_rating" yaml:"default_rating"`
}

// DefaultParams returns K=32, scale 400 and a 1500 starting rating.
func DefaultParams() Params {
	return Params{
		KFactor:       DefaultKFactor,
		Scale:         DefaultRatingScale,
		DefaultRating: DefaultInitialRating,
	}
}

// Validate rejects non-positive parameters.
func (p Params) Validate() error {
	switch {
	case p.KFactor <= 0:
		return fmt.Errorf("%w: k factor must be positive, got %d", ErrInvalidRatingParams, p.KFactor)
	case p.Scale <= 0:
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidRatingParams, p.Scale)
	case p.DefaultRating <= 0:
		return fmt.Errorf("%w: default rating must be positive, got %d", ErrInvalidRatingParams, p.DefaultRating)
	}
	return nil
}

// DefaultFor returns the entity's own default rating, or the global one.
func (p Params) DefaultFor(e Entity) int {
	if e.DefaultRating > 0 {
		return e.DefaultRating
	}
	return p.DefaultRating
}
