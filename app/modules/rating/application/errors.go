package ratingservice

import (
	"errors"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
)

// Lookup errors raised at the service boundary.
var (
	ErrLeagueNotFound = errors.New("league not found")
	ErrGameNotFound   = errors.New("game not found")
	ErrInvalidCursor  = errors.New("invalid cursor")
)

// IsBusinessError reports whether err is a caller-facing failure rather than
// an infrastructure error.
func IsBusinessError(err error) bool {
	return ratingdomain.IsDomainError(err) ||
		errors.Is(err, ErrLeagueNotFound) ||
		errors.Is(err, ErrGameNotFound) ||
		errors.Is(err, ErrInvalidCursor)
}
