package ratinghttp

import (
	"errors"
	"net/http"

	ratingservice "github.com/Black-And-White-Club/league-ratings/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, ratingservice.ErrLeagueNotFound),
		errors.Is(err, ratingservice.ErrGameNotFound),
		errors.Is(err, ratingdomain.ErrUnknownEntity):
		return http.StatusNotFound
	case errors.Is(err, ratingservice.ErrInvalidCursor),
		errors.Is(err, ratingdomain.ErrInvalidRulesConfig),
		errors.Is(err, ratingdomain.ErrInvalidGame):
		return http.StatusBadRequest
	case errors.Is(err, ratingdomain.ErrGameNotFinished),
		errors.Is(err, ratingdomain.ErrConflict),
		errors.Is(err, ratingdomain.ErrOutOfOrderEntry),
		errors.Is(err, ratingdomain.ErrConcurrentRegeneration):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
