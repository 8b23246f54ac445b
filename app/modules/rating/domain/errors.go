package ratingdomain

import (
	"errors"
	"fmt"
)

// Business errors returned by the rating engine. Callers match them with
// errors.Is; the wrapping message carries the offending ids.
var (
	// ErrInvalidRulesConfig is returned for non-positive rule or rating parameters.
	ErrInvalidRulesConfig = errors.New("invalid rules config")

	// ErrInvalidRatingParams is returned for a non-positive K-factor, scale or default rating.
	ErrInvalidRatingParams = fmt.Errorf("%w: invalid rating parameters", ErrInvalidRulesConfig)

	// ErrUnknownEntity is returned when an id has no rating record or default.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrInvalidGame is returned for malformed lineups.
	ErrInvalidGame = errors.New("invalid game")

	// ErrGameNotFinished is returned when rating a game that is still in progress.
	ErrGameNotFinished = errors.New("game not finished")

	// ErrOutOfOrderEntry is returned when a ledger entry does not follow the
	// entity's head or carries a stale ratingBefore.
	ErrOutOfOrderEntry = errors.New("out of order ledger entry")

	// ErrConflict is returned when a game already has ledger entries.
	ErrConflict = errors.New("ledger conflict")

	// ErrConcurrentRegeneration is returned when a league is already regenerating.
	ErrConcurrentRegeneration = errors.New("regeneration already in progress")

	// ErrNonZeroSumViolation signals a defect in delta computation.
	ErrNonZeroSumViolation = errors.New("non zero-sum rating deltas")
)

// IsRetryable reports whether the operation may succeed if retried later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrOutOfOrderEntry) || errors.Is(err, ErrConcurrentRegeneration)
}

// IsDomainError reports whether err is one of the engine's business errors
// rather than an infrastructure failure.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrInvalidRulesConfig,
		ErrUnknownEntity,
		ErrInvalidGame,
		ErrGameNotFinished,
		ErrOutOfOrderEntry,
		ErrConflict,
		ErrConcurrentRegeneration,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
