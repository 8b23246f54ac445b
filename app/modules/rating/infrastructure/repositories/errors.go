package ratingdb

import "errors"

// Sentinel errors for the repository layer.
// These represent infrastructure-level conditions callers may want
// to handle specially (not business-domain errors).
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEntry indicates a ledger entry for the same
	// (league, entity, game) already exists.
	ErrDuplicateEntry = errors.New("duplicate ledger entry")
)
