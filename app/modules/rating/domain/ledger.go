package ratingdomain

import (
	"fmt"
	"slices"
)

// ValidateAppend checks that entry can be appended after head. head is nil when
// the entity has no entries; current is the entity's rating at append time.
func ValidateAppend(head *RatingRecord, current int, entry RatingRecord) error {
	if head != nil && !entry.Follows(*head) {
		return fmt.Errorf("%w: %s game %s at %s does not follow game %s at %s",
			ErrOutOfOrderEntry, entry.EntityID,
			entry.GameID, entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
			head.GameID, head.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"))
	}
	if entry.RatingBefore != current {
		return fmt.Errorf("%w: %s rating before %d, current rating is %d",
			ErrOutOfOrderEntry, entry.EntityID, entry.RatingBefore, current)
	}
	if entry.RatingAfter != entry.RatingBefore+entry.Delta {
		return fmt.Errorf("%w: %s game %s: %d + %d != %d", ErrOutOfOrderEntry,
			entry.EntityID, entry.GameID, entry.RatingBefore, entry.Delta, entry.RatingAfter)
	}
	return nil
}

// VerifyLedger checks a whole league ledger in append order: every entity's
// chain starts at its default, is strictly ordered and has no gaps, and every
// game's deltas sum to zero.
func VerifyLedger(records []RatingRecord, defaults map[EntityID]int) error {
	heads := make(map[EntityID]RatingRecord, len(defaults))
	sums := make(map[GameID]int)
	games := make([]GameID, 0)

	for _, rec := range records {
		current, ok := defaults[rec.EntityID]
		var head *RatingRecord
		if h, seen := heads[rec.EntityID]; seen {
			head = &h
			current = h.RatingAfter
		} else if !ok {
			return fmt.Errorf("%w: ledger entry for %s has no default rating", ErrUnknownEntity, rec.EntityID)
		}
		if err := ValidateAppend(head, current, rec); err != nil {
			return err
		}
		heads[rec.EntityID] = rec

		if _, seen := sums[rec.GameID]; !seen {
			games = append(games, rec.GameID)
		}
		sums[rec.GameID] += rec.Delta
	}

	for _, id := range games {
		if sums[id] != 0 {
			return fmt.Errorf("%w: game %s deltas sum to %d", ErrNonZeroSumViolation, id, sums[id])
		}
	}
	return nil
}

// SortRecords orders records by ledger order, then entity id.
func SortRecords(records []RatingRecord) {
	slices.SortStableFunc(records, func(a, b RatingRecord) int {
		if c := CompareOrder(a.Timestamp, a.GameID, b.Timestamp, b.GameID); c != 0 {
			return c
		}
		if a.EntityID < b.EntityID {
			return -1
		}
		if a.EntityID > b.EntityID {
			return 1
		}
		return 0
	})
}
