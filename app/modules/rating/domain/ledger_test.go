package ratingdomain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func rec(entity EntityID, game GameID, at time.Time, before, delta int) RatingRecord {
	return RatingRecord{
		LeagueID:     "league-1",
		EntityID:     entity,
		GameID:       game,
		Timestamp:    at,
		RatingBefore: before,
		Delta:        delta,
		RatingAfter:  before + delta,
	}
}

func TestValidateAppend(t *testing.T) {
	head := rec("a", "g2", baseTime, 1500, 16)

	tests := []struct {
		name    string
		head    *RatingRecord
		current int
		entry   RatingRecord
		wantErr bool
	}{
		{name: "first entry", current: 1500, entry: rec("a", "g1", baseTime, 1500, 16)},
		{name: "later game", head: &head, current: 1516, entry: rec("a", "g3", baseTime.Add(time.Minute), 1516, -8)},
		{name: "same time larger id", head: &head, current: 1516, entry: rec("a", "g3", baseTime, 1516, 4)},
		{name: "same time smaller id", head: &head, current: 1516, entry: rec("a", "g1", baseTime, 1516, 4), wantErr: true},
		{name: "same game", head: &head, current: 1516, entry: rec("a", "g2", baseTime, 1516, 4), wantErr: true},
		{name: "earlier game", head: &head, current: 1516, entry: rec("a", "g9", baseTime.Add(-time.Minute), 1516, 4), wantErr: true},
		{name: "stale rating before", head: &head, current: 1516, entry: rec("a", "g3", baseTime.Add(time.Minute), 1500, 4), wantErr: true},
		{
			name:    "inconsistent rating after",
			current: 1500,
			entry: RatingRecord{
				EntityID: "a", GameID: "g1", Timestamp: baseTime,
				RatingBefore: 1500, Delta: 16, RatingAfter: 1520,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAppend(tt.head, tt.current, tt.entry)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrOutOfOrderEntry), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestVerifyLedger(t *testing.T) {
	defaults := map[EntityID]int{"a": 1500, "b": 1500}
	t1 := baseTime
	t2 := baseTime.Add(time.Hour)

	good := []RatingRecord{
		rec("a", "g1", t1, 1500, 16), rec("b", "g1", t1, 1500, -16),
		rec("a", "g2", t2, 1516, -18), rec("b", "g2", t2, 1484, 18),
	}
	assert.NoError(t, VerifyLedger(good, defaults))

	gap := []RatingRecord{
		rec("a", "g1", t1, 1500, 16), rec("b", "g1", t1, 1500, -16),
		rec("a", "g2", t2, 1510, -18), rec("b", "g2", t2, 1484, 18),
	}
	assert.True(t, errors.Is(VerifyLedger(gap, defaults), ErrOutOfOrderEntry))

	lopsided := []RatingRecord{rec("a", "g1", t1, 1500, 16), rec("b", "g1", t1, 1500, -15)}
	assert.True(t, errors.Is(VerifyLedger(lopsided, defaults), ErrNonZeroSumViolation))

	stranger := []RatingRecord{rec("z", "g1", t1, 1500, 0)}
	assert.True(t, errors.Is(VerifyLedger(stranger, defaults), ErrUnknownEntity))
}

func TestSortRecords(t *testing.T) {
	records := []RatingRecord{
		rec("b", "g2", baseTime, 1500, 0),
		rec("a", "g2", baseTime, 1500, 0),
		rec("c", "g1", baseTime, 1500, 0),
		rec("a", "g0", baseTime.Add(time.Hour), 1500, 0),
	}
	SortRecords(records)

	var got []string
	for _, r := range records {
		got = append(got, string(r.GameID)+"/"+string(r.EntityID))
	}
	assert.Equal(t, []string{"g1/c", "g2/a", "g2/b", "g0/a"}, got)
}

func TestLedgerDigest(t *testing.T) {
	a := []RatingRecord{rec("a", "g1", baseTime, 1500, 16), rec("b", "g1", baseTime, 1500, -16)}
	b := []RatingRecord{a[1], a[0]}

	if LedgerDigest(a) != LedgerDigest(b) {
		t.Fatalf("expected equal digests for the same entries in a different order")
	}

	changed := []RatingRecord{rec("a", "g1", baseTime, 1500, 15), rec("b", "g1", baseTime, 1500, -15)}
	if LedgerDigest(a) == LedgerDigest(changed) {
		t.Fatalf("expected different digests when deltas change")
	}
}
