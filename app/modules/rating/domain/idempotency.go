package ratingdomain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// LedgerDigest returns a deterministic hash of a league ledger. Two ledgers
// with the same entries have the same digest regardless of slice order, which
// is how regeneration runs are compared.
func LedgerDigest(records []RatingRecord) string {
	sorted := slices.Clone(records)
	SortRecords(sorted)

	var sb strings.Builder
	for _, r := range sorted {
		fmt.Fprintf(&sb, "%s|%s|%s|%d|%d|%d|%d;",
			r.LeagueID, r.EntityID, r.GameID, r.Timestamp.UnixNano(),
			r.RatingBefore, r.Delta, r.RatingAfter)
	}

	hash := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(hash[:])
}
