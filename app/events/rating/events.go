package ratingevents

import "time"

// Stream holds every rating subject.
const (
	RatingStream         = "rating"
	RatingStreamSubjects = "rating.>"
)

// Topics consumed and produced by the rating module.
const (
	// GameFinishedV1 announces a game stored by the game service. The rating
	// module loads and applies it.
	GameFinishedV1 = "rating.game.finished.v1"

	// RatingUpdatedV1 is published after a game's ledger entries are appended.
	RatingUpdatedV1 = "rating.updated.v1"

	// ApplyFailedV1 is published when a game could not be rated.
	ApplyFailedV1 = "rating.apply.failed.v1"

	// RegenerateRequestedV1 asks for a full replay of a league.
	RegenerateRequestedV1 = "rating.regenerate.requested.v1"

	// RegeneratedV1 is published once a replayed ledger has been swapped in.
	RegeneratedV1 = "rating.regenerated.v1"

	// RegenerationFailedV1 is published when a replay is abandoned.
	RegenerationFailedV1 = "rating.regeneration.failed.v1"
)

// GameFinishedPayloadV1 references a finished game in the game store.
type GameFinishedPayloadV1 struct {
	LeagueID string `json:"league_id"`
	GameID   string `json:"game_id"`
}

// RatingEntryV1 is one ledger entry.
type RatingEntryV1 struct {
	EntityID     string    `json:"entity_id"`
	RatingBefore int       `json:"rating_before"`
	Delta        int       `json:"delta"`
	RatingAfter  int       `json:"rating_after"`
	Timestamp    time.Time `json:"timestamp"`
}

// RatingUpdatedPayloadV1 carries the entries appended for one game.
type RatingUpdatedPayloadV1 struct {
	LeagueID string          `json:"league_id"`
	GameID   string          `json:"game_id"`
	Entries  []RatingEntryV1 `json:"entries"`
}

// ApplyFailedPayloadV1 explains why a game was not rated. Retryable failures
// may succeed after a regeneration of the league.
type ApplyFailedPayloadV1 struct {
	LeagueID  string `json:"league_id"`
	GameID    string `json:"game_id"`
	Reason    string `json:"reason"`
	Retryable bool   `json:"retryable"`
}

// RegenerateRequestedPayloadV1 requests a league replay.
type RegenerateRequestedPayloadV1 struct {
	LeagueID    string `json:"league_id"`
	RequestedBy string `json:"requested_by,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// RegeneratedPayloadV1 summarizes a completed replay.
type RegeneratedPayloadV1 struct {
	LeagueID       string   `json:"league_id"`
	GamesReplayed  int      `json:"games_replayed"`
	GamesSkipped   int      `json:"games_skipped"`
	FlagsCorrected []string `json:"flags_corrected,omitempty"`
	Entries        int      `json:"entries"`
	Digest         string   `json:"digest"`
	DurationMs     int64    `json:"duration_ms"`
}

// RegenerationFailedPayloadV1 reports an abandoned replay. The previous ledger
// is still in place.
type RegenerationFailedPayloadV1 struct {
	LeagueID string `json:"league_id"`
	Reason   string `json:"reason"`
}
