package ratingqueue

// QueueName is the River queue rating jobs run on.
const QueueName = "rating"

// RegenerateLeagueJob replays a league's full game history. Only LeagueID
// takes part in uniqueness, so requests for a league collapse while one is
// still pending.
type RegenerateLeagueJob struct {
	LeagueID string `json:"league_id" river:"unique"`
	Reason   string `json:"reason,omitempty"`
}

// Kind returns the job type identifier for River
func (RegenerateLeagueJob) Kind() string { return "rating_regenerate_league" }
