package ratingservice

import (
	"context"
	"sync"
	"sync/atomic"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
)

// leagueGate serializes rating writes for one league within the process.
type leagueGate struct {
	slot         chan struct{}
	regenerating atomic.Bool
}

func (g *leagueGate) acquire(ctx context.Context) error {
	select {
	case g.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *leagueGate) release() {
	<-g.slot
}

type leagueGates struct {
	mu    sync.Mutex
	gates map[ratingdomain.LeagueID]*leagueGate
}

func newLeagueGates() *leagueGates {
	return &leagueGates{gates: make(map[ratingdomain.LeagueID]*leagueGate)}
}

// get returns the gate of a league, creating it on first use. Gates are never removed.
func (l *leagueGates) get(leagueID ratingdomain.LeagueID) *leagueGate {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.gates[leagueID]
	if !ok {
		g = &leagueGate{slot: make(chan struct{}, 1)}
		l.gates[leagueID] = g
	}
	return g
}
