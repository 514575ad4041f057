package server

import (
	"github.com/tomz197/syntaxdefense/internal/leaderboard"
	"github.com/tomz197/syntaxdefense/internal/session"
)

// ClientStatus is what a client last reported about its own session.
type ClientStatus struct {
	Phase session.Phase
	Score int
	Brave bool
}

// LivePlayer is a connected client as seen by everyone else.
type LivePlayer struct {
	ID       int
	Username string
	Status   ClientStatus
}

// Snapshot is an immutable view of the shared server state for rendering.
type Snapshot struct {
	Players   int                 // Connected clients
	Playing   int                 // Clients with a running session
	Live      []LivePlayer        // Running sessions, best score first
	TopScores []leaderboard.Entry // Top N finished sessions
}

// BestLive returns the highest live score, if anyone is playing.
func (s *Snapshot) BestLive() (LivePlayer, bool) {
	if len(s.Live) == 0 {
		return LivePlayer{}, false
	}
	return s.Live[0], true
}
