package client

import (
	"time"

	"github.com/tomz197/syntaxdefense/internal/input"
)

// GameState represents the current screen for a client.
type GameState int

const (
	GameStateStart    GameState = iota // Attract screen with leaderboard
	GameStatePlaying                   // Session running
	GameStateResult                    // Session ended, alias entry and rank
	GameStateShutdown                  // Server is shutting down
)

// ClientState holds per-connection UI state. The session itself lives in the
// client's session.Controller.
type ClientState struct {
	Input         input.Input
	prevInput     input.Input   // Previous frame's input, for edge detection
	GameState     GameState     // This client's screen
	prevGameState GameState     // Screen drawn last frame
	Running       bool          // Client loop running
	delta         time.Duration // Frame delta time
	accumulator   time.Duration // Simulation time not yet stepped
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state
	wasInactive   bool

	// Keyboard steering
	steerAngle float64 // Angle of the synthetic pointer around the core

	// Result screen
	FinalScore int
	Alias      []byte // Alias being typed
	Submitted  bool   // Alias entry finished (submitted or skipped)
	Skipped    bool
	Rank       int // Leaderboard rank of the submission, 0 if it did not place

	// Another player's new record
	recordText  string
	recordTimer float64
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		GameState:     GameStateStart,
		prevGameState: GameStateStart,
		Running:       true,
	}
}

// pressed reports a key that went down this frame. Keys stay held for a few
// frames after each byte, so level checks would repeat actions.
func (s *ClientState) pressed(key func(input.Input) bool) bool {
	return key(s.Input) && !key(s.prevInput)
}

func keyEnter(in input.Input) bool     { return in.Enter }
func keySpace(in input.Input) bool     { return in.Space }
func keyEscape(in input.Input) bool    { return in.Escape }
func keyBackspace(in input.Input) bool { return in.Backspace || in.Delete }
func keyUp(in input.Input) bool        { return in.Up }
func keyDown(in input.Input) bool      { return in.Down }
