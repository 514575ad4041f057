// Package config centralizes all tunable game parameters.
package config

import "time"

// Play field - the logical coordinate space of a session.
// Actual rendering scales to fit terminal size.
const (
	FieldWidth  = 800
	FieldHeight = 600
	CoreX       = FieldWidth / 2
	CoreY       = FieldHeight / 2
)

// Session
const (
	SessionSeconds = 60 // Countdown start value
	CountdownStep  = 1000 * time.Millisecond
	CalloutSeconds = 5  // Countdown numbers are announced for the last N seconds
	PanicSeconds   = 10 // Timer turns red and audio speeds up below this
)

// HUD callouts
const (
	CalloutDuration     = 1500 * time.Millisecond
	BreachFlashDuration = 150 * time.Millisecond
	RecordBannerSeconds = 4.0 // How long another player's new record is shown
)

// Spawning
const (
	ThreatSpawnInterval = 800 * time.Millisecond
	TokenSpawnInterval  = 3000 * time.Millisecond
	SpawnEdgeOffset     = 20.0 // Distance outside the field where entities appear
)

// Shield geometry (distances from the core center)
const (
	ShieldInnerRadius = 50.0
	ShieldOuterRadius = 80.0
	BreachRadius      = 30.0
	ShieldTolerance   = 1.0 // Half-angle of the shield arc in radians
	ShieldSmoothing   = 0.1 // Fraction of the angular error closed per tick
	ShieldDrawRadius  = 65.0
)

// Scoring
const (
	ScoreBlock    = 100
	ScoreToken    = 300
	PenaltyBreach = 500
)

// Charge meter and Brave mode
const (
	MeterMax          = 200
	MeterPerToken     = 40
	BraveModeDuration = 5000 * time.Millisecond
)

// Heavy block hit stop
const (
	HitStopDuration = 100 * time.Millisecond
)

// Leaderboard
const (
	LeaderboardSize = 5
	MaxAliasLength  = 12
	AnonymousAlias  = "ANONYMOUS"
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	ViewWidth             = FieldWidth  // Logical viewport width
	ViewHeight            = FieldHeight // Logical viewport height
	MaxTermWidth          = 160         // Render area is clamped and centered beyond this
	MaxTermHeight         = 50
)

// Simulation tick rate
const (
	TickRate = 60
	TickTime = time.Second / TickRate
)

// Shared server (registry and leaderboard snapshot) refresh rate
const (
	ServerTickRate = 10
	ServerTickTime = time.Second / ServerTickRate
)

// Browser client
const (
	WebStateRate     = 30  // State frames per second sent over the WebSocket
	HandSensitivity  = 1.5 // Hand tracking gain around the frame center
	WebWriteTimeout  = 5 * time.Second
	WebMaxMessageLen = 1024 // Bytes accepted per inbound message
)

// Keyboard steering
const (
	KeyboardTurnRate = 4.0   // Radians per second the pointer orbits while a key is held
	KeyboardRadius   = 120.0 // Distance of the synthetic pointer from the core
)
