package web

import (
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/object"
	"github.com/tomz197/syntaxdefense/internal/session"
)

// Inbound message types.
const (
	msgPointer = "pointer" // Field coordinates from a mouse or touch
	msgHand    = "hand"    // Normalized camera coordinates from hand tracking
	msgLost    = "lost"    // Hand tracking lost the hand
	msgStart   = "start"
	msgSubmit  = "submit"
)

type inboundMessage struct {
	Type  string  `json:"type"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Alias string  `json:"alias,omitempty"`
}

type stateMsg struct {
	Type          string      `json:"type"` // "state"
	Tick          uint64      `json:"tick"`
	Phase         string      `json:"phase"`
	TimeRemaining int         `json:"time"`
	Score         int         `json:"score"`
	Meter         int         `json:"meter"`
	Mode          string      `json:"mode"`
	Brave         float64     `json:"brave,omitempty"` // Seconds of Brave mode left
	Shield        shieldDTO   `json:"shield"`
	Entities      []entityDTO `json:"entities"`
	Events        []eventDTO  `json:"events,omitempty"`
}

type shieldDTO struct {
	Angle     float64 `json:"angle"`
	Target    float64 `json:"target"`
	Tolerance float64 `json:"tolerance"`
}

type entityDTO struct {
	ID   uint64  `json:"id"`
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type eventDTO struct {
	Kind    string  `json:"kind"`
	Outcome string  `json:"outcome"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// helloMsg tells the browser the field geometry once per connection.
type helloMsg struct {
	Type   string  `json:"type"` // "hello"
	Width  int     `json:"w"`
	Height int     `json:"h"`
	Inner  float64 `json:"inner"`
	Outer  float64 `json:"outer"`
	Breach float64 `json:"breach"`
	Meter  int     `json:"meter_max"`
}

type resultMsg struct {
	Type  string `json:"type"` // "result"
	Alias string `json:"alias"`
	Score int    `json:"score"`
	Rank  int    `json:"rank"`
}

type errorMsg struct {
	Type  string `json:"type"` // "error"
	Error string `json:"error"`
}

func newHello(field object.Screen) helloMsg {
	return helloMsg{
		Type:   "hello",
		Width:  field.Width,
		Height: field.Height,
		Inner:  config.ShieldInnerRadius,
		Outer:  config.ShieldOuterRadius,
		Breach: config.BreachRadius,
		Meter:  config.MeterMax,
	}
}

func newStateMsg(snap session.Snapshot, events []eventDTO) stateMsg {
	msg := stateMsg{
		Type:          "state",
		Tick:          snap.ElapsedTicks,
		Phase:         snap.Phase.String(),
		TimeRemaining: snap.TimeRemaining,
		Score:         snap.Score,
		Meter:         snap.ChargeMeter,
		Mode:          "normal",
		Shield: shieldDTO{
			Angle:     snap.Shield.CurrentAngle,
			Target:    snap.Shield.TargetAngle,
			Tolerance: config.ShieldTolerance,
		},
		Entities: make([]entityDTO, 0, len(snap.Entities)),
		Events:   events,
	}
	if snap.Mode.IsBrave() {
		msg.Mode = "brave"
		msg.Brave = snap.Mode.Remaining.Seconds()
	}
	for _, e := range snap.Entities {
		msg.Entities = append(msg.Entities, entityDTO{ID: e.ID, Kind: e.Kind.String(), X: e.X, Y: e.Y})
	}
	return msg
}
