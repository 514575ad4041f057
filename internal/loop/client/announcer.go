package client

import (
	"strconv"
	"time"

	"github.com/tomz197/syntaxdefense/internal/draw"
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/object"
	"github.com/tomz197/syntaxdefense/internal/session"
)

// Callout texts.
const (
	calloutStart = "SYSTEM ONLINE. PROTECT THE CORE."
	calloutBrave = "MAXIMUM SYNCHRONIZATION!"
	calloutEnd   = "SESSION TERMINATED."
)

// Announcer turns session events into short HUD callouts and the breach flash.
// Hooks run on the tick goroutine, so it needs no locking as long as it is
// rendered from that goroutine too.
type Announcer struct {
	session.NopListener

	text      string
	color     draw.Color
	remaining time.Duration
	flash     time.Duration
}

var _ session.Listener = (*Announcer)(nil)

func (a *Announcer) say(text string, col draw.Color, d time.Duration) {
	a.text = text
	a.color = col
	a.remaining = d
}

// OnTick announces the start and counts down the final seconds.
func (a *Announcer) OnTick(timeRemaining int) {
	switch {
	case timeRemaining == config.SessionSeconds:
		a.say(calloutStart, draw.ColorGreen, 2*config.CalloutDuration)
	case timeRemaining > 0 && timeRemaining <= config.CalloutSeconds:
		a.say(strconv.Itoa(timeRemaining), draw.ColorRed, config.CountdownStep)
	}
}

// OnModeChanged announces Brave mode.
func (a *Announcer) OnModeChanged(m session.Mode) {
	if m.IsBrave() {
		a.say(calloutBrave, draw.ColorGold, config.CalloutDuration)
	}
}

// OnEntityResolved flashes the core on a breach.
func (a *Announcer) OnEntityResolved(_ object.Entity, outcome session.Outcome) {
	if outcome == session.OutcomeBreached {
		a.flash = config.BreachFlashDuration
	}
}

// OnSessionEnded announces the end of the session.
func (a *Announcer) OnSessionEnded(int) {
	a.say(calloutEnd, draw.ColorRed, config.CalloutDuration)
	a.flash = 0
}

// Update ages the current callout and flash by dt.
func (a *Announcer) Update(dt time.Duration) {
	a.remaining = max(0, a.remaining-dt)
	a.flash = max(0, a.flash-dt)
	if a.remaining == 0 {
		a.text = ""
	}
}

// Callout returns the callout to display, if any.
func (a *Announcer) Callout() (string, draw.Color, bool) {
	return a.text, a.color, a.text != ""
}

// Flashing reports whether the core should be drawn in the breach color.
func (a *Announcer) Flashing() bool {
	return a.flash > 0
}

// Reset drops any pending callout.
func (a *Announcer) Reset() {
	*a = Announcer{}
}
