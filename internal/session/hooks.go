package session

import (
	"github.com/charmbracelet/log"
	"github.com/tomz197/syntaxdefense/internal/object"
)

// Outcome is how an entity left the field.
type Outcome int

const (
	OutcomeBlocked   Outcome = iota // Threat intercepted by the shield
	OutcomeBreached                 // Threat reached the core
	OutcomeCollected                // Token caught by the shield or the core
	OutcomeCleared                  // Threat wiped by Brave entry
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBlocked:
		return "blocked"
	case OutcomeBreached:
		return "breached"
	case OutcomeCollected:
		return "collected"
	case OutcomeCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Listener receives presentation and UI notifications from the simulation.
// Entities are passed by value; listeners cannot mutate simulation state.
// Implementations must not block: they run inside the tick.
type Listener interface {
	OnEntitySpawned(e object.Entity)
	OnEntityResolved(e object.Entity, outcome Outcome)
	OnScoreChanged(score int)
	OnMeterChanged(value int, isMax bool)
	OnModeChanged(mode Mode)
	OnTick(timeRemaining int)
	OnSessionEnded(finalScore int)
}

// NopListener implements Listener with no-ops. Embed it to override a subset.
type NopListener struct{}

func (NopListener) OnEntitySpawned(object.Entity)           {}
func (NopListener) OnEntityResolved(object.Entity, Outcome) {}
func (NopListener) OnScoreChanged(int)                      {}
func (NopListener) OnMeterChanged(int, bool)                {}
func (NopListener) OnModeChanged(Mode)                      {}
func (NopListener) OnTick(int)                              {}
func (NopListener) OnSessionEnded(int)                      {}

var _ Listener = NopListener{}

// notifier fans a notification out to every listener, recovering panics per
// listener so one broken hook cannot halt the tick or starve the others.
type notifier struct {
	listeners []Listener
	logger    *log.Logger
}

func (n *notifier) each(hook string, fn func(Listener)) {
	for _, l := range n.listeners {
		n.call(hook, l, fn)
	}
}

func (n *notifier) call(hook string, l Listener, fn func(Listener)) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("listener panicked", "hook", hook, "panic", r)
		}
	}()
	fn(l)
}

func (n *notifier) spawned(e *object.Entity) {
	v := *e
	n.each("OnEntitySpawned", func(l Listener) { l.OnEntitySpawned(v) })
}

func (n *notifier) resolved(e *object.Entity, outcome Outcome) {
	v := *e
	n.each("OnEntityResolved", func(l Listener) { l.OnEntityResolved(v, outcome) })
}

func (n *notifier) score(score int) {
	n.each("OnScoreChanged", func(l Listener) { l.OnScoreChanged(score) })
}

func (n *notifier) meter(value, limit int) {
	n.each("OnMeterChanged", func(l Listener) { l.OnMeterChanged(value, value >= limit) })
}

func (n *notifier) mode(m Mode) {
	n.each("OnModeChanged", func(l Listener) { l.OnModeChanged(m) })
}

func (n *notifier) tick(timeRemaining int) {
	n.each("OnTick", func(l Listener) { l.OnTick(timeRemaining) })
}

func (n *notifier) ended(finalScore int) {
	n.each("OnSessionEnded", func(l Listener) { l.OnSessionEnded(finalScore) })
}

// Listeners fans every hook out to each member in order. Controller isolates
// panics per top-level listener, so a panic inside a member stops the rest of
// its group for that one call.
type Listeners []Listener

var _ Listener = Listeners(nil)

func (ls Listeners) OnEntitySpawned(e object.Entity) {
	for _, l := range ls {
		l.OnEntitySpawned(e)
	}
}

func (ls Listeners) OnEntityResolved(e object.Entity, outcome Outcome) {
	for _, l := range ls {
		l.OnEntityResolved(e, outcome)
	}
}

func (ls Listeners) OnScoreChanged(score int) {
	for _, l := range ls {
		l.OnScoreChanged(score)
	}
}

func (ls Listeners) OnMeterChanged(value int, isMax bool) {
	for _, l := range ls {
		l.OnMeterChanged(value, isMax)
	}
}

func (ls Listeners) OnModeChanged(m Mode) {
	for _, l := range ls {
		l.OnModeChanged(m)
	}
}

func (ls Listeners) OnTick(timeRemaining int) {
	for _, l := range ls {
		l.OnTick(timeRemaining)
	}
}

func (ls Listeners) OnSessionEnded(finalScore int) {
	for _, l := range ls {
		l.OnSessionEnded(finalScore)
	}
}
