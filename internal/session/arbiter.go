package session

import (
	"math"
	"time"

	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/object"
	"github.com/tomz197/syntaxdefense/internal/physics"
)

// Verdict is the resolution of one entity in one tick.
type Verdict struct {
	Entity  *object.Entity
	Outcome Outcome
}

// Arbiter steers the shield toward the pointer and classifies entities as
// blocked, breached/collected, or still in flight.
type Arbiter struct {
	coreX, coreY float64
	hitStop      Timer
}

// NewArbiter creates an arbiter guarding the core at (coreX, coreY).
func NewArbiter(coreX, coreY float64) *Arbiter {
	a := &Arbiter{coreX: coreX, coreY: coreY}
	a.Reset()
	return a
}

// Reset clears any pending hit stop.
func (a *Arbiter) Reset() {
	a.hitStop = NewOneShotTimer(config.HitStopDuration)
	a.hitStop.Cancel()
}

// Cancel disarms the hit stop timer.
func (a *Arbiter) Cancel() {
	a.hitStop.Cancel()
}

// Frozen reports whether entity movement is suspended by a hit stop.
func (a *Arbiter) Frozen() bool {
	return a.hitStop.Active()
}

// Track retargets the shield at the pointer and smooths the current angle toward it.
func (a *Arbiter) Track(shield *ShieldState, pointerX, pointerY float64) {
	shield.TargetAngle = physics.AngleBetween(a.coreX, a.coreY, pointerX, pointerY)
	shield.CurrentAngle = physics.SmoothAngle(shield.CurrentAngle, shield.TargetAngle, config.ShieldSmoothing)
}

// Classify decides an entity's fate for the current shield angle without mutating it.
// The block test runs first; the annulus and the breach disc are disjoint.
func (a *Arbiter) Classify(shield ShieldState, e *object.Entity) (Outcome, bool) {
	dist := e.DistanceTo(a.coreX, a.coreY)

	if physics.InAnnulus(dist, config.ShieldInnerRadius, config.ShieldOuterRadius) {
		angleTo := physics.AngleBetween(a.coreX, a.coreY, e.X, e.Y)
		if math.Abs(physics.AngleDiff(angleTo, shield.CurrentAngle)) < config.ShieldTolerance {
			if e.Kind.IsThreat() {
				return OutcomeBlocked, true
			}
			return OutcomeCollected, true
		}
	}

	if dist < config.BreachRadius {
		if e.Kind.IsThreat() {
			return OutcomeBreached, true
		}
		return OutcomeCollected, true
	}

	return 0, false
}

// Resolve classifies every live entity, destroys the resolved ones, and moves the
// rest toward the core unless a hit stop is in effect. Blocking a heavy threat
// starts a hit stop that also suppresses movement in the same tick.
//
// Threat verdicts come before token verdicts so a same-tick breach is scored
// before a collection, and before any Brave entry that collection triggers.
func (a *Arbiter) Resolve(sess *Session, dt time.Duration) []Verdict {
	a.hitStop.Advance(dt)

	var verdicts, collected []Verdict
	for _, e := range sess.Entities {
		if e.IsDestroyed() {
			continue
		}
		outcome, resolved := a.Classify(sess.Shield, e)
		if !resolved {
			continue
		}
		e.MarkDestroyed()
		if !e.Kind.IsThreat() {
			collected = append(collected, Verdict{Entity: e, Outcome: outcome})
			continue
		}
		verdicts = append(verdicts, Verdict{Entity: e, Outcome: outcome})
		if outcome == OutcomeBlocked && e.Kind == object.ThreatHeavy {
			a.hitStop.Restart()
		}
	}

	if !a.hitStop.Active() {
		for _, e := range sess.Entities {
			if e.Alive() {
				e.Advance(dt, a.coreX, a.coreY)
			}
		}
	}

	return append(verdicts, collected...)
}
