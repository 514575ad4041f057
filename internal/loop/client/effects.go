package client

import (
	"time"

	"github.com/tomz197/syntaxdefense/internal/draw"
	"github.com/tomz197/syntaxdefense/internal/object"
	"github.com/tomz197/syntaxdefense/internal/session"
)

// Burst sizes per resolution.
const (
	burstBlock = 8
	burstHeavy = 12
	burstToken = 15

	burstSpeed      = 125.0 // px/s
	burstLifetime   = 0.6   // seconds
	tokenSpeed      = 100.0
	tokenLifetime   = 0.8
	burstCarry      = 0.25 // Share of the entity's velocity the debris keeps
	rainInterval    = 30 * time.Millisecond
	maxLiveParticle = 2048
)

// Effects renders explosion bursts for resolved entities and the falling rain
// shown during Brave mode. Like Announcer it is only touched on the tick goroutine.
type Effects struct {
	session.NopListener

	field     object.Screen
	particles []*object.Particle
	raining   bool
	rainTimer time.Duration
}

var _ session.Listener = (*Effects)(nil)

// NewEffects creates an effects layer for field.
func NewEffects(field object.Screen) *Effects {
	return &Effects{field: field}
}

// OnEntityResolved bursts blocked, cleared and collected entities.
func (fx *Effects) OnEntityResolved(e object.Entity, outcome session.Outcome) {
	vx, vy := e.Velocity()
	switch outcome {
	case session.OutcomeBlocked, session.OutcomeCleared:
		count := burstBlock
		if e.Kind == object.ThreatHeavy {
			count = burstHeavy
		}
		// Blocked debris bounces back off the shield.
		object.SpawnExplosion(e.X, e.Y, count, burstSpeed, burstLifetime, e.Kind.Color(), vx, vy, -burstCarry, fx.emit)
	case session.OutcomeCollected:
		object.SpawnExplosion(e.X, e.Y, burstToken, tokenSpeed, tokenLifetime, draw.ColorGreen, vx, vy, burstCarry, fx.emit)
	}
}

// OnModeChanged starts the rain in Brave mode and stops it in Normal.
func (fx *Effects) OnModeChanged(m session.Mode) {
	fx.raining = m.IsBrave()
	fx.rainTimer = 0
}

// OnSessionEnded stops the rain; bursts in flight finish on their own.
func (fx *Effects) OnSessionEnded(int) {
	fx.raining = false
}

func (fx *Effects) emit(p *object.Particle) {
	if len(fx.particles) >= maxLiveParticle {
		p.Release()
		return
	}
	fx.particles = append(fx.particles, p)
}

// Update advances every particle and emits rain drops while raining.
func (fx *Effects) Update(dt time.Duration) {
	if fx.raining {
		fx.rainTimer += dt
		for fx.rainTimer >= rainInterval {
			fx.rainTimer -= rainInterval
			object.SpawnRain(fx.field, draw.ColorGreen, fx.emit)
		}
	}

	kept := fx.particles[:0]
	for _, p := range fx.particles {
		if p.Update(dt) {
			p.Release()
			continue
		}
		kept = append(kept, p)
	}
	clear(fx.particles[len(kept):])
	fx.particles = kept
}

// Draw renders live particles onto the canvas.
func (fx *Effects) Draw(c *draw.Canvas) {
	for _, p := range fx.particles {
		p.Draw(c)
	}
}

// Len returns the number of live particles.
func (fx *Effects) Len() int {
	return len(fx.particles)
}

// Raining reports whether Brave rain is falling.
func (fx *Effects) Raining() bool {
	return fx.raining
}

// Reset drops every particle and stops the rain.
func (fx *Effects) Reset() {
	for _, p := range fx.particles {
		p.Release()
	}
	clear(fx.particles)
	fx.particles = fx.particles[:0]
	fx.raining = false
	fx.rainTimer = 0
}
