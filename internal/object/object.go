// Package object defines the entities that travel toward the core.
package object

import (
	"time"

	"github.com/tomz197/syntaxdefense/internal/difficulty"
	"github.com/tomz197/syntaxdefense/internal/physics"
)

// Kind identifies what an entity is.
type Kind int

const (
	ThreatLight Kind = iota
	ThreatHeavy
	ThreatFast
	Token
)

func (k Kind) String() string {
	switch k {
	case ThreatLight:
		return "light"
	case ThreatHeavy:
		return "heavy"
	case ThreatFast:
		return "fast"
	case Token:
		return "token"
	default:
		return "unknown"
	}
}

// IsThreat reports whether the kind damages the core on breach.
func (k Kind) IsThreat() bool {
	return k != Token
}

// KindForVariant maps a difficulty variant to its threat kind.
func KindForVariant(v difficulty.Variant) Kind {
	switch v {
	case difficulty.VariantHeavy:
		return ThreatHeavy
	case difficulty.VariantFast:
		return ThreatFast
	default:
		return ThreatLight
	}
}

// Screen represents the play field dimensions.
type Screen struct {
	Width   int
	Height  int
	CenterX int
	CenterY int
}

// NewScreen builds a Screen centered on its midpoint.
func NewScreen(width, height int) Screen {
	return Screen{Width: width, Height: height, CenterX: width / 2, CenterY: height / 2}
}

// Center returns the center as float coordinates.
func (s Screen) Center() (float64, float64) {
	return float64(s.CenterX), float64(s.CenterY)
}

// Destructible is implemented by objects that can be destroyed/marked for removal.
type Destructible interface {
	// MarkDestroyed marks the object for removal on the next compaction.
	MarkDestroyed()
	// IsDestroyed returns true if the object is marked for destruction.
	IsDestroyed() bool
}

// Entity is a threat or token homing on the core.
type Entity struct {
	ID         uint64
	Kind       Kind
	X, Y       float64 // Position
	Speed      float64 // Logical pixels per second
	DirX, DirY float64 // Unit direction toward the core
	destroyed  bool
}

var _ Destructible = (*Entity)(nil)

// NewEntity creates an entity at (x,y) aimed at (targetX,targetY).
func NewEntity(id uint64, kind Kind, x, y, speed, targetX, targetY float64) *Entity {
	e := &Entity{
		ID:    id,
		Kind:  kind,
		X:     x,
		Y:     y,
		Speed: speed,
	}
	e.Aim(targetX, targetY)
	return e
}

// Aim points the entity's direction at the target.
func (e *Entity) Aim(targetX, targetY float64) {
	e.DirX, e.DirY = physics.UnitToward(e.X, e.Y, targetX, targetY)
}

// Velocity returns the current velocity vector.
func (e *Entity) Velocity() (float64, float64) {
	return e.DirX * e.Speed, e.DirY * e.Speed
}

// Advance re-aims at the target and moves for dt. The entity never
// overshoots the target point.
func (e *Entity) Advance(dt time.Duration, targetX, targetY float64) {
	step := e.Speed * dt.Seconds()
	dist := physics.Distance(e.X, e.Y, targetX, targetY)
	if step >= dist {
		e.X, e.Y = targetX, targetY
		return
	}
	e.Aim(targetX, targetY)
	e.X += e.DirX * step
	e.Y += e.DirY * step
}

// DistanceTo returns the distance from the entity to a point.
func (e *Entity) DistanceTo(x, y float64) float64 {
	return physics.Distance(e.X, e.Y, x, y)
}

// MarkDestroyed flags the entity as resolved.
func (e *Entity) MarkDestroyed() {
	e.destroyed = true
}

// IsDestroyed reports whether the entity has been resolved.
func (e *Entity) IsDestroyed() bool {
	return e.destroyed
}

// Alive is the inverse of IsDestroyed.
func (e *Entity) Alive() bool {
	return !e.destroyed
}
