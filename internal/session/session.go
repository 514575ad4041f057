// Package session implements the shield defense simulation: difficulty-scaled
// spawning, shield arbitration, the score/charge/mode machine, and the countdown
// lifecycle, all advanced in lockstep by a single tick.
package session

import (
	"github.com/tomz197/syntaxdefense/internal/object"
)

// Phase is the session lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// ShieldState is the shield's orientation around the core.
type ShieldState struct {
	CurrentAngle float64
	TargetAngle  float64
}

// Session is the single aggregate owned by the tick. Subsystems receive it by
// pointer; nothing outside the tick may mutate it.
type Session struct {
	ElapsedTicks  uint64
	TimeRemaining int
	Phase         Phase
	Score         int
	ChargeMeter   int
	Mode          Mode
	Shield        ShieldState
	Entities      []*object.Entity

	nextID uint64
}

// addEntity creates an entity and appends it to the live set.
func (s *Session) addEntity(kind object.Kind, x, y, speed, coreX, coreY float64) *object.Entity {
	s.nextID++
	e := object.NewEntity(s.nextID, kind, x, y, speed, coreX, coreY)
	s.Entities = append(s.Entities, e)
	return e
}

// compact drops destroyed entities, reusing the backing array.
func (s *Session) compact() {
	kept := s.Entities[:0]
	for _, e := range s.Entities {
		if e.Alive() {
			kept = append(kept, e)
		}
	}
	clear(s.Entities[len(kept):])
	s.Entities = kept
}

// Snapshot is an immutable copy of a session for renderers and transports.
type Snapshot struct {
	ElapsedTicks  uint64
	TimeRemaining int
	Phase         Phase
	Score         int
	ChargeMeter   int
	Mode          Mode
	Shield        ShieldState
	Entities      []object.Entity
}

func (s *Session) snapshot() Snapshot {
	entities := make([]object.Entity, 0, len(s.Entities))
	for _, e := range s.Entities {
		if !e.IsDestroyed() {
			entities = append(entities, *e)
		}
	}
	return Snapshot{
		ElapsedTicks:  s.ElapsedTicks,
		TimeRemaining: s.TimeRemaining,
		Phase:         s.Phase,
		Score:         s.Score,
		ChargeMeter:   s.ChargeMeter,
		Mode:          s.Mode,
		Shield:        s.Shield,
		Entities:      entities,
	}
}
