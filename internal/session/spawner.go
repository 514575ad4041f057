package session

import (
	"time"

	"github.com/tomz197/syntaxdefense/internal/difficulty"
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/object"
)

// SpawnScheduler owns the two periodic spawn triggers.
type SpawnScheduler struct {
	field       object.Screen
	rng         object.IntSource
	threatTimer Timer
	tokenTimer  Timer
}

// NewSpawnScheduler creates a scheduler for the given field.
func NewSpawnScheduler(field object.Screen, rng object.IntSource) *SpawnScheduler {
	s := &SpawnScheduler{field: field, rng: rng}
	s.Reset()
	return s
}

// Reset rearms both triggers from zero.
func (s *SpawnScheduler) Reset() {
	s.threatTimer = NewRepeatingTimer(config.ThreatSpawnInterval)
	s.tokenTimer = NewRepeatingTimer(config.TokenSpawnInterval)
}

// Cancel disarms both triggers.
func (s *SpawnScheduler) Cancel() {
	s.threatTimer.Cancel()
	s.tokenTimer.Cancel()
}

// Update advances the triggers and spawns into sess. Threat fires during Brave
// are consumed without spawning. Returns the entities created this tick.
func (s *SpawnScheduler) Update(sess *Session, dt time.Duration) []*object.Entity {
	if sess.Phase != PhaseRunning {
		return nil
	}

	var spawned []*object.Entity
	for fires := s.threatTimer.Advance(dt); fires > 0; fires-- {
		if sess.Mode.IsBrave() {
			continue
		}
		spawned = append(spawned, s.SpawnThreat(sess))
	}
	for fires := s.tokenTimer.Advance(dt); fires > 0; fires-- {
		spawned = append(spawned, s.SpawnToken(sess))
	}
	return spawned
}

// SpawnThreat classifies a variant from one draw and places it on an edge.
func (s *SpawnScheduler) SpawnThreat(sess *Session) *object.Entity {
	draw := s.rng.Intn(difficulty.DrawCeiling)
	variant, speed := difficulty.Classify(sess.TimeRemaining, draw)
	x, y := object.EdgePoint(s.field, config.SpawnEdgeOffset, s.rng)
	cx, cy := s.field.Center()
	return sess.addEntity(object.KindForVariant(variant), x, y, speed, cx, cy)
}

// SpawnToken places a token on an edge.
func (s *SpawnScheduler) SpawnToken(sess *Session) *object.Entity {
	x, y := object.EdgePoint(s.field, config.SpawnEdgeOffset, s.rng)
	cx, cy := s.field.Center()
	return sess.addEntity(object.Token, x, y, difficulty.TokenSpeed, cx, cy)
}
