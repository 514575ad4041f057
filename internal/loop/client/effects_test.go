package client

import (
	"testing"
	"time"

	"github.com/tomz197/syntaxdefense/internal/draw"
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/object"
	"github.com/tomz197/syntaxdefense/internal/session"
)

func newTestEffects() *Effects {
	return NewEffects(object.NewScreen(config.FieldWidth, config.FieldHeight))
}

func TestEffectsBurstSizes(t *testing.T) {
	tests := []struct {
		name    string
		kind    object.Kind
		outcome session.Outcome
		want    int
	}{
		{"light block", object.ThreatLight, session.OutcomeBlocked, burstBlock},
		{"fast block", object.ThreatFast, session.OutcomeBlocked, burstBlock},
		{"heavy block", object.ThreatHeavy, session.OutcomeBlocked, burstHeavy},
		{"cleared by brave", object.ThreatLight, session.OutcomeCleared, burstBlock},
		{"token", object.Token, session.OutcomeCollected, burstToken},
		{"breach", object.ThreatLight, session.OutcomeBreached, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newTestEffects()
			fx.OnEntityResolved(object.Entity{Kind: tt.kind, X: 460, Y: 300}, tt.outcome)
			if fx.Len() != tt.want {
				t.Errorf("particles = %d, want %d", fx.Len(), tt.want)
			}
		})
	}
}

func TestHeavyBurstLargerThanLight(t *testing.T) {
	light, heavy := newTestEffects(), newTestEffects()
	light.OnEntityResolved(object.Entity{Kind: object.ThreatLight}, session.OutcomeBlocked)
	heavy.OnEntityResolved(object.Entity{Kind: object.ThreatHeavy}, session.OutcomeBlocked)

	if heavy.Len() <= light.Len() {
		t.Errorf("heavy burst %d not larger than light burst %d", heavy.Len(), light.Len())
	}
}

func TestEffectsParticlesExpire(t *testing.T) {
	fx := newTestEffects()
	fx.OnEntityResolved(object.Entity{Kind: object.Token, X: 400, Y: 240}, session.OutcomeCollected)

	fx.Update(config.TickTime)
	if fx.Len() != burstToken {
		t.Fatalf("particles = %d after one tick", fx.Len())
	}
	fx.Update(time.Second)
	if fx.Len() != 0 {
		t.Errorf("particles = %d after their lifetime", fx.Len())
	}
}

func TestEffectsBraveRain(t *testing.T) {
	fx := newTestEffects()

	fx.Update(time.Second)
	if fx.Len() != 0 {
		t.Fatal("rain fell in Normal mode")
	}

	fx.OnModeChanged(session.Brave(config.BraveModeDuration))
	if !fx.Raining() {
		t.Fatal("Brave did not start the rain")
	}
	fx.Update(10 * rainInterval)
	if fx.Len() != 10 {
		t.Errorf("drops = %d, want 10", fx.Len())
	}

	fx.OnModeChanged(session.Normal())
	if fx.Raining() {
		t.Error("rain continued after Brave")
	}
	fx.OnModeChanged(session.Brave(config.BraveModeDuration))
	fx.OnSessionEnded(0)
	if fx.Raining() {
		t.Error("rain continued after the session ended")
	}
}

func TestEffectsResetAndDraw(t *testing.T) {
	fx := newTestEffects()
	fx.OnEntityResolved(object.Entity{Kind: object.ThreatHeavy, X: 400, Y: 300}, session.OutcomeBlocked)

	c := draw.NewScaledCanvas(800, 300, 800, 600)
	fx.Draw(c)
	if c.At(400, 300) != draw.ColorOrange {
		t.Errorf("burst origin = %v, want heavy orange", c.At(400, 300))
	}

	fx.OnModeChanged(session.Brave(config.BraveModeDuration))
	fx.Reset()
	if fx.Len() != 0 || fx.Raining() {
		t.Errorf("after reset: %d particles, raining %v", fx.Len(), fx.Raining())
	}
}
