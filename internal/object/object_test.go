package object

import (
	"math"
	"testing"
	"time"

	"github.com/tomz197/syntaxdefense/internal/difficulty"
	"github.com/tomz197/syntaxdefense/internal/draw"
)

// scriptedInts returns queued values in order.
type scriptedInts struct {
	vals []int
}

func (s *scriptedInts) Intn(n int) int {
	v := s.vals[0]
	s.vals = s.vals[1:]
	if v >= n {
		panic("scripted value out of range")
	}
	return v
}

func TestKindForVariant(t *testing.T) {
	if KindForVariant(difficulty.VariantLight) != ThreatLight ||
		KindForVariant(difficulty.VariantHeavy) != ThreatHeavy ||
		KindForVariant(difficulty.VariantFast) != ThreatFast {
		t.Fatal("variant to kind mapping is wrong")
	}
	if Token.IsThreat() || !ThreatFast.IsThreat() {
		t.Fatal("IsThreat mismatch")
	}
}

func TestEdgePointSides(t *testing.T) {
	field := NewScreen(800, 600)
	cases := []struct {
		side, along int
		wantX       float64
		wantY       float64
	}{
		{0, 800, 800, -20},
		{1, 0, 0, 620},
		{2, 600, -20, 600},
		{3, 300, 820, 300},
	}
	for _, c := range cases {
		rng := &scriptedInts{vals: []int{c.side, c.along}}
		x, y := EdgePoint(field, 20, rng)
		if x != c.wantX || y != c.wantY {
			t.Errorf("side %d: got (%v, %v), want (%v, %v)", c.side, x, y, c.wantX, c.wantY)
		}
	}
}

func TestEntityMovesTowardTarget(t *testing.T) {
	e := NewEntity(1, ThreatLight, 0, 0, 60, 100, 0)
	e.Advance(500*time.Millisecond, 100, 0)
	if math.Abs(e.X-30) > 1e-9 || e.Y != 0 {
		t.Fatalf("expected (30, 0), got (%v, %v)", e.X, e.Y)
	}
	vx, vy := e.Velocity()
	if math.Abs(vx-60) > 1e-9 || vy != 0 {
		t.Fatalf("expected velocity (60, 0), got (%v, %v)", vx, vy)
	}
}

func TestEntityDoesNotOvershoot(t *testing.T) {
	e := NewEntity(1, ThreatFast, 0, 0, 350, 10, 0)
	e.Advance(time.Second, 10, 0)
	if e.X != 10 || e.Y != 0 {
		t.Fatalf("expected to stop at target, got (%v, %v)", e.X, e.Y)
	}
}

func TestEntityDestroyFlag(t *testing.T) {
	e := NewEntity(7, Token, 0, 0, 100, 1, 1)
	if !e.Alive() {
		t.Fatal("new entity should be alive")
	}
	e.MarkDestroyed()
	if e.Alive() || !e.IsDestroyed() {
		t.Fatal("destroyed entity should not be alive")
	}
}

func TestEntityDraw(t *testing.T) {
	tests := []struct {
		kind   Kind
		px, py int
		want   draw.Color
	}{
		{ThreatHeavy, 400, 300, draw.ColorOrange},
		{Token, 400, 300, draw.ColorGreen},
		{ThreatFast, 400, 300, draw.ColorPink},
		{ThreatLight, 400, 300, draw.ColorNone}, // Rings are hollow
		{ThreatLight, 412, 300, draw.ColorWhite},
	}
	for _, tt := range tests {
		// One pixel per logical unit.
		c := draw.NewScaledCanvas(800, 300, 800, 600)
		e := Entity{Kind: tt.kind, X: 400, Y: 300, DirX: 1}
		e.Draw(c)
		if got := c.At(tt.px, tt.py); got != tt.want {
			t.Errorf("%v at (%d, %d) = %v, want %v", tt.kind, tt.px, tt.py, got, tt.want)
		}
	}
}

func TestSpawnExplosion(t *testing.T) {
	var got []*Particle
	SpawnExplosion(100, 200, 12, 125, 0.6, draw.ColorOrange, 50, 0, -0.25, func(p *Particle) {
		got = append(got, p)
	})

	if len(got) != 12 {
		t.Fatalf("particles = %d, want 12", len(got))
	}
	for _, p := range got {
		if p.X != 100 || p.Y != 200 || p.Color != draw.ColorOrange {
			t.Errorf("particle = %+v", p)
		}
		if p.Lifetime < 0.3 || p.Lifetime > 0.6 || p.MaxLifetime != p.Lifetime {
			t.Errorf("lifetime = %v", p.Lifetime)
		}
		// Random part spans 62.5..187.5 px/s; the carried part is -12.5 px/s on x.
		if speed := math.Hypot(p.VX+12.5, p.VY); speed < 62.5-1e-9 || speed > 187.5+1e-9 {
			t.Errorf("speed = %v", speed)
		}
	}
}

func TestParticleUpdate(t *testing.T) {
	p := NewParticle(0, 0, 60, 0, 0.5, draw.ColorGreen)
	p.Drag = 1

	if p.Update(250 * time.Millisecond) {
		t.Fatal("particle expired early")
	}
	if math.Abs(p.X-15) > 1e-9 {
		t.Errorf("x = %v, want 15", p.X)
	}
	if !p.Update(250 * time.Millisecond) {
		t.Error("particle outlived its lifetime")
	}
	p.Release()
}

func TestSpawnRain(t *testing.T) {
	field := NewScreen(800, 600)
	var drop *Particle
	SpawnRain(field, draw.ColorGreen, func(p *Particle) { drop = p })

	if drop == nil || drop.Y != 0 || drop.X < 0 || drop.X >= 800 {
		t.Fatalf("drop = %+v", drop)
	}
	if drop.VY < 400 || drop.VY > 700 || drop.Drag != 1 {
		t.Errorf("drop velocity %v drag %v", drop.VY, drop.Drag)
	}
	if fall := drop.VY * drop.Lifetime; math.Abs(fall-600) > 1e-9 {
		t.Errorf("drop falls %v px, want the field height", fall)
	}
}
