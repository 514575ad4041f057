package object

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/tomz197/syntaxdefense/internal/draw"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is a short-lived visual effect in field coordinates.
type Particle struct {
	X, Y        float64 // Position
	VX, VY      float64 // Velocity in px/s
	Lifetime    float64 // Seconds remaining
	MaxLifetime float64 // Initial lifetime (for fade calculation)
	Drag        float64 // Velocity decay per 60 Hz frame (1.0 = no drag)
	Color       draw.Color
	Fade        bool // Whether to fade out over lifetime
}

// NewParticle creates a single particle from the pool.
func NewParticle(x, y, vx, vy, lifetime float64, col draw.Color) *Particle {
	p := particlePool.Get().(*Particle)
	p.X = x
	p.Y = y
	p.VX = vx
	p.VY = vy
	p.Lifetime = lifetime
	p.MaxLifetime = lifetime
	p.Drag = 0.95
	p.Color = col
	p.Fade = true
	return p
}

// Release returns the particle to the pool for reuse.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// SpawnExplosion emits count particles in a circular burst around (x, y).
// Each particle inherits carry times the given base velocity.
func SpawnExplosion(x, y float64, count int, speed, lifetime float64, col draw.Color, baseVX, baseVY, carry float64, emit func(*Particle)) {
	for range count {
		angle := rand.Float64() * 2 * math.Pi
		// Speed varies 50% to 150%, lifetime 50% to 100%
		spd := speed * (0.5 + rand.Float64())
		life := lifetime * (0.5 + rand.Float64()*0.5)

		vx := math.Cos(angle)*spd + baseVX*carry
		vy := math.Sin(angle)*spd + baseVY*carry
		emit(NewParticle(x, y, vx, vy, life, col))
	}
}

// SpawnRain emits one falling drop at a random column along the top edge.
func SpawnRain(field Screen, col draw.Color, emit func(*Particle)) {
	x := rand.Float64() * float64(field.Width)
	speed := 400 + rand.Float64()*300
	p := NewParticle(x, 0, 0, speed, float64(field.Height)/speed, col)
	p.Drag = 1
	emit(p)
}

// Update moves the particle and reports whether it has expired.
func (p *Particle) Update(dt time.Duration) bool {
	secs := dt.Seconds()

	p.Lifetime -= secs
	if p.Lifetime <= 0 {
		return true
	}

	dragFactor := math.Pow(p.Drag, secs*60)
	p.VX *= dragFactor
	p.VY *= dragFactor

	p.X += p.VX * secs
	p.Y += p.VY * secs
	return false
}

// Draw renders the particle as a pixel on the canvas.
func (p *Particle) Draw(c *draw.Canvas) {
	// Skip faded particles (< 25% lifetime)
	if p.Fade && p.MaxLifetime > 0 && p.Lifetime/p.MaxLifetime < 0.25 {
		return
	}
	c.SetFloat(p.X, p.Y, p.Color)
}
