package session

import "sync"

// PointerSource supplies the player's pointer in field coordinates.
// ok is false when no fresh position is available (tracking lost, no input yet).
// Implementations must return immediately.
type PointerSource interface {
	Pointer() (x, y float64, ok bool)
}

// PointerFunc adapts a function to PointerSource.
type PointerFunc func() (float64, float64, bool)

// Pointer implements PointerSource.
func (f PointerFunc) Pointer() (float64, float64, bool) {
	return f()
}

// LatestPointer holds the most recent position published by an input goroutine.
// Safe for one writer and the tick reader to use concurrently.
type LatestPointer struct {
	mu   sync.Mutex
	x, y float64
	ok   bool
}

// Set publishes a new position.
func (p *LatestPointer) Set(x, y float64) {
	p.mu.Lock()
	p.x, p.y, p.ok = x, y, true
	p.mu.Unlock()
}

// Clear marks the position as unavailable (e.g. hand tracking lost).
func (p *LatestPointer) Clear() {
	p.mu.Lock()
	p.ok = false
	p.mu.Unlock()
}

// Pointer implements PointerSource.
func (p *LatestPointer) Pointer() (float64, float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.x, p.y, p.ok
}

// pointerTracker polls a source once per tick and holds the last known value.
// Before any reading it reports the core center.
type pointerTracker struct {
	src  PointerSource
	x, y float64
}

func (t *pointerTracker) poll() (float64, float64) {
	if t.src == nil {
		return t.x, t.y
	}
	if x, y, ok := t.src.Pointer(); ok {
		t.x, t.y = x, y
	}
	return t.x, t.y
}
