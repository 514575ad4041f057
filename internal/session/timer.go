package session

import "time"

// Timer is a logical timer advanced by the simulation tick rather than the wall clock.
// A repeating timer reloads its interval after every fire; a one-shot timer
// deactivates itself.
type Timer struct {
	interval  time.Duration
	remaining time.Duration
	repeat    bool
	active    bool
}

// NewRepeatingTimer returns an active timer firing every interval.
func NewRepeatingTimer(interval time.Duration) Timer {
	return Timer{interval: interval, remaining: interval, repeat: true, active: true}
}

// NewOneShotTimer returns an active timer firing once after d.
func NewOneShotTimer(d time.Duration) Timer {
	return Timer{interval: d, remaining: d, active: true}
}

// Advance moves the timer forward by dt and returns how many times it fired.
// A large dt can fire a repeating timer several times.
func (t *Timer) Advance(dt time.Duration) int {
	if !t.active || dt <= 0 {
		return 0
	}
	t.remaining -= dt
	fires := 0
	for t.remaining <= 0 {
		fires++
		if !t.repeat || t.interval <= 0 {
			t.active = false
			t.remaining = 0
			break
		}
		t.remaining += t.interval
	}
	return fires
}

// Restart rearms the timer with its full interval.
func (t *Timer) Restart() {
	t.remaining = t.interval
	t.active = true
}

// Cancel stops the timer; it will not fire until restarted.
func (t *Timer) Cancel() {
	t.active = false
}

// Active reports whether the timer is armed.
func (t *Timer) Active() bool {
	return t.active
}

// Remaining is the time left until the next fire. Zero when inactive.
func (t *Timer) Remaining() time.Duration {
	if !t.active {
		return 0
	}
	return t.remaining
}
