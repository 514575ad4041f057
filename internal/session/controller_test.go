package session

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/object"
)

func newTestController(src PointerSource, listeners ...Listener) *Controller {
	return NewController(Options{
		Rand:      rand.New(rand.NewSource(1)),
		Pointer:   src,
		Listeners: listeners,
		Logger:    quietLogger(),
	})
}

func TestStartNotifiesInitialState(t *testing.T) {
	rec := &recorder{}
	c := newTestController(nil, rec)

	if c.Phase() != PhaseIdle {
		t.Fatalf("phase = %v, want idle", c.Phase())
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if c.Phase() != PhaseRunning {
		t.Errorf("phase = %v, want running", c.Phase())
	}
	if len(rec.scores) != 1 || rec.scores[0] != 0 {
		t.Errorf("scores = %v", rec.scores)
	}
	if len(rec.meters) != 1 || rec.meters[0] != 0 {
		t.Errorf("meters = %v", rec.meters)
	}
	if len(rec.modes) != 1 || rec.modes[0].IsBrave() {
		t.Errorf("modes = %v", rec.modes)
	}
	if len(rec.ticks) != 1 || rec.ticks[0] != config.SessionSeconds {
		t.Errorf("ticks = %v", rec.ticks)
	}
}

func TestStartWhileRunning(t *testing.T) {
	c := newTestController(nil)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.Step(2 * time.Second)

	if err := c.Start(); !errors.Is(err, ErrSessionRunning) {
		t.Fatalf("second Start = %v, want ErrSessionRunning", err)
	}
	if got := c.Snapshot().TimeRemaining; got != config.SessionSeconds-2 {
		t.Errorf("running session was reset: timeRemaining = %d", got)
	}
}

func TestSessionEndsOnce(t *testing.T) {
	rec := &recorder{}
	c := newTestController(nil, rec)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2*config.SessionSeconds*config.TickRate && c.Phase() == PhaseRunning; i++ {
		c.Step(config.TickTime)
	}

	if c.Phase() != PhaseEnded {
		t.Fatalf("phase = %v after a full session", c.Phase())
	}
	if len(rec.ended) != 1 {
		t.Fatalf("OnSessionEnded fired %d times, want 1", len(rec.ended))
	}
	if rec.ended[0] != c.Score() {
		t.Errorf("ended with %d, score is %d", rec.ended[0], c.Score())
	}
	if last := rec.ticks[len(rec.ticks)-1]; last != 0 {
		t.Errorf("last tick = %d, want 0", last)
	}

	snap := c.Snapshot()
	spawned := len(rec.spawned)
	for range 600 {
		c.Step(config.TickTime)
	}
	if len(rec.ended) != 1 {
		t.Errorf("OnSessionEnded fired again after end")
	}
	if len(rec.spawned) != spawned {
		t.Errorf("spawned %d entities after end", len(rec.spawned)-spawned)
	}
	if c.Snapshot().ElapsedTicks != snap.ElapsedTicks {
		t.Error("ticks advanced after end")
	}
}

func TestLargeStepEndsAtZero(t *testing.T) {
	rec := &recorder{}
	c := newTestController(nil, rec)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	c.Step(time.Duration(config.SessionSeconds+30) * time.Second)

	if c.Phase() != PhaseEnded || len(rec.ended) != 1 {
		t.Fatalf("phase=%v ended=%d", c.Phase(), len(rec.ended))
	}
	if got := c.Snapshot().TimeRemaining; got != 0 {
		t.Errorf("timeRemaining = %d, want 0", got)
	}
}

func TestRestartFromEnded(t *testing.T) {
	rec := &recorder{}
	c := newTestController(nil, rec)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	for range 5 * config.TickRate {
		c.Step(config.TickTime)
	}
	c.Stop()
	if c.Phase() != PhaseEnded {
		t.Fatalf("Stop left phase %v", c.Phase())
	}

	if err := c.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	snap := c.Snapshot()
	if snap.Phase != PhaseRunning || snap.Score != 0 || snap.ChargeMeter != 0 ||
		snap.TimeRemaining != config.SessionSeconds || len(snap.Entities) != 0 || snap.ElapsedTicks != 0 {
		t.Errorf("restart did not reset state: %+v", snap)
	}
}

func TestStopOnlyWhenRunning(t *testing.T) {
	rec := &recorder{}
	c := newTestController(nil, rec)

	c.Stop()
	if c.Phase() != PhaseIdle || len(rec.ended) != 0 {
		t.Errorf("Stop from idle: phase=%v ended=%d", c.Phase(), len(rec.ended))
	}

	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.Stop()
	c.Stop()
	if len(rec.ended) != 1 {
		t.Errorf("ended fired %d times", len(rec.ended))
	}
}

func TestStepIgnoredWhenIdle(t *testing.T) {
	rec := &recorder{}
	c := newTestController(nil, rec)

	c.Step(10 * time.Second)

	if len(rec.spawned) != 0 || len(rec.ticks) != 0 || c.Snapshot().ElapsedTicks != 0 {
		t.Error("idle controller advanced")
	}
}

func TestPointerFallback(t *testing.T) {
	var ptr LatestPointer
	c := newTestController(&ptr)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	// No reading yet: the pointer sits on the core, atan2(0, 0) = 0.
	c.Step(config.TickTime)
	if got := c.Snapshot().Shield.TargetAngle; got != 0 {
		t.Fatalf("target before any reading = %v, want 0", got)
	}

	ptr.Set(coreX, coreY-100)
	c.Step(config.TickTime)
	want := -math.Pi / 2
	if got := c.Snapshot().Shield.TargetAngle; math.Abs(got-want) > 1e-9 {
		t.Fatalf("target = %v, want %v", got, want)
	}

	ptr.Clear()
	for range 30 {
		c.Step(config.TickTime)
	}
	shield := c.Snapshot().Shield
	if math.Abs(shield.TargetAngle-want) > 1e-9 {
		t.Errorf("target after tracking loss = %v, want last known %v", shield.TargetAngle, want)
	}
	if math.Abs(shield.CurrentAngle-want) > 0.1 {
		t.Errorf("shield did not converge on last known target: %v", shield.CurrentAngle)
	}
}

func TestShieldSmoothingStep(t *testing.T) {
	c := newTestController(PointerFunc(func() (float64, float64, bool) {
		return coreX, coreY + 100, true
	}))
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	c.Step(config.TickTime)

	if got := c.Snapshot().Shield.CurrentAngle; math.Abs(got-math.Pi/20) > 1e-9 {
		t.Errorf("current angle after one tick = %v, want ≈0.157", got)
	}
}

type panicky struct{ NopListener }

func (panicky) OnScoreChanged(int) { panic("boom") }
func (panicky) OnTick(int)         { panic("boom") }

func TestPanickingListenerIsolated(t *testing.T) {
	rec := &recorder{}
	c := newTestController(nil, panicky{}, rec)

	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.Step(time.Second)

	if len(rec.scores) != 1 {
		t.Errorf("recorder got %d score notifications after panicking peer", len(rec.scores))
	}
	if len(rec.ticks) != 2 {
		t.Errorf("recorder got %d ticks, want 2", len(rec.ticks))
	}
	if c.Phase() != PhaseRunning {
		t.Errorf("phase = %v", c.Phase())
	}
}

func TestSnapshotIsolated(t *testing.T) {
	c := newTestController(nil)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	for range config.TickRate {
		c.Step(config.TickTime)
	}

	snap := c.Snapshot()
	if len(snap.Entities) == 0 {
		t.Fatal("no entities after one second")
	}
	first := snap.Entities[0]
	c.Step(config.TickTime)
	if snap.Entities[0] != first {
		t.Error("snapshot entity changed with the live session")
	}
	moved := c.Snapshot().Entities[0]
	if moved.ID != first.ID || (moved.X == first.X && moved.Y == first.Y) {
		t.Errorf("live entity did not advance: %+v -> %+v", first, moved)
	}
}

func TestBlockedThreatThroughController(t *testing.T) {
	rec := &recorder{}
	// Every draw is 99 (light); every edge is the right side at mid height.
	rng := &scriptedInts{values: []int{99, 3, config.FieldHeight / 2}}
	c := NewController(Options{
		Rand: rng,
		Pointer: PointerFunc(func() (float64, float64, bool) {
			return coreX + 100, coreY, true
		}),
		Listeners: []Listener{rec},
		Logger:    quietLogger(),
	})
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	for range 4 * config.TickRate {
		c.Step(config.TickTime)
	}

	if rec.count(OutcomeBlocked) == 0 {
		t.Fatal("no threat blocked by a shield facing the spawn edge")
	}
	if rec.count(OutcomeBreached) != 0 {
		t.Errorf("%d breaches through a facing shield", rec.count(OutcomeBreached))
	}
	if c.Score() != rec.count(OutcomeBlocked)*config.ScoreBlock {
		t.Errorf("score = %d for %d blocks", c.Score(), rec.count(OutcomeBlocked))
	}
	for _, e := range rec.spawned {
		if e.Kind == object.Token {
			return
		}
	}
	t.Error("no token spawned in four seconds")
}

func TestListenersFanOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	c := newTestController(nil, Listeners{a, b})
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.Stop()

	for i, r := range []*recorder{a, b} {
		if len(r.scores) != 1 || len(r.ended) != 1 {
			t.Errorf("member %d: scores=%v ended=%v", i, r.scores, r.ended)
		}
	}
}

func TestInvariantsHoldEveryTick(t *testing.T) {
	// The pointer circles the core once every two seconds.
	var angle float64
	pointer := PointerFunc(func() (float64, float64, bool) {
		angle += 2 * math.Pi / float64(2*config.TickRate)
		return coreX + 120*math.Cos(angle), coreY + 120*math.Sin(angle), true
	})
	c := newTestController(pointer)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	prev := c.Snapshot().TimeRemaining
	braveTicks := 0
	for tick := 0; c.Phase() == PhaseRunning; tick++ {
		if tick > 2*config.SessionSeconds*config.TickRate {
			t.Fatal("session did not end")
		}
		c.Step(config.TickTime)
		snap := c.Snapshot()

		if snap.ChargeMeter < 0 || snap.ChargeMeter > config.MeterMax {
			t.Fatalf("tick %d: meter = %d", tick, snap.ChargeMeter)
		}
		if snap.Score < 0 {
			t.Fatalf("tick %d: score = %d", tick, snap.Score)
		}
		if snap.TimeRemaining > prev {
			t.Fatalf("tick %d: timeRemaining rose from %d to %d", tick, prev, snap.TimeRemaining)
		}
		prev = snap.TimeRemaining
		if a := snap.Shield.CurrentAngle; a <= -math.Pi || a > math.Pi {
			t.Fatalf("tick %d: shield angle %v outside (-π, π]", tick, a)
		}
		if c.Mode() != snap.Mode {
			t.Fatalf("tick %d: Mode() = %v, snapshot mode %v", tick, c.Mode(), snap.Mode)
		}
		if snap.Mode.IsBrave() {
			braveTicks++
		}
	}

	if c.Phase() != PhaseEnded || c.Snapshot().TimeRemaining != 0 {
		t.Errorf("phase = %v, timeRemaining = %d", c.Phase(), c.Snapshot().TimeRemaining)
	}
	t.Logf("ended score=%d braveTicks=%d", c.Score(), braveTicks)
}
