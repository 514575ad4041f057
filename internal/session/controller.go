package session

import (
	"errors"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/object"
)

// ErrSessionRunning is returned by Start while a session is already running.
// The running session is left untouched.
var ErrSessionRunning = errors.New("session already running")

// Options configures a Controller. Zero values fall back to defaults.
type Options struct {
	Field     object.Screen    // Defaults to the configured play field
	Rand      object.IntSource // Defaults to a time-seeded *rand.Rand
	Pointer   PointerSource    // Nil holds the shield on its last target
	Listeners []Listener
	Logger    *log.Logger
}

// Controller is the session lifecycle owner. It drives spawning, arbitration,
// and scoring in lockstep from Step, which must be called from a single goroutine.
type Controller struct {
	sess      Session
	field     object.Screen
	spawner   *SpawnScheduler
	arbiter   *Arbiter
	scorer    ScoreAndModeController
	countdown Timer
	pointer   pointerTracker
	notify    notifier
	logger    *log.Logger
}

// NewController creates an Idle controller.
func NewController(opts Options) *Controller {
	field := opts.Field
	if field.Width == 0 || field.Height == 0 {
		field = object.NewScreen(config.FieldWidth, config.FieldHeight)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	cx, cy := field.Center()

	return &Controller{
		sess:    Session{Phase: PhaseIdle, TimeRemaining: config.SessionSeconds, Mode: Normal()},
		field:   field,
		spawner: NewSpawnScheduler(field, rng),
		arbiter: NewArbiter(cx, cy),
		pointer: pointerTracker{src: opts.Pointer, x: cx, y: cy},
		notify:  notifier{listeners: opts.Listeners, logger: logger},
		logger:  logger,
	}
}

// Start begins a fresh session from Idle or Ended. While Running it returns
// ErrSessionRunning and changes nothing.
func (c *Controller) Start() error {
	if c.sess.Phase == PhaseRunning {
		return ErrSessionRunning
	}

	c.sess = Session{
		TimeRemaining: config.SessionSeconds,
		Phase:         PhaseRunning,
		Mode:          Normal(),
	}
	c.countdown = NewRepeatingTimer(config.CountdownStep)
	c.pointer.x, c.pointer.y = c.field.Center()
	c.spawner.Reset()
	c.arbiter.Reset()
	c.scorer.Reset()

	c.logger.Debug("session started", "seconds", c.sess.TimeRemaining)
	c.notify.score(0)
	c.notify.meter(0, config.MeterMax)
	c.notify.mode(c.sess.Mode)
	c.notify.tick(c.sess.TimeRemaining)
	return nil
}

// Step advances the simulation by dt. It is a no-op unless Running.
func (c *Controller) Step(dt time.Duration) {
	if c.sess.Phase != PhaseRunning {
		return
	}
	c.sess.ElapsedTicks++

	for fires := c.countdown.Advance(dt); fires > 0; fires-- {
		c.sess.TimeRemaining--
		c.notify.tick(c.sess.TimeRemaining)
		if c.sess.TimeRemaining <= 0 {
			c.end()
			return
		}
	}

	c.scorer.Update(&c.sess, dt, &c.notify)

	for _, e := range c.spawner.Update(&c.sess, dt) {
		c.notify.spawned(e)
	}

	px, py := c.pointer.poll()
	c.arbiter.Track(&c.sess.Shield, px, py)

	for _, v := range c.arbiter.Resolve(&c.sess, dt) {
		c.notify.resolved(v.Entity, v.Outcome)
		c.scorer.Apply(&c.sess, v, &c.notify)
	}

	c.sess.compact()
}

// Stop ends a Running session early. It is a no-op in any other phase.
func (c *Controller) Stop() {
	if c.sess.Phase != PhaseRunning {
		return
	}
	c.end()
}

// end is the single path into Ended: every timer is cancelled before the
// terminal notification so nothing can mutate the finished session.
func (c *Controller) end() {
	c.sess.Phase = PhaseEnded
	c.countdown.Cancel()
	c.spawner.Cancel()
	c.arbiter.Cancel()
	c.scorer.Cancel()

	c.logger.Debug("session ended", "score", c.sess.Score, "ticks", c.sess.ElapsedTicks)
	c.notify.ended(c.sess.Score)
}

// Phase returns the lifecycle state.
func (c *Controller) Phase() Phase {
	return c.sess.Phase
}

// Score returns the current score.
func (c *Controller) Score() int {
	return c.sess.Score
}

// Mode reports the current mode without copying the entity list.
func (c *Controller) Mode() Mode {
	return c.sess.Mode
}

// Field returns the play field.
func (c *Controller) Field() object.Screen {
	return c.field
}

// HitStop reports whether entity movement is currently frozen.
func (c *Controller) HitStop() bool {
	return c.arbiter.Frozen()
}

// Snapshot returns an immutable copy of the session.
func (c *Controller) Snapshot() Snapshot {
	return c.sess.snapshot()
}
