package session

import (
	"time"

	"github.com/tomz197/syntaxdefense/internal/loop/config"
)

// ScoreAndModeController owns score, the charge meter, and the Normal/Brave machine.
type ScoreAndModeController struct {
	braveTimer Timer
}

// Reset returns the controller to Normal with no pending Brave timer.
func (c *ScoreAndModeController) Reset() {
	c.braveTimer = Timer{}
}

// Cancel disarms the Brave timer.
func (c *ScoreAndModeController) Cancel() {
	c.braveTimer.Cancel()
}

// Apply reacts to one arbiter verdict.
func (c *ScoreAndModeController) Apply(sess *Session, v Verdict, n *notifier) {
	switch v.Outcome {
	case OutcomeBlocked:
		c.addScore(sess, config.ScoreBlock, n)
	case OutcomeBreached:
		c.addScore(sess, -config.PenaltyBreach, n)
	case OutcomeCollected:
		c.addScore(sess, config.ScoreToken, n)
		c.charge(sess, config.MeterPerToken, n)
	}
}

// Update counts down an active Brave mode and returns to Normal when it elapses.
func (c *ScoreAndModeController) Update(sess *Session, dt time.Duration, n *notifier) {
	if !sess.Mode.IsBrave() {
		return
	}
	if c.braveTimer.Advance(dt) > 0 {
		c.exitBrave(sess, n)
		return
	}
	sess.Mode = Brave(c.braveTimer.Remaining())
}

// addScore applies delta and clamps at zero.
func (c *ScoreAndModeController) addScore(sess *Session, delta int, n *notifier) {
	sess.Score = max(0, sess.Score+delta)
	n.score(sess.Score)
}

// charge fills the meter, clamped at MeterMax, and enters Brave on reaching it from Normal.
func (c *ScoreAndModeController) charge(sess *Session, amount int, n *notifier) {
	sess.ChargeMeter = min(config.MeterMax, sess.ChargeMeter+amount)
	n.meter(sess.ChargeMeter, config.MeterMax)
	if sess.ChargeMeter >= config.MeterMax && sess.Mode.Kind == ModeNormal {
		c.enterBrave(sess, n)
	}
}

// enterBrave switches mode, starts the Brave timer, and clears every live threat.
// Tokens stay in flight.
func (c *ScoreAndModeController) enterBrave(sess *Session, n *notifier) {
	sess.Mode = Brave(config.BraveModeDuration)
	c.braveTimer = NewOneShotTimer(config.BraveModeDuration)

	for _, e := range sess.Entities {
		if e.IsDestroyed() || !e.Kind.IsThreat() {
			continue
		}
		e.MarkDestroyed()
		n.resolved(e, OutcomeCleared)
	}
	n.mode(sess.Mode)
}

// exitBrave returns to Normal and empties the meter.
func (c *ScoreAndModeController) exitBrave(sess *Session, n *notifier) {
	sess.Mode = Normal()
	sess.ChargeMeter = 0
	n.meter(0, config.MeterMax)
	n.mode(sess.Mode)
}
