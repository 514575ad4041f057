// Package audio synthesizes the game's sound effects and background pulse with beep.
// Audio is optional: when the speaker cannot be opened every call is a no-op.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/tomz197/syntaxdefense/internal/difficulty"
	"github.com/tomz197/syntaxdefense/internal/object"
	"github.com/tomz197/syntaxdefense/internal/session"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// SoundManager plays session feedback. It implements session.Listener.
type SoundManager struct {
	session.NopListener

	mu          sync.Mutex
	mixer       *beep.Mixer
	pulse       *Pulse
	pulseCtrl   *beep.Ctrl
	initialized bool
	lock        func() // Guards streamer state shared with the audio goroutine
	unlock      func()
}

var _ session.Listener = (*SoundManager)(nil)

// NewSoundManager creates a new sound manager
func NewSoundManager() *SoundManager {
	pulse := NewPulse(sampleRate)
	return &SoundManager{
		mixer:     &beep.Mixer{},
		pulse:     pulse,
		pulseCtrl: &beep.Ctrl{Streamer: pulse, Paused: true},
		lock:      speaker.Lock,
		unlock:    speaker.Unlock,
	}
}

// Initialize sets up the audio system
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	// Initialize speaker with sample rate and buffer size
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*50)); err != nil {
		return err
	}

	// The paused pulse keeps the mixer non-empty so the speaker never drops it.
	sm.mixer.Add(sm.pulseCtrl)
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	sm.lock()
	sm.pulseCtrl.Paused = true
	sm.mixer.Clear()
	sm.unlock()

	speaker.Clear()
	sm.initialized = false
}

// Play starts a one-shot sweep.
func (sm *SoundManager) Play(s Sweep) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	sm.lock()
	sm.mixer.Add(s.Streamer(sampleRate))
	sm.unlock()
}

// SweepFor picks the effect for an entity resolution. Cleared threats are silent.
func SweepFor(kind object.Kind, outcome session.Outcome) (Sweep, bool) {
	switch outcome {
	case session.OutcomeBlocked:
		switch kind {
		case object.ThreatHeavy:
			return SweepHeavyHit, true
		case object.ThreatFast:
			return SweepFastHit, true
		default:
			return SweepLightHit, true
		}
	case session.OutcomeBreached:
		return SweepBreach, true
	case session.OutcomeCollected:
		return SweepPickup, true
	}
	return Sweep{}, false
}

// OnEntityResolved plays hit, breach, and pickup effects.
func (sm *SoundManager) OnEntityResolved(e object.Entity, outcome session.Outcome) {
	if s, ok := SweepFor(e.Kind, outcome); ok {
		sm.Play(s)
	}
}

// OnModeChanged switches the pulse pattern and announces Brave.
func (sm *SoundManager) OnModeChanged(m session.Mode) {
	if m.IsBrave() {
		sm.Play(SweepPickup)
	}
	sm.withPulse(func(p *Pulse, _ *beep.Ctrl) {
		p.SetBrave(m.IsBrave())
	})
}

// OnTick starts the pulse and speeds it up in the final seconds.
func (sm *SoundManager) OnTick(timeRemaining int) {
	sm.withPulse(func(p *Pulse, ctrl *beep.Ctrl) {
		p.SetTempo(difficulty.PanicRate(timeRemaining))
		ctrl.Paused = timeRemaining <= 0
	})
}

// OnSessionEnded silences the pulse.
func (sm *SoundManager) OnSessionEnded(int) {
	sm.withPulse(func(p *Pulse, ctrl *beep.Ctrl) {
		ctrl.Paused = true
		p.SetBrave(false)
		p.SetTempo(1)
	})
}

// withPulse mutates the pulse with the audio goroutine held off. The pulse is
// updated even without a speaker so its state stays observable.
func (sm *SoundManager) withPulse(fn func(*Pulse, *beep.Ctrl)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		sm.lock()
		defer sm.unlock()
	}
	fn(sm.pulse, sm.pulseCtrl)
}
