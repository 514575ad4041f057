package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Pulse is the looping heartbeat under a session: a decaying kick over a bass
// drone. Its tempo follows the panic rate; Brave switches to a brighter, faster beat.
type Pulse struct {
	rate     beep.SampleRate
	beat     time.Duration
	tempo    float64
	brave    bool
	pos      int // Samples into the current beat
	bassTime float64
}

// Beat lengths at tempo 1.0.
const (
	normalBeat = 600 * time.Millisecond
	braveBeat  = 400 * time.Millisecond
)

// NewPulse creates a pulse at tempo 1.0.
func NewPulse(rate beep.SampleRate) *Pulse {
	return &Pulse{rate: rate, beat: normalBeat, tempo: 1}
}

// SetTempo scales the beat rate. Must be called with the speaker locked while playing.
func (p *Pulse) SetTempo(tempo float64) {
	if tempo > 0 {
		p.tempo = tempo
	}
}

// SetBrave switches the beat pattern. Must be called with the speaker locked while playing.
func (p *Pulse) SetBrave(brave bool) {
	p.brave = brave
	if brave {
		p.beat = braveBeat
	} else {
		p.beat = normalBeat
	}
}

// BeatSamples is the current beat length in samples.
func (p *Pulse) BeatSamples() int {
	return max(1, int(float64(p.rate.N(p.beat))/p.tempo))
}

func (p *Pulse) Stream(samples [][2]float64) (n int, ok bool) {
	bassHz := 55.0
	if p.brave {
		bassHz = 110
	}
	kickLen := p.rate.N(100 * time.Millisecond)

	for i := range samples {
		beatLen := p.BeatSamples()
		if p.pos >= beatLen {
			p.pos = 0
		}

		kick := 0.0
		if p.pos < kickLen {
			env := 1 - float64(p.pos)/float64(kickLen)
			freq := 60 * (1 + 2*env)
			kick = 0.35 * env * math.Sin(2*math.Pi*freq*float64(p.pos)/float64(p.rate))
		}
		bass := 0.08 * math.Sin(2*math.Pi*bassHz*p.bassTime)

		sample := kick + bass
		samples[i][0] = sample
		samples[i][1] = sample

		p.pos++
		p.bassTime += 1 / float64(p.rate)
		if p.bassTime >= 1 {
			p.bassTime--
		}
	}
	return len(samples), true
}

func (p *Pulse) Err() error {
	return nil
}
