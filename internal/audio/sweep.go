package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveTriangle
)

// Sweep is a one-shot tone gliding from FromHz to ToHz while its gain decays
// from Gain to EndGain.
type Sweep struct {
	Wave        Wave
	FromHz      float64
	ToHz        float64
	Exponential bool // Exponential frequency glide; linear otherwise
	Duration    time.Duration
	Gain        float64
	EndGain     float64
}

// Effects keyed by what happened on the field.
var (
	SweepLightHit = Sweep{Wave: WaveSaw, FromHz: 400, ToHz: 100, Exponential: true, Duration: 100 * time.Millisecond, Gain: 0.1, EndGain: 0.01}
	SweepHeavyHit = Sweep{Wave: WaveSquare, FromHz: 150, ToHz: 50, Exponential: true, Duration: 300 * time.Millisecond, Gain: 0.3, EndGain: 0.01}
	SweepFastHit  = Sweep{Wave: WaveTriangle, FromHz: 800, ToHz: 1200, Duration: 100 * time.Millisecond, Gain: 0.1, EndGain: 0.01}
	SweepPickup   = Sweep{Wave: WaveSine, FromHz: 600, ToHz: 1200, Duration: 200 * time.Millisecond, Gain: 0.1, EndGain: 0.1}
	SweepBreach   = Sweep{Wave: WaveSquare, FromHz: 90, ToHz: 55, Exponential: true, Duration: 250 * time.Millisecond, Gain: 0.2, EndGain: 0.01}
)

// FreqAt returns the oscillator frequency at progress p in [0, 1].
func (s Sweep) FreqAt(p float64) float64 {
	p = min(1, max(0, p))
	if s.Exponential && s.FromHz > 0 && s.ToHz > 0 {
		return s.FromHz * math.Pow(s.ToHz/s.FromHz, p)
	}
	return s.FromHz + (s.ToHz-s.FromHz)*p
}

// GainAt returns the amplitude at progress p in [0, 1]. The decay is exponential
// when both ends are positive.
func (s Sweep) GainAt(p float64) float64 {
	p = min(1, max(0, p))
	if s.Gain > 0 && s.EndGain > 0 {
		return s.Gain * math.Pow(s.EndGain/s.Gain, p)
	}
	return s.Gain + (s.EndGain-s.Gain)*p
}

// Streamer renders the sweep at the given sample rate.
func (s Sweep) Streamer(rate beep.SampleRate) beep.Streamer {
	return &sweepStreamer{sweep: s, rate: rate, total: rate.N(s.Duration)}
}

type sweepStreamer struct {
	sweep Sweep
	rate  beep.SampleRate
	total int
	pos   int
	phase float64
}

func (g *sweepStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.total {
		return 0, false
	}
	for i := range samples {
		if g.pos >= g.total {
			return i, true
		}
		p := float64(g.pos) / float64(g.total)
		sample := g.sweep.GainAt(p) * oscillate(g.sweep.Wave, g.phase)

		samples[i][0] = sample
		samples[i][1] = sample

		g.phase += g.sweep.FreqAt(p) / float64(g.rate)
		g.phase -= math.Floor(g.phase)
		g.pos++
	}
	return len(samples), true
}

func (g *sweepStreamer) Err() error {
	return nil
}

// oscillate evaluates a unit-amplitude waveform at phase in [0, 1).
func oscillate(w Wave, phase float64) float64 {
	switch w {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSaw:
		return 2*phase - 1
	case WaveTriangle:
		return 1 - 4*math.Abs(phase-0.5)
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
