package session

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/object"
)

// scriptedInts replays a fixed sequence in a loop.
type scriptedInts struct {
	values []int
	pos    int
}

func (s *scriptedInts) Intn(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v % n
}

type resolution struct {
	kind    object.Kind
	outcome Outcome
}

// recorder captures every notification for later inspection.
type recorder struct {
	mu       sync.Mutex
	spawned  []object.Entity
	resolved []resolution
	scores   []int
	meters   []int
	modes    []Mode
	ticks    []int
	ended    []int
}

func (r *recorder) OnEntitySpawned(e object.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spawned = append(r.spawned, e)
}

func (r *recorder) OnEntityResolved(e object.Entity, outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = append(r.resolved, resolution{kind: e.Kind, outcome: outcome})
}

func (r *recorder) OnScoreChanged(score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores = append(r.scores, score)
}

func (r *recorder) OnMeterChanged(value int, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meters = append(r.meters, value)
}

func (r *recorder) OnModeChanged(m Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes = append(r.modes, m)
}

func (r *recorder) OnTick(t int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, t)
}

func (r *recorder) OnSessionEnded(score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, score)
}

func (r *recorder) count(outcome Outcome) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.resolved {
		if res.outcome == outcome {
			n++
		}
	}
	return n
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func testNotifier(listeners ...Listener) *notifier {
	return &notifier{listeners: listeners, logger: quietLogger()}
}

func runningSession() *Session {
	return &Session{
		Phase:         PhaseRunning,
		TimeRemaining: config.SessionSeconds,
		Mode:          Normal(),
	}
}

const coreX, coreY = float64(config.CoreX), float64(config.CoreY)
