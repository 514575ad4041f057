package client

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/syntaxdefense/internal/input"
	"github.com/tomz197/syntaxdefense/internal/leaderboard"
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/loop/server"
	"github.com/tomz197/syntaxdefense/internal/session"
)

// fakeServer records what a client reports.
type fakeServer struct {
	handle       *server.ClientHandle
	statuses     []server.ClientStatus
	submissions  []string
	scores       []int
	rank         int
	unregistered bool
	snapshot     *server.Snapshot
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		handle: &server.ClientHandle{ID: 7, EventsCh: make(chan server.ClientEvent, 4)},
		rank:   3,
		snapshot: &server.Snapshot{
			Players:   2,
			Playing:   1,
			TopScores: leaderboard.DefaultEntries(),
		},
	}
}

func (f *fakeServer) RegisterClient(username string) *server.ClientHandle {
	f.handle.Username = username
	return f.handle
}

func (f *fakeServer) UnregisterClient(int) { f.unregistered = true }

func (f *fakeServer) SendStatus(_ int, status server.ClientStatus) {
	f.statuses = append(f.statuses, status)
}

func (f *fakeServer) SubmitScore(_ int, alias string, score int) int {
	f.submissions = append(f.submissions, alias)
	f.scores = append(f.scores, score)
	return f.rank
}

func (f *fakeServer) GetSnapshot() *server.Snapshot { return f.snapshot }

// newTestClient builds a client on a 120x40 terminal with no input.
func newTestClient(t *testing.T, gs server.GameServer, out io.Writer) *Client {
	t.Helper()
	if out == nil {
		out = io.Discard
	}
	return NewClient(gs, bufio.NewReader(strings.NewReader("")), out, ClientOptions{
		TermSizeFunc: func() (int, int, error) { return 120, 40, nil },
		Username:     "alice",
		Logger:       log.New(io.Discard),
	})
}

// frame runs one update with the given input and frame delta.
func frame(c *Client, in input.Input, delta time.Duration) {
	c.state.prevInput = c.state.Input
	c.state.Input = in
	c.state.delta = delta
	if c.quitRequested() {
		c.state.Running = false
	}
	if c.state.GameState == GameStatePlaying {
		c.steer()
	}
	c.update()
}

func TestStartScreenStartsSession(t *testing.T) {
	gs := newFakeServer()
	c := newTestClient(t, gs, nil)

	frame(c, input.Input{}, config.TickTime)
	if c.state.GameState != GameStateStart {
		t.Fatalf("state = %v, want start", c.state.GameState)
	}

	frame(c, input.Input{Space: true}, config.TickTime)
	if c.state.GameState != GameStatePlaying {
		t.Fatalf("state = %v, want playing", c.state.GameState)
	}
	if c.ctrl.Phase() != session.PhaseRunning {
		t.Errorf("phase = %v, want running", c.ctrl.Phase())
	}

	last := gs.statuses[len(gs.statuses)-1]
	if last.Phase != session.PhaseRunning {
		t.Errorf("reported phase = %v", last.Phase)
	}
}

func TestPlayingStepsFixedTicks(t *testing.T) {
	c := newTestClient(t, newFakeServer(), nil)
	frame(c, input.Input{Enter: true}, 0)

	// A long stall only catches up maxFrameLag worth of ticks.
	frame(c, input.Input{}, 2*time.Second)
	want := uint64(maxFrameLag / config.TickTime)
	if got := c.ctrl.Snapshot().ElapsedTicks; got != want {
		t.Errorf("ticks = %d, want %d", got, want)
	}

	// Leftover time carries into the next frame.
	c.state.accumulator = config.TickTime / 2
	frame(c, input.Input{}, config.TickTime/2)
	if got := c.ctrl.Snapshot().ElapsedTicks; got != want+1 {
		t.Errorf("ticks = %d, want %d", got, want+1)
	}
}

func TestKeyboardSteering(t *testing.T) {
	c := newTestClient(t, newFakeServer(), nil)
	frame(c, input.Input{Space: true}, 0)

	frame(c, input.Input{Right: true}, 100*time.Millisecond)
	wantAngle := config.KeyboardTurnRate * 0.1
	if math.Abs(c.state.steerAngle-wantAngle) > 1e-9 {
		t.Fatalf("angle = %v, want %v", c.state.steerAngle, wantAngle)
	}
	x, y, ok := c.pointer.Pointer()
	wx, wy := orbitPoint(wantAngle)
	if !ok || math.Abs(x-wx) > 1e-9 || math.Abs(y-wy) > 1e-9 {
		t.Errorf("pointer = (%v, %v, %v), want (%v, %v)", x, y, ok, wx, wy)
	}

	frame(c, input.Input{Up: true}, config.TickTime)
	if c.state.steerAngle != -math.Pi/2 {
		t.Errorf("angle after up = %v", c.state.steerAngle)
	}
	_, y, _ = c.pointer.Pointer()
	if math.Abs(y-(config.CoreY-config.KeyboardRadius)) > 1e-9 {
		t.Errorf("pointer y = %v", y)
	}
}

func TestMouseSteering(t *testing.T) {
	c := newTestClient(t, newFakeServer(), nil)
	frame(c, input.Input{Space: true}, 0)

	// 120x40 fits a 106x40 canvas offset by 7 columns.
	if c.canvas.OffsetCol() != 7 {
		t.Fatalf("offset = %d, want 7", c.canvas.OffsetCol())
	}

	frame(c, input.Input{Mouse: &input.Mouse{X: 0, Y: 0, Motion: true}}, config.TickTime)
	if _, _, ok := c.pointer.Pointer(); ok {
		t.Error("mouse outside the canvas moved the pointer")
	}

	frame(c, input.Input{Mouse: &input.Mouse{X: 7, Y: 0, Motion: true}}, config.TickTime)
	x, y, ok := c.pointer.Pointer()
	if !ok || x != 0 || y != 0 {
		t.Errorf("pointer = (%v, %v, %v), want (0, 0)", x, y, ok)
	}
	want := math.Atan2(-config.CoreY, -config.CoreX)
	if math.Abs(c.state.steerAngle-want) > 1e-9 {
		t.Errorf("steer angle = %v, want %v", c.state.steerAngle, want)
	}
}

func TestResultAliasEntry(t *testing.T) {
	gs := newFakeServer()
	c := newTestClient(t, gs, nil)
	frame(c, input.Input{Space: true}, 0)

	c.ctrl.Stop()
	frame(c, input.Input{}, config.TickTime)
	if c.state.GameState != GameStateResult {
		t.Fatalf("state = %v, want result", c.state.GameState)
	}
	if got := string(c.state.Alias); got != "ALICE" {
		t.Fatalf("prefilled alias = %q", got)
	}

	frame(c, input.Input{Pressed: []byte("q!z"), Quit: true}, config.TickTime)
	if !c.state.Running {
		t.Fatal("typing q on the alias prompt quit")
	}
	if got := string(c.state.Alias); got != "ALICEqz" {
		t.Errorf("alias = %q", got)
	}

	frame(c, input.Input{Backspace: true}, config.TickTime)
	frame(c, input.Input{Enter: true}, config.TickTime)

	if len(gs.submissions) != 1 || gs.submissions[0] != "ALICEq" || gs.scores[0] != 0 {
		t.Fatalf("submissions = %v %v", gs.submissions, gs.scores)
	}
	if !c.state.Submitted || c.state.Rank != 3 {
		t.Errorf("submitted = %v rank = %d", c.state.Submitted, c.state.Rank)
	}

	// Enter still held does not restart; a fresh press does.
	frame(c, input.Input{Enter: true}, config.TickTime)
	if c.state.GameState != GameStateResult {
		t.Fatal("held Enter restarted the session")
	}
	frame(c, input.Input{}, config.TickTime)
	frame(c, input.Input{Space: true}, config.TickTime)
	if c.state.GameState != GameStatePlaying {
		t.Errorf("state = %v, want playing", c.state.GameState)
	}
}

func TestResultAliasLimit(t *testing.T) {
	c := newTestClient(t, newFakeServer(), nil)
	frame(c, input.Input{Space: true}, 0)
	c.ctrl.Stop()
	frame(c, input.Input{}, config.TickTime)

	frame(c, input.Input{Pressed: []byte("ABCDEFGHIJKLMNOP")}, config.TickTime)
	if len(c.state.Alias) != config.MaxAliasLength {
		t.Errorf("alias length = %d, want %d", len(c.state.Alias), config.MaxAliasLength)
	}
}

func TestResultEscapeSkips(t *testing.T) {
	gs := newFakeServer()
	c := newTestClient(t, gs, nil)
	frame(c, input.Input{Space: true}, 0)
	c.ctrl.Stop()
	frame(c, input.Input{}, config.TickTime)

	frame(c, input.Input{Escape: true}, config.TickTime)
	if !c.state.Submitted || !c.state.Skipped {
		t.Error("escape did not skip submission")
	}
	if len(gs.submissions) != 0 {
		t.Errorf("skipped score was submitted: %v", gs.submissions)
	}
}

func TestServerEvents(t *testing.T) {
	gs := newFakeServer()
	c := newTestClient(t, gs, nil)
	frame(c, input.Input{Space: true}, 0)

	gs.handle.EventsCh <- server.ClientEvent{Type: server.EventNewRecord, Alias: "BOB", Score: 9100}
	c.processServerEvents()
	if c.state.recordText != "NEW RECORD: BOB 9100" || c.state.recordTimer <= 0 {
		t.Errorf("record banner = %q (%v)", c.state.recordText, c.state.recordTimer)
	}

	gs.handle.EventsCh <- server.ClientEvent{Type: server.EventServerShutdown}
	c.processServerEvents()
	if c.state.GameState != GameStateShutdown {
		t.Fatalf("state = %v, want shutdown", c.state.GameState)
	}
	if c.ctrl.Phase() != session.PhaseEnded {
		t.Errorf("session phase = %v, want ended", c.ctrl.Phase())
	}

	frame(c, input.Input{}, time.Duration(config.ShutdownDisplaySeconds*float64(time.Second)))
	if c.state.Running {
		t.Error("client still running after the shutdown countdown")
	}

	close(gs.handle.EventsCh)
	c.state.Running = true
	c.processServerEvents()
	if c.state.Running {
		t.Error("closed event channel did not stop the client")
	}
}

func TestDrawStartScreen(t *testing.T) {
	var out bytes.Buffer
	c := newTestClient(t, newFakeServer(), &out)

	if err := c.drawFrame(); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	for _, want := range []string{"TOP AGENTS", "C9_BLABER", "8500", "Online: 2"} {
		if !strings.Contains(s, want) {
			t.Errorf("start screen missing %q", want)
		}
	}
}

func TestDrawPlayingHUD(t *testing.T) {
	var out bytes.Buffer
	c := newTestClient(t, newFakeServer(), &out)
	frame(c, input.Input{Space: true}, 0)

	out.Reset()
	if err := c.drawFrame(); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	for _, want := range []string{"SCORE 0", "T-60", "SYNC   0", "NORMAL", calloutStart} {
		if !strings.Contains(s, want) {
			t.Errorf("HUD missing %q", want)
		}
	}
}

func TestRunExitsWhenInputCloses(t *testing.T) {
	gs := newFakeServer()
	var out bytes.Buffer
	c := newTestClient(t, gs, &out)

	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if !gs.unregistered {
		t.Error("client did not unregister")
	}
	s := out.String()
	if !strings.Contains(s, input.EnableMouse) || !strings.Contains(s, input.DisableMouse) {
		t.Error("mouse reporting not toggled")
	}
}
