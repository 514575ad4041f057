package client

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/syntaxdefense/internal/draw"
	"github.com/tomz197/syntaxdefense/internal/input"
	"github.com/tomz197/syntaxdefense/internal/leaderboard"
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/loop/server"
	"github.com/tomz197/syntaxdefense/internal/object"
	"github.com/tomz197/syntaxdefense/internal/session"
)

// maxFrameLag caps how much simulation time one frame may catch up on.
const maxFrameLag = 250 * time.Millisecond

// fieldAspect is the width/height ratio the canvas keeps.
const fieldAspect = float64(config.FieldWidth) / float64(config.FieldHeight)

// Client handles the session, rendering, and input for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	state        *ClientState
	ctrl         *session.Controller
	pointer      *session.LatestPointer
	announcer    *Announcer
	effects      *Effects
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Listeners    []session.Listener // Extra session listeners, e.g. audio
	Rand         object.IntSource   // Spawn randomness; nil seeds from the clock
	Logger       *log.Logger
}

// NewClient creates a new client connected to the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("user", opts.Username)

	handle := gs.RegisterClient(opts.Username)
	pointer := &session.LatestPointer{}
	announcer := &Announcer{}
	effects := NewEffects(object.NewScreen(config.FieldWidth, config.FieldHeight))

	listeners := append([]session.Listener{announcer, effects}, opts.Listeners...)
	ctrl := session.NewController(session.Options{
		Rand:      opts.Rand,
		Pointer:   pointer,
		Listeners: listeners,
		Logger:    logger,
	})

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	vp := draw.Fit(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight, fieldAspect)
	canvas := draw.NewScaledCanvas(vp.Cols, vp.Rows, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(vp.OffsetCol, vp.OffsetRow)
	chunkWriter := draw.NewChunkWriter(w, vp.OffsetCol, vp.OffsetRow)

	return &Client{
		server:       gs,
		handle:       handle,
		state:        NewClientState(),
		ctrl:         ctrl,
		pointer:      pointer,
		announcer:    announcer,
		effects:      effects,
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
		logger:       logger,
	}
}

// Run starts the client loop. Blocks until the client disconnects or server stops.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	io.WriteString(c.writer, input.EnableMouse)
	defer draw.ShowCursor(c.writer)
	defer io.WriteString(c.writer, input.DisableMouse)
	draw.ClearScreen(c.writer)

	c.logger.Info("client connected", "id", c.handle.ID)
	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		// Process input
		c.processInput()

		// Check for server events
		c.processServerEvents()

		// Handle screen resize
		c.updateScreen()

		c.update()

		// Draw frame
		if err := c.drawFrame(); err != nil {
			c.ctrl.Stop()
			c.server.UnregisterClient(c.handle.ID)
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.ctrl.Stop()

	// Unregister from server
	c.server.UnregisterClient(c.handle.ID)
	c.logger.Info("client disconnected", "id", c.handle.ID, "score", c.ctrl.Score())

	draw.ClearScreen(c.writer)
	return nil
}

// update advances the current screen by one frame.
func (c *Client) update() {
	switch c.state.GameState {
	case GameStateStart:
		c.updateStartState()
	case GameStatePlaying:
		c.updatePlayingState()
	case GameStateResult:
		c.updateResultState()
	case GameStateShutdown:
		c.updateShutdownState()
	}

	if c.state.recordTimer > 0 {
		c.state.recordTimer -= c.state.delta.Seconds()
	}

	c.server.SendStatus(c.handle.ID, server.ClientStatus{
		Phase: c.ctrl.Phase(),
		Score: c.ctrl.Score(),
		Brave: c.ctrl.Mode().IsBrave(),
	})
}

// processInput reads input and feeds the pointer.
func (c *Client) processInput() {
	c.state.prevInput = c.state.Input
	c.state.Input = input.ReadInput(c.inputStream)
	in := c.state.Input

	if len(in.Pressed) > 0 || in.Mouse != nil || in.Left || in.Right || in.Up || in.Down {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if in.Closed || c.quitRequested() {
		c.state.Running = false
	}

	if c.state.GameState == GameStatePlaying {
		c.steer()
	}
}

// quitRequested reports a quit key. On the alias prompt q is a letter, so
// Escape is the only way out there.
func (c *Client) quitRequested() bool {
	if c.state.GameState == GameStateResult && !c.state.Submitted {
		return false
	}
	return c.state.Input.Quit
}

// steer moves the pointer from the mouse or, failing that, the keyboard.
// The mouse wins whenever it reported this frame.
func (c *Client) steer() {
	in := c.state.Input
	if m := in.Mouse; m != nil && !m.Wheel {
		if x, y, ok := c.canvas.TerminalToLogical(m.X, m.Y); ok {
			c.pointer.Set(x, y)
			c.state.steerAngle = math.Atan2(y-config.CoreY, x-config.CoreX)
		}
		return
	}

	moved := true
	switch {
	case c.state.pressed(keyUp):
		c.state.steerAngle = -math.Pi / 2
	case c.state.pressed(keyDown):
		c.state.steerAngle = math.Pi / 2
	case in.Left && !in.Right:
		c.state.steerAngle -= config.KeyboardTurnRate * c.state.delta.Seconds()
	case in.Right && !in.Left:
		c.state.steerAngle += config.KeyboardTurnRate * c.state.delta.Seconds()
	default:
		moved = false
	}
	if moved {
		c.pointer.Set(orbitPoint(c.state.steerAngle))
	}
}

// orbitPoint is the synthetic pointer position for keyboard steering.
func orbitPoint(angle float64) (float64, float64) {
	return config.CoreX + config.KeyboardRadius*math.Cos(angle),
		config.CoreY + config.KeyboardRadius*math.Sin(angle)
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventServerShutdown:
				c.ctrl.Stop()
				c.state.GameState = GameStateShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			case server.EventNewRecord:
				c.state.recordText = fmt.Sprintf("NEW RECORD: %s %d", event.Alias, event.Score)
				c.state.recordTimer = config.RecordBannerSeconds
			}
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	vp := draw.Fit(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight, fieldAspect)

	if vp.Cols != c.canvas.TerminalWidth() || vp.Rows != c.canvas.TerminalHeight() ||
		vp.OffsetCol != c.canvas.OffsetCol() || vp.OffsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.Resize(vp.Cols, vp.Rows)
		c.canvas.ForceRedraw()
	}

	c.canvas.SetOffset(vp.OffsetCol, vp.OffsetRow)
	c.chunkWriter.SetOffset(vp.OffsetCol, vp.OffsetRow)
}

// updateStartState handles the attract screen.
func (c *Client) updateStartState() {
	if c.state.pressed(keySpace) || c.state.pressed(keyEnter) || c.state.Input.Click {
		c.startGame()
	}
}

// startGame starts a fresh session.
func (c *Client) startGame() {
	c.inputStream.Reset()
	c.announcer.Reset()
	c.effects.Reset()
	c.pointer.Clear()
	c.state.steerAngle = 0
	c.state.accumulator = 0

	if err := c.ctrl.Start(); err != nil {
		c.logger.Warn("start rejected", "err", err)
		return
	}
	c.state.GameState = GameStatePlaying
}

// updatePlayingState steps the session in fixed ticks.
func (c *Client) updatePlayingState() {
	c.state.accumulator += min(c.state.delta, maxFrameLag)
	for c.state.accumulator >= config.TickTime && c.ctrl.Phase() == session.PhaseRunning {
		c.ctrl.Step(config.TickTime)
		c.announcer.Update(config.TickTime)
		c.effects.Update(config.TickTime)
		c.state.accumulator -= config.TickTime
	}

	if c.ctrl.Phase() == session.PhaseEnded {
		c.finishGame()
	}
}

// finishGame moves to the result screen with the alias prefilled from the login name.
func (c *Client) finishGame() {
	score := c.ctrl.Score()
	c.logger.Info("session ended", "score", score)

	c.inputStream.Reset()
	c.state.FinalScore = score
	c.state.Submitted = false
	c.state.Skipped = false
	c.state.Rank = 0
	c.state.Alias = c.state.Alias[:0]
	for _, r := range leaderboard.NormalizeAlias(c.username) {
		if r < 0x80 && aliasByte(byte(r)) {
			c.state.Alias = append(c.state.Alias, byte(r))
		}
	}
	c.state.GameState = GameStateResult
}

// aliasByte reports whether b may appear in a typed alias.
func aliasByte(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_' || b == '-'
}

// updateResultState handles alias entry, then waits for a restart.
func (c *Client) updateResultState() {
	c.announcer.Update(c.state.delta)
	c.effects.Update(c.state.delta)

	if c.state.Submitted {
		if c.state.pressed(keySpace) || c.state.pressed(keyEnter) || c.state.Input.Click {
			c.startGame()
		}
		return
	}

	for _, b := range c.state.Input.Pressed {
		if aliasByte(b) && len(c.state.Alias) < config.MaxAliasLength {
			c.state.Alias = append(c.state.Alias, b)
		}
	}
	if c.state.pressed(keyBackspace) && len(c.state.Alias) > 0 {
		c.state.Alias = c.state.Alias[:len(c.state.Alias)-1]
	}

	switch {
	case c.state.pressed(keyEnter):
		c.state.Rank = c.server.SubmitScore(c.handle.ID, string(c.state.Alias), c.state.FinalScore)
		c.state.Submitted = true
		c.inputStream.Reset()
	case c.state.pressed(keyEscape):
		c.state.Skipped = true
		c.state.Submitted = true
		c.inputStream.Reset()
	}
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
