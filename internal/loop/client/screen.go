package client

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomz197/syntaxdefense/internal/draw"
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/loop/server"
	"github.com/tomz197/syntaxdefense/internal/session"
)

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On game state or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	snap := c.ctrl.Snapshot()
	if (c.state.GameState == GameStatePlaying || c.state.GameState == GameStateResult) && !c.state.isInactive {
		c.drawField(snap)
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	// Draw UI overlay
	c.drawUI(snap, c.server.GetSnapshot())

	return c.chunkWriter.Flush()
}

// drawField draws the core, the shield, and every live entity.
func (c *Client) drawField(snap session.Snapshot) {
	cv := c.canvas

	coreColor := draw.ColorCyan
	if c.announcer.Flashing() {
		coreColor = draw.ColorRed
	}
	cv.DrawCircle(config.CoreX, config.CoreY, config.BreachRadius, coreColor, true)
	cv.DrawCircle(config.CoreX, config.CoreY, config.ShieldInnerRadius, draw.ColorDim, false)

	shieldColor := draw.ColorBlue
	if snap.Mode.IsBrave() {
		shieldColor = draw.ColorGold
	}
	start := snap.Shield.CurrentAngle - config.ShieldTolerance
	end := snap.Shield.CurrentAngle + config.ShieldTolerance
	for _, r := range [...]float64{config.ShieldDrawRadius - 3, config.ShieldDrawRadius, config.ShieldDrawRadius + 3} {
		cv.DrawArc(config.CoreX, config.CoreY, r, start, end, shieldColor)
	}

	c.effects.Draw(cv)
	for _, e := range snap.Entities {
		e.Draw(cv)
	}
}

// drawUI draws the game UI overlay.
func (c *Client) drawUI(snap session.Snapshot, shared *server.Snapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerY := termHeight / 2

	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen(termWidth, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(termWidth, centerY)
		return
	}

	switch c.state.GameState {
	case GameStatePlaying:
		c.drawPlayingHUD(termWidth, termHeight, snap)
	case GameStateStart:
		c.drawStartScreen(termWidth, centerY, shared)
	case GameStateResult:
		c.drawResultScreen(termWidth, centerY)
	}

	if c.state.recordTimer > 0 && c.state.recordText != "" {
		c.writeOverlay(termWidth, termHeight-1, draw.ColorGold, c.state.recordText)
	}
}

// writeOverlay writes colored text centered on row and marks the cells dirty
// so the canvas repaints them once the text goes away.
func (c *Client) writeOverlay(termWidth, row int, col draw.Color, text string) {
	width := utf8.RuneCountInString(text)
	startCol := max(1, (termWidth-width)/2+1)
	c.chunkWriter.WriteAt(startCol, row, draw.Fg(col)+draw.Bold+text+draw.ColorReset)
	c.canvas.MarkTextDirty(startCol, row, width)
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(termWidth, centerY int) {
	cw := c.chunkWriter
	cw.WriteCentered(centerY-2, termWidth, "INACTIVITY WARNING")

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	cw.WriteCentered(centerY, termWidth, msg)
	cw.WriteCentered(centerY+2, termWidth, "Press any key to continue")
}

// drawStartScreen draws the attract screen: title, controls, and leaderboard.
func (c *Client) drawStartScreen(termWidth, centerY int, shared *server.Snapshot) {
	cw := c.chunkWriter

	title := "S Y N T A X   D E F E N S E"
	bar := strings.Repeat("═", len(title)+6)
	top := max(1, centerY-10)
	cw.WriteCentered(top, termWidth, "╔"+bar+"╗")
	cw.WriteCentered(top+1, termWidth, "║   "+title+"   ║")
	cw.WriteCentered(top+2, termWidth, "╚"+bar+"╝")
	cw.WriteCentered(top+4, termWidth, "~ Hold the shield. Keep the core alive. ~")

	controlsY := top + 6
	cw.WriteCentered(controlsY, termWidth, "Controls")
	controlLines := []string{
		"Mouse  . . . . . Aim shield",
		"A D / < >  .  Rotate shield",
		"W S / ^ v  . .  Snap up/down",
		"SPACE / Click  . . .  Start",
		"Q  . . . . . . . . . .  Quit",
	}
	for i, line := range controlLines {
		cw.WriteCentered(controlsY+1+i, termWidth, line)
	}

	boardY := controlsY + len(controlLines) + 2
	cw.WriteCentered(boardY, termWidth, "TOP AGENTS")
	for i, entry := range shared.TopScores {
		line := fmt.Sprintf("%d. %-*s %6d", i+1, config.MaxAliasLength, entry.Alias, entry.Score)
		cw.WriteCentered(boardY+1+i, termWidth, line)
	}

	liveY := boardY + len(shared.TopScores) + 2
	live := fmt.Sprintf("Online: %d   Defending: %d", shared.Players, shared.Playing)
	if best, ok := shared.BestLive(); ok {
		live += fmt.Sprintf("   Best live: %s %d", best.Username, best.Status.Score)
	}
	cw.WriteCentered(liveY, termWidth, live)

	// Blinking start prompt
	if time.Now().UnixMilli()/600%2 == 0 {
		cw.WriteCentered(liveY+2, termWidth, ">>  Press SPACE to Start  <<")
	} else {
		cw.WriteCentered(liveY+2, termWidth, strings.Repeat(" ", 28))
	}
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen (since we no longer clear every frame).
func (c *Client) drawPlayingHUD(termWidth, termHeight int, snap session.Snapshot) {
	cw := c.chunkWriter

	// Score (top left)
	scoreText := fmt.Sprintf("SCORE %-7d", snap.Score)
	cw.WriteAt(2, 1, scoreText)
	c.canvas.MarkTextDirty(2, 1, len(scoreText))

	// Timer (top right), red in the final seconds
	timerColor := draw.ColorWhite
	if snap.TimeRemaining <= config.PanicSeconds {
		timerColor = draw.ColorRed
	}
	timerText := fmt.Sprintf("T-%02d", max(0, snap.TimeRemaining))
	timerCol := termWidth - len(timerText) - 1
	cw.WriteAt(timerCol, 1, draw.Fg(timerColor)+timerText+draw.ColorReset)
	c.canvas.MarkTextDirty(timerCol, 1, len(timerText))

	// Charge meter (bottom left)
	meterColor := draw.ColorBlue
	if snap.Mode.IsBrave() {
		meterColor = draw.ColorGold
	}
	barWidth := min(20, max(5, termWidth/5))
	meterText := fmt.Sprintf("SYNC %3d ", snap.ChargeMeter)
	cw.WriteAt(2, termHeight, meterText+draw.Fg(meterColor)+draw.Bar(snap.ChargeMeter, config.MeterMax, barWidth)+draw.ColorReset)
	c.canvas.MarkTextDirty(2, termHeight, len(meterText)+barWidth)

	// Mode (bottom right)
	modeText := "NORMAL     "
	if snap.Mode.IsBrave() {
		modeText = fmt.Sprintf("BRAVE %4.1fs", snap.Mode.Remaining.Seconds())
	}
	modeCol := termWidth - len(modeText) - 1
	cw.WriteAt(modeCol, termHeight, modeText)
	c.canvas.MarkTextDirty(modeCol, termHeight, len(modeText))

	if text, col, ok := c.announcer.Callout(); ok {
		c.writeOverlay(termWidth, max(2, termHeight/4), col, text)
	}
}

// drawResultScreen draws the session result with alias entry.
func (c *Client) drawResultScreen(termWidth, centerY int) {
	cw := c.chunkWriter
	top := centerY - 5

	title := "SESSION TERMINATED."
	c.writeOverlay(termWidth, top, draw.ColorRed, title)
	cw.WriteCentered(top+2, termWidth, fmt.Sprintf("Final score: %d", c.state.FinalScore))

	if !c.state.Submitted {
		alias := string(c.state.Alias)
		prompt := fmt.Sprintf("Enter alias: %-*s", config.MaxAliasLength, alias+"_")
		cw.WriteCentered(top+4, termWidth, prompt)
		cw.WriteCentered(top+6, termWidth, "ENTER submit   ESC skip")
		return
	}

	var rankText string
	switch {
	case c.state.Skipped:
		rankText = "Score not submitted."
	case c.state.Rank == 1:
		rankText = "NEW RECORD! Rank #1 on the leaderboard."
	case c.state.Rank > 0:
		rankText = fmt.Sprintf("Rank #%d on the leaderboard.", c.state.Rank)
	default:
		rankText = "Not in the top scores this time."
	}
	cw.WriteCentered(top+4, termWidth, fmt.Sprintf("%-40s", rankText))
	cw.WriteCentered(top+6, termWidth, fmt.Sprintf("%-23s", ""))

	if time.Now().UnixMilli()/600%2 == 0 {
		cw.WriteCentered(top+8, termWidth, ">>  Press SPACE to Play Again  <<")
	} else {
		cw.WriteCentered(top+8, termWidth, strings.Repeat(" ", 33))
	}
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(termWidth, centerY int) {
	cw := c.chunkWriter
	cw.WriteCentered(centerY-3, termWidth, "SERVER SHUTTING DOWN")
	cw.WriteCentered(centerY-1, termWidth, "The server is restarting for maintenance.")
	cw.WriteCentered(centerY, termWidth, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	cw.WriteCentered(centerY+2, termWidth, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	cw.WriteCentered(centerY+4, termWidth, "Press Q to disconnect now")
}
