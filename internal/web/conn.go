package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/syntaxdefense/internal/leaderboard"
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/loop/server"
	"github.com/tomz197/syntaxdefense/internal/object"
	"github.com/tomz197/syntaxdefense/internal/session"
)

// errServerShutdown ends a connection when the hub shuts down.
var errServerShutdown = errors.New("server shutting down")

// wsConn is one browser session. The read loop only publishes pointer
// positions and queues commands; run owns the controller and every write.
type wsConn struct {
	conn    *websocket.Conn
	hub     server.GameServer
	handle  *server.ClientHandle
	ctrl    *session.Controller
	pointer *session.LatestPointer
	events  *eventLog
	cmds    chan inboundMessage
	logger  *log.Logger

	lastPhase session.Phase
	submitted bool
}

func newWSConn(conn *websocket.Conn, hub server.GameServer, handle *server.ClientHandle, rng object.IntSource, logger *log.Logger) *wsConn {
	pointer := &session.LatestPointer{}
	events := &eventLog{}
	return &wsConn{
		conn:    conn,
		hub:     hub,
		handle:  handle,
		pointer: pointer,
		events:  events,
		cmds:    make(chan inboundMessage, 8),
		logger:  logger,
		ctrl: session.NewController(session.Options{
			Rand:      rng,
			Pointer:   pointer,
			Listeners: []session.Listener{events},
			Logger:    logger,
		}),
	}
}

// readLoop decodes inbound messages until the connection fails.
func (c *wsConn) readLoop(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	field := c.ctrl.Field()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", "err", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("ignoring malformed message", "err", err)
			continue
		}

		switch msg.Type {
		case msgPointer:
			c.pointer.Set(clampToField(msg.X, msg.Y, field))
		case msgHand:
			c.pointer.Set(MapHand(msg.X, msg.Y, field))
		case msgLost:
			c.pointer.Clear()
		case msgStart, msgSubmit:
			select {
			case c.cmds <- msg:
			case <-ctx.Done():
				return
			}
		default:
			c.logger.Debug("ignoring message", "type", msg.Type)
		}
	}
}

// run drives the session at the fixed tick rate and streams state frames.
func (c *wsConn) run(ctx context.Context) error {
	defer c.ctrl.Stop()

	if err := c.write(newHello(c.ctrl.Field())); err != nil {
		return err
	}

	ticker := time.NewTicker(config.TickTime)
	defer ticker.Stop()
	sendEvery := uint64(max(1, config.TickRate/config.WebStateRate))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-c.handle.EventsCh:
			if !ok || ev.Type == server.EventServerShutdown {
				_ = c.write(errorMsg{Type: "error", Error: errServerShutdown.Error()})
				return errServerShutdown
			}
			if ev.Type == server.EventNewRecord {
				if err := c.write(resultMsg{Type: "record", Alias: ev.Alias, Score: ev.Score, Rank: 1}); err != nil {
					return err
				}
			}

		case msg := <-c.cmds:
			if err := c.handleCommand(msg); err != nil {
				return err
			}

		case <-ticker.C:
			c.ctrl.Step(config.TickTime)
			snap := c.ctrl.Snapshot()

			changed := snap.Phase != c.lastPhase
			c.lastPhase = snap.Phase
			if changed || (snap.Phase == session.PhaseRunning && snap.ElapsedTicks%sendEvery == 0) {
				if err := c.write(newStateMsg(snap, c.events.drain())); err != nil {
					return err
				}
			}

			c.hub.SendStatus(c.handle.ID, server.ClientStatus{
				Phase: snap.Phase,
				Score: snap.Score,
				Brave: snap.Mode.IsBrave(),
			})
		}
	}
}

// handleCommand applies start and submit requests on the tick goroutine.
func (c *wsConn) handleCommand(msg inboundMessage) error {
	switch msg.Type {
	case msgStart:
		if err := c.ctrl.Start(); err != nil {
			return c.write(errorMsg{Type: "error", Error: err.Error()})
		}
		c.events.drain()
		c.submitted = false
		return c.write(newStateMsg(c.ctrl.Snapshot(), nil))

	case msgSubmit:
		if c.ctrl.Phase() != session.PhaseEnded || c.submitted {
			return c.write(errorMsg{Type: "error", Error: "nothing to submit"})
		}
		c.submitted = true
		score := c.ctrl.Score()
		rank := c.hub.SubmitScore(c.handle.ID, msg.Alias, score)
		return c.write(resultMsg{
			Type:  "result",
			Alias: leaderboard.NormalizeAlias(msg.Alias),
			Score: score,
			Rank:  rank,
		})
	}
	return nil
}

func (c *wsConn) write(v any) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(config.WebWriteTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("write %T: %w", v, err)
	}
	return nil
}

// eventLog buffers resolutions between state frames. It is only touched by
// the tick goroutine.
type eventLog struct {
	session.NopListener
	pending []eventDTO
}

func (l *eventLog) OnEntityResolved(e object.Entity, outcome session.Outcome) {
	l.pending = append(l.pending, eventDTO{Kind: e.Kind.String(), Outcome: outcome.String(), X: e.X, Y: e.Y})
}

// drain returns the buffered events and starts a new buffer.
func (l *eventLog) drain() []eventDTO {
	out := l.pending
	l.pending = nil
	return out
}
