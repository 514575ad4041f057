// Package web serves the browser client. Each WebSocket connection runs its
// own session, steered by pointer or hand-tracking messages, and receives
// JSON state frames.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/syntaxdefense/internal/leaderboard"
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/loop/server"
	"github.com/tomz197/syntaxdefense/internal/object"
)

// Handler routes the landing page, the WebSocket endpoint, and the leaderboard API.
type Handler struct {
	hub      server.GameServer
	page     string
	logger   *log.Logger
	newRand  func() object.IntSource
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// Options configures a Handler.
type Options struct {
	Page   string // HTML served at /
	Logger *log.Logger
	Rand   func() object.IntSource // Per-connection spawn randomness; nil seeds from the clock
}

// NewHandler creates a handler backed by the shared hub.
func NewHandler(hub server.GameServer, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	newRand := opts.Rand
	if newRand == nil {
		newRand = func() object.IntSource {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}

	h := &Handler{
		hub:     hub,
		page:    opts.Page,
		logger:  logger,
		newRand: newRand,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /{$}", h.servePage)
	h.mux.HandleFunc("GET /ws", h.serveWS)
	h.mux.HandleFunc("GET /api/leaderboard", h.serveLeaderboard)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(h.page))
}

type leaderboardResponse struct {
	Top     []leaderboard.Entry `json:"top"`
	Players int                 `json:"players"`
	Playing int                 `json:"playing"`
	Live    []livePlayerDTO     `json:"live"`
}

type livePlayerDTO struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Brave bool   `json:"brave"`
}

func (h *Handler) serveLeaderboard(w http.ResponseWriter, r *http.Request) {
	snap := h.hub.GetSnapshot()
	resp := leaderboardResponse{
		Top:     snap.TopScores,
		Players: snap.Players,
		Playing: snap.Playing,
		Live:    make([]livePlayerDTO, 0, len(snap.Live)),
	}
	for _, p := range snap.Live {
		resp.Live = append(resp.Live, livePlayerDTO{Name: p.Username, Score: p.Status.Score, Brave: p.Status.Brave})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("leaderboard encode failed", "err", err)
	}
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(config.WebMaxMessageLen)

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "web"
	}
	handle := h.hub.RegisterClient(name)
	defer h.hub.UnregisterClient(handle.ID)

	logger := h.logger.With("user", name, "id", handle.ID)
	logger.Info("websocket connected", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wc := newWSConn(conn, h.hub, handle, h.newRand(), logger)
	go wc.readLoop(ctx, cancel)

	if err := wc.run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, errServerShutdown) {
		logger.Warn("websocket session failed", "err", err)
	}
	logger.Info("websocket disconnected", "score", wc.ctrl.Score())
}
