// Package server hosts the state shared by every connected client: the client
// registry, live session statuses, and the leaderboard. Each client runs its
// own session; the server never simulates gameplay.
package server

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/syntaxdefense/internal/leaderboard"
	"github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/session"
)

// GameServer is the interface clients use to communicate with the game server.
// Decouples the Client from the concrete Server implementation, enabling
// testing and potential network-based server implementations.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	SendStatus(clientID int, status ClientStatus)
	SubmitScore(clientID int, alias string, score int) int
	GetSnapshot() *Snapshot
}

// Server manages the shared state and fans events out to clients.
type Server struct {
	board        *leaderboard.Board
	topN         int
	snapshot     atomic.Pointer[Snapshot]
	clients      map[int]*ClientHandle
	nextClientID int
	statusChan   chan clientStatus
	registerCh   chan *ClientHandle
	unregisterCh chan int
	mu           sync.RWMutex
	logger       *log.Logger
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string           // Display name for this client
	Status   ClientStatus     // Last reported session status
	EventsCh chan ClientEvent // Events sent to client (shutdown, records)
}

// clientStatus is a status update from a specific client.
type clientStatus struct {
	ClientID int
	Status   ClientStatus
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type  ClientEventType
	Alias string // For record events
	Score int    // For record events
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
	EventNewRecord                      // Someone took first place on the leaderboard
)

// Options configures a Server.
type Options struct {
	Board  *leaderboard.Board // Defaults to a board seeded with the default entries
	TopN   int                // Leaderboard entries published in snapshots
	Logger *log.Logger
}

// NewServer creates a new game server.
func NewServer(opts Options) *Server {
	board := opts.Board
	if board == nil {
		board = leaderboard.NewDefault(0)
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = config.LeaderboardSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		board:        board,
		topN:         topN,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		statusChan:   make(chan clientStatus, 256),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
		logger:       logger,
	}

	// Create initial snapshot
	s.createSnapshot()

	return s
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(config.ServerTickTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Process registrations/unregistrations
		s.processRegistrations()

		// Collect all pending status reports
		s.collectStatuses()

		// Create new snapshot for clients
		s.createSnapshot()
	}
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	// Notify all connected clients about the shutdown
	s.broadcast(ClientEvent{Type: EventServerShutdown}, 0)

	// Wait for all clients to disconnect, or timeout
	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			s.logger.Warn("shutdown timed out", "clients", s.ClientCount())
			return
		case <-ticker.C:
			s.processRegistrations()
			if s.ClientCount() == 0 {
				return
			}
		}
	}
}

// ClientCount returns the number of registered clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// RegisterClient registers a new client with the given username and returns its handle.
// The client becomes visible to others on the next server tick.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
	}

	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client from the server.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// SendStatus reports a client's session status. Never blocks.
func (s *Server) SendStatus(clientID int, status ClientStatus) {
	select {
	case s.statusChan <- clientStatus{ClientID: clientID, Status: status}:
	default:
		// Status channel full, drop update
	}
}

// SubmitScore records a finished session on the leaderboard and returns its
// rank (0 if it did not place). Taking first place notifies every other client.
func (s *Server) SubmitScore(clientID int, alias string, score int) int {
	alias = leaderboard.NormalizeAlias(alias)
	if !s.board.Qualifies(score) {
		s.logger.Debug("score below the board", "client", clientID, "alias", alias, "score", score)
		return 0
	}
	rank := s.board.Submit(alias, score)
	s.logger.Info("score submitted", "client", clientID, "alias", alias, "score", score, "rank", rank)

	if rank == 1 {
		s.broadcast(ClientEvent{Type: EventNewRecord, Alias: alias, Score: score}, clientID)
	}
	s.createSnapshot()
	return rank
}

// GetSnapshot returns the current snapshot.
func (s *Server) GetSnapshot() *Snapshot {
	return s.snapshot.Load()
}


// broadcast sends ev to every client except skipID without blocking.
func (s *Server) broadcast(ev ClientEvent, skipID int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, handle := range s.clients {
		if id == skipID {
			continue
		}
		select {
		case handle.EventsCh <- ev:
		default:
		}
	}
}

// processRegistrations handles pending client registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
			s.logger.Debug("client registered", "id", handle.ID, "user", handle.Username)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[clientID]; ok {
				close(handle.EventsCh)
				delete(s.clients, clientID)
			}
			s.mu.Unlock()
			s.logger.Debug("client unregistered", "id", clientID)
		default:
			return
		}
	}
}

// collectStatuses applies all pending status reports.
func (s *Server) collectStatuses() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		select {
		case cs := <-s.statusChan:
			if handle, ok := s.clients[cs.ClientID]; ok {
				handle.Status = cs.Status
			}
		default:
			return
		}
	}
}

// createSnapshot creates an immutable snapshot of the shared state.
func (s *Server) createSnapshot() {
	s.mu.RLock()
	snapshot := &Snapshot{
		Players:   len(s.clients),
		TopScores: s.board.Top(s.topN),
	}
	for _, handle := range s.clients {
		if handle.Status.Phase != session.PhaseRunning {
			continue
		}
		snapshot.Live = append(snapshot.Live, LivePlayer{
			ID:       handle.ID,
			Username: handle.Username,
			Status:   handle.Status,
		})
	}
	s.mu.RUnlock()

	snapshot.Playing = len(snapshot.Live)
	slices.SortFunc(snapshot.Live, func(a, b LivePlayer) int {
		if c := cmp.Compare(b.Status.Score, a.Status.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	s.snapshot.Store(snapshot)
}
