// Package leaderboard keeps an in-memory ranking of finished sessions.
package leaderboard

import (
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tomz197/syntaxdefense/internal/loop/config"
)

// Entry is one ranked result.
type Entry struct {
	Alias string    `json:"alias"`
	Score int       `json:"score"`
	At    time.Time `json:"at,omitzero"`

	seq uint64 // Insertion order; earlier entries win ties
}

// DefaultEntries are the agents every fresh board starts with.
func DefaultEntries() []Entry {
	return []Entry{
		{Alias: "C9_BLABER", Score: 8500},
		{Alias: "DEV_JUNIE", Score: 8200},
		{Alias: "SUDO_ADMIN", Score: 7900},
		{Alias: "C9_BERSERKER", Score: 7450},
		{Alias: "GIT_PUSH_F", Score: 6800},
	}
}

// Board is a bounded, descending score list. Safe for concurrent use.
type Board struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
	nextSeq uint64
	now     func() time.Time
}

// New creates a board holding at most limit entries (unbounded if limit <= 0),
// seeded with the given entries.
func New(limit int, seed ...Entry) *Board {
	b := &Board{limit: limit, now: time.Now}
	for _, e := range seed {
		b.insert(e)
	}
	return b
}

// NewDefault creates a board seeded with DefaultEntries.
func NewDefault(limit int) *Board {
	return New(limit, DefaultEntries()...)
}

// Submit records a result and returns its 1-based rank, or 0 if it did not
// make the board.
func (b *Board) Submit(alias string, score int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.insert(Entry{Alias: NormalizeAlias(alias), Score: score, At: b.now()})
}

// insert must be called with the lock held (or before the board is shared).
func (b *Board) insert(e Entry) int {
	b.nextSeq++
	e.seq = b.nextSeq
	if e.Alias == "" {
		e.Alias = config.AnonymousAlias
	}

	i, _ := slices.BinarySearchFunc(b.entries, e, compare)
	if b.limit > 0 && i >= b.limit {
		return 0
	}
	b.entries = slices.Insert(b.entries, i, e)
	if b.limit > 0 && len(b.entries) > b.limit {
		b.entries = b.entries[:b.limit]
	}
	return i + 1
}

// compare orders by score descending, then by insertion.
func compare(a, b Entry) int {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	}
	return 0
}

// Top returns a copy of the best n entries (all of them if n <= 0).
func (b *Board) Top(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n <= 0 || n > len(b.entries) {
		n = len(b.entries)
	}
	return slices.Clone(b.entries[:n])
}

// Len returns the number of ranked entries.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Qualifies reports whether score would make the board.
func (b *Board) Qualifies(score int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.limit <= 0 || len(b.entries) < b.limit {
		return true
	}
	return score > b.entries[len(b.entries)-1].Score
}

// NormalizeAlias trims, upper-cases and truncates an alias to MaxAliasLength runes.
// Blank aliases become AnonymousAlias.
func NormalizeAlias(alias string) string {
	alias = strings.ToUpper(strings.TrimSpace(alias))
	if alias == "" {
		return config.AnonymousAlias
	}
	if utf8.RuneCountInString(alias) > config.MaxAliasLength {
		alias = string([]rune(alias)[:config.MaxAliasLength])
	}
	return alias
}
