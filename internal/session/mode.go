package session

import (
	"fmt"
	"time"
)

// ModeKind tags the active Mode variant.
type ModeKind int

const (
	ModeNormal ModeKind = iota
	ModeBrave
)

// Mode is either Normal or Brave with a remaining duration.
// Remaining is only meaningful for Brave.
type Mode struct {
	Kind      ModeKind
	Remaining time.Duration
}

// Normal returns the Normal mode.
func Normal() Mode {
	return Mode{Kind: ModeNormal}
}

// Brave returns a Brave mode with the given remaining time.
func Brave(remaining time.Duration) Mode {
	return Mode{Kind: ModeBrave, Remaining: remaining}
}

// IsBrave reports whether threat spawning is suspended.
func (m Mode) IsBrave() bool {
	return m.Kind == ModeBrave
}

func (m Mode) String() string {
	if m.Kind == ModeBrave {
		return fmt.Sprintf("brave(%dms)", m.Remaining.Milliseconds())
	}
	return "normal"
}
