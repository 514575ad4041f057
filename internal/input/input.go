// Package input turns a raw terminal byte stream into per-frame key and mouse state.
package input

import (
	"bufio"
	"bytes"
	"strconv"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// Terminal control sequences for SGR any-motion mouse reporting.
const (
	EnableMouse  = "\x1b[?1003h\x1b[?1006h"
	DisableMouse = "\x1b[?1003l\x1b[?1006l"
)

// maxPending bounds how many bytes of an unterminated escape sequence are carried
// into the next frame before they are dropped as garbage.
const maxPending = 32

// Mouse is a decoded SGR mouse report. X and Y are 0-based terminal cells.
type Mouse struct {
	X, Y    int
	Button  int  // 0 left, 1 middle, 2 right, 3 none
	Pressed bool // false for release reports
	Motion  bool
	Wheel   bool
}

// Input represents the current frame's input state.
type Input struct {
	Quit      bool
	Left      bool
	Right     bool
	Up        bool
	Down      bool
	Space     bool
	Enter     bool
	Backspace bool
	Delete    bool
	Escape    bool
	Click     bool   // Left button pressed this frame
	Mouse     *Mouse // Most recent mouse report this frame, if any
	Pressed   []byte // Printable bytes typed this frame, in order
	Closed    bool   // The underlying reader is exhausted
}

// keyState tracks the last time each key was pressed.
type keyState struct {
	quit      time.Time
	left      time.Time
	right     time.Time
	up        time.Time
	down      time.Time
	space     time.Time
	enter     time.Time
	backspace time.Time
	delete_   time.Time
	escape    time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch      chan byte
	state   keyState
	pending []byte
	closed  bool
	now     func() time.Time
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := newStream()
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

func newStream() *Stream {
	return &Stream{
		ch:  make(chan byte, 128),
		now: time.Now,
	}
}

// Reset forgets held keys and any partial escape sequence, so a key pressed on
// one screen does not leak into the next.
func (s *Stream) Reset() {
	s.state = keyState{}
	s.pending = s.pending[:0]
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles escape sequences for arrow keys and mouse reports, and accumulates all pressed keys.
// Uses key state persistence to allow detecting simultaneous key combinations.
func ReadInput(s *Stream) Input {
	now := s.now()
	buf := append([]byte(nil), s.pending...)
	s.pending = s.pending[:0]

	// Drain all available bytes
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	input := Input{Closed: s.closed}

	// Parse the collected bytes and update key state timestamps
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+1 < len(buf) && buf[i+1] == '[' {
			n, complete := s.parseCSI(buf[i:], now, &input)
			if !complete {
				if len(buf)-i <= maxPending {
					s.pending = append(s.pending, buf[i:]...)
				}
				break
			}
			i += n - 1
			continue
		}

		// Single byte handling - update key state
		applyByteToState(&s.state, b, now)
		if b >= 0x20 && b < 0x7f {
			input.Pressed = append(input.Pressed, b)
		}
	}

	// Build input from key state - keys are "pressed" if seen within hold duration
	input.Quit = now.Sub(s.state.quit) < keyHoldDuration
	input.Left = now.Sub(s.state.left) < keyHoldDuration
	input.Right = now.Sub(s.state.right) < keyHoldDuration
	input.Up = now.Sub(s.state.up) < keyHoldDuration
	input.Down = now.Sub(s.state.down) < keyHoldDuration
	input.Space = now.Sub(s.state.space) < keyHoldDuration
	input.Enter = now.Sub(s.state.enter) < keyHoldDuration
	input.Backspace = now.Sub(s.state.backspace) < keyHoldDuration
	input.Delete = now.Sub(s.state.delete_) < keyHoldDuration
	input.Escape = now.Sub(s.state.escape) < keyHoldDuration

	return input
}

// parseCSI consumes one CSI sequence starting at seq[0] == ESC. It returns the
// number of bytes consumed, or complete=false if the sequence is cut short.
func (s *Stream) parseCSI(seq []byte, now time.Time, input *Input) (int, bool) {
	if len(seq) < 3 {
		return 0, false
	}

	switch seq[2] {
	case 'A': // Up arrow
		s.state.up = now
		return 3, true
	case 'B': // Down arrow
		s.state.down = now
		return 3, true
	case 'C': // Right arrow
		s.state.right = now
		return 3, true
	case 'D': // Left arrow
		s.state.left = now
		return 3, true
	case '<':
		end := bytes.IndexAny(seq[3:], "Mm")
		if end < 0 {
			return 0, false
		}
		n := 3 + end + 1
		if m, ok := ParseSGRMouse(seq[:n]); ok {
			input.Mouse = &m
			if m.Pressed && m.Button == 0 && !m.Motion && !m.Wheel {
				input.Click = true
			}
		}
		return n, true
	}

	// Unknown CSI: skip parameters up to the final byte.
	for i := 2; i < len(seq); i++ {
		if seq[i] >= 0x40 && seq[i] <= 0x7e {
			return i + 1, true
		}
	}
	return 0, false
}

// ParseSGRMouse decodes "ESC [ < b ; x ; y M|m". Coordinates are returned 0-based.
func ParseSGRMouse(seq []byte) (Mouse, bool) {
	if len(seq) < 9 || seq[0] != '\x1b' || seq[1] != '[' || seq[2] != '<' {
		return Mouse{}, false
	}
	final := seq[len(seq)-1]
	if final != 'M' && final != 'm' {
		return Mouse{}, false
	}

	parts := bytes.Split(seq[3:len(seq)-1], []byte{';'})
	if len(parts) != 3 {
		return Mouse{}, false
	}
	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(string(p))
		if err != nil || v < 0 {
			return Mouse{}, false
		}
		vals[i] = v
	}
	if vals[1] < 1 || vals[2] < 1 {
		return Mouse{}, false
	}

	code := vals[0]
	return Mouse{
		X:       vals[1] - 1,
		Y:       vals[2] - 1,
		Button:  code & 3,
		Pressed: final == 'M',
		Motion:  code&32 != 0,
		Wheel:   code&64 != 0,
	}, true
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', '\x03':
		state.quit = now
	case 'a', 'A', 'j', 'J':
		state.left = now
	case 'd', 'D', 'l', 'L':
		state.right = now
	case 'w', 'W', 'i', 'I':
		state.up = now
	case 's', 'S', 'k', 'K':
		state.down = now
	case ' ':
		state.space = now
	case '\n', '\r':
		state.enter = now
	case '\b':
		state.backspace = now
	case '\x7f':
		state.delete_ = now
	case '\x1b':
		state.escape = now
	}
}
