package draw

import "strconv"

// Color is an xterm 256-color palette index. The zero value is "no pixel".
type Color uint8

// Palette used by the game renderers.
const (
	ColorNone   Color = 0
	ColorWhite  Color = 15
	ColorBlue   Color = 39  // Shield, HUD frame
	ColorCyan   Color = 51  // Core
	ColorGreen  Color = 42  // Tokens, terminal text
	ColorOrange Color = 208 // Heavy threats
	ColorPink   Color = 197 // Fast threats, alerts
	ColorGold   Color = 220 // Brave shield, top rank
	ColorRed    Color = 196 // Breach flash, panic timer
	ColorDim    Color = 24  // Grid lines, empty meter
	ColorGrey   Color = 240
)

// ANSI attribute sequences.
const (
	ColorReset = "\033[0m"
	Bold       = "\033[1m"
)

// Fg returns the escape sequence selecting c as the foreground color.
func Fg(c Color) string {
	return "\033[38;5;" + strconv.Itoa(int(c)) + "m"
}

// Bg returns the escape sequence selecting c as the background color.
func Bg(c Color) string {
	return "\033[48;5;" + strconv.Itoa(int(c)) + "m"
}

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockLight     = '░'
	BlockMedium    = '▒'
	BlockDark      = '▓'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Bar renders a horizontal gauge of width cells filled to value/limit.
func Bar(value, limit, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if limit > 0 {
		filled = min(width, max(0, value*width/limit))
	}
	buf := make([]rune, width)
	for i := range buf {
		if i < filled {
			buf[i] = BlockFull
		} else {
			buf[i] = BlockLight
		}
	}
	return string(buf)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
