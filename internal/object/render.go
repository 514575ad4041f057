package object

import (
	"math"

	"github.com/tomz197/syntaxdefense/internal/draw"
)

// Logical sizes of each kind on the field.
const (
	lightRadius = 12.0
	heavyRadius = 18.0
	fastSize    = 16.0
	tokenSize   = 14.0
)

// Color returns the palette color an entity of this kind is drawn in.
func (k Kind) Color() draw.Color {
	switch k {
	case ThreatHeavy:
		return draw.ColorOrange
	case ThreatFast:
		return draw.ColorPink
	case Token:
		return draw.ColorGreen
	default:
		return draw.ColorWhite
	}
}

// Draw renders the entity onto the canvas in field coordinates.
// Light threats are rings, heavy threats filled discs, fast threats arrowheads
// pointing along their heading, and tokens diamonds.
func (e Entity) Draw(c *draw.Canvas) {
	col := e.Kind.Color()
	switch e.Kind {
	case ThreatHeavy:
		c.DrawCircle(e.X, e.Y, heavyRadius, col, true)
	case ThreatFast:
		heading := math.Atan2(e.DirY, e.DirX)
		pts := c.BorrowPoints(3)
		for i, off := range [3]float64{0, 2.5, -2.5} {
			r := fastSize
			if i > 0 {
				r = fastSize * 0.7
			}
			pts[i] = draw.Point{X: e.X + r*math.Cos(heading+off), Y: e.Y + r*math.Sin(heading+off)}
		}
		c.DrawPolygon(pts, col, true)
	case Token:
		pts := c.BorrowPoints(4)
		pts[0] = draw.Point{X: e.X, Y: e.Y - tokenSize}
		pts[1] = draw.Point{X: e.X + tokenSize, Y: e.Y}
		pts[2] = draw.Point{X: e.X, Y: e.Y + tokenSize}
		pts[3] = draw.Point{X: e.X - tokenSize, Y: e.Y}
		c.DrawPolygon(pts, col, true)
	default:
		c.DrawCircle(e.X, e.Y, lightRadius, col, false)
	}
}
