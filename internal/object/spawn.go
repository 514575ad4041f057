package object

// IntSource supplies uniform integers in [0, n). *rand.Rand satisfies it.
type IntSource interface {
	Intn(n int) int
}

// EdgePoint picks a spawn point just outside a random edge of the field.
// The coordinate along the edge is uniform and includes both corners.
func EdgePoint(field Screen, offset float64, rng IntSource) (float64, float64) {
	w := field.Width
	h := field.Height

	switch rng.Intn(4) {
	case 0: // Top
		return float64(rng.Intn(w + 1)), -offset
	case 1: // Bottom
		return float64(rng.Intn(w + 1)), float64(h) + offset
	case 2: // Left
		return -offset, float64(rng.Intn(h + 1))
	default: // Right
		return float64(w) + offset, float64(rng.Intn(h + 1))
	}
}
