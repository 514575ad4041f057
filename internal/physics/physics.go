// Package physics provides distance and angle utilities for shield arbitration.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// PointInCircle checks if a point is strictly within radius of a target position.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) < radius*radius
}

// InAnnulus reports whether dist lies strictly between inner and outer.
// Both bounds are exclusive.
func InAnnulus(dist, inner, outer float64) bool {
	return dist > inner && dist < outer
}

// AngleBetween returns the angle of the vector from (x1,y1) to (x2,y2),
// in the range (-π, π].
func AngleBetween(x1, y1, x2, y2 float64) float64 {
	return math.Atan2(y2-y1, x2-x1)
}

// WrapAngle wraps an angle into the half-open range (-π, π].
func WrapAngle(a float64) float64 {
	if a > -math.Pi && a <= math.Pi {
		return a
	}
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// AngleDiff returns the signed shortest rotation from b to a.
func AngleDiff(a, b float64) float64 {
	return WrapAngle(a - b)
}

// SmoothAngle rotates current toward target along the shortest arc,
// closing the given fraction of the remaining error.
func SmoothAngle(current, target, factor float64) float64 {
	return WrapAngle(current + AngleDiff(target, current)*factor)
}

// UnitToward returns the unit vector pointing from (x1,y1) to (x2,y2).
// Coincident points yield the zero vector.
func UnitToward(x1, y1, x2, y2 float64) (float64, float64) {
	d := Distance(x1, y1, x2, y2)
	if d == 0 {
		return 0, 0
	}
	return (x2 - x1) / d, (y2 - y1) / d
}
