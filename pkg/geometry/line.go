package geometry

import "math"

// LineCoefficients returns a, b, c of the line a*x + b*y + c = 0 passing
// through p1 and p2.
func LineCoefficients(p1, p2 Point) (a, b, c float64) {
	a = float64(p1.Y - p2.Y)
	b = float64(p2.X - p1.X)
	c = float64(p1.X*p2.Y - p2.X*p1.Y)
	return a, b, c
}

// DistanceToLine returns the perpendicular distance from p to the infinite
// line through p1 and p2. Coincident endpoints fall back to the distance
// between p and p1.
func DistanceToLine(p, p1, p2 Point) float64 {
	a, b, c := LineCoefficients(p1, p2)
	norm := math.Hypot(a, b)
	if norm == 0 {
		return p.Distance(p1)
	}
	return math.Abs(a*float64(p.X)+b*float64(p.Y)+c) / norm
}
