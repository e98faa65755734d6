package geometry

import "math"

// ContainsPoint reports whether p lies inside the polygon using the even-odd
// (alternate) fill rule. The polygon is implicitly closed from the last vertex
// back to the first.
func ContainsPoint(polygon []Point, p Point) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	x := float64(p.X)
	y := float64(p.Y)
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := float64(polygon[i].X), float64(polygon[i].Y)
		xj, yj := float64(polygon[j].X), float64(polygon[j].Y)

		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PolygonArea returns the absolute area enclosed by the polygon (shoelace
// formula). Self-intersecting polygons report the signed sum's magnitude.
func PolygonArea(polygon []Point) float64 {
	n := len(polygon)
	if n < 3 {
		return 0
	}
	var sum int
	for i := 0; i < n; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(float64(sum)) / 2
}

// InsertPoint returns a copy of polygon with p inserted before index i.
// Out-of-range indices return the polygon unchanged.
func InsertPoint(polygon []Point, i int, p Point) []Point {
	if i < 0 || i > len(polygon) {
		return polygon
	}
	out := make([]Point, 0, len(polygon)+1)
	out = append(out, polygon[:i]...)
	out = append(out, p)
	out = append(out, polygon[i:]...)
	return out
}

// RemovePoint returns a copy of polygon without the vertex at index i.
// Out-of-range indices return the polygon unchanged.
func RemovePoint(polygon []Point, i int) []Point {
	if i < 0 || i >= len(polygon) {
		return polygon
	}
	out := make([]Point, 0, len(polygon)-1)
	out = append(out, polygon[:i]...)
	out = append(out, polygon[i+1:]...)
	return out
}
