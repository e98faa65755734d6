// Package hittest finds which vertex or edge of the annotation geometry lies
// under the pointer.
package hittest

import (
	"math"

	"image-labeler/internal/annotation"
	"image-labeler/pkg/geometry"
)

// DefaultRadius is the vertex pick radius in image pixels.
const DefaultRadius = 6.0

// FindHoveredVertex returns the first vertex within radius of pos. Polygons
// are scanned before boxes, each in index order, so a polygon vertex wins a
// tie with a box corner. NoRef is returned when nothing is close enough.
func FindHoveredVertex(pos geometry.Point, boxes []annotation.BoundingBox, polygons []annotation.Polygon, radius float64) annotation.ShapeRef {
	for i, poly := range polygons {
		for j, pt := range poly.Points {
			if pos.Distance(pt) <= radius {
				return annotation.ShapeRef{Figure: annotation.FigurePoly, Shape: i, Vertex: j}
			}
		}
	}

	for i, b := range boxes {
		for j, corner := range b.Corners() {
			if pos.Distance(corner) <= radius {
				return annotation.ShapeRef{Figure: annotation.FigureRect, Shape: i, Vertex: j}
			}
		}
	}

	return annotation.NoRef
}

// InsertionIndex returns where a new vertex at pos should be inserted into
// the polygon. An edge qualifies when pos lies strictly between its endpoints
// on x or on y; the qualifying edge nearest to pos (perpendicular distance to
// its line) wins and the result is the index after its first endpoint. The
// closing edge is considered last and yields 0. If no edge qualifies the
// result is 0. Polygons with fewer than two points return -1.
func InsertionIndex(pos geometry.Point, polygon []geometry.Point) int {
	n := len(polygon)
	if n < 2 {
		return -1
	}

	index := 0
	best := math.Inf(1)
	for i := 0; i < n-1; i++ {
		p1, p2 := polygon[i], polygon[i+1]
		if !strictlyBetween(pos, p1, p2) {
			continue
		}
		if d := geometry.DistanceToLine(pos, p1, p2); d < best {
			best = d
			index = i + 1
		}
	}

	first, last := polygon[0], polygon[n-1]
	if strictlyBetween(pos, first, last) {
		if d := geometry.DistanceToLine(pos, first, last); d < best {
			index = 0
		}
	}

	return index
}

// strictlyBetween reports whether pos lies strictly inside the span of the
// segment p1-p2 on the x axis or on the y axis.
func strictlyBetween(pos, p1, p2 geometry.Point) bool {
	r := geometry.RectFromCorners(p1, p2).Normalize()
	inX := pos.X > r.Min.X && pos.X < r.Max.X
	inY := pos.Y > r.Min.Y && pos.Y < r.Max.Y
	return inX || inY
}
