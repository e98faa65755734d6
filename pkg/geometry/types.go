// Package geometry provides the basic geometric types used by the annotation engine.
package geometry

import (
	"math"
)

// Point represents a position in image coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point multiplied by factor, rounded to the nearest integer.
// Used to map model coordinates to screen coordinates at the current zoom.
func (p Point) Scale(factor float64) Point {
	return Point{
		X: int(math.Round(float64(p.X) * factor)),
		Y: int(math.Round(float64(p.Y) * factor)),
	}
}

// Div returns the point divided by factor, rounded to the nearest integer.
// Used to map raw pointer positions back into model coordinates.
func (p Point) Div(factor float64) Point {
	if factor == 0 {
		return p
	}
	return Point{
		X: int(math.Round(float64(p.X) / factor)),
		Y: int(math.Round(float64(p.Y) / factor)),
	}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// ToFloat converts to Point2D.
func (p Point) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Round converts to the nearest integer Point.
func (p Point2D) Round() Point {
	return Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Rect is an axis-aligned rectangle stored as two corners. Min is normally
// the top-left corner and Max the bottom-right one, but while a corner is
// being dragged the rectangle may be inverted until Normalize is called.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// RectXYWH creates a rectangle from its top-left corner and size.
func RectXYWH(x, y, width, height int) Rect {
	return Rect{Min: Point{X: x, Y: y}, Max: Point{X: x + width, Y: y + height}}
}

// RectFromCorners creates a rectangle spanning two arbitrary corners without
// reordering them.
func RectFromCorners(a, b Point) Rect {
	return Rect{Min: a, Max: b}
}

// Width returns Max.X - Min.X; negative for an inverted rectangle.
func (r Rect) Width() int {
	return r.Max.X - r.Min.X
}

// Height returns Max.Y - Min.Y; negative for an inverted rectangle.
func (r Rect) Height() int {
	return r.Max.Y - r.Min.Y
}

// IsNormalized reports whether Min is the top-left corner.
func (r Rect) IsNormalized() bool {
	return r.Min.X <= r.Max.X && r.Min.Y <= r.Max.Y
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Normalize returns the rectangle with its corners reordered so that width
// and height are non-negative.
func (r Rect) Normalize() Rect {
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Contains reports whether p lies inside the normalized rectangle.
// The right and bottom edges are exclusive, so a 3x3 rectangle at (2,2)
// covers pixels 2, 3 and 4 on each axis.
func (r Rect) Contains(p Point) bool {
	n := r.Normalize()
	return p.X >= n.Min.X && p.X < n.Max.X &&
		p.Y >= n.Min.Y && p.Y < n.Max.Y
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Scale returns the rectangle with both corners scaled by factor.
func (r Rect) Scale(factor float64) Rect {
	return Rect{Min: r.Min.Scale(factor), Max: r.Max.Scale(factor)}
}

// Corner indices, clockwise from the top-left corner.
const (
	CornerTopLeft = iota
	CornerTopRight
	CornerBottomRight
	CornerBottomLeft
)

// Corner returns one of the four corners (TL, TR, BR, BL) of the rectangle as
// stored, without normalizing it first.
func (r Rect) Corner(i int) Point {
	switch i {
	case CornerTopLeft:
		return r.Min
	case CornerTopRight:
		return Point{X: r.Max.X, Y: r.Min.Y}
	case CornerBottomRight:
		return r.Max
	case CornerBottomLeft:
		return Point{X: r.Min.X, Y: r.Max.Y}
	}
	return Point{}
}

// Corners returns all four corners in clockwise order from the top-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		r.Corner(CornerTopLeft),
		r.Corner(CornerTopRight),
		r.Corner(CornerBottomRight),
		r.Corner(CornerBottomLeft),
	}
}

// SetCorner returns a copy of the rectangle with corner i moved to p. The
// opposite corner stays fixed; the result may be inverted.
func (r Rect) SetCorner(i int, p Point) Rect {
	switch i {
	case CornerTopLeft:
		r.Min = p
	case CornerTopRight:
		r.Max.X = p.X
		r.Min.Y = p.Y
	case CornerBottomRight:
		r.Max = p
	case CornerBottomLeft:
		r.Min.X = p.X
		r.Max.Y = p.Y
	}
	return r
}

// BoundingRect computes the smallest axis-aligned rectangle whose corners
// enclose every point. Max holds the largest vertex coordinates.
func BoundingRect(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{Min: Point{X: minX, Y: minY}, Max: Point{X: maxX, Y: maxY}}
}

// ScalePoints returns a scaled copy of points.
func ScalePoints(points []Point, factor float64) []Point {
	scaled := make([]Point, len(points))
	for i, p := range points {
		scaled[i] = p.Scale(factor)
	}
	return scaled
}

// Clamp limits p to the area [0, width) x [0, height).
func Clamp(p Point, width, height int) Point {
	if p.X < 0 {
		p.X = 0
	}
	if width > 0 && p.X >= width {
		p.X = width - 1
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if height > 0 && p.Y >= height {
		p.Y = height - 1
	}
	return p
}
