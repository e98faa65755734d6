// Package annotation holds the confirmed annotation model: bounding boxes,
// polygons, the store that owns them and the label palette.
package annotation

import (
	"image-labeler/pkg/geometry"
)

// FigureKind identifies the kind of shape a reference points at.
type FigureKind int

const (
	FigureNone FigureKind = iota
	FigureRect
	FigurePoly
)

// String returns a human-readable name for the figure kind.
func (k FigureKind) String() string {
	switch k {
	case FigureRect:
		return "BBox"
	case FigurePoly:
		return "Poly"
	default:
		return "None"
	}
}

// UnlabeledID marks a shape whose label is unknown, e.g. after a failed parse.
const UnlabeledID = -1

// Shape is implemented by BoundingBox and Polygon.
type Shape interface {
	Kind() FigureKind
	Label() int
}

// BoundingBox is an axis-aligned rectangle in image coordinates with a label.
type BoundingBox struct {
	geometry.Rect
	LabelID int `json:"label_id"`
}

// Kind implements Shape.
func (b BoundingBox) Kind() FigureKind { return FigureRect }

// Label implements Shape.
func (b BoundingBox) Label() int { return b.LabelID }

// Normalize returns the box with its corners reordered so width and height
// are non-negative.
func (b BoundingBox) Normalize() BoundingBox {
	b.Rect = b.Rect.Normalize()
	return b
}

// Polygon is an open list of vertices; the last-to-first edge closes it.
type Polygon struct {
	Points  []geometry.Point `json:"points"`
	LabelID int              `json:"label_id"`
}

// Kind implements Shape.
func (p Polygon) Kind() FigureKind { return FigurePoly }

// Label implements Shape.
func (p Polygon) Label() int { return p.LabelID }

// Clone returns a deep copy of the polygon.
func (p Polygon) Clone() Polygon {
	pts := make([]geometry.Point, len(p.Points))
	copy(pts, p.Points)
	return Polygon{Points: pts, LabelID: p.LabelID}
}

// Bounds returns the smallest rectangle containing every vertex.
func (p Polygon) Bounds() geometry.Rect {
	return geometry.BoundingRect(p.Points)
}

// ShapeRef addresses a vertex of a shape held by the store. Box vertices are
// numbered 0..3 clockwise from the top-left corner.
type ShapeRef struct {
	Figure FigureKind `json:"figure"`
	Shape  int        `json:"shape"`
	Vertex int        `json:"vertex"`
}

// NoRef is the empty reference.
var NoRef = ShapeRef{Figure: FigureNone, Shape: -1, Vertex: -1}

// IsNone reports whether the reference points at nothing.
func (r ShapeRef) IsNone() bool {
	return r.Figure == FigureNone || r.Shape < 0
}

// SameShape reports whether both references address the same shape,
// ignoring the vertex.
func (r ShapeRef) SameShape(other ShapeRef) bool {
	return !r.IsNone() && r.Figure == other.Figure && r.Shape == other.Shape
}
