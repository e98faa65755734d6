package hittest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"image-labeler/internal/annotation"
	"image-labeler/pkg/geometry"
)

var square = []geometry.Point{
	geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(10, 10), geometry.Pt(0, 10),
}

func TestFindHoveredVertexNoneBeyondRadius(t *testing.T) {
	boxes := []annotation.BoundingBox{{Rect: geometry.RectXYWH(100, 100, 20, 20)}}
	polys := []annotation.Polygon{{Points: square}}

	for _, pos := range []geometry.Point{
		geometry.Pt(50, 50),
		geometry.Pt(5, 5),
		geometry.Pt(17, 0),
		geometry.Pt(110, 93),
	} {
		ref := FindHoveredVertex(pos, boxes, polys, DefaultRadius)
		assert.True(t, ref.IsNone(), "pos %v", pos)
		assert.Equal(t, annotation.NoRef, ref)
	}

	assert.True(t, FindHoveredVertex(geometry.Pt(0, 0), nil, nil, DefaultRadius).IsNone())
}

func TestFindHoveredVertexRadiusIsInclusive(t *testing.T) {
	polys := []annotation.Polygon{{Points: square}}
	ref := FindHoveredVertex(geometry.Pt(16, 0), nil, polys, DefaultRadius)
	assert.Equal(t, annotation.ShapeRef{Figure: annotation.FigurePoly, Shape: 0, Vertex: 1}, ref)
}

func TestFindHoveredVertexPrefersPolygon(t *testing.T) {
	// Both the box corner and the polygon vertex sit 3px from the pointer.
	boxes := []annotation.BoundingBox{{Rect: geometry.RectXYWH(23, 20, 10, 10)}}
	polys := []annotation.Polygon{{Points: []geometry.Point{geometry.Pt(17, 20), geometry.Pt(0, 40), geometry.Pt(0, 0)}}}

	ref := FindHoveredVertex(geometry.Pt(20, 20), boxes, polys, DefaultRadius)
	assert.Equal(t, annotation.FigurePoly, ref.Figure)
	assert.Equal(t, 0, ref.Shape)
	assert.Equal(t, 0, ref.Vertex)

	ref = FindHoveredVertex(geometry.Pt(20, 20), boxes, nil, DefaultRadius)
	assert.Equal(t, annotation.ShapeRef{Figure: annotation.FigureRect, Shape: 0, Vertex: geometry.CornerTopLeft}, ref)
}

func TestFindHoveredVertexBoxCorners(t *testing.T) {
	boxes := []annotation.BoundingBox{
		{Rect: geometry.RectXYWH(0, 0, 5, 5)},
		{Rect: geometry.RectXYWH(100, 100, 50, 40)},
	}
	ref := FindHoveredVertex(geometry.Pt(101, 139), boxes, nil, DefaultRadius)
	assert.Equal(t, annotation.ShapeRef{Figure: annotation.FigureRect, Shape: 1, Vertex: geometry.CornerBottomLeft}, ref)
}

func TestInsertionIndex(t *testing.T) {
	tests := []struct {
		name string
		pos  geometry.Point
		poly []geometry.Point
		want int
	}{
		{"near first edge midpoint", geometry.Pt(5, 1), square, 1},
		{"just outside first edge", geometry.Pt(5, -1), square, 1},
		{"near second edge", geometry.Pt(9, 5), square, 2},
		{"near third edge", geometry.Pt(5, 11), square, 3},
		{"near closing edge", geometry.Pt(1, 5), square, 0},
		{"no qualifying edge", geometry.Pt(20, 20), square, 0},
		{"two points", geometry.Pt(5, 1), square[:2], 1},
		{"single point", geometry.Pt(5, 1), square[:1], -1},
		{"empty", geometry.Pt(5, 1), nil, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InsertionIndex(tt.pos, tt.poly))
		})
	}
}
