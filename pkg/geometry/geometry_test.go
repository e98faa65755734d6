package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []Rect{
		RectFromCorners(Pt(5, 5), Pt(1, 1)),
		RectFromCorners(Pt(1, 5), Pt(5, 1)),
		RectFromCorners(Pt(5, 1), Pt(1, 5)),
		RectXYWH(2, 2, 3, 3),
		RectXYWH(-4, 7, 0, 0),
	}

	for _, r := range cases {
		n := r.Normalize()
		assert.GreaterOrEqual(t, n.Width(), 0, "width of %v", r)
		assert.GreaterOrEqual(t, n.Height(), 0, "height of %v", r)
		assert.Equal(t, n, n.Normalize(), "normalize must be idempotent for %v", r)
		assert.True(t, n.IsNormalized())
	}
}

func TestNormalizeBackwardsDrag(t *testing.T) {
	n := RectFromCorners(Pt(5, 5), Pt(1, 1)).Normalize()
	assert.Equal(t, Pt(1, 1), n.Min)
	assert.Equal(t, 4, n.Width())
	assert.Equal(t, 4, n.Height())
}

func TestRectContainsIsHalfOpen(t *testing.T) {
	r := RectXYWH(2, 2, 3, 3)
	assert.True(t, r.Contains(Pt(2, 2)))
	assert.True(t, r.Contains(Pt(4, 4)))
	assert.False(t, r.Contains(Pt(5, 4)))
	assert.False(t, r.Contains(Pt(4, 5)))
	assert.False(t, r.Contains(Pt(1, 3)))

	inverted := RectFromCorners(Pt(5, 5), Pt(2, 2))
	assert.True(t, inverted.Contains(Pt(3, 3)))
}

func TestCornersClockwise(t *testing.T) {
	r := RectXYWH(1, 2, 10, 20)
	assert.Equal(t, [4]Point{Pt(1, 2), Pt(11, 2), Pt(11, 22), Pt(1, 22)}, r.Corners())

	moved := r.SetCorner(CornerTopRight, Pt(30, -5))
	assert.Equal(t, Pt(1, -5), moved.Min)
	assert.Equal(t, Pt(30, 22), moved.Max)

	moved = r.SetCorner(CornerBottomLeft, Pt(0, 0))
	assert.Equal(t, Pt(0, 2), moved.Min)
	assert.Equal(t, Pt(11, 0), moved.Max)
	assert.False(t, moved.IsNormalized())
}

func TestBoundingRect(t *testing.T) {
	assert.Equal(t, Rect{}, BoundingRect(nil))

	r := BoundingRect([]Point{Pt(3, 9), Pt(-1, 4), Pt(7, 2)})
	assert.Equal(t, Pt(-1, 2), r.Min)
	assert.Equal(t, Pt(7, 9), r.Max)
	assert.Equal(t, Pt(3, 5), r.Center())
}

func TestScaleAndDiv(t *testing.T) {
	p := Pt(10, 7)
	assert.Equal(t, Pt(20, 14), p.Scale(2))
	assert.Equal(t, Pt(5, 4), p.Div(2))
	assert.Equal(t, p, p.Div(0))
	assert.Equal(t, p, p.Scale(1.5).Div(1.5))

	pts := []Point{Pt(1, 1), Pt(2, 3)}
	scaled := ScalePoints(pts, 3)
	assert.Equal(t, []Point{Pt(3, 3), Pt(6, 9)}, scaled)
	assert.Equal(t, Pt(1, 1), pts[0], "input must not be modified")
}

func TestClamp(t *testing.T) {
	assert.Equal(t, Pt(0, 0), Clamp(Pt(-3, -1), 10, 10))
	assert.Equal(t, Pt(9, 9), Clamp(Pt(12, 30), 10, 10))
	assert.Equal(t, Pt(4, 5), Clamp(Pt(4, 5), 10, 10))
}

func TestContainsPointEvenOdd(t *testing.T) {
	square := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	assert.True(t, ContainsPoint(square, Pt(5, 5)))
	assert.False(t, ContainsPoint(square, Pt(15, 5)))
	assert.False(t, ContainsPoint(square[:2], Pt(5, 0)))

	// A pentagram: the inner pentagon is outside under the even-odd rule.
	star := []Point{Pt(50, 0), Pt(79, 90), Pt(2, 35), Pt(98, 35), Pt(21, 90)}
	assert.False(t, ContainsPoint(star, Pt(50, 50)))
	assert.True(t, ContainsPoint(star, Pt(50, 10)))
}

func TestPolygonArea(t *testing.T) {
	square := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	assert.InDelta(t, 100.0, PolygonArea(square), 1e-9)
	assert.Zero(t, PolygonArea(square[:2]))
}

func TestInsertRemovePoint(t *testing.T) {
	poly := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10)}

	inserted := InsertPoint(poly, 1, Pt(5, 0))
	require.Len(t, inserted, 4)
	assert.Equal(t, Pt(5, 0), inserted[1])
	assert.Len(t, poly, 3)

	assert.Equal(t, poly, InsertPoint(poly, 7, Pt(1, 1)))

	removed := RemovePoint(inserted, 0)
	assert.Equal(t, []Point{Pt(5, 0), Pt(10, 0), Pt(10, 10)}, removed)
	assert.Equal(t, poly, RemovePoint(poly, -1))
}

func TestDistanceToLine(t *testing.T) {
	a, b, c := LineCoefficients(Pt(0, 0), Pt(10, 0))
	assert.Equal(t, 0.0, a)
	assert.Equal(t, 10.0, b)
	assert.Equal(t, 0.0, c)

	assert.InDelta(t, 3.0, DistanceToLine(Pt(5, 3), Pt(0, 0), Pt(10, 0)), 1e-9)
	assert.InDelta(t, 5.0, DistanceToLine(Pt(5, 1), Pt(10, 0), Pt(10, 10)), 1e-9)
	assert.InDelta(t, 5.0, DistanceToLine(Pt(3, 4), Pt(0, 0), Pt(0, 0)), 1e-9)
}
