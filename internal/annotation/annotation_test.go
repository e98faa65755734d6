package annotation

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-labeler/pkg/colorutil"
	"image-labeler/pkg/geometry"
)

func box(x, y, w, h, label int) BoundingBox {
	return BoundingBox{Rect: geometry.RectXYWH(x, y, w, h), LabelID: label}
}

func square(label int) Polygon {
	return Polygon{
		Points:  []geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(10, 10), geometry.Pt(0, 10)},
		LabelID: label,
	}
}

func TestBoxRoundTrip(t *testing.T) {
	cases := []BoundingBox{
		box(0, 0, 1, 1, 0),
		box(10, 20, 30, 40, 0),
		box(-5, 3, 7, 2, 0),
	}
	for _, b := range cases {
		s := FormatBox(b)
		parsed, ok := ParseBox(s)
		require.True(t, ok, s)
		assert.Equal(t, b.Rect, parsed.Rect)
	}
	assert.Equal(t, "10;20;30;40;", FormatBox(box(10, 20, 30, 40, 3)))
}

func TestParseBoxRejects(t *testing.T) {
	for _, s := range []string{"", "1;2;3;", "1;2;0;4;", "a;2;3;4;", "1;2;3;-4;"} {
		b, ok := ParseBox(s)
		assert.False(t, ok, s)
		assert.Equal(t, UnlabeledID, b.LabelID, s)
	}
}

func TestPolygonRoundTrip(t *testing.T) {
	p := square(0)
	s := FormatPolygon(p)
	assert.Equal(t, "0;0;10;0;10;10;0;10;", s)

	parsed, ok := ParsePolygon(s)
	require.True(t, ok)
	assert.Equal(t, p.Points, parsed.Points)
}

func TestParsePolygonRejects(t *testing.T) {
	for _, s := range []string{"", "1;2;3;", "1;x;", ";"} {
		p, ok := ParsePolygon(s)
		assert.False(t, ok, s)
		assert.Equal(t, UnlabeledID, p.LabelID, s)
		assert.Empty(t, p.Points, s)
	}
}

func TestStoreRemoveShiftsIndices(t *testing.T) {
	s := NewStore()
	s.AddBox(box(0, 0, 1, 1, 1))
	s.AddBox(box(1, 1, 1, 1, 2))
	s.AddBox(box(2, 2, 1, 1, 3))

	require.True(t, s.RemoveAt(FigureRect, 1))
	assert.Equal(t, 2, s.Len(FigureRect))
	b, ok := s.Box(1)
	require.True(t, ok)
	assert.Equal(t, 3, b.LabelID)

	assert.False(t, s.RemoveAt(FigureRect, 5))
	assert.False(t, s.RemoveAt(FigurePoly, 0))
	assert.Equal(t, 2, s.Len(FigureRect))
}

func TestStoreStaleIndicesAreIgnored(t *testing.T) {
	s := NewStore()
	s.AddPolygon(square(1))

	assert.False(t, s.SetPolygonVertex(1, 0, geometry.Pt(1, 1)))
	assert.False(t, s.SetPolygonVertex(0, 4, geometry.Pt(1, 1)))
	assert.False(t, s.RemoveVertex(0, -1))
	assert.False(t, s.InsertVertex(0, 5, geometry.Pt(1, 1)))
	assert.False(t, s.SetBoxCorner(0, 0, geometry.Pt(1, 1)))
	assert.False(t, s.ReplaceAt(FigureRect, 0, square(1)))

	p, ok := s.Polygon(3)
	assert.False(t, ok)
	assert.Equal(t, UnlabeledID, p.LabelID)
}

func TestStoreVertexEditing(t *testing.T) {
	s := NewStore()
	i := s.AddPolygon(square(1))

	require.True(t, s.InsertVertex(i, 1, geometry.Pt(5, -2)))
	p, _ := s.Polygon(i)
	assert.Len(t, p.Points, 5)
	assert.Equal(t, geometry.Pt(5, -2), p.Points[1])

	require.True(t, s.SetPolygonVertex(i, 0, geometry.Pt(-1, -1)))
	require.True(t, s.RemoveVertex(i, 1))
	p, _ = s.Polygon(i)
	assert.Equal(t, []geometry.Point{geometry.Pt(-1, -1), geometry.Pt(10, 0), geometry.Pt(10, 10), geometry.Pt(0, 10)}, p.Points)

	// Copies returned by the store must not alias its storage.
	p.Points[0] = geometry.Pt(99, 99)
	again, _ := s.Polygon(i)
	assert.Equal(t, geometry.Pt(-1, -1), again.Points[0])
}

func TestStoreBoxCornerAndNormalize(t *testing.T) {
	s := NewStore()
	i := s.AddBox(box(10, 10, 10, 10, 1))

	require.True(t, s.SetBoxCorner(i, geometry.CornerTopLeft, geometry.Pt(30, 30)))
	b, _ := s.Box(i)
	assert.False(t, b.IsNormalized())

	assert.True(t, s.NormalizeBox(i))
	b, _ = s.Box(i)
	assert.Equal(t, geometry.Pt(20, 20), b.Min)
	assert.Equal(t, geometry.Pt(30, 30), b.Max)
	assert.False(t, s.NormalizeBox(i))
}

func TestStoreRemapLabel(t *testing.T) {
	s := NewStore()
	s.AddBox(box(0, 0, 1, 1, 1))
	s.AddBox(box(0, 0, 1, 1, 2))
	s.AddPolygon(square(3))

	assert.Equal(t, 2, s.RemapLabel(2))
	boxes := s.Boxes()
	assert.Equal(t, 1, boxes[0].LabelID)
	assert.Equal(t, BackgroundID, boxes[1].LabelID)
	p, _ := s.Polygon(0)
	assert.Equal(t, 2, p.LabelID)

	assert.Zero(t, s.RemapLabel(0))
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewStore()
	s.AddPolygon(square(1))
	snap := s.Snapshot()
	s.SetPolygonVertex(0, 0, geometry.Pt(50, 50))
	assert.Equal(t, geometry.Pt(0, 0), snap.Polygons[0].Points[0])

	other := NewStore()
	other.Restore(snap)
	assert.Equal(t, 1, other.Len(FigurePoly))
	assert.False(t, snap.Empty())
}

func TestPalette(t *testing.T) {
	p := NewPalette()
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, colorutil.Black, p.ColorFor(BackgroundID))
	assert.Equal(t, colorutil.White, p.ColorFor(42))

	car := p.Add("car")
	tree := p.AddWithColor("tree", colorutil.Green)
	sky := p.Add("sky")
	assert.Equal(t, 1, car)
	assert.Equal(t, tree, p.Find("TREE"))
	assert.Equal(t, -1, p.Find("road"))
	assert.Equal(t, 4, p.FindOrAdd("road"))

	assert.False(t, p.Remove(BackgroundID))
	assert.False(t, p.ToggleMain(BackgroundID))

	require.True(t, p.ToggleMain(sky))
	assert.Equal(t, sky, p.MainLabel())
	require.True(t, p.ToggleMain(tree))
	assert.Equal(t, tree, p.MainLabel())

	require.True(t, p.Remove(car))
	assert.Equal(t, tree-1, p.MainLabel())
	assert.Equal(t, "tree", p.labels[1].Name)

	require.True(t, p.Remove(1))
	assert.Equal(t, -1, p.MainLabel())
}

func TestPaletteNeedsGeneratedColors(t *testing.T) {
	p := NewPalette()
	p.Add("a")
	assert.False(t, p.NeedsGeneratedColors())
	p.Add("b")
	assert.True(t, p.NeedsGeneratedColors())

	p.GenerateColors()
	assert.False(t, p.NeedsGeneratedColors())
	assert.Equal(t, colorutil.Black, p.ColorFor(0))
	assert.NotEqual(t, p.ColorFor(1), p.ColorFor(2))

	p.SetColor(2, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	l, ok := p.Label(2)
	require.True(t, ok)
	assert.True(t, l.Explicit)
}

func TestListing(t *testing.T) {
	s := NewStore()
	s.AddBox(box(1, 2, 3, 4, 1))
	s.AddPolygon(Polygon{Points: []geometry.Point{geometry.Pt(1, 1), geometry.Pt(5, 1), geometry.Pt(3, 4)}, LabelID: 2})

	lines := Listing(s)
	require.Len(t, lines, 2)
	assert.Equal(t, "0: BBox #0; LabelID: 1; data:1;2;3;4; ", lines[0])
	assert.Equal(t, "1: Poly #0; LabelID: 2; points:1;1;5;1;3;4;", lines[1])

	kind, idx, ok := RefForLine(s, 1)
	require.True(t, ok)
	assert.Equal(t, FigurePoly, kind)
	assert.Equal(t, 0, idx)
	_, _, ok = RefForLine(s, 2)
	assert.False(t, ok)
}

func TestParseListing(t *testing.T) {
	kind, idx, shape, ok := ParseListing("0: BBox #3; LabelID: 2; data:5;6;7;8; ")
	require.True(t, ok)
	assert.Equal(t, FigureRect, kind)
	assert.Equal(t, 3, idx)
	assert.Equal(t, box(5, 6, 7, 8, 2), shape)

	kind, idx, shape, ok = ParseListing("4: Poly #1; LabelID: 0; points:1;1;5;1;3;4;")
	require.True(t, ok)
	assert.Equal(t, FigurePoly, kind)
	assert.Equal(t, 1, idx)
	assert.Len(t, shape.(Polygon).Points, 3)

	for _, bad := range []string{
		"garbage",
		"0: BBox #x; LabelID: 2; data:5;6;7;8; ",
		"0: BBox #1; LabelID: -2; data:5;6;7;8; ",
		"0: BBox #1; LabelID: 2; data:",
		"0: Poly #1; LabelID: 2; points:1;2;3;",
	} {
		_, _, _, ok := ParseListing(bad)
		assert.False(t, ok, bad)
	}
}
