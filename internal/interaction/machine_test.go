package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"image-labeler/internal/annotation"
	"image-labeler/pkg/geometry"
)

type fakeViewport struct {
	offset geometry.Point
	w, h   int
}

func (v *fakeViewport) Offset() geometry.Point     { return v.offset }
func (v *fakeViewport) SetOffset(p geometry.Point) { v.offset = p }
func (v *fakeViewport) Size() (int, int)           { return v.w, v.h }

func newMachine(t *testing.T) *Machine {
	t.Helper()
	m := New(annotation.NewStore(), DefaultOptions(), zap.NewNop())
	m.SetImageSize(200, 200)
	return m
}

func click(m *Machine, x, y int) []Effect {
	return m.Handle(Event{Kind: EventPointerDown, Pos: geometry.Pt(x, y), Buttons: ButtonLeft})
}

func drag(m *Machine, x, y int) []Effect {
	return m.Handle(Event{Kind: EventPointerMove, Pos: geometry.Pt(x, y), Buttons: ButtonLeft})
}

func hover(m *Machine, x, y int) []Effect {
	return m.Handle(Event{Kind: EventPointerMove, Pos: geometry.Pt(x, y)})
}

func release(m *Machine) []Effect {
	return m.Handle(Event{Kind: EventPointerUp})
}

func key(m *Machine, k Key, mods Modifier) []Effect {
	return m.Handle(Event{Kind: EventKeyPress, Key: k, Modifiers: mods})
}

func hasEffect(effects []Effect, kind EffectKind) bool {
	for _, e := range effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestPolygonUndoRedo(t *testing.T) {
	m := newMachine(t)
	m.SetTool(ToolPolygon)

	effects := click(m, 0, 0)
	assert.True(t, hasEffect(effects, EffectSelectionStarted))
	assert.Equal(t, NewSelection, m.State())
	click(m, 10, 0)
	click(m, 10, 10)
	require.Len(t, m.InProgressPolygon(), 3)

	require.True(t, m.Undo())
	poly := m.InProgressPolygon()
	require.Len(t, poly, 2)
	assert.Equal(t, geometry.Pt(10, 0), poly[1])
	assert.Equal(t, 1, m.HistoryLen())

	require.True(t, m.Redo())
	poly = m.InProgressPolygon()
	require.Len(t, poly, 3)
	assert.Equal(t, geometry.Pt(10, 10), poly[2])
	assert.False(t, m.Redo())
}

func TestUndoRedoKeys(t *testing.T) {
	m := newMachine(t)
	m.SetTool(ToolPolygon)
	click(m, 1, 1)
	click(m, 5, 1)

	key(m, KeyZ, 0)
	assert.Len(t, m.InProgressPolygon(), 2, "undo needs ctrl")
	key(m, KeyZ, ModControl)
	assert.Len(t, m.InProgressPolygon(), 1)
	key(m, KeyY, ModControl)
	assert.Len(t, m.InProgressPolygon(), 2)
}

func TestUndoRequiresPolygonSelection(t *testing.T) {
	m := newMachine(t)
	assert.False(t, m.Undo())
	m.SetTool(ToolBBox)
	click(m, 1, 1)
	assert.False(t, m.Undo())
}

func TestBackwardsBoxConfirm(t *testing.T) {
	m := newMachine(t)
	m.SetTool(ToolBBox)
	m.SetActiveLabel(2)

	click(m, 5, 5)
	drag(m, 1, 1)
	release(m)

	r, ok := m.InProgressRect()
	require.True(t, ok)
	assert.False(t, r.IsNormalized())

	effects := key(m, KeyEnter, 0)
	require.True(t, hasEffect(effects, EffectShapeConfirmed))
	assert.Equal(t, StandBy, m.State())

	b, ok := m.Store().Box(0)
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(1, 1), b.Min)
	assert.Equal(t, 4, b.Width())
	assert.Equal(t, 4, b.Height())
	assert.Equal(t, 2, b.LabelID)
}

func TestConfirmRefusesDegenerateShapes(t *testing.T) {
	m := newMachine(t)
	m.SetTool(ToolBBox)
	click(m, 5, 5)
	_, ok := m.Confirm()
	assert.False(t, ok)
	assert.Equal(t, NewSelection, m.State())

	m.SetTool(ToolPolygon)
	click(m, 0, 0)
	click(m, 10, 0)
	_, ok = m.Confirm()
	assert.False(t, ok)
	assert.Equal(t, NewSelection, m.State())

	click(m, 10, 10)
	ref, ok := m.Confirm()
	require.True(t, ok)
	assert.Equal(t, annotation.FigurePoly, ref.Figure)
	assert.Equal(t, 0, m.HistoryLen())
	assert.Empty(t, m.InProgressPolygon())
}

func TestConfirmRequiresSelection(t *testing.T) {
	m := newMachine(t)
	_, ok := m.Confirm()
	assert.False(t, ok)
}

func TestClickDuringBoxSelectionRestarts(t *testing.T) {
	m := newMachine(t)
	m.SetTool(ToolBBox)
	click(m, 5, 5)
	drag(m, 20, 20)

	effects := click(m, 50, 50)
	assert.True(t, hasEffect(effects, EffectSelectionStarted))
	r, ok := m.InProgressRect()
	require.True(t, ok)
	assert.Equal(t, geometry.RectFromCorners(geometry.Pt(50, 50), geometry.Pt(50, 50)), r)
}

func TestPointerPositionIsScaledAndClamped(t *testing.T) {
	m := newMachine(t)
	m.SetScale(2)
	m.SetTool(ToolPolygon)

	click(m, 20, 40)
	click(m, 1000, -8)
	assert.Equal(t, []geometry.Point{geometry.Pt(10, 20), geometry.Pt(199, 0)}, m.InProgressPolygon())
}

func TestPolygonDragMovesLastVertex(t *testing.T) {
	m := newMachine(t)
	m.SetTool(ToolPolygon)
	click(m, 0, 0)
	click(m, 10, 0)
	drag(m, 12, 3)
	assert.Equal(t, geometry.Pt(12, 3), m.InProgressPolygon()[1])
}

func storeWithSquare(m *Machine) int {
	return m.Store().AddPolygon(annotation.Polygon{
		Points:  []geometry.Point{geometry.Pt(10, 10), geometry.Pt(50, 10), geometry.Pt(50, 50), geometry.Pt(10, 50)},
		LabelID: 1,
	})
}

func TestEditFocusedPolygonVertex(t *testing.T) {
	m := newMachine(t)
	i := storeWithSquare(m)
	require.True(t, m.Focus(annotation.FigurePoly, i))

	hover(m, 51, 11)
	assert.Equal(t, annotation.ShapeRef{Figure: annotation.FigurePoly, Shape: i, Vertex: 1}, m.Hovered())

	click(m, 51, 11)
	assert.Equal(t, 1, m.SelectedPoint())
	drag(m, 70, 5)
	effects := release(m)
	require.True(t, hasEffect(effects, EffectAreaEdited))

	p, _ := m.Store().Polygon(i)
	assert.Equal(t, geometry.Pt(70, 5), p.Points[1])

	assert.Empty(t, release(m), "no edit, no event")
}

func TestHoverIgnoredWithoutFocus(t *testing.T) {
	m := newMachine(t)
	storeWithSquare(m)
	hover(m, 10, 10)
	assert.True(t, m.Hovered().IsNone())
}

func TestUnfocusedShapeIsNotEdited(t *testing.T) {
	m := newMachine(t)
	storeWithSquare(m)
	m.Store().AddBox(annotation.BoundingBox{Rect: geometry.RectXYWH(100, 100, 20, 20), LabelID: 1})
	require.True(t, m.Focus(annotation.FigurePoly, 0))

	hover(m, 100, 100)
	require.Equal(t, annotation.FigureRect, m.Hovered().Figure)
	click(m, 100, 100)
	drag(m, 90, 90)
	assert.Empty(t, release(m))

	b, _ := m.Store().Box(0)
	assert.Equal(t, geometry.Pt(100, 100), b.Min)
}

func TestBoxCornerDragNormalizesOnRelease(t *testing.T) {
	m := newMachine(t)
	i := m.Store().AddBox(annotation.BoundingBox{Rect: geometry.RectXYWH(10, 10, 20, 20), LabelID: 1})
	require.True(t, m.Focus(annotation.FigureRect, i))

	hover(m, 10, 10)
	require.Equal(t, geometry.CornerTopLeft, m.Hovered().Vertex)
	click(m, 10, 10)
	drag(m, 40, 45)

	b, _ := m.Store().Box(i)
	assert.False(t, b.IsNormalized())

	effects := release(m)
	require.True(t, hasEffect(effects, EffectAreaEdited))
	b, _ = m.Store().Box(i)
	assert.Equal(t, geometry.Pt(30, 30), b.Min)
	assert.Equal(t, geometry.Pt(40, 45), b.Max)
}

func TestDoubleClickInsertsVertex(t *testing.T) {
	m := newMachine(t)
	i := storeWithSquare(m)
	require.True(t, m.Focus(annotation.FigurePoly, i))

	effects := m.Handle(Event{Kind: EventDoubleClick, Pos: geometry.Pt(30, 12), Buttons: ButtonLeft})
	require.True(t, hasEffect(effects, EffectAreaEdited))

	p, _ := m.Store().Polygon(i)
	require.Len(t, p.Points, 5)
	assert.Equal(t, geometry.Pt(30, 12), p.Points[1])
}

func TestDoubleClickOnVertexIsIgnored(t *testing.T) {
	m := newMachine(t)
	i := storeWithSquare(m)
	require.True(t, m.Focus(annotation.FigurePoly, i))
	hover(m, 10, 10)

	assert.Empty(t, m.Handle(Event{Kind: EventDoubleClick, Pos: geometry.Pt(10, 10), Buttons: ButtonLeft}))
	p, _ := m.Store().Polygon(i)
	assert.Len(t, p.Points, 4)
}

func TestRemoveSelectedPoint(t *testing.T) {
	m := newMachine(t)
	i := storeWithSquare(m)
	assert.False(t, m.RemoveSelectedPoint())

	require.True(t, m.Focus(annotation.FigurePoly, i))
	hover(m, 50, 50)
	click(m, 50, 50)
	require.Equal(t, 2, m.SelectedPoint())

	effects := key(m, KeyDelete, 0)
	require.True(t, hasEffect(effects, EffectAreaEdited))
	p, _ := m.Store().Polygon(i)
	assert.Len(t, p.Points, 3)
	assert.Equal(t, -1, m.SelectedPoint())
	assert.False(t, m.RemoveSelectedPoint())
}

func TestRemoveSelectedPointStaleIndex(t *testing.T) {
	m := newMachine(t)
	i := storeWithSquare(m)
	require.True(t, m.Focus(annotation.FigurePoly, i))
	hover(m, 50, 50)
	click(m, 50, 50)

	m.Store().RemoveAt(annotation.FigurePoly, i)
	assert.False(t, m.RemoveSelectedPoint())
}

func TestFocusRejectsStaleIndex(t *testing.T) {
	m := newMachine(t)
	assert.False(t, m.Focus(annotation.FigureRect, 0))
	assert.True(t, m.Focused().IsNone())
}

func TestFocusedShapeBlocksNewSelection(t *testing.T) {
	m := newMachine(t)
	storeWithSquare(m)
	m.SetTool(ToolBBox)
	require.True(t, m.Focus(annotation.FigurePoly, 0))

	click(m, 100, 100)
	assert.Equal(t, StandBy, m.State())

	effects := key(m, KeyEnter, 0)
	assert.True(t, hasEffect(effects, EffectFocusCleared))
	assert.True(t, m.Focused().IsNone())

	click(m, 100, 100)
	assert.Equal(t, NewSelection, m.State())
}

func TestEscapeClearsEverything(t *testing.T) {
	m := newMachine(t)
	storeWithSquare(m)
	m.SetTool(ToolPolygon)
	click(m, 1, 1)
	click(m, 3, 3)

	key(m, KeyEscape, 0)
	assert.Equal(t, StandBy, m.State())
	assert.Empty(t, m.InProgressPolygon())
	assert.True(t, m.Focused().IsNone())
}

func TestClearAllResetsScale(t *testing.T) {
	m := newMachine(t)
	m.SetScale(3)
	storeWithSquare(m)
	m.Focus(annotation.FigurePoly, 0)
	m.ClearAll()
	assert.Equal(t, 1.0, m.Scale())
	assert.True(t, m.Focused().IsNone())
	assert.Equal(t, 1, m.Store().Len(annotation.FigurePoly))
}

func TestWheelZoom(t *testing.T) {
	m := newMachine(t)

	assert.Empty(t, m.Handle(Event{Kind: EventWheel, WheelDelta: 1}))

	effects := m.Handle(Event{Kind: EventWheel, WheelDelta: 1, Modifiers: ModControl})
	require.True(t, hasEffect(effects, EffectScaleChanged))
	assert.InDelta(t, 1.1, m.Scale(), 1e-9)

	m.Handle(Event{Kind: EventWheel, WheelDelta: -1, Modifiers: ModControl})
	assert.InDelta(t, 1.0, m.Scale(), 1e-9)

	for i := 0; i < 100; i++ {
		m.Zoom(true)
	}
	assert.Equal(t, 10.0, m.Scale())
	assert.Equal(t, 0.1, m.SetScale(0.01))
}

func TestMiddleDragPans(t *testing.T) {
	m := newMachine(t)
	vp := &fakeViewport{w: 100, h: 100}
	m.SetViewport(vp)

	// pointer positions are content-relative: viewport position + offset
	at := func(x, y int) geometry.Point { return geometry.Pt(x, y).Add(vp.offset) }

	m.Handle(Event{Kind: EventPointerDown, Pos: at(50, 50), Buttons: ButtonMiddle})
	m.Handle(Event{Kind: EventPointerMove, Pos: at(60, 45), Buttons: ButtonMiddle})
	assert.Equal(t, geometry.Pt(10, -5), vp.offset)

	// the pointer has not moved on screen; the scroll alone must not pan
	m.Handle(Event{Kind: EventPointerMove, Pos: at(60, 45), Buttons: ButtonMiddle})
	assert.Equal(t, geometry.Pt(10, -5), vp.offset)

	m.Handle(Event{Kind: EventPointerMove, Pos: at(62, 45), Buttons: ButtonMiddle})
	assert.Equal(t, geometry.Pt(12, -5), vp.offset)

	// Content fits: no panning.
	vp.w, vp.h = 500, 500
	m.Handle(Event{Kind: EventPointerMove, Pos: at(80, 80), Buttons: ButtonMiddle})
	assert.Equal(t, geometry.Pt(12, -5), vp.offset)
}

func TestMiddleDragPansLinearly(t *testing.T) {
	m := newMachine(t)
	vp := &fakeViewport{w: 100, h: 100}
	m.SetViewport(vp)

	m.Handle(Event{Kind: EventPointerDown, Pos: geometry.Pt(10, 10), Buttons: ButtonMiddle})
	for i := 1; i <= 5; i++ {
		m.Handle(Event{Kind: EventPointerMove, Pos: geometry.Pt(10+i, 10).Add(vp.offset), Buttons: ButtonMiddle})
	}
	assert.Equal(t, geometry.Pt(5, 0), vp.offset)
}

func TestImageNavigationKeys(t *testing.T) {
	m := newMachine(t)
	assert.True(t, hasEffect(key(m, KeyRight, ModControl), EffectNextImage))
	assert.True(t, hasEffect(key(m, KeyLeft, ModControl), EffectPrevImage))
	assert.False(t, hasEffect(key(m, KeyLeft, 0), EffectPrevImage))
}

func TestSetToolDiscardsPendingShape(t *testing.T) {
	m := newMachine(t)
	m.SetTool(ToolPolygon)
	click(m, 1, 1)
	m.SetTool(ToolBBox)
	assert.Equal(t, StandBy, m.State())
	assert.Empty(t, m.InProgressPolygon())
}
