package interaction

import (
	"go.uber.org/zap"

	"image-labeler/internal/annotation"
	"image-labeler/internal/hittest"
	"image-labeler/pkg/geometry"
)

// Handle applies one input event and returns the resulting side effects.
// Events whose preconditions are not met are ignored.
func (m *Machine) Handle(ev Event) []Effect {
	switch ev.Kind {
	case EventPointerDown:
		return m.pointerDown(ev)
	case EventPointerMove:
		return m.pointerMove(ev)
	case EventPointerUp:
		return m.pointerUp(ev)
	case EventDoubleClick:
		return m.doubleClick(ev)
	case EventKeyPress:
		return m.keyPress(ev)
	case EventWheel:
		return m.wheel(ev)
	}
	return nil
}

func (m *Machine) pointerDown(ev Event) []Effect {
	pos := m.imagePos(ev.Pos)
	m.pressPos = pos
	m.panPos = m.viewPos(ev.Pos)

	if !ev.Buttons.Has(ButtonLeft) {
		return nil
	}

	var effects []Effect

	// A click while a box is pending throws it away.
	if m.state == NewSelection && m.tool == ToolBBox {
		m.resetInProgress()
		m.setState(StandBy)
	}

	if m.tool == ToolPolygon && m.state == NewSelection && ev.Modifiers == 0 {
		m.poly = append(m.poly, pos)
	}

	if m.state == StandBy && m.tool != ToolNone && m.focused.IsNone() {
		m.resetInProgress()
		m.setState(NewSelection)
		effects = append(effects, Effect{Kind: EffectSelectionStarted})

		switch m.tool {
		case ToolPolygon:
			m.poly = append(m.poly, pos)
		case ToolBBox:
			m.rect = geometry.RectFromCorners(pos, pos)
			m.hasRect = true
		}
	}

	m.selected = -1
	if m.hovered.Figure == annotation.FigurePoly && m.hovered.SameShape(m.focused) {
		m.selected = m.hovered.Vertex
	}

	return append(effects, Effect{Kind: EffectRepaint})
}

func (m *Machine) pointerMove(ev Event) []Effect {
	pos := m.imagePos(ev.Pos)
	left := ev.Buttons.Has(ButtonLeft)
	repaint := false

	if left && m.tool == ToolBBox && m.state == NewSelection && ev.Modifiers == 0 {
		m.rect = geometry.RectFromCorners(m.pressPos, pos)
		m.hasRect = true
		repaint = true
	}

	if left && m.tool == ToolPolygon && m.state == NewSelection && len(m.poly) > 0 {
		m.poly[len(m.poly)-1] = pos
		repaint = true
	}

	if !left && !m.focused.IsNone() {
		hovered := hittest.FindHoveredVertex(pos, m.store.Boxes(), m.store.Polygons(), m.opts.HitRadius)
		if hovered != m.hovered {
			m.hovered = hovered
			repaint = true
		}
	}

	if left && !m.hovered.IsNone() && m.hovered.SameShape(m.focused) {
		var ok bool
		switch m.hovered.Figure {
		case annotation.FigurePoly:
			ok = m.store.SetPolygonVertex(m.hovered.Shape, m.hovered.Vertex, pos)
		case annotation.FigureRect:
			ok = m.store.SetBoxCorner(m.hovered.Shape, m.hovered.Vertex, pos)
		}
		if ok {
			m.edited = true
			repaint = true
		}
	}

	if ev.Buttons.Has(ButtonMiddle) && m.contentExceedsViewport() {
		delta := ev.Pos.Sub(m.pressRaw)
		m.panPos = m.viewPos(ev.Pos)
		m.viewport.SetOffset(m.viewport.Offset().Add(delta))
	}

	if repaint {
		return []Effect{{Kind: EffectRepaint}}
	}
	return nil
}

func (m *Machine) pointerUp(Event) []Effect {
	if !m.edited {
		return nil
	}
	m.edited = false

	ref := m.hovered
	if ref.Figure == annotation.FigureRect {
		m.store.NormalizeBox(ref.Shape)
	}
	m.logger.Debug("area edited",
		zap.Stringer("figure", ref.Figure),
		zap.Int("index", ref.Shape),
		zap.Int("vertex", ref.Vertex))
	return []Effect{{Kind: EffectAreaEdited, Ref: ref}, {Kind: EffectRepaint}}
}

func (m *Machine) doubleClick(ev Event) []Effect {
	if !ev.Buttons.Has(ButtonLeft) || !m.hovered.IsNone() || m.focused.Figure != annotation.FigurePoly {
		return nil
	}
	poly, ok := m.store.Polygon(m.focused.Shape)
	if !ok {
		return nil
	}

	pos := m.imagePos(ev.Pos)
	index := hittest.InsertionIndex(pos, poly.Points)
	if index < 0 || index >= len(poly.Points) {
		return nil
	}
	if !m.store.InsertVertex(m.focused.Shape, index, pos) {
		return nil
	}

	ref := annotation.ShapeRef{Figure: annotation.FigurePoly, Shape: m.focused.Shape, Vertex: index}
	return []Effect{{Kind: EffectAreaEdited, Ref: ref}, {Kind: EffectRepaint}}
}

func (m *Machine) keyPress(ev Event) []Effect {
	var effects []Effect

	switch ev.Key {
	case KeyEnter:
		if m.state == NewSelection {
			if ref, ok := m.Confirm(); ok {
				effects = append(effects, Effect{Kind: EffectShapeConfirmed, Ref: ref})
			}
		}
		if !m.focused.IsNone() {
			m.ClearFocus()
			m.ClearHover()
			effects = append(effects, Effect{Kind: EffectFocusCleared})
		}
	case KeyEscape:
		hadFocus := !m.focused.IsNone()
		m.ClearLast()
		m.ClearFocus()
		m.ClearHover()
		if hadFocus {
			effects = append(effects, Effect{Kind: EffectFocusCleared})
		}
	case KeyZ:
		if ev.Modifiers == ModControl {
			m.Undo()
		}
	case KeyY:
		if ev.Modifiers == ModControl {
			m.Redo()
		}
	case KeyDelete:
		if ref := m.focused; m.RemoveSelectedPoint() {
			effects = append(effects, Effect{Kind: EffectAreaEdited, Ref: ref})
		}
	case KeyLeft:
		if ev.Modifiers == ModControl {
			effects = append(effects, Effect{Kind: EffectPrevImage})
		}
	case KeyRight:
		if ev.Modifiers == ModControl {
			effects = append(effects, Effect{Kind: EffectNextImage})
		}
	default:
		return nil
	}

	return append(effects, Effect{Kind: EffectRepaint})
}

func (m *Machine) wheel(ev Event) []Effect {
	if ev.Modifiers != ModControl || ev.WheelDelta == 0 {
		return nil
	}
	before := m.scale
	s := m.Zoom(ev.WheelDelta > 0)
	if s == before {
		return nil
	}
	return []Effect{{Kind: EffectScaleChanged, Scale: s}, {Kind: EffectRepaint}}
}

// contentExceedsViewport reports whether the scaled image is larger than
// the viewport on either axis.
// viewPos converts a content position to viewport coordinates, which do
// not shift when the view scrolls.
func (m *Machine) viewPos(p geometry.Point) geometry.Point {
	if m.viewport == nil {
		return p
	}
	return p.Sub(m.viewport.Offset())
}

func (m *Machine) contentExceedsViewport() bool {
	if m.viewport == nil {
		return false
	}
	vw, vh := m.viewport.Size()
	cw := int(float64(m.imgW) * m.scale)
	ch := int(float64(m.imgH) * m.scale)
	return cw > vw || ch > vh
}
