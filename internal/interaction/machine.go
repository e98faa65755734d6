// Package interaction turns pointer and keyboard events into edits of the
// annotation store through a two-state machine.
package interaction

import (
	"go.uber.org/zap"

	"image-labeler/internal/annotation"
	"image-labeler/internal/logging"
	"image-labeler/pkg/geometry"
)

// State of the selection machine.
type State int

const (
	StandBy State = iota
	NewSelection
)

func (s State) String() string {
	if s == NewSelection {
		return "NewSelection"
	}
	return "StandBy"
}

// Tool is the active drawing tool.
type Tool int

const (
	ToolNone Tool = iota
	ToolBBox
	ToolPolygon
)

func (t Tool) String() string {
	switch t {
	case ToolBBox:
		return "bbox"
	case ToolPolygon:
		return "polygon"
	default:
		return "none"
	}
}

// Options configures hit-testing and zoom.
type Options struct {
	HitRadius  float64
	ZoomFactor float64
	MinZoom    float64
	MaxZoom    float64
}

// DefaultOptions returns the editor defaults.
func DefaultOptions() Options {
	return Options{
		HitRadius:  6,
		ZoomFactor: 1.1,
		MinZoom:    0.1,
		MaxZoom:    10,
	}
}

// Machine owns the in-progress shape, the focus/hover/selection state and
// the polygon redo history, and applies edits to the store it was given.
// It is not safe for concurrent use.
type Machine struct {
	store    *annotation.Store
	viewport Viewport
	opts     Options
	logger   *zap.Logger

	state       State
	tool        Tool
	activeLabel int
	scale       float64
	imgW, imgH  int

	// In-progress shape.
	rect    geometry.Rect
	hasRect bool
	poly    []geometry.Point
	history []geometry.Point

	focused  annotation.ShapeRef
	hovered  annotation.ShapeRef
	selected int

	pressPos geometry.Point
	panPos   geometry.Point // pointer in viewport coordinates
	edited   bool
}

// New creates a machine editing store. A nil logger uses the shared one.
func New(store *annotation.Store, opts Options, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = logging.Named("interaction")
	}
	if opts.ZoomFactor <= 1 {
		opts.ZoomFactor = DefaultOptions().ZoomFactor
	}
	if opts.MinZoom <= 0 || opts.MaxZoom < opts.MinZoom {
		opts.MinZoom, opts.MaxZoom = DefaultOptions().MinZoom, DefaultOptions().MaxZoom
	}
	return &Machine{
		store:    store,
		opts:     opts,
		logger:   logger,
		scale:    1,
		focused:  annotation.NoRef,
		hovered:  annotation.NoRef,
		selected: -1,
	}
}

// SetViewport attaches the scroll area used for middle-button panning.
func (m *Machine) SetViewport(v Viewport) { m.viewport = v }

// SetImageSize sets the image bounds pointer positions are clamped to.
func (m *Machine) SetImageSize(width, height int) {
	m.imgW, m.imgH = width, height
}

// ImageSize returns the current image bounds.
func (m *Machine) ImageSize() (int, int) { return m.imgW, m.imgH }

// Store returns the store edited by the machine.
func (m *Machine) Store() *annotation.Store { return m.store }

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Tool returns the active tool.
func (m *Machine) Tool() Tool { return m.tool }

// Scale returns the zoom factor.
func (m *Machine) Scale() float64 { return m.scale }

// ActiveLabel returns the label stamped on confirmed shapes.
func (m *Machine) ActiveLabel() int { return m.activeLabel }

// Focused returns the focused shape, or NoRef.
func (m *Machine) Focused() annotation.ShapeRef { return m.focused }

// Hovered returns the hovered vertex, or NoRef.
func (m *Machine) Hovered() annotation.ShapeRef { return m.hovered }

// SelectedPoint returns the selected vertex of the focused polygon, or -1.
func (m *Machine) SelectedPoint() int { return m.selected }

// InProgressRect returns the box being drawn, possibly inverted.
func (m *Machine) InProgressRect() (geometry.Rect, bool) {
	return m.rect, m.hasRect
}

// InProgressPolygon returns a copy of the polygon being drawn.
func (m *Machine) InProgressPolygon() []geometry.Point {
	out := make([]geometry.Point, len(m.poly))
	copy(out, m.poly)
	return out
}

// HistoryLen returns the number of undone polygon points available to redo.
func (m *Machine) HistoryLen() int { return len(m.history) }

// SetTool switches the drawing tool. An unconfirmed shape of the previous
// tool is discarded.
func (m *Machine) SetTool(t Tool) {
	if t == m.tool {
		return
	}
	m.ClearLast()
	m.tool = t
	m.logger.Debug("tool changed", zap.Stringer("tool", t))
}

// SetActiveLabel sets the label stamped on the next confirmed shape.
func (m *Machine) SetActiveLabel(id int) { m.activeLabel = id }

// Focus puts the focus on a confirmed shape. Stale references are ignored.
func (m *Machine) Focus(kind annotation.FigureKind, index int) bool {
	if index < 0 || index >= m.store.Len(kind) {
		return false
	}
	m.focused = annotation.ShapeRef{Figure: kind, Shape: index, Vertex: -1}
	m.hovered = annotation.NoRef
	m.selected = -1
	return true
}

// ClearFocus releases the focused shape.
func (m *Machine) ClearFocus() {
	m.focused = annotation.NoRef
	m.selected = -1
}

// ClearHover forgets the hovered vertex.
func (m *Machine) ClearHover() {
	m.hovered = annotation.NoRef
}

// Confirm moves the in-progress shape into the store with the active label.
// A box without area or a polygon with fewer than three points is refused
// and the machine stays in NewSelection.
func (m *Machine) Confirm() (annotation.ShapeRef, bool) {
	if m.state != NewSelection || m.tool == ToolNone {
		return annotation.NoRef, false
	}

	label := m.activeLabel
	if label < 0 {
		label = annotation.BackgroundID
	}

	var ref annotation.ShapeRef
	switch m.tool {
	case ToolBBox:
		if !m.hasRect {
			return annotation.NoRef, false
		}
		r := m.rect.Normalize()
		if r.Empty() {
			m.logger.Debug("refusing empty box", zap.Any("rect", r))
			return annotation.NoRef, false
		}
		i := m.store.AddBox(annotation.BoundingBox{Rect: r, LabelID: label})
		ref = annotation.ShapeRef{Figure: annotation.FigureRect, Shape: i, Vertex: -1}
	case ToolPolygon:
		if len(m.poly) < 3 {
			m.logger.Debug("refusing polygon", zap.Int("points", len(m.poly)))
			return annotation.NoRef, false
		}
		i := m.store.AddPolygon(annotation.Polygon{Points: m.poly, LabelID: label})
		ref = annotation.ShapeRef{Figure: annotation.FigurePoly, Shape: i, Vertex: -1}
	}

	m.resetInProgress()
	m.setState(StandBy)
	m.logger.Info("shape confirmed",
		zap.Stringer("figure", ref.Figure),
		zap.Int("index", ref.Shape),
		zap.Int("label", label))
	return ref, true
}

// ClearLast discards the in-progress shape and its history.
func (m *Machine) ClearLast() {
	m.resetInProgress()
	m.setState(StandBy)
}

// ClearAll discards the in-progress shape, the focus and resets the zoom.
func (m *Machine) ClearAll() {
	m.ClearLast()
	m.ClearFocus()
	m.ClearHover()
	m.scale = 1
}

// Undo removes the last point of the polygon being drawn, keeping it for Redo.
func (m *Machine) Undo() bool {
	if m.tool != ToolPolygon || m.state != NewSelection || len(m.poly) == 0 {
		return false
	}
	last := m.poly[len(m.poly)-1]
	m.poly = m.poly[:len(m.poly)-1]
	m.history = append(m.history, last)
	return true
}

// Redo restores the most recently undone point.
func (m *Machine) Redo() bool {
	if m.tool != ToolPolygon || m.state != NewSelection || len(m.history) == 0 {
		return false
	}
	last := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.poly = append(m.poly, last)
	return true
}

// RemoveSelectedPoint deletes the selected vertex of the focused polygon.
func (m *Machine) RemoveSelectedPoint() bool {
	if m.selected < 0 || m.focused.Figure != annotation.FigurePoly {
		return false
	}
	if !m.store.RemoveVertex(m.focused.Shape, m.selected) {
		m.selected = -1
		return false
	}
	m.selected = -1
	m.hovered = annotation.NoRef
	return true
}

// Zoom scales by the configured factor, in or out, within the zoom limits.
func (m *Machine) Zoom(in bool) float64 {
	s := m.scale
	if in {
		s *= m.opts.ZoomFactor
	} else {
		s /= m.opts.ZoomFactor
	}
	return m.SetScale(s)
}

// SetScale sets the zoom factor, clamped to the configured limits.
func (m *Machine) SetScale(s float64) float64 {
	if s < m.opts.MinZoom {
		s = m.opts.MinZoom
	}
	if s > m.opts.MaxZoom {
		s = m.opts.MaxZoom
	}
	m.scale = s
	return s
}

// Reset returns the machine to its initial state, keeping tool, label and
// options. Used when another image is loaded.
func (m *Machine) Reset() {
	m.ClearAll()
	m.edited = false
}

func (m *Machine) resetInProgress() {
	m.rect = geometry.Rect{}
	m.hasRect = false
	m.poly = nil
	m.history = nil
}

func (m *Machine) setState(s State) {
	if s != m.state {
		m.logger.Debug("state transition",
			zap.Stringer("from", m.state),
			zap.Stringer("to", s),
			zap.Stringer("tool", m.tool))
	}
	m.state = s
}

// imagePos maps a raw widget position into clamped image coordinates.
func (m *Machine) imagePos(raw geometry.Point) geometry.Point {
	return geometry.Clamp(raw.Div(m.scale), m.imgW, m.imgH)
}
