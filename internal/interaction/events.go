package interaction

import (
	"image-labeler/internal/annotation"
	"image-labeler/pkg/geometry"
)

// EventKind identifies an input event.
type EventKind int

const (
	EventPointerDown EventKind = iota
	EventPointerMove
	EventPointerUp
	EventDoubleClick
	EventKeyPress
	EventWheel
)

// Button is a set of pointer buttons.
type Button int

const (
	ButtonLeft Button = 1 << iota
	ButtonMiddle
	ButtonRight
)

// Has reports whether b contains every button of other.
func (b Button) Has(other Button) bool {
	return b&other == other
}

// Modifier is a set of keyboard modifiers held during an event.
type Modifier int

const (
	ModShift Modifier = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// Key identifies the keys the machine reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyEnter
	KeyEscape
	KeyDelete
	KeyZ
	KeyY
	KeyLeft
	KeyRight
)

// Event is a toolkit-independent input event. Pos is in raw widget pixels,
// i.e. image coordinates multiplied by the current scale. Buttons holds the
// buttons down during the event (for PointerDown, the button pressed).
type Event struct {
	Kind       EventKind
	Pos        geometry.Point
	Buttons    Button
	Modifiers  Modifier
	Key        Key
	WheelDelta float64
}

// EffectKind identifies a side effect the shell should react to.
type EffectKind int

const (
	// EffectRepaint asks the view to redraw.
	EffectRepaint EffectKind = iota
	// EffectSelectionStarted fires when a new in-progress shape begins.
	EffectSelectionStarted
	// EffectShapeConfirmed carries the reference of the newly stored shape.
	EffectShapeConfirmed
	// EffectAreaEdited carries the reference of a confirmed shape that was
	// modified by dragging, vertex insertion or removal.
	EffectAreaEdited
	// EffectFocusCleared fires when the focused shape is released.
	EffectFocusCleared
	// EffectScaleChanged carries the new zoom factor.
	EffectScaleChanged
	EffectPrevImage
	EffectNextImage
)

// Effect is a side effect produced by Handle.
type Effect struct {
	Kind  EffectKind
	Ref   annotation.ShapeRef
	Scale float64
}

// Viewport abstracts the scrollable area hosting the image so that middle
// button panning can move it.
type Viewport interface {
	Offset() geometry.Point
	SetOffset(geometry.Point)
	Size() (width, height int)
}
