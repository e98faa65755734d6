// Package canvas provides the annotation canvas: the current image at the
// editor scale with the labeled shapes drawn over it.
package canvas

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"image-labeler/internal/app"
	"image-labeler/internal/interaction"
	"image-labeler/internal/render"
	"image-labeler/pkg/geometry"
)

// placeholderSize is the content size when no image is open.
var placeholderSize = fyne.NewSize(400, 300)

// AnnotationCanvas displays the current image of an app.State and feeds
// pointer and keyboard input to its interaction machine.
type AnnotationCanvas struct {
	widget.BaseWidget

	state *app.State

	// Display state
	raster  *fynecanvas.Raster
	scroll  *zoomScroll
	content *draggableContent
	imgSize fyne.Size

	// Scaled copy of the image, rebuilt when the image or scale changes
	scaled      *image.RGBA
	scaledSrc   image.Image
	scaledScale float64

	overlay *MaskOverlay

	// Buttons currently held, tracked across MouseDown/MouseUp
	buttons interaction.Button

	// Fit to window
	fitToWindow    bool
	lastScrollSize fyne.Size

	// Callbacks
	onZoomChange func(scale float64)
	onPointer    func(pos geometry.Point)
}

// zoomScroll wraps a scroll container; ctrl+wheel zooms, plain wheel scrolls.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *AnnotationCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *AnnotationCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	zs.canvas.wheel(ev)
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Refresh refreshes the scroll container.
func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// viewport exposes the scroll container to the interaction machine for
// middle-button panning.
type viewport struct {
	scroll *container.Scroll
}

var _ interaction.Viewport = viewport{}

func (v viewport) Offset() geometry.Point {
	return geometry.Pt(int(v.scroll.Offset.X), int(v.scroll.Offset.Y))
}

func (v viewport) SetOffset(p geometry.Point) {
	content := v.scroll.Content.MinSize()
	size := v.scroll.Size()
	v.scroll.Offset = fyne.NewPos(
		clampf(float32(p.X), 0, content.Width-size.Width),
		clampf(float32(p.Y), 0, content.Height-size.Height),
	)
	v.scroll.Refresh()
}

func (v viewport) Size() (int, int) {
	s := v.scroll.Size()
	return int(s.Width), int(s.Height)
}

func clampf(v, lo, hi float32) float32 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// draggableContent wraps the raster to receive mouse events. Event
// positions are relative to the content, i.e. scaled image coordinates.
type draggableContent struct {
	widget.BaseWidget
	canvas *AnnotationCanvas
	raster *fynecanvas.Raster
}

var (
	_ desktop.Mouseable      = (*draggableContent)(nil)
	_ desktop.Hoverable      = (*draggableContent)(nil)
	_ fyne.Draggable         = (*draggableContent)(nil)
	_ fyne.DoubleTappable    = (*draggableContent)(nil)
	_ fyne.Scrollable        = (*draggableContent)(nil)
	_ fyne.SecondaryTappable = (*draggableContent)(nil)
)

func newDraggableContent(ac *AnnotationCanvas, raster *fynecanvas.Raster) *draggableContent {
	dc := &draggableContent{
		canvas: ac,
		raster: raster,
	}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (dc *draggableContent) CreateRenderer() fyne.WidgetRenderer {
	return &draggableContentRenderer{content: dc}
}

func (dc *draggableContent) MinSize() fyne.Size {
	return dc.raster.MinSize()
}

func (dc *draggableContent) MouseDown(ev *desktop.MouseEvent) {
	b := buttonFor(ev.Button)
	dc.canvas.buttons |= b
	dc.canvas.dispatch(interaction.Event{
		Kind:      interaction.EventPointerDown,
		Pos:       toPoint(ev.Position),
		Buttons:   b,
		Modifiers: modifiersFor(ev.Modifier),
	})
}

func (dc *draggableContent) MouseUp(ev *desktop.MouseEvent) {
	b := buttonFor(ev.Button)
	dc.canvas.buttons &^= b
	dc.canvas.dispatch(interaction.Event{
		Kind:      interaction.EventPointerUp,
		Pos:       toPoint(ev.Position),
		Buttons:   b,
		Modifiers: modifiersFor(ev.Modifier),
	})
}

func (dc *draggableContent) MouseIn(ev *desktop.MouseEvent) {
	dc.MouseMoved(ev)
}

func (dc *draggableContent) MouseMoved(ev *desktop.MouseEvent) {
	dc.canvas.move(ev.Position, dc.canvas.buttons, modifiersFor(ev.Modifier))
}

func (dc *draggableContent) MouseOut() {
	dc.canvas.state.Machine().ClearHover()
	dc.canvas.Refresh()
}

// Dragged arrives instead of MouseMoved while the primary button is held.
func (dc *draggableContent) Dragged(ev *fyne.DragEvent) {
	dc.canvas.move(ev.Position, dc.canvas.buttons|interaction.ButtonLeft, modifiersFor(currentModifiers()))
}

func (dc *draggableContent) DragEnd() {}

func (dc *draggableContent) DoubleTapped(ev *fyne.PointEvent) {
	dc.canvas.dispatch(interaction.Event{
		Kind:      interaction.EventDoubleClick,
		Pos:       toPoint(ev.Position),
		Buttons:   interaction.ButtonLeft,
		Modifiers: modifiersFor(currentModifiers()),
	})
}

// TappedSecondary is handled through MouseDown; implementing it keeps the
// right click from bubbling to the window.
func (dc *draggableContent) TappedSecondary(*fyne.PointEvent) {}

func (dc *draggableContent) Scrolled(ev *fyne.ScrollEvent) {
	dc.canvas.wheel(ev)
}

type draggableContentRenderer struct {
	content *draggableContent
}

func (r *draggableContentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *draggableContentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *draggableContentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *draggableContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *draggableContentRenderer) Destroy() {}

// NewAnnotationCanvas creates a canvas bound to state and attaches its scroll
// area to the state's interaction machine.
func NewAnnotationCanvas(state *app.State) *AnnotationCanvas {
	ac := &AnnotationCanvas{
		state:   state,
		imgSize: placeholderSize,
		overlay: NewMaskOverlay(),
	}

	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels
	ac.raster.SetMinSize(ac.imgSize)

	ac.content = newDraggableContent(ac, ac.raster)
	ac.scroll = newZoomScroll(ac.content, ac)
	state.Machine().SetViewport(viewport{scroll: ac.scroll.scroll})

	state.On(app.EventImageLoaded, func(interface{}) {
		ac.scroll.scroll.Offset = fyne.NewPos(0, 0)
		ac.overlay.Invalidate()
		if ac.fitToWindow {
			ac.FitToWindow()
		}
		ac.updateContentSize()
	})
	state.On(app.EventAreasChanged, func(interface{}) {
		ac.overlay.Invalidate()
		ac.Refresh()
	})
	state.On(app.EventLabelsChanged, func(interface{}) {
		ac.overlay.Invalidate()
		ac.Refresh()
	})
	state.On(app.EventSelectionChanged, func(interface{}) { ac.Refresh() })

	ac.ExtendBaseWidget(ac)
	return ac
}

// Container returns the canvas container for embedding in layouts.
func (ac *AnnotationCanvas) Container() fyne.CanvasObject {
	return ac.scroll
}

// Overlay returns the mask preview overlay.
func (ac *AnnotationCanvas) Overlay() *MaskOverlay {
	return ac.overlay
}

// SetShowMask toggles the label mask preview.
func (ac *AnnotationCanvas) SetShowMask(show bool) {
	ac.overlay.SetVisible(show)
	ac.Refresh()
}

// dispatch sends ev to the state and applies the view-side effects.
func (ac *AnnotationCanvas) dispatch(ev interaction.Event) {
	effects := ac.state.HandleEvent(ev)
	repaint := false
	for _, e := range effects {
		switch e.Kind {
		case interaction.EffectScaleChanged:
			ac.fitToWindow = false
			ac.zoomChanged(e.Scale)
		default:
			repaint = true
		}
	}
	if repaint {
		ac.Refresh()
	}
}

func (ac *AnnotationCanvas) move(pos fyne.Position, buttons interaction.Button, mods interaction.Modifier) {
	p := toPoint(pos)
	ac.dispatch(interaction.Event{
		Kind:      interaction.EventPointerMove,
		Pos:       p,
		Buttons:   buttons,
		Modifiers: mods,
	})
	if ac.onPointer != nil {
		ac.onPointer(p.Div(ac.state.Machine().Scale()))
	}
}

// wheel zooms with ctrl held and scrolls otherwise.
func (ac *AnnotationCanvas) wheel(ev *fyne.ScrollEvent) {
	mods := modifiersFor(currentModifiers())
	if mods == interaction.ModControl {
		ac.dispatch(interaction.Event{
			Kind:       interaction.EventWheel,
			Pos:        toPoint(ev.Position),
			Modifiers:  mods,
			WheelDelta: float64(ev.Scrolled.DY),
		})
		return
	}
	ac.scroll.scroll.Scrolled(ev)
}

// TypeKey feeds a key press to the machine. It reports whether the key is
// one the editor handles.
func (ac *AnnotationCanvas) TypeKey(name fyne.KeyName, mod fyne.KeyModifier) bool {
	key := keyFor(name)
	if key == interaction.KeyUnknown {
		return false
	}
	ac.dispatch(interaction.Event{
		Kind:      interaction.EventKeyPress,
		Key:       key,
		Modifiers: modifiersFor(mod),
	})
	// Undo and redo change the polygon without a repaint effect.
	ac.Refresh()
	return true
}

// SetZoom sets the editor scale, clamped by the machine.
func (ac *AnnotationCanvas) SetZoom(scale float64) {
	ac.zoomChanged(ac.state.Machine().SetScale(scale))
}

// GetZoom returns the current scale.
func (ac *AnnotationCanvas) GetZoom() float64 {
	return ac.state.Machine().Scale()
}

// ZoomIn increases the scale by one step.
func (ac *AnnotationCanvas) ZoomIn() {
	ac.fitToWindow = false
	ac.zoomChanged(ac.state.Machine().Zoom(true))
}

// ZoomOut decreases the scale by one step.
func (ac *AnnotationCanvas) ZoomOut() {
	ac.fitToWindow = false
	ac.zoomChanged(ac.state.Machine().Zoom(false))
}

func (ac *AnnotationCanvas) zoomChanged(scale float64) {
	ac.updateContentSize()
	if ac.onZoomChange != nil {
		ac.onZoomChange(scale)
	}
}

// FitToWindow adjusts the scale so the image fits the visible area.
func (ac *AnnotationCanvas) FitToWindow() {
	w, h := ac.state.Machine().ImageSize()
	if w == 0 || h == 0 {
		return
	}
	viewSize := ac.scroll.Size()
	if viewSize.Width <= 0 || viewSize.Height <= 0 {
		return
	}

	zoomX := float64(viewSize.Width) / float64(w)
	zoomY := float64(viewSize.Height) / float64(h)
	zoom := zoomX
	if zoomY < zoomX {
		zoom = zoomY
	}
	ac.SetZoom(zoom * 0.95)
}

// SetFitToWindow enables or disables auto-fit on resize.
func (ac *AnnotationCanvas) SetFitToWindow(fit bool) {
	ac.fitToWindow = fit
	if fit {
		ac.FitToWindow()
	}
}

// GetFitToWindow returns the current fit-to-window state.
func (ac *AnnotationCanvas) GetFitToWindow() bool {
	return ac.fitToWindow
}

// CheckResize auto-fits when the scroll container changed size.
func (ac *AnnotationCanvas) CheckResize(size fyne.Size) {
	if !ac.fitToWindow {
		return
	}
	if size.Width > 0 && size.Height > 0 && size != ac.lastScrollSize {
		ac.lastScrollSize = size
		ac.FitToWindow()
	}
}

// OnZoomChange sets a callback for scale changes.
func (ac *AnnotationCanvas) OnZoomChange(callback func(scale float64)) {
	ac.onZoomChange = callback
}

// OnPointer sets a callback receiving the pointer position in image
// coordinates.
func (ac *AnnotationCanvas) OnPointer(callback func(pos geometry.Point)) {
	ac.onPointer = callback
}

// Refresh redraws the canvas.
func (ac *AnnotationCanvas) Refresh() {
	ac.raster.Refresh()
}

// updateContentSize resizes the content to the scaled image.
func (ac *AnnotationCanvas) updateContentSize() {
	m := ac.state.Machine()
	w, h := m.ImageSize()
	if w == 0 || h == 0 || ac.state.ImageData() == nil {
		ac.imgSize = placeholderSize
	} else {
		ac.imgSize = fyne.NewSize(float32(float64(w)*m.Scale()), float32(float64(h)*m.Scale()))
	}

	ac.raster.SetMinSize(ac.imgSize)
	ac.raster.Resize(ac.imgSize)
	if ac.content != nil {
		ac.content.Resize(ac.imgSize)
		ac.content.Refresh()
	}
	ac.raster.Refresh()
	if ac.scroll != nil {
		ac.scroll.Refresh()
	}
}

// draw is the raster drawing function. The output is produced at the
// logical content size; fyne scales it to the device pixels it asked for.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	img := ac.state.ImageData()
	if img == nil {
		return image.NewUniform(color.Black)
	}
	m := ac.state.Machine()
	scale := m.Scale()

	base := ac.scaledImage(img, scale)
	output := image.NewRGBA(base.Bounds())
	copy(output.Pix, base.Pix)

	ac.overlay.Composite(output, ac.state, scale)

	for _, cmd := range render.Render(render.FrameFrom(m, ac.state.Palette())) {
		drawCommand(output, cmd)
	}
	return output
}

// scaledImage returns img resized by scale, reusing the previous result
// while neither changes.
func (ac *AnnotationCanvas) scaledImage(img image.Image, scale float64) *image.RGBA {
	if ac.scaled != nil && ac.scaledSrc == img && ac.scaledScale == scale {
		return ac.scaled
	}
	b := img.Bounds()
	dw := int(float64(b.Dx()) * scale)
	dh := int(float64(b.Dy()) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	var scaler xdraw.Scaler = xdraw.NearestNeighbor
	if scale < 1 {
		scaler = xdraw.ApproxBiLinear
	}
	scaler.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)

	ac.scaled, ac.scaledSrc, ac.scaledScale = dst, img, scale
	return dst
}

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &annotationCanvasRenderer{canvas: ac}
}

type annotationCanvasRenderer struct {
	canvas *AnnotationCanvas
}

func (r *annotationCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.scroll.Resize(size)
	r.canvas.CheckResize(size)
}

func (r *annotationCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *annotationCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *annotationCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *annotationCanvasRenderer) Destroy() {}
