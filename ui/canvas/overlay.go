package canvas

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"image-labeler/internal/annotation"
	"image-labeler/internal/app"
	"image-labeler/internal/raster"
)

// DefaultMaskOpacity is the blend factor of the mask preview.
const DefaultMaskOpacity = 0.45

// MaskOverlay previews the label mask that a segmented export would write,
// blended over the image. The colorized mask is cached until Invalidate.
type MaskOverlay struct {
	visible bool
	opacity float64

	colored *image.RGBA
	scaled  *image.RGBA
	scale   float64
}

// NewMaskOverlay creates a hidden overlay.
func NewMaskOverlay() *MaskOverlay {
	return &MaskOverlay{opacity: DefaultMaskOpacity}
}

// Visible reports whether the overlay is drawn.
func (o *MaskOverlay) Visible() bool { return o.visible }

// SetVisible shows or hides the overlay.
func (o *MaskOverlay) SetVisible(v bool) { o.visible = v }

// SetOpacity sets the blend factor, clamped to [0, 1].
func (o *MaskOverlay) SetOpacity(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	o.opacity = v
}

// Invalidate drops the cached mask after the shapes or colors changed.
func (o *MaskOverlay) Invalidate() {
	o.colored = nil
	o.scaled = nil
}

// Composite blends the mask of state's shapes over output, which holds
// the image at scale. Background pixels are left untouched.
func (o *MaskOverlay) Composite(output *image.RGBA, state *app.State, scale float64) {
	if !o.visible || o.opacity <= 0 {
		return
	}
	w, h := state.Machine().ImageSize()
	if w == 0 || h == 0 {
		return
	}
	if o.colored == nil {
		store := state.Store()
		mask := raster.Build(w, h, store.Boxes(), store.Polygons())
		o.colored = raster.Colorize(mask, state.Palette())
		o.scaled = nil
		o.keepLabeled(mask)
	}
	if o.scaled == nil || o.scale != scale {
		o.scaled = image.NewRGBA(output.Bounds())
		xdraw.NearestNeighbor.Scale(o.scaled, o.scaled.Bounds(), o.colored, o.colored.Bounds(), xdraw.Src, nil)
		o.scale = scale
	}
	blend(output, o.scaled, o.opacity)
}

// keepLabeled clears the alpha of background pixels so blend skips them.
func (o *MaskOverlay) keepLabeled(mask *raster.Mask) {
	b := o.colored.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.At(x, y) == annotation.BackgroundID {
				o.colored.Pix[o.colored.PixOffset(x, y)+3] = 0
			}
		}
	}
}

// blend mixes src over dst at opacity wherever src is opaque.
func blend(dst, src *image.RGBA, opacity float64) {
	b := dst.Bounds().Intersect(src.Bounds())
	inv := 1 - opacity
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := src.PixOffset(x, y)
			if src.Pix[si+3] == 0 {
				continue
			}
			di := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				dst.Pix[di+c] = uint8(float64(src.Pix[si+c])*opacity + float64(dst.Pix[di+c])*inv)
			}
		}
	}
}
