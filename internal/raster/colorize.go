package raster

import (
	"image"
	"image/color"

	"image-labeler/pkg/colorutil"
)

// Palette resolves label colors.
type Palette interface {
	ColorFor(id int) color.RGBA
}

// Colorize paints every pixel with the color of its label. A nil palette
// paints background black and everything else white.
func Colorize(m *Mask, p Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	cache := map[int]color.RGBA{}

	for y := 0; y < m.Height; y++ {
		row := m.Row(y)
		for x, id := range row {
			c, ok := cache[id]
			if !ok {
				c = colorOf(p, id)
				cache[id] = c
			}
			i := img.PixOffset(x, y)
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
		}
	}
	return img
}

func colorOf(p Palette, id int) color.RGBA {
	if p != nil {
		return p.ColorFor(id)
	}
	if id == 0 {
		return colorutil.Black
	}
	return colorutil.White
}
