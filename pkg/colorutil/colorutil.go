// Package colorutil provides shared color utilities for the image labeler.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// FormatARGB encodes a color as the lowercase 0xAARRGGBB hex string used in
// legend files, without prefix.
func FormatARGB(c color.RGBA) string {
	v := uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	return strconv.FormatUint(uint64(v), 16)
}

// ParseARGB decodes a hex 0xAARRGGBB (or RRGGBB) string. The alpha component
// is ignored and the result is always opaque.
func ParseARGB(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

// GenerateLabelColors produces n label colors. Index 0 (background) is black.
// The remaining labels cycle through five patterns that darken one or two
// channels of white by an intensity step; after every five labels the step
// grows by the same coefficient, wrapping at 8 bits.
func GenerateLabelColors(n int) []color.RGBA {
	if n <= 0 {
		return nil
	}

	coeff := uint8((0xff / n) * 3)
	colors := make([]color.RGBA, 0, n)
	colors = append(colors, Black)

	step := coeff
	j := 1
	for i := 1; i < n; i++ {
		if j == 6 {
			step += coeff
			j = 1
		}

		dim := 0xff - step
		var c color.RGBA
		switch j {
		case 1:
			c = color.RGBA{R: dim, G: 0xff, B: 0xff, A: 0xff}
		case 2:
			c = color.RGBA{R: 0xff, G: dim, B: 0xff, A: 0xff}
		case 3:
			c = color.RGBA{R: 0xff, G: 0xff, B: dim, A: 0xff}
		case 4:
			c = color.RGBA{R: dim, G: 0xff, B: dim, A: 0xff}
		case 5:
			c = color.RGBA{R: 0xff, G: dim, B: dim, A: 0xff}
		}
		j++
		colors = append(colors, c)
	}
	return colors
}
