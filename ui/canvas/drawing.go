package canvas

import (
	"image"
	"image/color"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"image-labeler/internal/render"
	"image-labeler/pkg/geometry"
)

// Stroke patterns as on/off pixel runs.
var (
	dashPattern = []int{6, 4}
	dotPattern  = []int{2, 3}
)

// stroke tracks the position inside the dash pattern so that it continues
// across the segments of one outline.
type stroke struct {
	col     color.RGBA
	width   int
	pattern []int
	phase   int
}

func newStroke(cmd render.Command) *stroke {
	s := &stroke{col: cmd.Color, width: cmd.Width}
	if s.width < 1 {
		s.width = 1
	}
	switch cmd.Style {
	case render.LineDash:
		s.pattern = dashPattern
	case render.LineDot:
		s.pattern = dotPattern
	}
	return s
}

// on reports whether the next pixel along the stroke is painted.
func (s *stroke) on() bool {
	if s.pattern == nil {
		return true
	}
	period := 0
	for _, n := range s.pattern {
		period += n
	}
	pos := s.phase % period
	s.phase++
	for i, n := range s.pattern {
		if pos < n {
			return i%2 == 0
		}
		pos -= n
	}
	return true
}

// drawCommand rasterizes one render command onto output.
func drawCommand(output *image.RGBA, cmd render.Command) {
	switch cmd.Kind {
	case render.CmdRect:
		if len(cmd.Points) < 2 {
			return
		}
		r := geometry.RectFromCorners(cmd.Points[0], cmd.Points[1]).Normalize()
		c := r.Corners()
		drawOutline(output, c[:], newStroke(cmd))
	case render.CmdPolygon:
		if cmd.Filled {
			fillPolygon(output, cmd.Points, cmd.Color)
		}
		drawOutline(output, cmd.Points, newStroke(cmd))
	case render.CmdCircle:
		if len(cmd.Points) == 0 {
			return
		}
		drawCircle(output, cmd.Points[0], cmd.Radius, cmd.Width, cmd.Color, cmd.Filled)
	case render.CmdText:
		if len(cmd.Points) == 0 {
			return
		}
		drawText(output, cmd.Text, cmd.Points[0], cmd.Color)
	}
}

// drawOutline draws the closed outline through pts.
func drawOutline(output *image.RGBA, pts []geometry.Point, s *stroke) {
	n := len(pts)
	if n == 0 {
		return
	}
	if n == 1 {
		drawLine(output, pts[0], pts[0], s)
		return
	}
	for i := 0; i < n; i++ {
		drawLine(output, pts[i], pts[(i+1)%n], s)
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, p1, p2 geometry.Point, s *stroke) {
	x1, y1, x2, y2 := p1.X, p1.Y, p2.X, p2.Y

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	lo := -(s.width - 1) / 2
	hi := s.width / 2

	for {
		if s.on() {
			for t := lo; t <= hi; t++ {
				for u := lo; u <= hi; u++ {
					setPixel(output, x1+u, y1+t, s.col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// fillPolygon fills pts using a scanline even-odd fill.
func fillPolygon(output *image.RGBA, pts []geometry.Point, col color.RGBA) {
	if len(pts) < 3 {
		return
	}
	box := geometry.BoundingRect(pts)
	n := len(pts)
	var xs []float64
	for y := box.Min.Y; y <= box.Max.Y; y++ {
		fy := float64(y) + 0.5
		xs = xs[:0]
		for i := 0; i < n; i++ {
			p1, p2 := pts[i], pts[(i+1)%n]
			y1, y2 := float64(p1.Y), float64(p2.Y)
			if (y1 <= fy && y2 > fy) || (y2 <= fy && y1 > fy) {
				t := (fy - y1) / (y2 - y1)
				xs = append(xs, float64(p1.X)+t*float64(p2.X-p1.X))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(xs[i]); x <= int(xs[i+1]); x++ {
				setPixel(output, x, y, col)
			}
		}
	}
}

// drawCircle draws a filled or outlined circle of the given pen width.
func drawCircle(output *image.RGBA, center geometry.Point, radius, width int, col color.RGBA, filled bool) {
	if width < 1 {
		width = 1
	}
	r := float64(radius)
	r2 := r * r
	inner := r - float64(width)
	innerR2 := inner * inner
	if inner < 0 {
		innerR2 = 0
	}

	for y := center.Y - radius - 1; y <= center.Y+radius+1; y++ {
		for x := center.X - radius - 1; x <= center.X+radius+1; x++ {
			dx := float64(x - center.X)
			dy := float64(y - center.Y)
			dist2 := dx*dx + dy*dy
			if dist2 > r2 {
				continue
			}
			if filled || dist2 >= innerR2 {
				setPixel(output, x, y, col)
			}
		}
	}
}

// drawText draws label with its top-left corner at anchor.
func drawText(output *image.RGBA, label string, anchor geometry.Point, col color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  output,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(anchor.X, anchor.Y+face.Ascent),
	}
	d.DrawString(label)
}

func setPixel(output *image.RGBA, x, y int, col color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(output.Bounds()) {
		return
	}
	output.SetRGBA(x, y, col)
}
