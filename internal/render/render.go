// Package render turns the annotation state into toolkit-independent draw
// commands in widget (scaled) coordinates.
package render

import (
	"image/color"
	"strconv"

	"image-labeler/internal/annotation"
	"image-labeler/internal/interaction"
	"image-labeler/pkg/colorutil"
	"image-labeler/pkg/geometry"
)

// Palette resolves label colors and the emphasized label.
type Palette interface {
	ColorFor(id int) color.RGBA
	MainLabel() int
}

// Pen widths and radii, in widget pixels.
const (
	InProgressWidth = 1
	ShapeWidth      = 2
	EmphasisWidth   = 3
	VertexPenWidth  = 2
	VertexRadius    = 6
	LabelInset      = 5
)

// CommandKind identifies a draw primitive.
type CommandKind int

const (
	CmdRect CommandKind = iota
	CmdPolygon
	CmdCircle
	CmdText
)

// LineStyle is the stroke pattern.
type LineStyle int

const (
	LineSolid LineStyle = iota
	LineDash
	LineDot
)

// Command is a single draw primitive.
//
//	CmdRect:    Points[0] top-left, Points[1] bottom-right
//	CmdPolygon: Points are the vertices, closed
//	CmdCircle:  Points[0] center, Radius
//	CmdText:    Points[0] top-left anchor, Text
type Command struct {
	Kind   CommandKind
	Points []geometry.Point
	Radius int
	Text   string
	Color  color.RGBA
	Width  int
	Style  LineStyle
	Filled bool
}

// Frame is everything needed to draw one view of the annotations.
type Frame struct {
	Scale float64

	InProgressRect    geometry.Rect
	HasInProgressRect bool
	InProgressPolygon []geometry.Point

	Boxes    []annotation.BoundingBox
	Polygons []annotation.Polygon

	Focused       annotation.ShapeRef
	Hovered       annotation.ShapeRef
	SelectedPoint int

	Palette Palette
}

// FrameFrom captures the current state of a machine and its store.
func FrameFrom(m *interaction.Machine, p Palette) Frame {
	f := Frame{
		Scale:         m.Scale(),
		Boxes:         m.Store().Boxes(),
		Polygons:      m.Store().Polygons(),
		Focused:       m.Focused(),
		Hovered:       m.Hovered(),
		SelectedPoint: m.SelectedPoint(),
		Palette:       p,
	}
	switch m.Tool() {
	case interaction.ToolBBox:
		f.InProgressRect, f.HasInProgressRect = m.InProgressRect()
	case interaction.ToolPolygon:
		f.InProgressPolygon = m.InProgressPolygon()
	}
	return f
}

// Render produces the draw commands for a frame: the in-progress shape,
// then boxes, then polygons.
func Render(f Frame) []Command {
	scale := f.Scale
	if scale <= 0 {
		scale = 1
	}
	main := -1
	if f.Palette != nil {
		main = f.Palette.MainLabel()
	}
	colorFor := func(id int) color.RGBA {
		if f.Palette == nil {
			return colorutil.White
		}
		return f.Palette.ColorFor(id)
	}

	var cmds []Command

	if f.HasInProgressRect {
		r := f.InProgressRect.Scale(scale)
		cmds = append(cmds, Command{
			Kind:   CmdRect,
			Points: []geometry.Point{r.Min, r.Max},
			Color:  colorutil.Black,
			Width:  InProgressWidth,
			Style:  LineDash,
		})
	}
	if len(f.InProgressPolygon) > 0 {
		cmds = append(cmds, Command{
			Kind:   CmdPolygon,
			Points: geometry.ScalePoints(f.InProgressPolygon, scale),
			Color:  colorutil.Black,
			Width:  InProgressWidth,
			Style:  LineDash,
		})
	}

	for i, b := range f.Boxes {
		c := colorFor(b.LabelID)
		width, style := strokeFor(b.LabelID, main)
		r := b.Rect.Normalize().Scale(scale)

		focused := f.Focused.Figure == annotation.FigureRect && f.Focused.Shape == i
		if focused {
			width, style = EmphasisWidth, LineDot
			// handles keep the stored corner order that hit testing indexes
			for j, corner := range b.Rect.Scale(scale).Corners() {
				hovered := f.Hovered.Figure == annotation.FigureRect && f.Hovered.Shape == i && f.Hovered.Vertex == j
				cmds = append(cmds, vertexCircle(corner, c, hovered))
			}
		}

		cmds = append(cmds,
			Command{Kind: CmdRect, Points: []geometry.Point{r.Min, r.Max}, Color: c, Width: width, Style: style},
			Command{
				Kind:   CmdText,
				Points: []geometry.Point{r.Min.Add(geometry.Pt(LabelInset, LabelInset))},
				Text:   strconv.Itoa(b.LabelID),
				Color:  c,
			},
		)
	}

	for i, p := range f.Polygons {
		c := colorFor(p.LabelID)
		width, style := strokeFor(p.LabelID, main)
		pts := geometry.ScalePoints(p.Points, scale)

		focused := f.Focused.Figure == annotation.FigurePoly && f.Focused.Shape == i
		if focused {
			width, style = EmphasisWidth, LineDot
			for j, pt := range pts {
				hovered := f.Hovered.Figure == annotation.FigurePoly && f.Hovered.Shape == i && f.Hovered.Vertex == j
				cmds = append(cmds, vertexCircle(pt, c, hovered || j == f.SelectedPoint))
			}
		}

		cmds = append(cmds,
			Command{Kind: CmdPolygon, Points: pts, Color: c, Width: width, Style: style},
			Command{
				Kind:   CmdText,
				Points: []geometry.Point{geometry.BoundingRect(pts).Center()},
				Text:   strconv.Itoa(p.LabelID),
				Color:  c,
			},
		)
	}

	return cmds
}

func strokeFor(label, main int) (int, LineStyle) {
	if label == main {
		return EmphasisWidth, LineSolid
	}
	return ShapeWidth, LineSolid
}

func vertexCircle(center geometry.Point, c color.RGBA, filled bool) Command {
	return Command{
		Kind:   CmdCircle,
		Points: []geometry.Point{center},
		Radius: VertexRadius,
		Color:  c,
		Width:  VertexPenWidth,
		Style:  LineSolid,
		Filled: filled,
	}
}
