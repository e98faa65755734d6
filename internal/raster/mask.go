// Package raster converts annotation shapes into dense per-pixel label masks.
package raster

import (
	"context"

	"image-labeler/internal/annotation"
	"image-labeler/pkg/geometry"
)

// Mask holds one label id per pixel in row-major order.
type Mask struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Labels []int `json:"labels"`
}

// MaxPixels bounds the size of a mask.
const MaxPixels = 1 << 28

// NewMask allocates a background-filled mask. Negative sizes, and sizes
// whose pixel count exceeds MaxPixels, give an empty 0x0 mask.
func NewMask(width, height int) *Mask {
	if width <= 0 || height <= 0 || width > MaxPixels/height {
		return &Mask{}
	}
	return &Mask{Width: width, Height: height, Labels: make([]int, width*height)}
}

// At returns the label at (x, y), or BackgroundID outside the mask.
func (m *Mask) At(x, y int) int {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return annotation.BackgroundID
	}
	return m.Labels[y*m.Width+x]
}

// Set writes the label at (x, y). Out-of-range writes are ignored.
func (m *Mask) Set(x, y, label int) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Labels[y*m.Width+x] = label
}

// Row returns the labels of row y.
func (m *Mask) Row(y int) []int {
	if y < 0 || y >= m.Height {
		return nil
	}
	return m.Labels[y*m.Width : (y+1)*m.Width]
}

// Build rasterizes boxes then polygons over a background of 0. Within each
// group later shapes overwrite earlier ones, and every polygon overwrites
// every box.
func Build(width, height int, boxes []annotation.BoundingBox, polygons []annotation.Polygon) *Mask {
	m, _ := build(context.Background(), width, height, boxes, polygons)
	return m
}

// BuildSnapshot is Build over a store snapshot. It checks ctx between rows
// and returns ctx.Err() if cancelled.
func BuildSnapshot(ctx context.Context, width, height int, snap annotation.Snapshot) (*Mask, error) {
	return build(ctx, width, height, snap.Boxes, snap.Polygons)
}

func build(ctx context.Context, width, height int, boxes []annotation.BoundingBox, polygons []annotation.Polygon) (*Mask, error) {
	m := NewMask(width, height)
	bounds := geometry.RectXYWH(0, 0, m.Width, m.Height)

	for _, b := range boxes {
		r := b.Rect.Normalize()
		area := intersect(r, bounds)
		for y := area.Min.Y; y < area.Max.Y; y++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			row := m.Row(y)
			for x := area.Min.X; x < area.Max.X; x++ {
				row[x] = b.LabelID
			}
		}
	}

	for _, p := range polygons {
		if len(p.Points) < 3 {
			continue
		}
		// The bounding rect's Max is the largest vertex, so the scan area
		// extends one pixel past it.
		br := p.Bounds()
		br.Max = br.Max.Add(geometry.Pt(1, 1))
		area := intersect(br, bounds)
		for y := area.Min.Y; y < area.Max.Y; y++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			row := m.Row(y)
			for x := area.Min.X; x < area.Max.X; x++ {
				if geometry.ContainsPoint(p.Points, geometry.Pt(x, y)) {
					row[x] = p.LabelID
				}
			}
		}
	}

	return m, nil
}

func intersect(a, b geometry.Rect) geometry.Rect {
	r := geometry.Rect{
		Min: geometry.Pt(max(a.Min.X, b.Min.X), max(a.Min.Y, b.Min.Y)),
		Max: geometry.Pt(min(a.Max.X, b.Max.X), min(a.Max.Y, b.Max.Y)),
	}
	if r.Max.X < r.Min.X {
		r.Max.X = r.Min.X
	}
	if r.Max.Y < r.Min.Y {
		r.Max.Y = r.Min.Y
	}
	return r
}
