package raster

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"image-labeler/internal/annotation"
	"image-labeler/pkg/geometry"
)

// LabelCoverage is the pixel coverage of one label in a mask.
type LabelCoverage struct {
	Label    int     `json:"label"`
	Pixels   int     `json:"pixels"`
	Fraction float64 `json:"fraction"`
}

// Coverage summarizes a mask and the shapes it was built from.
type Coverage struct {
	Labels []LabelCoverage `json:"labels"`
	// LabeledFraction is the share of non-background pixels.
	LabeledFraction float64 `json:"labeled_fraction"`
	// MeanShapeArea and ShapeAreaStdDev describe the geometric areas of the
	// shapes, independent of overlap.
	MeanShapeArea   float64 `json:"mean_shape_area"`
	ShapeAreaStdDev float64 `json:"shape_area_stddev"`
}

// Stats computes per-label pixel coverage, sorted by label id.
func Stats(m *Mask, snap annotation.Snapshot) Coverage {
	counts := map[int]int{}
	for _, id := range m.Labels {
		counts[id]++
	}

	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	pixels := make([]float64, len(ids))
	for i, id := range ids {
		pixels[i] = float64(counts[id])
	}
	total := floats.Sum(pixels)

	var cov Coverage
	for i, id := range ids {
		lc := LabelCoverage{Label: id, Pixels: counts[id]}
		if total > 0 {
			lc.Fraction = pixels[i] / total
		}
		cov.Labels = append(cov.Labels, lc)
	}
	if total > 0 {
		cov.LabeledFraction = (total - float64(counts[annotation.BackgroundID])) / total
	}

	areas := ShapeAreas(snap)
	if len(areas) > 0 {
		cov.MeanShapeArea, cov.ShapeAreaStdDev = stat.MeanStdDev(areas, nil)
		if len(areas) == 1 {
			cov.ShapeAreaStdDev = 0
		}
	}
	return cov
}

// ShapeAreas returns the geometric area of every box and polygon.
func ShapeAreas(snap annotation.Snapshot) []float64 {
	areas := make([]float64, 0, len(snap.Boxes)+len(snap.Polygons))
	for _, b := range snap.Boxes {
		r := b.Rect.Normalize()
		areas = append(areas, float64(r.Width()*r.Height()))
	}
	for _, p := range snap.Polygons {
		areas = append(areas, geometry.PolygonArea(p.Points))
	}
	return areas
}
