package pascal

import (
	"image-labeler/internal/annotation"
	"image-labeler/pkg/geometry"
)

// Result counts what an import added.
type Result struct {
	Boxes     int
	Polygons  int
	NewLabels int
	Skipped   int
}

// Import adds objects as boxes and records as polygons. Labels are matched
// by name, case insensitively; unknown names are appended to the palette.
// Boxes without area and polygons with fewer than three points are skipped.
func Import(store *annotation.Store, palette *annotation.Palette, objects []Object, polygons []PolygonRecord) Result {
	var res Result
	labelFor := func(name string) int {
		before := palette.Len()
		id := palette.FindOrAdd(name)
		if palette.Len() > before {
			res.NewLabels++
		}
		return id
	}

	for _, obj := range objects {
		r := geometry.RectFromCorners(geometry.Pt(obj.XMin, obj.YMin), geometry.Pt(obj.XMax, obj.YMax)).Normalize()
		if r.Empty() {
			res.Skipped++
			continue
		}
		store.AddBox(annotation.BoundingBox{Rect: r, LabelID: labelFor(obj.Name)})
		res.Boxes++
	}

	for _, rec := range polygons {
		if len(rec.Points) < 3 {
			res.Skipped++
			continue
		}
		store.AddPolygon(annotation.Polygon{Points: rec.Points, LabelID: labelFor(rec.Name)})
		res.Polygons++
	}

	return res
}
