package annotation

import (
	"image-labeler/pkg/geometry"
)

// Store owns the confirmed boxes and polygons in insertion order. The index
// of a shape is its position, used by ShapeRef and by serialization.
// Operations given a stale index return false and leave the store unchanged.
type Store struct {
	boxes    []BoundingBox
	polygons []Polygon
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot is an immutable deep copy of the store contents, safe to hand to
// another goroutine.
type Snapshot struct {
	Boxes    []BoundingBox `json:"boxes"`
	Polygons []Polygon     `json:"polygons"`
}

// AddBox appends a box and returns its index.
func (s *Store) AddBox(b BoundingBox) int {
	s.boxes = append(s.boxes, b)
	return len(s.boxes) - 1
}

// AddPolygon appends a copy of the polygon and returns its index.
func (s *Store) AddPolygon(p Polygon) int {
	s.polygons = append(s.polygons, p.Clone())
	return len(s.polygons) - 1
}

// Len returns the number of shapes of the given kind.
func (s *Store) Len(kind FigureKind) int {
	switch kind {
	case FigureRect:
		return len(s.boxes)
	case FigurePoly:
		return len(s.polygons)
	}
	return 0
}

// Box returns the box at index i.
func (s *Store) Box(i int) (BoundingBox, bool) {
	if i < 0 || i >= len(s.boxes) {
		return BoundingBox{LabelID: UnlabeledID}, false
	}
	return s.boxes[i], true
}

// Polygon returns a copy of the polygon at index i.
func (s *Store) Polygon(i int) (Polygon, bool) {
	if i < 0 || i >= len(s.polygons) {
		return Polygon{LabelID: UnlabeledID}, false
	}
	return s.polygons[i].Clone(), true
}

// Boxes returns a copy of all boxes.
func (s *Store) Boxes() []BoundingBox {
	out := make([]BoundingBox, len(s.boxes))
	copy(out, s.boxes)
	return out
}

// Polygons returns a deep copy of all polygons.
func (s *Store) Polygons() []Polygon {
	out := make([]Polygon, len(s.polygons))
	for i, p := range s.polygons {
		out[i] = p.Clone()
	}
	return out
}

// RemoveAt deletes the shape at index i; later shapes shift down by one.
func (s *Store) RemoveAt(kind FigureKind, i int) bool {
	switch kind {
	case FigureRect:
		if i < 0 || i >= len(s.boxes) {
			return false
		}
		s.boxes = append(s.boxes[:i], s.boxes[i+1:]...)
		return true
	case FigurePoly:
		if i < 0 || i >= len(s.polygons) {
			return false
		}
		s.polygons = append(s.polygons[:i], s.polygons[i+1:]...)
		return true
	}
	return false
}

// ReplaceAt overwrites the shape at index i. The shape must be of the given kind.
func (s *Store) ReplaceAt(kind FigureKind, i int, shape Shape) bool {
	if shape == nil || shape.Kind() != kind {
		return false
	}
	switch v := shape.(type) {
	case BoundingBox:
		if i < 0 || i >= len(s.boxes) {
			return false
		}
		s.boxes[i] = v
	case Polygon:
		if i < 0 || i >= len(s.polygons) {
			return false
		}
		s.polygons[i] = v.Clone()
	default:
		return false
	}
	return true
}

// SetBoxCorner moves one corner of box i, keeping the opposite corner fixed.
// The box may become inverted until NormalizeBox is called.
func (s *Store) SetBoxCorner(i, corner int, p geometry.Point) bool {
	if i < 0 || i >= len(s.boxes) || corner < 0 || corner > 3 {
		return false
	}
	s.boxes[i].Rect = s.boxes[i].Rect.SetCorner(corner, p)
	return true
}

// NormalizeBox re-normalizes box i. It returns true if the box was inverted.
func (s *Store) NormalizeBox(i int) bool {
	if i < 0 || i >= len(s.boxes) {
		return false
	}
	if s.boxes[i].IsNormalized() {
		return false
	}
	s.boxes[i] = s.boxes[i].Normalize()
	return true
}

// SetPolygonVertex overwrites vertex v of polygon i.
func (s *Store) SetPolygonVertex(i, v int, p geometry.Point) bool {
	if i < 0 || i >= len(s.polygons) {
		return false
	}
	pts := s.polygons[i].Points
	if v < 0 || v >= len(pts) {
		return false
	}
	pts[v] = p
	return true
}

// InsertVertex inserts p before vertex v of polygon i.
func (s *Store) InsertVertex(i, v int, p geometry.Point) bool {
	if i < 0 || i >= len(s.polygons) {
		return false
	}
	pts := s.polygons[i].Points
	if v < 0 || v > len(pts) {
		return false
	}
	s.polygons[i].Points = geometry.InsertPoint(pts, v, p)
	return true
}

// RemoveVertex deletes vertex v of polygon i. No minimum vertex count is kept.
func (s *Store) RemoveVertex(i, v int) bool {
	if i < 0 || i >= len(s.polygons) {
		return false
	}
	pts := s.polygons[i].Points
	if v < 0 || v >= len(pts) {
		return false
	}
	s.polygons[i].Points = geometry.RemovePoint(pts, v)
	return true
}

// SetLabel changes the label of shape i.
func (s *Store) SetLabel(kind FigureKind, i, label int) bool {
	switch kind {
	case FigureRect:
		if i < 0 || i >= len(s.boxes) {
			return false
		}
		s.boxes[i].LabelID = label
		return true
	case FigurePoly:
		if i < 0 || i >= len(s.polygons) {
			return false
		}
		s.polygons[i].LabelID = label
		return true
	}
	return false
}

// RemapLabel mirrors a palette removal: shapes labeled removed fall back to
// the background label and every higher id shifts down by one. It returns
// the number of shapes that changed.
func (s *Store) RemapLabel(removed int) int {
	if removed < 1 {
		return 0
	}
	remap := func(id int) int {
		switch {
		case id == removed:
			return BackgroundID
		case id > removed:
			return id - 1
		}
		return id
	}

	changed := 0
	for i := range s.boxes {
		if id := remap(s.boxes[i].LabelID); id != s.boxes[i].LabelID {
			s.boxes[i].LabelID = id
			changed++
		}
	}
	for i := range s.polygons {
		if id := remap(s.polygons[i].LabelID); id != s.polygons[i].LabelID {
			s.polygons[i].LabelID = id
			changed++
		}
	}
	return changed
}

// Clear removes every shape.
func (s *Store) Clear() {
	s.boxes = nil
	s.polygons = nil
}

// Snapshot returns a deep copy of the store.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Boxes: s.Boxes(), Polygons: s.Polygons()}
}

// Restore replaces the store contents with a snapshot.
func (s *Store) Restore(snap Snapshot) {
	s.Clear()
	for _, b := range snap.Boxes {
		s.AddBox(b)
	}
	for _, p := range snap.Polygons {
		s.AddPolygon(p)
	}
}

// Empty reports whether the snapshot holds no shapes.
func (snap Snapshot) Empty() bool {
	return len(snap.Boxes) == 0 && len(snap.Polygons) == 0
}
