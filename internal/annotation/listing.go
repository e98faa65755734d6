package annotation

import (
	"fmt"
	"strconv"
	"strings"
)

// Listing projects the store into the editable text lines shown in the area
// list, boxes first. The leading number is the line position.
func Listing(s *Store) []string {
	lines := make([]string, 0, s.Len(FigureRect)+s.Len(FigurePoly))
	for i, b := range s.boxes {
		lines = append(lines, ListingLine(len(lines), FigureRect, i, b))
	}
	for i, p := range s.polygons {
		lines = append(lines, ListingLine(len(lines), FigurePoly, i, p))
	}
	return lines
}

// ListingLine formats a single area-list line.
func ListingLine(pos int, kind FigureKind, index int, shape Shape) string {
	switch v := shape.(type) {
	case BoundingBox:
		return fmt.Sprintf("%d: BBox #%d; LabelID: %d; data:%s ", pos, index, v.LabelID, FormatBox(v))
	case Polygon:
		return fmt.Sprintf("%d: Poly #%d; LabelID: %d; points:%s", pos, index, v.LabelID, FormatPolygon(v))
	}
	return fmt.Sprintf("%d: %s #%d;", pos, kind, index)
}

// RefForLine maps an area-list position back to the shape it lists.
func RefForLine(s *Store, pos int) (FigureKind, int, bool) {
	nb := s.Len(FigureRect)
	switch {
	case pos < 0:
		return FigureNone, -1, false
	case pos < nb:
		return FigureRect, pos, true
	case pos < nb+s.Len(FigurePoly):
		return FigurePoly, pos - nb, true
	}
	return FigureNone, -1, false
}

// ParseListing reads an edited area-list line. The shape index cannot be
// changed by editing; the label id and geometry can.
func ParseListing(line string) (kind FigureKind, index int, shape Shape, ok bool) {
	switch {
	case strings.Contains(line, "BBox"):
		kind = FigureRect
	case strings.Contains(line, "Poly"):
		kind = FigurePoly
	default:
		return FigureNone, -1, nil, false
	}

	index, ok = numberBetween(line, kind.String()+" #", ";")
	if !ok || index < 0 {
		return FigureNone, -1, nil, false
	}
	label, ok := numberBetween(line, "LabelID: ", ";")
	if !ok || label < 0 {
		return FigureNone, -1, nil, false
	}

	if kind == FigureRect {
		data, found := after(line, "data:")
		if !found {
			return FigureNone, -1, nil, false
		}
		b, ok := ParseBox(data)
		if !ok {
			return FigureNone, -1, nil, false
		}
		b.LabelID = label
		return kind, index, b, true
	}

	data, found := after(line, "points:")
	if !found {
		return FigureNone, -1, nil, false
	}
	p, ok := ParsePolygon(data)
	if !ok {
		return FigureNone, -1, nil, false
	}
	p.LabelID = label
	return kind, index, p, true
}

func numberBetween(s, start, end string) (int, bool) {
	rest, found := after(s, start)
	if !found {
		return 0, false
	}
	i := strings.Index(rest, end)
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest[:i]))
	if err != nil {
		return 0, false
	}
	return n, true
}

func after(s, marker string) (string, bool) {
	i := strings.Index(s, marker)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(marker):]
	if strings.TrimSpace(rest) == "" {
		return "", false
	}
	return rest, true
}
