package annotation

import (
	"strconv"
	"strings"

	"image-labeler/pkg/geometry"
)

// FormatBox encodes a box as "x;y;w;h;".
func FormatBox(b BoundingBox) string {
	r := b.Rect
	var sb strings.Builder
	writeInts(&sb, r.Min.X, r.Min.Y, r.Width(), r.Height())
	return sb.String()
}

// FormatPolygon encodes a polygon as "x0;y0;x1;y1;...;".
func FormatPolygon(p Polygon) string {
	var sb strings.Builder
	for _, pt := range p.Points {
		writeInts(&sb, pt.X, pt.Y)
	}
	return sb.String()
}

func writeInts(sb *strings.Builder, values ...int) {
	for _, v := range values {
		sb.WriteString(strconv.Itoa(v))
		sb.WriteByte(';')
	}
}

// splitFields returns the ';'-terminated integer fields of s. Text after the
// last separator is ignored. ok is false if any field is not an integer.
func splitFields(s string) (fields []int, ok bool) {
	s = strings.TrimSpace(s)
	for {
		i := strings.IndexByte(s, ';')
		if i < 0 {
			return fields, true
		}
		v, err := strconv.Atoi(strings.TrimSpace(s[:i]))
		if err != nil {
			return nil, false
		}
		fields = append(fields, v)
		s = s[i+1:]
	}
}

// ParseBox decodes "x;y;w;h;". Width and height must be positive. On failure
// the returned box carries UnlabeledID and ok is false. The label of a
// successfully parsed box is BackgroundID; callers stamp the real one.
func ParseBox(s string) (BoundingBox, bool) {
	bad := BoundingBox{Rect: geometry.RectXYWH(-1, -1, -1, -1), LabelID: UnlabeledID}
	fields, ok := splitFields(s)
	if !ok || len(fields) < 4 {
		return bad, false
	}
	if fields[2] <= 0 || fields[3] <= 0 {
		return bad, false
	}
	return BoundingBox{Rect: geometry.RectXYWH(fields[0], fields[1], fields[2], fields[3])}, true
}

// ParsePolygon decodes "x0;y0;x1;y1;...;". An odd number of coordinates, a
// non-integer field or no points at all fail with UnlabeledID.
func ParsePolygon(s string) (Polygon, bool) {
	bad := Polygon{LabelID: UnlabeledID}
	fields, ok := splitFields(s)
	if !ok || len(fields) == 0 || len(fields)%2 != 0 {
		return bad, false
	}
	pts := make([]geometry.Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		pts = append(pts, geometry.Pt(fields[i], fields[i+1]))
	}
	return Polygon{Points: pts}, true
}
