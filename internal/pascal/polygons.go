package pascal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"image-labeler/pkg/geometry"
)

// PolygonRecord is one line of a polygon list: a label and its vertices.
type PolygonRecord struct {
	Name   string
	Points []geometry.Point
}

// ReadPolygons parses lines of the form "label count x1 y1 ... xn yn".
// Coordinates may be fractional and are rounded. Any malformed line fails
// the whole input with ErrCorrupted.
func ReadPolygons(r io.Reader) ([]PolygonRecord, error) {
	var records []PolygonRecord
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		rec, err := parsePolygonLine(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read polygons: %w", err)
	}
	return records, nil
}

// ReadPolygonsFile opens and parses a polygon list.
func ReadPolygonsFile(path string) ([]PolygonRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open polygons: %w", err)
	}
	defer f.Close()
	return ReadPolygons(f)
}

func parsePolygonLine(fields []string) (PolygonRecord, error) {
	if len(fields) < 2 {
		return PolygonRecord{}, fmt.Errorf("%w: missing point count", ErrCorrupted)
	}
	count, err := strconv.Atoi(fields[1])
	if err != nil || count <= 0 {
		return PolygonRecord{}, fmt.Errorf("%w: bad point count %q", ErrCorrupted, fields[1])
	}
	coords := fields[2:]
	if len(coords) != 2*count {
		return PolygonRecord{}, fmt.Errorf("%w: want %d coordinates, got %d", ErrCorrupted, 2*count, len(coords))
	}

	rec := PolygonRecord{Name: fields[0], Points: make([]geometry.Point, 0, count)}
	for i := 0; i < len(coords); i += 2 {
		x, errX := strconv.ParseFloat(coords[i], 64)
		y, errY := strconv.ParseFloat(coords[i+1], 64)
		if errX != nil || errY != nil {
			return PolygonRecord{}, fmt.Errorf("%w: bad coordinate near %q", ErrCorrupted, coords[i])
		}
		rec.Points = append(rec.Points, geometry.Pt(int(math.Round(x)), int(math.Round(y))))
	}
	return rec, nil
}
