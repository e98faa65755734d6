package project

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"image-labeler/internal/annotation"
	"image-labeler/internal/logging"
	"image-labeler/internal/raster"
)

// ErrNoImage is returned when a labeling document names no image.
var ErrNoImage = errors.New("labeling document has no image")

// Labeling is the content of a pixelwise labeling document.
type Labeling struct {
	ImagePath     string
	SegmentedPath string
	Description   string
	Tags          string
	Legend        []LegendLabel
	Boxes         []annotation.BoundingBox
	Polygons      []annotation.Polygon
	Width         int
	Height        int
	// Mask is optional on encode; on decode it is set only when the
	// document carries pixel data matching Width and Height.
	Mask *raster.Mask
}

type xmlLabeling struct {
	XMLName     xml.Name   `xml:"pixelwise_labeling"`
	Image       *string    `xml:"image"`
	Segmented   string     `xml:"segmented,omitempty"`
	Description string     `xml:"description"`
	Tags        string     `xml:"tags"`
	Legend      xmlLegend  `xml:"legend"`
	Objects     xmlObjects `xml:"objects"`
	ImageSize   string     `xml:"image_size"`
	PureData    string     `xml:"pure_data"`
}

type xmlObjects struct {
	Items []xmlObject `xml:",any"`
}

type xmlObject struct {
	XMLName xml.Name
	ID      string `xml:"id,attr"`
	Data    string `xml:",chardata"`
}

// EncodeLabeling writes l as a pixelwise labeling document. Boxes are
// written normalized, before polygons.
func EncodeLabeling(w io.Writer, l *Labeling) error {
	img := l.ImagePath
	doc := xmlLabeling{
		Image:       &img,
		Segmented:   l.SegmentedPath,
		Description: l.Description,
		Tags:        l.Tags,
		Legend:      legendToXML(l.Legend),
		ImageSize:   fmt.Sprintf("%d;%d", l.Width, l.Height),
	}

	for _, b := range l.Boxes {
		doc.Objects.Items = append(doc.Objects.Items, xmlObject{
			XMLName: xml.Name{Local: "bbox"},
			ID:      strconv.Itoa(b.LabelID),
			Data:    annotation.FormatBox(b.Normalize()),
		})
	}
	for _, p := range l.Polygons {
		doc.Objects.Items = append(doc.Objects.Items, xmlObject{
			XMLName: xml.Name{Local: "poly"},
			ID:      strconv.Itoa(p.LabelID),
			Data:    annotation.FormatPolygon(p),
		})
	}
	if l.Mask != nil {
		doc.PureData = formatPureData(l.Mask)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode labeling: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// DecodeLabeling reads a pixelwise labeling document. Objects with an
// empty body, a non-numeric id or unparsable geometry are skipped.
func DecodeLabeling(r io.Reader) (*Labeling, error) {
	var doc xmlLabeling
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode labeling: %w", err)
	}
	if doc.Image == nil {
		return nil, ErrNoImage
	}

	log := logging.Named("project")
	l := &Labeling{
		ImagePath:     strings.TrimSpace(*doc.Image),
		SegmentedPath: strings.TrimSpace(doc.Segmented),
		Description:   doc.Description,
		Tags:          doc.Tags,
		Legend:        legendFromXML(doc.Legend),
	}

	for _, obj := range doc.Objects.Items {
		data := strings.TrimSpace(obj.Data)
		if data == "" {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(obj.ID))
		if err != nil {
			log.Warn("skipping object with bad id", zap.String("element", obj.XMLName.Local), zap.String("id", obj.ID))
			continue
		}
		switch obj.XMLName.Local {
		case "bbox":
			b, ok := annotation.ParseBox(data)
			if !ok {
				log.Warn("skipping malformed box", zap.String("data", data))
				continue
			}
			b.LabelID = id
			l.Boxes = append(l.Boxes, b)
		case "poly":
			p, ok := annotation.ParsePolygon(data)
			if !ok {
				log.Warn("skipping malformed polygon", zap.String("data", data))
				continue
			}
			p.LabelID = id
			l.Polygons = append(l.Polygons, p)
		default:
			log.Debug("ignoring unknown object", zap.String("element", obj.XMLName.Local))
		}
	}

	if w, h, ok := parseImageSize(doc.ImageSize); ok {
		l.Width, l.Height = w, h
		if m, err := parsePureData(doc.PureData, w, h); err != nil {
			log.Warn("ignoring pixel data", zap.Error(err))
		} else {
			l.Mask = m
		}
	}

	return l, nil
}

// WriteLabelingFile encodes l to path.
func WriteLabelingFile(path string, l *Labeling) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create labeling: %w", err)
	}
	if err := EncodeLabeling(f, l); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadLabelingFile decodes the labeling document at path.
func ReadLabelingFile(path string) (*Labeling, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labeling: %w", err)
	}
	defer f.Close()
	return DecodeLabeling(f)
}

// Apply replaces store and palette contents with the document's.
func (l *Labeling) Apply(store *annotation.Store, palette *annotation.Palette) {
	ApplyLegend(palette, l.Legend)
	store.Restore(annotation.Snapshot{Boxes: l.Boxes, Polygons: l.Polygons})
}

func parseImageSize(s string) (int, int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ";")
	if len(parts) < 2 {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// formatPureData writes one line per row, each value followed by ';'.
func formatPureData(m *raster.Mask) string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for y := 0; y < m.Height; y++ {
		for _, v := range m.Row(y) {
			sb.WriteString(strconv.Itoa(v))
			sb.WriteByte(';')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func parsePureData(s string, w, h int) (*raster.Mask, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	rows := strings.Split(s, "\n")
	if len(rows) != h {
		return nil, fmt.Errorf("want %d rows, got %d", h, len(rows))
	}
	m := raster.NewMask(w, h)
	for y, row := range rows {
		fields := strings.Split(strings.TrimSuffix(strings.TrimSpace(row), ";"), ";")
		if len(fields) != w {
			return nil, fmt.Errorf("row %d: want %d values, got %d", y, w, len(fields))
		}
		for x, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", y, err)
			}
			m.Set(x, y, v)
		}
	}
	return m, nil
}
