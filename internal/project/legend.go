package project

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"image-labeler/internal/annotation"
	"image-labeler/internal/logging"
	"image-labeler/pkg/colorutil"
)

// LegendLabel is one label as persisted in legend and project files.
type LegendLabel struct {
	ID    int        `json:"id"`
	Name  string     `json:"name"`
	Color color.RGBA `json:"-"`
	Main  bool       `json:"main,omitempty"`
}

type legendLabelJSON struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Main  bool   `json:"main,omitempty"`
}

// MarshalJSON writes the color as an ARGB hex string.
func (l LegendLabel) MarshalJSON() ([]byte, error) {
	return json.Marshal(legendLabelJSON{ID: l.ID, Name: l.Name, Color: colorutil.FormatARGB(l.Color), Main: l.Main})
}

// UnmarshalJSON reads the ARGB hex color.
func (l *LegendLabel) UnmarshalJSON(data []byte) error {
	var raw legendLabelJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c, err := colorutil.ParseARGB(raw.Color)
	if err != nil {
		return err
	}
	*l = LegendLabel{ID: raw.ID, Name: raw.Name, Color: c, Main: raw.Main}
	return nil
}

// LegendFromPalette lists every palette label with its id.
func LegendFromPalette(p *annotation.Palette) []LegendLabel {
	labels := p.Labels()
	out := make([]LegendLabel, len(labels))
	for i, l := range labels {
		out[i] = LegendLabel{ID: i, Name: l.Name, Color: l.Color, Main: i == p.MainLabel()}
	}
	return out
}

// ApplyLegend rebuilds the palette from a legend. Labels are ordered by id;
// id 0 only contributes the background color. Negative ids are ignored.
func ApplyLegend(p *annotation.Palette, legend []LegendLabel) {
	sorted := make([]LegendLabel, 0, len(legend))
	for _, l := range legend {
		if l.ID >= 0 {
			sorted = append(sorted, l)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	p.Reset()
	for _, l := range sorted {
		if l.ID == annotation.BackgroundID {
			p.SetColor(annotation.BackgroundID, l.Color)
			continue
		}
		id := p.AddWithColor(l.Name, l.Color)
		if l.Main && p.MainLabel() != id {
			p.ToggleMain(id)
		}
	}
}

type xmlLegend struct {
	Labels []xmlLabel `xml:"label"`
}

type xmlLabel struct {
	Color  string `xml:"color,attr,omitempty"`
	ID     string `xml:"id,attr"`
	IsMain string `xml:"isMain,attr,omitempty"`
	Name   string `xml:",chardata"`
}

type xmlLegendDoc struct {
	XMLName xml.Name  `xml:"root"`
	Legend  xmlLegend `xml:"legend"`
}

func legendToXML(legend []LegendLabel) xmlLegend {
	var out xmlLegend
	for _, l := range legend {
		main := "0"
		if l.Main {
			main = "1"
		}
		out.Labels = append(out.Labels, xmlLabel{
			Color:  colorutil.FormatARGB(l.Color),
			ID:     strconv.Itoa(l.ID),
			IsMain: main,
			Name:   l.Name,
		})
	}
	if len(out.Labels) == 0 {
		out.Labels = append(out.Labels, xmlLabel{ID: "-1"})
	}
	return out
}

// legendFromXML converts legend entries, skipping empty or malformed ones.
func legendFromXML(x xmlLegend) []LegendLabel {
	log := logging.Named("project")
	var out []LegendLabel
	for _, raw := range x.Labels {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(raw.ID))
		if err != nil {
			log.Warn("skipping label with bad id", zap.String("id", raw.ID))
			continue
		}
		main, err := strconv.ParseUint(strings.TrimSpace(raw.IsMain), 2, 1)
		if err != nil {
			log.Warn("skipping label with bad isMain flag", zap.String("isMain", raw.IsMain))
			continue
		}
		c, err := colorutil.ParseARGB(raw.Color)
		if err != nil {
			log.Warn("skipping label with bad color", zap.String("color", raw.Color))
			continue
		}
		out = append(out, LegendLabel{ID: id, Name: name, Color: c, Main: main == 1})
	}
	return out
}

// EncodeLegend writes a standalone legend document.
func EncodeLegend(w io.Writer, legend []LegendLabel) error {
	doc := xmlLegendDoc{Legend: legendToXML(legend)}
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode legend: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// DecodeLegend reads a standalone legend document.
func DecodeLegend(r io.Reader) ([]LegendLabel, error) {
	var doc xmlLegendDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode legend: %w", err)
	}
	return legendFromXML(doc.Legend), nil
}
