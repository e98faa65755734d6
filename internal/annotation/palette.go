package annotation

import (
	"image/color"
	"strings"

	"image-labeler/pkg/colorutil"
)

// BackgroundID is the reserved label id of the background.
const BackgroundID = 0

// BackgroundName is the name of the reserved background label.
const BackgroundName = "BACKGROUND"

// Label is one palette entry.
type Label struct {
	Name  string     `json:"name"`
	Color color.RGBA `json:"color"`
	// Explicit is set when the color was chosen by the user or loaded from a
	// legend rather than defaulted.
	Explicit bool `json:"explicit,omitempty"`
}

// Palette is the ordered list of labels. A label's id is its position;
// id 0 is the background and cannot be removed.
type Palette struct {
	labels []Label
	main   int
}

// NewPalette creates a palette holding only the background label.
func NewPalette() *Palette {
	return &Palette{
		labels: []Label{{Name: BackgroundName, Color: colorutil.Black, Explicit: true}},
		main:   -1,
	}
}

// Len returns the number of labels including the background.
func (p *Palette) Len() int {
	return len(p.labels)
}

// Labels returns a copy of all labels.
func (p *Palette) Labels() []Label {
	out := make([]Label, len(p.labels))
	copy(out, p.labels)
	return out
}

// Label returns the label with the given id.
func (p *Palette) Label(id int) (Label, bool) {
	if id < 0 || id >= len(p.labels) {
		return Label{}, false
	}
	return p.labels[id], true
}

// Add appends a label with the default white color and returns its id.
func (p *Palette) Add(name string) int {
	p.labels = append(p.labels, Label{Name: name, Color: colorutil.White})
	return len(p.labels) - 1
}

// AddWithColor appends a label with an explicit color and returns its id.
func (p *Palette) AddWithColor(name string, c color.RGBA) int {
	p.labels = append(p.labels, Label{Name: name, Color: c, Explicit: true})
	return len(p.labels) - 1
}

// Rename changes the name of a label. The background cannot be renamed.
func (p *Palette) Rename(id int, name string) bool {
	if id < 1 || id >= len(p.labels) {
		return false
	}
	p.labels[id].Name = name
	return true
}

// SetColor assigns an explicit color to a label.
func (p *Palette) SetColor(id int, c color.RGBA) bool {
	if id < 0 || id >= len(p.labels) {
		return false
	}
	p.labels[id].Color = c
	p.labels[id].Explicit = true
	return true
}

// Remove deletes label id (id >= 1). Later ids shift down by one; callers
// must mirror the shift with Store.RemapLabel.
func (p *Palette) Remove(id int) bool {
	if id < 1 || id >= len(p.labels) {
		return false
	}
	p.labels = append(p.labels[:id], p.labels[id+1:]...)
	switch {
	case p.main == id:
		p.main = -1
	case p.main > id:
		p.main--
	}
	return true
}

// ToggleMain makes id the main label, or clears it if it already is.
// At most one label is main at a time.
func (p *Palette) ToggleMain(id int) bool {
	if id < 1 || id >= len(p.labels) {
		return false
	}
	if p.main == id {
		p.main = -1
	} else {
		p.main = id
	}
	return true
}

// MainLabel returns the emphasized label id, or -1.
func (p *Palette) MainLabel() int {
	return p.main
}

// Find returns the id of the label with the given name, compared case
// insensitively, or -1.
func (p *Palette) Find(name string) int {
	for i, l := range p.labels {
		if strings.EqualFold(l.Name, name) {
			return i
		}
	}
	return -1
}

// FindOrAdd returns the id of the named label, appending it if missing.
func (p *Palette) FindOrAdd(name string) int {
	if id := p.Find(name); id >= 0 {
		return id
	}
	return p.Add(name)
}

// ColorFor returns the color of label id, falling back to white for ids
// without a palette entry.
func (p *Palette) ColorFor(id int) color.RGBA {
	if id < 0 || id >= len(p.labels) {
		return colorutil.White
	}
	return p.labels[id].Color
}

// NeedsGeneratedColors reports whether two or more non-background labels
// still carry the default white.
func (p *Palette) NeedsGeneratedColors() bool {
	white := 0
	for _, l := range p.labels[1:] {
		if l.Color == colorutil.White {
			white++
		}
	}
	return white >= 2
}

// GenerateColors replaces every label color with the generated sequence.
func (p *Palette) GenerateColors() {
	colors := colorutil.GenerateLabelColors(len(p.labels))
	for i := range p.labels {
		p.labels[i].Color = colors[i]
	}
}

// Reset drops every label except the background and clears the main label.
func (p *Palette) Reset() {
	p.labels = p.labels[:1]
	p.main = -1
}
