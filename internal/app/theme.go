package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"image-labeler/internal/config"
	"image-labeler/pkg/colorutil"
)

// LabelerTheme is the default theme with the editor's accent color on
// primary, focus and selection highlights, and an optional pinned variant.
type LabelerTheme struct {
	accent color.NRGBA
	pinned bool
	dark   bool
}

var _ fyne.Theme = (*LabelerTheme)(nil)

// NewTheme builds the theme from the editor config. An unparsable accent
// keeps the default primary color.
func NewTheme(e config.EditorConfig) *LabelerTheme {
	t := &LabelerTheme{
		pinned: e.Theme == config.ThemeLight || e.Theme == config.ThemeDark,
		dark:   e.Theme == config.ThemeDark,
	}
	if c, err := colorutil.ParseARGB(e.Accent); err == nil {
		t.accent = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	}
	return t
}

func (t *LabelerTheme) variant(v fyne.ThemeVariant) fyne.ThemeVariant {
	if !t.pinned {
		return v
	}
	if t.dark {
		return theme.VariantDark
	}
	return theme.VariantLight
}

func (t *LabelerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	variant = t.variant(variant)
	if t.accent.A == 0 {
		return theme.DefaultTheme().Color(name, variant)
	}
	switch name {
	case theme.ColorNamePrimary:
		return t.accent
	case theme.ColorNameFocus:
		return t.withAlpha(0x80)
	case theme.ColorNameSelection:
		return t.withAlpha(0x50)
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *LabelerTheme) withAlpha(a uint8) color.NRGBA {
	c := t.accent
	c.A = a
	return c
}

func (t *LabelerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *LabelerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size widens the scrollbars; large images are panned with them a lot.
func (t *LabelerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 14
	case theme.SizeNameScrollBarSmall:
		return 10
	default:
		return theme.DefaultTheme().Size(name)
	}
}
