package app

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"

	"image-labeler/internal/config"
)

func TestThemeAccent(t *testing.T) {
	th := NewTheme(config.EditorConfig{Theme: config.ThemeSystem, Accent: "ffff8000"})
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x80, A: 0xff}, th.Color(theme.ColorNamePrimary, theme.VariantLight))
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x80, A: 0x50}, th.Color(theme.ColorNameSelection, theme.VariantLight))
	assert.Equal(t, theme.DefaultTheme().Color(theme.ColorNameBackground, theme.VariantLight),
		th.Color(theme.ColorNameBackground, theme.VariantLight))
}

func TestThemePinnedVariant(t *testing.T) {
	th := NewTheme(config.EditorConfig{Theme: config.ThemeDark, Accent: "ff0097a7"})
	assert.Equal(t, theme.DefaultTheme().Color(theme.ColorNameBackground, theme.VariantDark),
		th.Color(theme.ColorNameBackground, theme.VariantLight))
}

func TestThemeBadAccent(t *testing.T) {
	th := NewTheme(config.EditorConfig{Accent: "not a color"})
	assert.Equal(t, theme.DefaultTheme().Color(theme.ColorNamePrimary, theme.VariantDark),
		th.Color(theme.ColorNamePrimary, theme.VariantDark))
}
