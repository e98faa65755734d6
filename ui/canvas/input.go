package canvas

import (
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"image-labeler/internal/interaction"
	"image-labeler/pkg/geometry"
)

func toPoint(p fyne.Position) geometry.Point {
	return geometry.Pt(int(math.Round(float64(p.X))), int(math.Round(float64(p.Y))))
}

func buttonFor(b desktop.MouseButton) interaction.Button {
	var out interaction.Button
	if b&desktop.MouseButtonPrimary != 0 {
		out |= interaction.ButtonLeft
	}
	if b&desktop.MouseButtonSecondary != 0 {
		out |= interaction.ButtonRight
	}
	if b&desktop.MouseButtonTertiary != 0 {
		out |= interaction.ButtonMiddle
	}
	return out
}

func modifiersFor(m fyne.KeyModifier) interaction.Modifier {
	var out interaction.Modifier
	if m&fyne.KeyModifierShift != 0 {
		out |= interaction.ModShift
	}
	if m&fyne.KeyModifierControl != 0 {
		out |= interaction.ModControl
	}
	if m&fyne.KeyModifierAlt != 0 {
		out |= interaction.ModAlt
	}
	if m&fyne.KeyModifierSuper != 0 {
		out |= interaction.ModSuper
	}
	return out
}

func keyFor(name fyne.KeyName) interaction.Key {
	switch name {
	case fyne.KeyReturn, fyne.KeyEnter:
		return interaction.KeyEnter
	case fyne.KeyEscape:
		return interaction.KeyEscape
	case fyne.KeyDelete, fyne.KeyBackspace:
		return interaction.KeyDelete
	case fyne.KeyZ:
		return interaction.KeyZ
	case fyne.KeyY:
		return interaction.KeyY
	case fyne.KeyLeft:
		return interaction.KeyLeft
	case fyne.KeyRight:
		return interaction.KeyRight
	}
	return interaction.KeyUnknown
}

// currentModifiers asks the desktop driver which modifiers are held; fyne
// does not attach them to scroll, drag or tap events.
func currentModifiers() fyne.KeyModifier {
	a := fyne.CurrentApp()
	if a == nil {
		return 0
	}
	if d, ok := a.Driver().(desktop.Driver); ok {
		return d.CurrentKeyModifiers()
	}
	return 0
}
