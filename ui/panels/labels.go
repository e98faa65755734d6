package panels

import (
	"fmt"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"image-labeler/internal/annotation"
	"image-labeler/internal/app"
)

// LabelsPanel manages the label legend: adding, renaming, removing and
// coloring labels, choosing the emphasized label and the active one.
type LabelsPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	list        *widget.List
	nameEntry   *widget.Entry
	selectedIdx int // Selected label id, -1 if none
}

// NewLabelsPanel creates a new labels panel.
func NewLabelsPanel(state *app.State) *LabelsPanel {
	lp := &LabelsPanel{
		state:       state,
		selectedIdx: -1,
	}

	lp.list = widget.NewList(
		func() int {
			return state.Palette().Len()
		},
		func() fyne.CanvasObject {
			swatch := fynecanvas.NewRectangle(color.Black)
			swatch.SetMinSize(fyne.NewSize(16, 16))
			return container.NewHBox(swatch, widget.NewLabel("Label Name"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			row := obj.(*fyne.Container)
			swatch := row.Objects[0].(*fynecanvas.Rectangle)
			label := row.Objects[1].(*widget.Label)

			l, ok := state.Palette().Label(id)
			if !ok {
				return
			}
			swatch.FillColor = l.Color
			swatch.Refresh()
			label.SetText(lp.describe(id, l))
		},
	)
	lp.list.OnSelected = func(id widget.ListItemID) {
		lp.selectedIdx = id
		if l, ok := state.Palette().Label(id); ok {
			lp.nameEntry.SetText(l.Name)
		}
		state.SetActiveLabel(id)
		lp.list.Refresh()
	}
	lp.list.OnUnselected = func(widget.ListItemID) {
		lp.selectedIdx = -1
	}

	lp.nameEntry = widget.NewEntry()
	lp.nameEntry.SetPlaceHolder("Label name")
	lp.nameEntry.OnSubmitted = func(string) { lp.add() }

	addButton := widget.NewButton("Add", lp.add)
	renameButton := widget.NewButton("Rename", lp.rename)
	removeButton := widget.NewButton("Remove", lp.remove)
	mainButton := widget.NewButton("Toggle Main", func() {
		if lp.selectedIdx > annotation.BackgroundID {
			state.ToggleMainLabel(lp.selectedIdx)
		}
	})
	colorButton := widget.NewButton("Color...", lp.pickColor)
	generateButton := widget.NewButton("Generate Colors", func() {
		state.GenerateColors()
	})
	applyButton := widget.NewButton("Apply to Focused Shape", lp.applyToFocused)

	state.On(app.EventLabelsChanged, func(interface{}) { lp.list.Refresh() })
	state.On(app.EventProjectLoaded, func(interface{}) { lp.list.Refresh() })

	lp.container = container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Legend", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			container.NewBorder(nil, nil, nil, addButton, lp.nameEntry),
			container.NewGridWithColumns(2, renameButton, removeButton, mainButton, colorButton),
			generateButton,
			applyButton,
		),
		nil, nil, nil,
		lp.list,
	)
	return lp
}

// Container returns the panel container.
func (lp *LabelsPanel) Container() fyne.CanvasObject {
	return lp.container
}

// SetWindow sets the parent window for dialogs.
func (lp *LabelsPanel) SetWindow(w fyne.Window) {
	lp.window = w
}

func (lp *LabelsPanel) describe(id int, l annotation.Label) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d  %s", id, l.Name)
	if lp.state.Palette().MainLabel() == id {
		b.WriteString("  [main]")
	}
	if lp.state.Machine().ActiveLabel() == id {
		b.WriteString("  (active)")
	}
	return b.String()
}

func (lp *LabelsPanel) add() {
	name := strings.TrimSpace(lp.nameEntry.Text)
	if name == "" {
		lp.info("Name Required", "Please enter a label name first")
		return
	}
	if lp.state.Palette().Find(name) >= 0 {
		lp.info("Duplicate Label", fmt.Sprintf("A label named %q already exists", name))
		return
	}
	id := lp.state.AddLabel(name)
	lp.nameEntry.SetText("")
	lp.list.Select(id)
}

func (lp *LabelsPanel) rename() {
	name := strings.TrimSpace(lp.nameEntry.Text)
	if lp.selectedIdx <= annotation.BackgroundID || name == "" {
		return
	}
	lp.state.RenameLabel(lp.selectedIdx, name)
}

func (lp *LabelsPanel) remove() {
	id := lp.selectedIdx
	if id <= annotation.BackgroundID {
		return
	}
	l, _ := lp.state.Palette().Label(id)
	doRemove := func(ok bool) {
		if !ok {
			return
		}
		lp.state.RemoveLabel(id)
		lp.list.UnselectAll()
	}
	if lp.window == nil {
		doRemove(true)
		return
	}
	dialog.ShowConfirm("Remove Label",
		fmt.Sprintf("Remove %q? Shapes using it become background.", l.Name),
		doRemove, lp.window)
}

func (lp *LabelsPanel) pickColor() {
	id := lp.selectedIdx
	if id < 0 || lp.window == nil {
		return
	}
	picker := dialog.NewColorPicker("Label Color", "Choose the color used in segmented exports",
		func(c color.Color) {
			lp.state.SetLabelColor(id, color.RGBAModel.Convert(c).(color.RGBA))
		}, lp.window)
	picker.Advanced = true
	if l, ok := lp.state.Palette().Label(id); ok {
		picker.SetColor(l.Color)
	}
	picker.Show()
}

func (lp *LabelsPanel) applyToFocused() {
	f := lp.state.Machine().Focused()
	if f.IsNone() || lp.selectedIdx < 0 {
		lp.info("No Shape Focused", "Double-click a shape or select it in the Areas tab first")
		return
	}
	lp.state.SetAreaLabel(f.Figure, f.Shape, lp.selectedIdx)
}

func (lp *LabelsPanel) info(title, msg string) {
	if lp.window != nil {
		dialog.ShowInformation(title, msg, lp.window)
	}
}
