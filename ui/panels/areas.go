package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"image-labeler/internal/annotation"
	"image-labeler/internal/app"
)

// AreasPanel lists the confirmed shapes as editable text lines. Selecting a
// line focuses the shape on the canvas.
type AreasPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	lines       []string
	list        *widget.List
	editEntry   *widget.Entry
	countLabel  *widget.Label
	selectedIdx int // Selected line, -1 if none
}

// NewAreasPanel creates a new areas panel.
func NewAreasPanel(state *app.State) *AreasPanel {
	ap := &AreasPanel{
		state:       state,
		selectedIdx: -1,
	}

	ap.list = widget.NewList(
		func() int {
			return len(ap.lines)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("0: BBox #0; LabelID: 0; data:0;0;0;0;")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(ap.lines) {
				obj.(*widget.Label).SetText(ap.lines[id])
			}
		},
	)
	ap.list.OnSelected = func(id widget.ListItemID) {
		ap.selectedIdx = id
		if id < len(ap.lines) {
			ap.editEntry.SetText(ap.lines[id])
		}
		state.FocusArea(id)
	}
	ap.list.OnUnselected = func(widget.ListItemID) {
		ap.selectedIdx = -1
	}

	ap.editEntry = widget.NewEntry()
	ap.editEntry.SetPlaceHolder("Select an area to edit its coordinates")
	ap.editEntry.OnSubmitted = func(string) { ap.apply() }

	ap.countLabel = widget.NewLabel("")

	applyButton := widget.NewButton("Apply", ap.apply)
	deleteButton := widget.NewButton("Delete", ap.delete)
	relabelButton := widget.NewButton("Use Active Label", ap.relabel)

	state.On(app.EventAreasChanged, func(interface{}) { ap.Reload() })
	state.On(app.EventImageLoaded, func(interface{}) {
		ap.list.UnselectAll()
		ap.editEntry.SetText("")
	})

	ap.container = container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Areas", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			ap.countLabel,
		),
		container.NewVBox(
			ap.editEntry,
			container.NewGridWithColumns(3, applyButton, deleteButton, relabelButton),
		),
		nil, nil,
		ap.list,
	)
	ap.Reload()
	return ap
}

// Container returns the panel container.
func (ap *AreasPanel) Container() fyne.CanvasObject {
	return ap.container
}

// SetWindow sets the parent window for dialogs.
func (ap *AreasPanel) SetWindow(w fyne.Window) {
	ap.window = w
}

// Reload rebuilds the lines from the store.
func (ap *AreasPanel) Reload() {
	store := ap.state.Store()
	ap.lines = annotation.Listing(store)
	ap.countLabel.SetText(fmt.Sprintf("%d boxes, %d polygons",
		store.Len(annotation.FigureRect), store.Len(annotation.FigurePoly)))
	if ap.selectedIdx >= len(ap.lines) {
		ap.list.UnselectAll()
	}
	ap.list.Refresh()
}

func (ap *AreasPanel) apply() {
	if ap.selectedIdx < 0 {
		return
	}
	if !ap.state.EditArea(ap.editEntry.Text) && ap.window != nil {
		dialog.ShowInformation("Invalid Area",
			"The line could not be parsed. Keep the figure and index, and give whole-number coordinates.",
			ap.window)
	}
}

func (ap *AreasPanel) delete() {
	kind, i, ok := annotation.RefForLine(ap.state.Store(), ap.selectedIdx)
	if !ok {
		return
	}
	ap.list.UnselectAll()
	ap.editEntry.SetText("")
	ap.state.DeleteArea(kind, i)
}

func (ap *AreasPanel) relabel() {
	kind, i, ok := annotation.RefForLine(ap.state.Store(), ap.selectedIdx)
	if !ok {
		return
	}
	ap.state.SetAreaLabel(kind, i, ap.state.Machine().ActiveLabel())
}
