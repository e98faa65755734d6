package panels

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"image-labeler/internal/app"
)

// ImagesPanel lists the opened images and switches between them.
type ImagesPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	images    []string
	root      string
	list      *widget.List
	infoLabel *widget.Label

	// set while the list selection follows the state, so OnSelected
	// does not load the image again
	syncing bool
}

// NewImagesPanel creates a new images panel.
func NewImagesPanel(state *app.State) *ImagesPanel {
	ip := &ImagesPanel{state: state}

	ip.list = widget.NewList(
		func() int {
			return len(ip.images)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("image.png")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(ip.images) {
				obj.(*widget.Label).SetText(ip.display(ip.images[id]))
			}
		},
	)
	ip.list.OnSelected = func(id widget.ListItemID) {
		if ip.syncing {
			return
		}
		ip.open(id)
	}

	ip.infoLabel = widget.NewLabel("No images opened")
	ip.infoLabel.Wrapping = fyne.TextWrapWord

	prevButton := widget.NewButton("< Prev", func() { ip.step(-1) })
	nextButton := widget.NewButton("Next >", func() { ip.step(1) })

	state.On(app.EventImageListChanged, func(interface{}) { ip.Reload() })
	state.On(app.EventImageLoaded, func(interface{}) { ip.syncSelection() })

	ip.container = container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Images", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			ip.infoLabel,
		),
		container.NewGridWithColumns(2, prevButton, nextButton),
		nil, nil,
		ip.list,
	)
	return ip
}

// Container returns the panel container.
func (ip *ImagesPanel) Container() fyne.CanvasObject {
	return ip.container
}

// SetWindow sets the parent window for dialogs.
func (ip *ImagesPanel) SetWindow(w fyne.Window) {
	ip.window = w
}

// Reload refreshes the list from the state.
func (ip *ImagesPanel) Reload() {
	ip.images, _ = ip.state.ImageList()
	ip.root = commonDir(ip.images)
	ip.list.Refresh()
	ip.syncSelection()
}

func (ip *ImagesPanel) syncSelection() {
	images, idx := ip.state.ImageList()
	if len(images) == 0 {
		ip.infoLabel.SetText("No images opened")
		return
	}
	ip.infoLabel.SetText(fmt.Sprintf("%d of %d: %s", idx+1, len(images), filepath.Base(ip.state.CurrentImage())))
	if idx < 0 {
		return
	}
	ip.syncing = true
	ip.list.Select(idx)
	ip.list.ScrollTo(idx)
	ip.syncing = false
}

func (ip *ImagesPanel) display(path string) string {
	if ip.root == "" {
		return filepath.Base(path)
	}
	if rel, err := filepath.Rel(ip.root, path); err == nil {
		return rel
	}
	return path
}

// open switches to image i, asking first when there are unsaved changes.
func (ip *ImagesPanel) open(i int) {
	ip.confirmDiscard(func() {
		if err := ip.state.SelectImage(i); err != nil {
			ip.showError(err)
		}
	})
}

func (ip *ImagesPanel) step(delta int) {
	ip.confirmDiscard(func() {
		if err := ip.state.Step(delta); err != nil {
			ip.showError(err)
		}
	})
}

// ConfirmStep runs a step that keyboard navigation could not take because
// of unsaved changes.
func (ip *ImagesPanel) ConfirmStep(delta int) {
	ip.step(delta)
}

func (ip *ImagesPanel) confirmDiscard(next func()) {
	if !ip.state.IsModified() || ip.window == nil {
		next()
		return
	}
	dialog.ShowConfirm("Unsaved Changes",
		"The current image has unsaved annotations. Discard them?",
		func(ok bool) {
			if ok {
				next()
				return
			}
			ip.syncSelection()
		}, ip.window)
}

func (ip *ImagesPanel) showError(err error) {
	if ip.window != nil {
		dialog.ShowError(err, ip.window)
	}
}

// commonDir returns the deepest directory containing every path.
func commonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	dir := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		for dir != "." && dir != string(filepath.Separator) {
			if rel, err := filepath.Rel(dir, p); err == nil && !filepath.IsAbs(rel) && rel != ".." && !hasParentPrefix(rel) {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
	return dir
}

func hasParentPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
