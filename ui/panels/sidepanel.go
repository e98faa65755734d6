// Package panels provides the side panels of the main window.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"image-labeler/internal/app"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	labelsPanel *LabelsPanel
	areasPanel  *AreasPanel
	imagesPanel *ImagesPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State) *SidePanel {
	sp := &SidePanel{state: state}

	sp.labelsPanel = NewLabelsPanel(state)
	sp.areasPanel = NewAreasPanel(state)
	sp.imagesPanel = NewImagesPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Labels", sp.labelsPanel.Container()),
		container.NewTabItem("Areas", sp.areasPanel.Container()),
		container.NewTabItem("Images", sp.imagesPanel.Container()),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.labelsPanel.SetWindow(w)
	sp.areasPanel.SetWindow(w)
	sp.imagesPanel.SetWindow(w)
}

// Images returns the image list panel.
func (sp *SidePanel) Images() *ImagesPanel {
	return sp.imagesPanel
}
