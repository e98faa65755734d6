// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"image-labeler/internal/app"
	"image-labeler/internal/interaction"
	"image-labeler/internal/logging"
	"image-labeler/internal/project"
	"image-labeler/internal/version"
	"image-labeler/pkg/geometry"
	"image-labeler/ui/canvas"
	"image-labeler/ui/panels"
	"image-labeler/ui/prefs"
)

const appTitle = "Image Labeler"

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp", ".gif"}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.AnnotationCanvas
	sidePanel *panels.SidePanel
	logger    *zap.Logger

	statusBar *widget.Label
	toolLabel *widget.Label
	zoomLabel *widget.Label
	posLabel  *widget.Label

	watcher *app.Watcher

	// Menu items that need state tracking
	fitToWindowItem *fyne.MenuItem
	showMaskItem    *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
		logger: logging.Named("ui"),
	}
	// watcher reloads arrive on their own goroutine
	state.SetDispatcher(fyne.Do)

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()

	mw.Resize(fyne.NewSize(
		float32(p.FloatWithFallback(prefs.KeyWindowWidth, 1200)),
		float32(p.FloatWithFallback(prefs.KeyWindowHeight, 800)),
	))
	mw.SetCloseIntercept(mw.onClose)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewAnnotationCanvas(mw.state)
	mw.canvas.SetShowMask(mw.prefs.Bool(prefs.KeyShowMask, false))
	mw.canvas.SetFitToWindow(mw.prefs.Bool(prefs.KeyFitToWindow, false))

	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")
	mw.toolLabel = widget.NewLabel("Tool: none")
	mw.zoomLabel = widget.NewLabel("100%")
	mw.posLabel = widget.NewLabel("")

	mw.canvas.OnZoomChange(func(scale float64) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", scale*100))
	})
	mw.canvas.OnPointer(func(p geometry.Point) {
		mw.posLabel.SetText(fmt.Sprintf("%d, %d", p.X, p.Y))
	})

	canvasArea := container.NewBorder(
		mw.createToolbar(),
		nil,
		nil,
		nil,
		mw.canvas.Container(),
	)

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.25)

	status := container.NewBorder(nil, nil, nil,
		container.NewHBox(mw.toolLabel, mw.posLabel, mw.zoomLabel),
		mw.statusBar,
	)

	mw.SetContent(container.NewBorder(nil, container.NewPadded(status), nil, nil, split))
}

// createToolbar creates the toolbar with tool and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewButton("BBox", func() { mw.setTool(interaction.ToolBBox) }),
		widget.NewButton("Polygon", func() { mw.setTool(interaction.ToolPolygon) }),
		widget.NewButton("Confirm", mw.onConfirm),
		widget.NewButton("Clear", mw.onClearSelection),
		widget.NewSeparator(),
		widget.NewButton("Undo", mw.onUndo),
		widget.NewButton("Redo", mw.onRedo),
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.onZoomOut),
		widget.NewButton("+", mw.onZoomIn),
		widget.NewButton("Fit", mw.onToggleFitToWindow),
		widget.NewButton("1:1", mw.onActualSize),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	recent := fyne.NewMenuItem("Recent Projects", nil)
	recent.ChildMenu = mw.recentMenu()

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Open Directory...", mw.onOpenDirectory),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		recent,
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Labeling...", mw.onImportLabeling),
		fyne.NewMenuItem("Import PASCAL VOC...", mw.onImportPascal),
		fyne.NewMenuItem("Import PASCAL Polygons...", mw.onImportPascalPolygons),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Labeling", mw.onExportLabeling),
		fyne.NewMenuItem("Export Segmented Image", mw.onExportSegmented),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Load Legend...", mw.onLoadLegend),
		fyne.NewMenuItem("Save Legend", mw.onSaveLegend),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Bounding Box Tool", func() { mw.setTool(interaction.ToolBBox) }),
		fyne.NewMenuItem("Polygon Tool", func() { mw.setTool(interaction.ToolPolygon) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Confirm Selection", mw.onConfirm),
		fyne.NewMenuItem("Clear Selection", mw.onClearSelection),
		fyne.NewMenuItem("Undo Point", mw.onUndo),
		fyne.NewMenuItem("Redo Point", mw.onRedo),
	)

	mw.fitToWindowItem = fyne.NewMenuItem("Fit to Window", mw.onToggleFitToWindow)
	mw.fitToWindowItem.Checked = mw.canvas.GetFitToWindow()
	mw.showMaskItem = fyne.NewMenuItem("Show Label Mask", mw.onToggleMask)
	mw.showMaskItem.Checked = mw.canvas.Overlay().Visible()

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		mw.fitToWindowItem,
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
		fyne.NewMenuItemSeparator(),
		mw.showMaskItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Previous Image", func() { mw.sidePanel.Images().ConfirmStep(-1) }),
		fyne.NewMenuItem("Next Image", func() { mw.sidePanel.Images().ConfirmStep(1) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Coverage Statistics", mw.onStatistics),
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

func (mw *MainWindow) recentMenu() *fyne.Menu {
	var items []*fyne.MenuItem
	for _, path := range mw.prefs.Strings(prefs.KeyRecentProjects) {
		path := path
		items = append(items, fyne.NewMenuItem(filepath.Base(path), func() { mw.openProject(path) }))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("(none)", nil)
		none.Disabled = true
		items = append(items, none)
	}
	return fyne.NewMenu("", items...)
}

// setupShortcuts routes editor keys to the canvas. Plain keys arrive via
// the typed-key hook, ctrl combinations as shortcuts.
func (mw *MainWindow) setupShortcuts() {
	c := mw.Canvas()
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		mw.canvas.TypeKey(ev.Name, 0)
	})
	for _, key := range []fyne.KeyName{fyne.KeyZ, fyne.KeyY, fyne.KeyLeft, fyne.KeyRight} {
		key := key
		c.AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
			mw.canvas.TypeKey(key, fyne.KeyModifierControl)
		})
	}
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		mw.onSaveProject()
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		mw.onOpenImage()
	})
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventProjectLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateTitle()
			mw.updateStatus("Project loaded: " + path)
			mw.watchProject(path)
		}
	})

	mw.state.On(app.EventProjectSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.prefs.AddRecent(path)
			mw.updateStatus("Project saved: " + path)
			mw.watchProject(path)
		}
	})

	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		mw.updateTitle()
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", mw.canvas.GetZoom()*100))
		if path, ok := data.(string); ok {
			mw.updateStatus("Image loaded: " + path)
		}
	})

	mw.state.On(app.EventModified, func(interface{}) {
		mw.updateTitle()
	})

	mw.state.On(app.EventSelectionChanged, func(interface{}) {
		mw.toolLabel.SetText("Tool: " + mw.state.Machine().Tool().String())
	})

	mw.state.On(app.EventSegmentedExported, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Segmented image written: " + path)
		}
	})

	mw.state.On(app.EventNavigationBlocked, func(data interface{}) {
		if delta, ok := data.(int); ok {
			mw.sidePanel.Images().ConfirmStep(delta)
		}
	})
}

func (mw *MainWindow) updateTitle() {
	title := appTitle
	if img := mw.state.CurrentImage(); img != "" {
		title += " - " + filepath.Base(img)
	}
	if path := mw.state.ProjectPath; path != "" {
		title += " [" + filepath.Base(path) + "]"
	}
	if mw.state.IsModified() {
		title += " *"
	}
	mw.SetTitle(title)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) showError(op string, err error) {
	mw.logger.Warn(op+" failed", zap.Error(err))
	dialog.ShowError(fmt.Errorf("%s: %w", op, err), mw.Window)
}

// watchProject reloads the project when another process rewrites it.
func (mw *MainWindow) watchProject(path string) {
	if mw.watcher != nil {
		if mw.watcher.Path() == absPath(path) {
			return
		}
		_ = mw.watcher.Stop()
		mw.watcher = nil
	}
	w, err := app.WatchProject(mw.state, path)
	if err != nil {
		mw.logger.Warn("project watch failed", zap.String("path", path), zap.Error(err))
		return
	}
	mw.watcher = w
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// lastDir returns the remembered directory for key as a ListableURI, or nil.
func (mw *MainWindow) lastDir(key string) fyne.ListableURI {
	path := mw.prefs.String(key)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) rememberDir(key, filePath string) {
	mw.prefs.SetString(key, filepath.Dir(filePath))
}

// openFile shows a file chooser filtered to exts and calls fn with the path.
func (mw *MainWindow) openFile(dirKey string, exts []string, fn func(path string)) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.rememberDir(dirKey, path)
		fn(path)
	}, mw.Window)
	if len(exts) > 0 {
		fd.SetFilter(storage.NewExtensionFileFilter(exts))
	}
	if loc := mw.lastDir(dirKey); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// confirmDiscard runs next right away, or after the user agrees to drop
// unsaved changes.
func (mw *MainWindow) confirmDiscard(next func()) {
	if !mw.state.IsModified() {
		next()
		return
	}
	dialog.ShowConfirm("Unsaved Changes", "Discard the unsaved annotations?", func(ok bool) {
		if ok {
			next()
		}
	}, mw.Window)
}

// Menu action handlers

func (mw *MainWindow) onOpenImage() {
	mw.confirmDiscard(func() {
		mw.openFile(prefs.KeyLastImageDir, imageExtensions, func(path string) {
			if err := mw.state.OpenImage(path); err != nil {
				mw.showError("open image", err)
			}
		})
	})
}

func (mw *MainWindow) onOpenDirectory() {
	mw.confirmDiscard(func() {
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			dir := uri.Path()
			mw.prefs.SetString(prefs.KeyLastImageDir, dir)
			n, err := mw.state.OpenDirectory(dir)
			if err != nil {
				mw.showError("open directory", err)
				return
			}
			mw.updateStatus(fmt.Sprintf("%d images in %s", n, dir))
		}, mw.Window)
		if loc := mw.lastDir(prefs.KeyLastImageDir); loc != nil {
			fd.SetLocation(loc)
		}
		fd.Show()
	})
}

func (mw *MainWindow) onOpenProject() {
	mw.openFile(prefs.KeyLastProjectDir, []string{project.Extension}, mw.openProject)
}

func (mw *MainWindow) openProject(path string) {
	mw.confirmDiscard(func() {
		if err := mw.state.LoadProject(path); err != nil {
			mw.showError("open project", err)
			return
		}
		mw.prefs.AddRecent(path)
	})
}

func (mw *MainWindow) onSaveProject() {
	if mw.state.ProjectPath == "" {
		mw.onSaveProjectAs()
		return
	}
	if err := mw.state.SaveProject(mw.state.ProjectPath); err != nil {
		mw.showError("save project", err)
	}
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != project.Extension {
			path += project.Extension
		}
		mw.rememberDir(prefs.KeyLastProjectDir, path)
		if err := mw.state.SaveProject(path); err != nil {
			mw.showError("save project", err)
		}
	}, mw.Window)
	name := "project"
	if img := mw.state.CurrentImage(); img != "" {
		name = strings.TrimSuffix(filepath.Base(img), filepath.Ext(img))
	}
	fd.SetFileName(name + project.Extension)
	if loc := mw.lastDir(prefs.KeyLastProjectDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onImportLabeling() {
	mw.confirmDiscard(func() {
		mw.openFile(prefs.KeyLastImageDir, []string{".dat", ".xml"}, func(path string) {
			if err := mw.state.ImportLabeling(path); err != nil {
				mw.showError("import labeling", err)
			}
		})
	})
}

func (mw *MainWindow) onImportPascal() {
	mw.openFile(prefs.KeyLastImageDir, []string{".xml"}, func(path string) {
		res, err := mw.state.ImportPascal(path)
		if err != nil {
			mw.showError("import PASCAL VOC", err)
			return
		}
		mw.updateStatus(fmt.Sprintf("Imported %d boxes, %d new labels, %d skipped", res.Boxes, res.NewLabels, res.Skipped))
	})
}

func (mw *MainWindow) onImportPascalPolygons() {
	mw.openFile(prefs.KeyLastImageDir, []string{".txt", ".dat"}, func(path string) {
		res, err := mw.state.ImportPascalPolygons(path)
		if err != nil {
			mw.showError("import PASCAL polygons", err)
			return
		}
		mw.updateStatus(fmt.Sprintf("Imported %d polygons, %d new labels, %d skipped", res.Polygons, res.NewLabels, res.Skipped))
	})
}

func (mw *MainWindow) onExportLabeling() {
	path, err := mw.state.ExportLabeling(context.Background(), "")
	if err != nil {
		mw.showError("export labeling", err)
		return
	}
	mw.updateStatus("Labeling written: " + path)
}

func (mw *MainWindow) onExportSegmented() {
	if _, err := mw.state.ExportSegmented(context.Background()); err != nil {
		mw.showError("export segmented image", err)
	}
}

func (mw *MainWindow) onLoadLegend() {
	mw.openFile(prefs.KeyLastImageDir, []string{".dat", ".xml"}, func(path string) {
		if err := mw.state.LoadLegend(path); err != nil {
			mw.showError("load legend", err)
			return
		}
		mw.updateStatus("Legend loaded: " + path)
	})
}

func (mw *MainWindow) onSaveLegend() {
	path, err := mw.state.SaveLegend("")
	if err != nil {
		mw.showError("save legend", err)
		return
	}
	mw.updateStatus("Legend written: " + path)
}

func (mw *MainWindow) setTool(t interaction.Tool) {
	mw.state.SetTool(t)
	mw.canvas.Refresh()
}

func (mw *MainWindow) onConfirm() {
	if !mw.state.ConfirmSelection() {
		mw.updateStatus("Nothing to confirm")
	}
}

func (mw *MainWindow) onClearSelection() {
	mw.state.Machine().ClearLast()
	mw.canvas.Refresh()
}

func (mw *MainWindow) onUndo() {
	mw.canvas.TypeKey(fyne.KeyZ, fyne.KeyModifierControl)
}

func (mw *MainWindow) onRedo() {
	mw.canvas.TypeKey(fyne.KeyY, fyne.KeyModifierControl)
}

func (mw *MainWindow) onZoomIn() {
	mw.disableFitToWindow()
	mw.canvas.ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.disableFitToWindow()
	mw.canvas.ZoomOut()
}

func (mw *MainWindow) onToggleFitToWindow() {
	enabled := !mw.canvas.GetFitToWindow()
	mw.canvas.SetFitToWindow(enabled)
	mw.fitToWindowItem.Checked = enabled
	mw.prefs.SetBool(prefs.KeyFitToWindow, enabled)
	mw.MainMenu().Refresh()
}

func (mw *MainWindow) onActualSize() {
	mw.disableFitToWindow()
	mw.canvas.SetZoom(1.0)
}

func (mw *MainWindow) disableFitToWindow() {
	if mw.canvas.GetFitToWindow() {
		mw.canvas.SetFitToWindow(false)
		mw.fitToWindowItem.Checked = false
		mw.prefs.SetBool(prefs.KeyFitToWindow, false)
		mw.MainMenu().Refresh()
	}
}

func (mw *MainWindow) onToggleMask() {
	show := !mw.canvas.Overlay().Visible()
	mw.canvas.SetShowMask(show)
	mw.showMaskItem.Checked = show
	mw.prefs.SetBool(prefs.KeyShowMask, show)
	mw.MainMenu().Refresh()
}

func (mw *MainWindow) onStatistics() {
	cov, err := mw.state.Coverage(context.Background())
	if err != nil {
		mw.showError("coverage", err)
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Labeled: %.1f%%\n", cov.LabeledFraction*100)
	fmt.Fprintf(&b, "Shape area: mean %.1f px, stddev %.1f px\n\n", cov.MeanShapeArea, cov.ShapeAreaStdDev)
	for _, lc := range cov.Labels {
		name := fmt.Sprint(lc.Label)
		if l, ok := mw.state.Palette().Label(lc.Label); ok {
			name = l.Name
		}
		fmt.Fprintf(&b, "%-20s %8d px  %5.1f%%\n", name, lc.Pixels, lc.Fraction*100)
	}
	dialog.ShowInformation("Coverage Statistics", b.String(), mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\n"+
			"Draws bounding boxes and polygons over images,\n"+
			"assigns them labels and exports segmented masks.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// onClose asks before dropping unsaved work, then persists the window
// state and stops the project watcher.
func (mw *MainWindow) onClose() {
	mw.confirmDiscard(func() {
		size := mw.Canvas().Size()
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
		if err := mw.prefs.Save(); err != nil {
			mw.logger.Warn("preferences not saved", zap.Error(err))
		}
		if mw.watcher != nil {
			_ = mw.watcher.Stop()
		}
		mw.Close()
	})
}
