// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"image-labeler/internal/annotation"
	"image-labeler/internal/config"
	"image-labeler/internal/imageio"
	"image-labeler/internal/interaction"
	"image-labeler/internal/logging"
	"image-labeler/internal/pascal"
	"image-labeler/internal/project"
	"image-labeler/internal/raster"
)

// ErrNoImages is returned when navigating an empty image list.
var ErrNoImages = errors.New("no images opened")

// State holds the current image, its annotations and the label palette.
//
// The mutex guards the listener registry and the path/image fields. The
// store, palette and machine belong to the UI goroutine; work finished on
// other goroutines reaches them through the dispatcher.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	Modified    bool
	Project     *project.File

	// modification time of the project file as last read or written
	projectStamp time.Time

	// Current image
	ImagePath     string
	Image         image.Image
	SegmentedPath string

	// Directory listing
	Images     []string
	imageIndex int

	cfg     config.Config
	store   *annotation.Store
	palette *annotation.Palette
	machine *interaction.Machine
	logger  *zap.Logger

	// dispatch runs f on the goroutine that owns the store and machine.
	dispatch func(f func())

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventImageLoaded
	EventImageListChanged
	EventAreasChanged
	EventLabelsChanged
	EventModified
	EventSelectionChanged
	EventSegmentedExported
	// EventNavigationBlocked carries the requested step (+1/-1) when
	// keyboard navigation hits unsaved changes.
	EventNavigationBlocked
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state.
func NewState(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	store := annotation.NewStore()
	logger := logging.Named("app")
	return &State{
		cfg:        *cfg,
		store:      store,
		palette:    annotation.NewPalette(),
		machine:    interaction.New(store, cfg.EditorOptions(), logging.Named("interaction")),
		logger:     logger,
		imageIndex: -1,
		listeners:  make(map[EventType][]EventListener),
		dispatch:   func(f func()) { f() },
	}
}

// SetDispatcher sets how results prepared on background goroutines are
// handed to the goroutine that owns the store and machine. The desktop
// shell passes fyne.Do; the default runs f immediately.
func (s *State) SetDispatcher(dispatch func(f func())) {
	s.mu.Lock()
	s.dispatch = dispatch
	s.mu.Unlock()
}

// Dispatch runs f through the dispatcher.
func (s *State) Dispatch(f func()) {
	s.mu.RLock()
	dispatch := s.dispatch
	s.mu.RUnlock()
	dispatch(f)
}

func (s *State) Config() config.Config                 { return s.cfg }
func (s *State) Store() *annotation.Store              { return s.store }
func (s *State) Palette() *annotation.Palette          { return s.palette }
func (s *State) Machine() *interaction.Machine         { return s.machine }
func (s *State) SetExportConfig(e config.ExportConfig) { s.cfg.Export = e }

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// IsModified reports whether there are unsaved changes.
func (s *State) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Modified
}

// CurrentImage returns the path of the loaded image, or "".
func (s *State) CurrentImage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ImagePath
}

// ImageData returns the decoded current image, or nil.
func (s *State) ImageData() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Image
}

// ImageList returns the opened image paths and the index of the current one.
func (s *State) ImageList() ([]string, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.Images))
	copy(out, s.Images)
	return out, s.imageIndex
}

// OpenImage loads a single image, replacing the image list with it.
func (s *State) OpenImage(path string) error {
	s.mu.Lock()
	s.Images = []string{path}
	s.imageIndex = 0
	s.mu.Unlock()
	s.Emit(EventImageListChanged, 1)
	return s.loadImage(path, true)
}

// OpenDirectory collects every image under dir, skipping segmented exports,
// and opens the first. It returns the number of images found.
func (s *State) OpenDirectory(dir string) (int, error) {
	var images []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imageio.IsImage(path) {
			return nil
		}
		if strings.Contains(strings.ToLower(filepath.Base(path)), imageio.SuffixSegmented) {
			return nil
		}
		images = append(images, path)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(images)

	s.mu.Lock()
	s.Images = images
	s.imageIndex = -1
	s.mu.Unlock()
	s.Emit(EventImageListChanged, len(images))
	s.logger.Info("opened directory", zap.String("dir", dir), zap.Int("images", len(images)))

	if len(images) == 0 {
		return 0, nil
	}
	return len(images), s.SelectImage(0)
}

// SelectImage loads the i-th image of the list.
func (s *State) SelectImage(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.Images) {
		s.mu.Unlock()
		return fmt.Errorf("image index %d out of range", i)
	}
	s.imageIndex = i
	path := s.Images[i]
	s.mu.Unlock()
	return s.loadImage(path, true)
}

// NextImage moves to the next image, wrapping to the first.
func (s *State) NextImage() error { return s.Step(1) }

// PrevImage moves to the previous image, wrapping to the last.
func (s *State) PrevImage() error { return s.Step(-1) }

// Step moves delta images through the list, wrapping at both ends.
func (s *State) Step(delta int) error {
	s.mu.RLock()
	n := len(s.Images)
	i := s.imageIndex
	s.mu.RUnlock()
	if n == 0 {
		return ErrNoImages
	}
	i = ((i+delta)%n + n) % n
	return s.SelectImage(i)
}

// loadImage decodes path and clears the annotations. The palette is kept.
// With autoLabeled, a "<name>_labeled.dat" next to the image is imported.
func (s *State) loadImage(path string, autoLabeled bool) error {
	img, err := imageio.Load(path)
	if err != nil {
		return err
	}
	s.showImage(path, img, autoLabeled)
	return nil
}

// showImage makes a decoded image current and clears the annotations.
func (s *State) showImage(path string, img image.Image, autoLabeled bool) {
	b := img.Bounds()

	s.mu.Lock()
	s.ImagePath = path
	s.Image = img
	s.SegmentedPath = ""
	s.mu.Unlock()

	s.machine.ClearAll()
	s.store.Clear()
	s.machine.SetImageSize(b.Dx(), b.Dy())
	s.logger.Info("image loaded", zap.String("path", path), zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))

	s.SetModified(false)
	s.Emit(EventImageLoaded, path)

	if autoLabeled {
		labeled := imageio.DerivedPath(path, imageio.SuffixLabeled, ".dat")
		if _, err := os.Stat(labeled); err == nil {
			if err := s.applyLabeling(labeled, false); err != nil {
				s.logger.Warn("labeled data not loaded", zap.String("path", labeled), zap.Error(err))
			}
		}
	}
	s.Emit(EventAreasChanged, nil)
}

// HandleEvent forwards an input event to the interaction machine and turns
// its effects into application events.
func (s *State) HandleEvent(ev interaction.Event) []interaction.Effect {
	effects := s.machine.Handle(ev)
	for _, e := range effects {
		switch e.Kind {
		case interaction.EffectShapeConfirmed, interaction.EffectAreaEdited:
			s.SetModified(true)
			s.Emit(EventAreasChanged, e.Ref)
		case interaction.EffectSelectionStarted, interaction.EffectFocusCleared:
			s.Emit(EventSelectionChanged, e.Ref)
		case interaction.EffectPrevImage:
			s.requestStep(-1)
		case interaction.EffectNextImage:
			s.requestStep(1)
		}
	}
	return effects
}

func (s *State) requestStep(delta int) {
	if s.IsModified() {
		s.Emit(EventNavigationBlocked, delta)
		return
	}
	if err := s.Step(delta); err != nil && !errors.Is(err, ErrNoImages) {
		s.logger.Warn("navigation failed", zap.Error(err))
	}
}

// SetTool switches the drawing tool, discarding any shape in progress.
func (s *State) SetTool(t interaction.Tool) {
	s.machine.SetTool(t)
	s.Emit(EventSelectionChanged, t)
}

// ConfirmSelection stores the shape being drawn.
func (s *State) ConfirmSelection() bool {
	ref, ok := s.machine.Confirm()
	if !ok {
		return false
	}
	s.SetModified(true)
	s.Emit(EventAreasChanged, ref)
	return true
}

// FocusArea focuses the area behind a listing position.
func (s *State) FocusArea(pos int) bool {
	kind, i, ok := annotation.RefForLine(s.store, pos)
	if !ok {
		return false
	}
	if !s.machine.Focus(kind, i) {
		return false
	}
	s.Emit(EventSelectionChanged, annotation.ShapeRef{Figure: kind, Shape: i, Vertex: -1})
	return true
}

// DeleteArea removes the shape at index i of kind.
func (s *State) DeleteArea(kind annotation.FigureKind, i int) bool {
	if !s.store.RemoveAt(kind, i) {
		return false
	}
	if f := s.machine.Focused(); f.Figure == kind && f.Shape == i {
		s.machine.ClearFocus()
	} else if f.Figure == kind && f.Shape > i {
		s.machine.Focus(kind, f.Shape-1)
	}
	s.machine.ClearHover()
	s.SetModified(true)
	s.Emit(EventAreasChanged, nil)
	return true
}

// EditArea applies an edited listing line. The line must keep its figure
// and index; malformed geometry is rejected.
func (s *State) EditArea(line string) bool {
	kind, i, shape, ok := annotation.ParseListing(line)
	if !ok || !s.store.ReplaceAt(kind, i, shape) {
		s.logger.Debug("area edit rejected", zap.String("line", line))
		return false
	}
	s.SetModified(true)
	s.Emit(EventAreasChanged, annotation.ShapeRef{Figure: kind, Shape: i, Vertex: -1})
	return true
}

// SetAreaLabel relabels one shape.
func (s *State) SetAreaLabel(kind annotation.FigureKind, i, label int) bool {
	if label < 0 || label >= s.palette.Len() || !s.store.SetLabel(kind, i, label) {
		return false
	}
	s.SetModified(true)
	s.Emit(EventAreasChanged, nil)
	return true
}

// AddLabel appends a label and makes it active.
func (s *State) AddLabel(name string) int {
	id := s.palette.Add(name)
	s.machine.SetActiveLabel(id)
	s.SetModified(true)
	s.Emit(EventLabelsChanged, id)
	return id
}

// RenameLabel renames a non-background label.
func (s *State) RenameLabel(id int, name string) bool {
	if !s.palette.Rename(id, name) {
		return false
	}
	s.SetModified(true)
	s.Emit(EventLabelsChanged, id)
	return true
}

// RemoveLabel deletes a label. Shapes carrying it fall back to the
// background and higher ids shift down by one.
func (s *State) RemoveLabel(id int) bool {
	if !s.palette.Remove(id) {
		return false
	}
	changed := s.store.RemapLabel(id)
	switch active := s.machine.ActiveLabel(); {
	case active == id:
		s.machine.SetActiveLabel(annotation.BackgroundID)
	case active > id:
		s.machine.SetActiveLabel(active - 1)
	}
	s.logger.Info("label removed", zap.Int("id", id), zap.Int("shapes_changed", changed))
	s.SetModified(true)
	s.Emit(EventLabelsChanged, id)
	s.Emit(EventAreasChanged, nil)
	return true
}

// ToggleMainLabel toggles emphasis on a label.
func (s *State) ToggleMainLabel(id int) bool {
	if !s.palette.ToggleMain(id) {
		return false
	}
	s.Emit(EventLabelsChanged, id)
	return true
}

// SetLabelColor gives a label an explicit color.
func (s *State) SetLabelColor(id int, c color.RGBA) bool {
	if !s.palette.SetColor(id, c) {
		return false
	}
	s.SetModified(true)
	s.Emit(EventLabelsChanged, id)
	return true
}

// SetActiveLabel selects the label that newly confirmed shapes receive.
func (s *State) SetActiveLabel(id int) bool {
	if id < 0 || id >= s.palette.Len() {
		return false
	}
	s.machine.SetActiveLabel(id)
	return true
}

// GenerateColors replaces every label color with the generated sequence.
func (s *State) GenerateColors() {
	s.palette.GenerateColors()
	s.SetModified(true)
	s.Emit(EventLabelsChanged, nil)
}

// LoadProject loads a project from the specified path.
func (s *State) LoadProject(path string) error {
	proj, img, err := readProject(path)
	if err != nil {
		return err
	}
	s.applyProject(path, proj, img)
	return nil
}

// readProject parses a project and decodes the image it names. It touches
// no state and may run on any goroutine.
func readProject(path string) (*project.File, image.Image, error) {
	proj, err := project.Load(path)
	if err != nil {
		return nil, nil, err
	}
	imgPath := proj.GetImagePath(path)
	if imgPath == "" {
		return proj, nil, nil
	}
	img, err := imageio.Load(imgPath)
	if err != nil {
		return nil, nil, err
	}
	return proj, img, nil
}

// applyProject replaces the current image and annotations with a parsed
// project.
func (s *State) applyProject(path string, proj *project.File, img image.Image) {
	if img != nil {
		imgPath := proj.GetImagePath(path)
		s.showImage(imgPath, img, false)
		s.mu.Lock()
		s.Images = []string{imgPath}
		s.imageIndex = 0
		s.mu.Unlock()
		s.Emit(EventImageListChanged, 1)
	}

	proj.Apply(s.store, s.palette)

	s.mu.Lock()
	s.Project = proj
	s.ProjectPath = path
	s.projectStamp = modTime(path)
	s.SegmentedPath = proj.GetSegmentedPath(path)
	s.Modified = false
	s.mu.Unlock()

	s.logger.Info("project loaded", zap.String("path", path),
		zap.Int("boxes", len(proj.Boxes)), zap.Int("polygons", len(proj.Polygons)))
	s.Emit(EventLabelsChanged, nil)
	s.Emit(EventAreasChanged, nil)
	s.Emit(EventProjectLoaded, path)
}

// SaveProject saves the project to the specified path.
func (s *State) SaveProject(path string) error {
	s.mu.Lock()
	proj := s.Project
	if proj == nil {
		proj = project.New(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		s.Project = proj
	}
	proj.SetImage(path, s.ImagePath)
	proj.SetSegmented(path, s.SegmentedPath)
	if s.Image != nil {
		proj.ImageWidth, proj.ImageHeight = s.Image.Bounds().Dx(), s.Image.Bounds().Dy()
	}
	s.mu.Unlock()

	proj.Capture(s.store, s.palette)
	if err := proj.Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.projectStamp = modTime(path)
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	s.Emit(EventModified, false)
	return nil
}

// ReloadProject reloads the current project from disk unless there are
// unsaved changes or the file is the one last loaded or saved. It reports
// whether a reload happened.
func (s *State) ReloadProject() (bool, error) {
	r, err := s.prepareReload()
	if err != nil || r == nil {
		return false, err
	}
	return s.applyReload(r), nil
}

// pendingReload is a project parsed off the UI goroutine.
type pendingReload struct {
	path string
	proj *project.File
	img  image.Image
}

// prepareReload reads the project file when it changed on disk and there
// are no unsaved edits. It returns nil when nothing needs reloading.
func (s *State) prepareReload() (*pendingReload, error) {
	s.mu.RLock()
	path, modified, stamp := s.ProjectPath, s.Modified, s.projectStamp
	s.mu.RUnlock()
	if path == "" || modified || modTime(path).Equal(stamp) {
		return nil, nil
	}
	proj, img, err := readProject(path)
	if err != nil {
		return nil, err
	}
	return &pendingReload{path: path, proj: proj, img: img}, nil
}

// applyReload installs a prepared reload unless the project was switched or
// edited while it was being read.
func (s *State) applyReload(r *pendingReload) bool {
	s.mu.RLock()
	current, modified := s.ProjectPath, s.Modified
	s.mu.RUnlock()
	if current != r.path || modified {
		return false
	}
	s.applyProject(r.path, r.proj, r.img)
	return true
}

// ImportLabeling loads a labeling document. The image it names is opened
// when it exists and differs from the current one.
func (s *State) ImportLabeling(path string) error {
	return s.applyLabeling(path, true)
}

func (s *State) applyLabeling(path string, openImage bool) error {
	l, err := project.ReadLabelingFile(path)
	if err != nil {
		return err
	}

	if openImage && l.ImagePath != "" && l.ImagePath != s.CurrentImage() {
		if _, err := os.Stat(l.ImagePath); err == nil {
			if err := s.loadImage(l.ImagePath, false); err != nil {
				return err
			}
		} else {
			s.logger.Warn("labeled image not found", zap.String("image", l.ImagePath))
		}
	}

	l.Apply(s.store, s.palette)
	s.mu.Lock()
	s.SegmentedPath = l.SegmentedPath
	s.mu.Unlock()

	s.logger.Info("labeling imported", zap.String("path", path),
		zap.Int("boxes", len(l.Boxes)), zap.Int("polygons", len(l.Polygons)))
	s.SetModified(false)
	s.Emit(EventLabelsChanged, nil)
	s.Emit(EventAreasChanged, nil)
	return nil
}

// ExportLabeling writes the labeling document for the current image. An
// empty path writes "<image>_labeled.dat".
func (s *State) ExportLabeling(ctx context.Context, path string) (string, error) {
	s.mu.RLock()
	imgPath, img, segmented := s.ImagePath, s.Image, s.SegmentedPath
	var desc, tags string
	if s.Project != nil {
		desc, tags = s.Project.Description, s.Project.Tags
	}
	s.mu.RUnlock()
	if img == nil {
		return "", project.ErrNoImage
	}
	if path == "" {
		path = imageio.DerivedPath(imgPath, imageio.SuffixLabeled, ".dat")
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	snap := s.store.Snapshot()
	mask, err := raster.BuildSnapshot(ctx, w, h, snap)
	if err != nil {
		return "", err
	}

	l := &project.Labeling{
		ImagePath:     imgPath,
		SegmentedPath: segmented,
		Description:   desc,
		Tags:          tags,
		Legend:        project.LegendFromPalette(s.palette),
		Boxes:         snap.Boxes,
		Polygons:      snap.Polygons,
		Width:         w,
		Height:        h,
		Mask:          mask,
	}
	if err := project.WriteLabelingFile(path, l); err != nil {
		return "", err
	}
	s.logger.Info("labeling exported", zap.String("path", path))
	s.SetModified(false)
	return path, nil
}

// LoadLegend replaces the palette with a legend file.
func (s *State) LoadLegend(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open legend: %w", err)
	}
	defer f.Close()

	legend, err := project.DecodeLegend(f)
	if err != nil {
		return err
	}
	project.ApplyLegend(s.palette, legend)
	s.Emit(EventLabelsChanged, nil)
	return nil
}

// SaveLegend writes the palette as a legend file. An empty path writes
// "<image>_legend.dat".
func (s *State) SaveLegend(path string) (string, error) {
	if path == "" {
		img := s.CurrentImage()
		if img == "" {
			return "", project.ErrNoImage
		}
		path = imageio.DerivedPath(img, imageio.SuffixLegend, ".dat")
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create legend: %w", err)
	}
	if err := project.EncodeLegend(f, project.LegendFromPalette(s.palette)); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// ImportPascal reads a PASCAL VOC annotation, opens the image it refers to
// and adds its objects as boxes.
func (s *State) ImportPascal(xmlPath string) (pascal.Result, error) {
	ann, err := pascal.ReadAnnotationFile(xmlPath)
	if err != nil {
		return pascal.Result{}, err
	}

	imgPath := pascal.ImagePath(s.cfg.Pascal.Root, xmlPath, ann)
	if _, err := os.Stat(imgPath); err == nil {
		if err := s.loadImage(imgPath, false); err != nil {
			return pascal.Result{}, err
		}
		s.mu.Lock()
		s.Images = []string{imgPath}
		s.imageIndex = 0
		s.mu.Unlock()
		s.Emit(EventImageListChanged, 1)
	} else if s.CurrentImage() == "" {
		return pascal.Result{}, fmt.Errorf("pascal image %s: %w", imgPath, err)
	} else {
		s.logger.Warn("pascal image not found, importing onto current image", zap.String("image", imgPath))
	}

	res := pascal.Import(s.store, s.palette, ann.Objects, nil)
	s.afterImport(xmlPath, res)
	return res, nil
}

// ImportPascalPolygons adds the polygons of a polygon list file.
func (s *State) ImportPascalPolygons(path string) (pascal.Result, error) {
	records, err := pascal.ReadPolygonsFile(path)
	if err != nil {
		return pascal.Result{}, err
	}
	res := pascal.Import(s.store, s.palette, nil, records)
	s.afterImport(path, res)
	return res, nil
}

func (s *State) afterImport(path string, res pascal.Result) {
	s.logger.Info("pascal import",
		zap.String("path", path),
		zap.Int("boxes", res.Boxes),
		zap.Int("polygons", res.Polygons),
		zap.Int("new_labels", res.NewLabels),
		zap.Int("skipped", res.Skipped))
	s.SetModified(true)
	if res.NewLabels > 0 {
		s.Emit(EventLabelsChanged, nil)
	}
	s.Emit(EventAreasChanged, nil)
}

// ExportSegmented rasterizes the annotations into a colored label image
// written next to the source as "<image>_segmented.<ext>".
func (s *State) ExportSegmented(ctx context.Context) (string, error) {
	s.mu.RLock()
	imgPath, img := s.ImagePath, s.Image
	s.mu.RUnlock()
	if img == nil {
		return "", project.ErrNoImage
	}

	mask, err := raster.BuildSnapshot(ctx, img.Bounds().Dx(), img.Bounds().Dy(), s.store.Snapshot())
	if err != nil {
		return "", err
	}

	if s.cfg.Export.AutoColors || s.palette.NeedsGeneratedColors() {
		s.palette.GenerateColors()
		s.Emit(EventLabelsChanged, nil)
	}

	format := s.cfg.ExportFormat()
	out := imageio.DerivedPath(imgPath, imageio.SuffixSegmented, format.Ext())
	if err := imageio.Save(raster.Colorize(mask, s.palette), out, format, s.cfg.Export.Quality); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.SegmentedPath = out
	s.mu.Unlock()

	s.logger.Info("segmented image exported", zap.String("path", out))
	s.Emit(EventSegmentedExported, out)
	return out, nil
}

// Coverage summarizes how much of the current image is labeled.
func (s *State) Coverage(ctx context.Context) (raster.Coverage, error) {
	s.mu.RLock()
	img := s.Image
	s.mu.RUnlock()
	if img == nil {
		return raster.Coverage{}, project.ErrNoImage
	}
	snap := s.store.Snapshot()
	mask, err := raster.BuildSnapshot(ctx, img.Bounds().Dx(), img.Bounds().Dy(), snap)
	if err != nil {
		return raster.Coverage{}, err
	}
	return raster.Stats(mask, snap), nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
