// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"image-labeler/internal/annotation"
)

// Extension is the project file extension.
const Extension = ".lblproj"

// FormatVersion is the current project file version.
const FormatVersion = 1

// File represents an image labeler project file (.lblproj).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`
	Tags        string    `json:"tags,omitempty"`

	// Image paths (relative to project file)
	ImagePath     string `json:"image,omitempty"`
	SegmentedPath string `json:"segmented,omitempty"`
	ImageWidth    int    `json:"image_width,omitempty"`
	ImageHeight   int    `json:"image_height,omitempty"`

	Labels   []LegendLabel            `json:"labels"`
	Boxes    []annotation.BoundingBox `json:"boxes"`
	Polygons []annotation.Polygon     `json:"polygons"`
}

// New creates an empty project file.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  FormatVersion,
		Name:     name,
		Created:  now,
		Modified: now,
	}
}

// Load loads a project from a .lblproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", filepath.Base(path), err)
	}
	if proj.Version > FormatVersion {
		return nil, fmt.Errorf("project %s has unsupported version %d", filepath.Base(path), proj.Version)
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()
	if p.Version == 0 {
		p.Version = FormatVersion
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return nil
}

// SetImage sets the image path (relative to project).
func (p *File) SetImage(projectPath, imagePath string) {
	p.ImagePath = relativeTo(projectPath, imagePath)
	p.Modified = time.Now()
}

// SetSegmented sets the segmented export path (relative to project).
func (p *File) SetSegmented(projectPath, segmentedPath string) {
	p.SegmentedPath = relativeTo(projectPath, segmentedPath)
	p.Modified = time.Now()
}

// GetImagePath returns the absolute path to the image.
func (p *File) GetImagePath(projectPath string) string {
	return resolve(projectPath, p.ImagePath)
}

// GetSegmentedPath returns the absolute path to the segmented export.
func (p *File) GetSegmentedPath(projectPath string) string {
	return resolve(projectPath, p.SegmentedPath)
}

// Capture copies the annotations and palette into the project.
func (p *File) Capture(store *annotation.Store, palette *annotation.Palette) {
	snap := store.Snapshot()
	p.Boxes = snap.Boxes
	p.Polygons = snap.Polygons
	p.Labels = LegendFromPalette(palette)
}

// Apply replaces the contents of store and palette with the project's.
func (p *File) Apply(store *annotation.Store, palette *annotation.Palette) {
	ApplyLegend(palette, p.Labels)
	store.Restore(annotation.Snapshot{Boxes: p.Boxes, Polygons: p.Polygons})
}

func relativeTo(projectPath, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(filepath.Dir(projectPath), path)
	if err != nil {
		return path
	}
	return rel
}

func resolve(projectPath, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(projectPath), path)
}
