package main

import (
	"fmt"

	"image-labeler/internal/annotation"
	"image-labeler/internal/imageio"
	"image-labeler/internal/project"
)

// loaded is a project read without opening the desktop state.
type loaded struct {
	path    string
	file    *project.File
	store   *annotation.Store
	palette *annotation.Palette
	width   int
	height  int
}

// loadProject reads a project and its shapes. The image size comes from
// the project, or from the image itself for projects saved without it.
func loadProject(path string) (*loaded, error) {
	file, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	l := &loaded{
		path:    path,
		file:    file,
		store:   annotation.NewStore(),
		palette: annotation.NewPalette(),
		width:   file.ImageWidth,
		height:  file.ImageHeight,
	}
	file.Apply(l.store, l.palette)

	if l.width <= 0 || l.height <= 0 {
		img := file.GetImagePath(path)
		if img == "" {
			return nil, fmt.Errorf("%s: no image size and no image", path)
		}
		decoded, err := imageio.Load(img)
		if err != nil {
			return nil, fmt.Errorf("%s: image size: %w", path, err)
		}
		l.width, l.height = decoded.Bounds().Dx(), decoded.Bounds().Dy()
	}
	return l, nil
}
