// Package pascal reads PASCAL VOC annotation files and polygon lists.
package pascal

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrCorrupted is returned for files that parse but carry invalid data.
var ErrCorrupted = errors.New("pascal: corrupted data")

// Object is a named bounding box from a VOC annotation.
type Object struct {
	Name string
	XMin int
	YMin int
	XMax int
	YMax int
}

// Annotation is the subset of a VOC annotation used for import.
type Annotation struct {
	Folder   string
	Filename string
	Objects  []Object
}

type xmlAnnotation struct {
	XMLName  xml.Name    `xml:"annotation"`
	Folder   string      `xml:"folder"`
	Filename string      `xml:"filename"`
	Objects  []xmlObject `xml:"object"`
}

type xmlObject struct {
	Name   string     `xml:"name"`
	BndBox *xmlBndBox `xml:"bndbox"`
}

type xmlBndBox struct {
	XMin string `xml:"xmin"`
	YMin string `xml:"ymin"`
	XMax string `xml:"xmax"`
	YMax string `xml:"ymax"`
}

// ReadAnnotation decodes a VOC annotation. Box extrema may be fractional and
// are rounded. Objects without a name or with an incomplete box are skipped.
func ReadAnnotation(r io.Reader) (*Annotation, error) {
	var data xmlAnnotation
	if err := xml.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode annotation: %w", err)
	}

	ann := &Annotation{
		Folder:   strings.TrimSpace(data.Folder),
		Filename: strings.TrimSpace(data.Filename),
	}
	for _, raw := range data.Objects {
		name := strings.TrimSpace(raw.Name)
		if name == "" || raw.BndBox == nil {
			continue
		}
		obj, ok := parseBndBox(name, raw.BndBox)
		if !ok {
			continue
		}
		ann.Objects = append(ann.Objects, obj)
	}
	return ann, nil
}

// ReadAnnotationFile opens and decodes a VOC annotation file.
func ReadAnnotationFile(path string) (*Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotation: %w", err)
	}
	defer f.Close()
	return ReadAnnotation(f)
}

func parseBndBox(name string, b *xmlBndBox) (Object, bool) {
	vals := [4]int{}
	for i, s := range []string{b.XMin, b.YMin, b.XMax, b.YMax} {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Object{}, false
		}
		vals[i] = int(math.Round(v))
	}
	return Object{Name: name, XMin: vals[0], YMin: vals[1], XMax: vals[2], YMax: vals[3]}, true
}

// ImagePath resolves the image an annotation refers to:
// <root>/<folder>/JPEGImages/<filename>. An empty root uses the directory
// of the annotation file.
func ImagePath(root, annotationPath string, ann *Annotation) string {
	if root == "" {
		root = filepath.Dir(annotationPath)
	}
	return filepath.Join(root, ann.Folder, "JPEGImages", ann.Filename)
}
