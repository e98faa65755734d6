package project

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-labeler/internal/annotation"
	"image-labeler/internal/raster"
	"image-labeler/pkg/colorutil"
	"image-labeler/pkg/geometry"
)

func sampleModel() (*annotation.Store, *annotation.Palette) {
	store := annotation.NewStore()
	palette := annotation.NewPalette()
	car := palette.AddWithColor("car", colorutil.Cyan)
	tree := palette.AddWithColor("tree", colorutil.Green)
	palette.ToggleMain(tree)

	store.AddBox(annotation.BoundingBox{Rect: geometry.RectXYWH(1, 2, 3, 4), LabelID: car})
	store.AddPolygon(annotation.Polygon{
		Points:  []geometry.Point{geometry.Pt(0, 0), geometry.Pt(5, 0), geometry.Pt(5, 5)},
		LabelID: tree,
	})
	return store, palette
}

func TestProjectSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proj"+Extension)

	store, palette := sampleModel()
	p := New("demo")
	p.SetImage(path, filepath.Join(dir, "images", "a.png"))
	p.Capture(store, palette)
	require.NoError(t, p.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Name)
	assert.Equal(t, filepath.Join("images", "a.png"), loaded.ImagePath)
	assert.Equal(t, filepath.Join(dir, "images", "a.png"), loaded.GetImagePath(path))
	assert.Empty(t, loaded.GetSegmentedPath(path))

	gotStore := annotation.NewStore()
	gotPalette := annotation.NewPalette()
	loaded.Apply(gotStore, gotPalette)
	assert.Equal(t, store.Snapshot(), gotStore.Snapshot())
	assert.Equal(t, 3, gotPalette.Len())
	assert.Equal(t, 2, gotPalette.MainLabel())
	assert.Equal(t, colorutil.Cyan, gotPalette.ColorFor(1))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.lblproj"))
	assert.Error(t, err)
}

func TestLegendRoundTrip(t *testing.T) {
	_, palette := sampleModel()

	var buf bytes.Buffer
	require.NoError(t, EncodeLegend(&buf, LegendFromPalette(palette)))
	assert.Contains(t, buf.String(), `<root>`)
	assert.Contains(t, buf.String(), `isMain="1"`)

	legend, err := DecodeLegend(&buf)
	require.NoError(t, err)
	require.Len(t, legend, 3)
	assert.Equal(t, annotation.BackgroundName, legend[0].Name)
	assert.True(t, legend[2].Main)

	got := annotation.NewPalette()
	ApplyLegend(got, legend)
	assert.Equal(t, palette.Labels()[1:], got.Labels()[1:])
	assert.Equal(t, palette.MainLabel(), got.MainLabel())
}

func TestEmptyLegendPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeLegend(&buf, nil))
	assert.Contains(t, buf.String(), `<label id="-1"></label>`)

	legend, err := DecodeLegend(&buf)
	require.NoError(t, err)
	assert.Empty(t, legend)
}

func TestDecodeLegendSkipsMalformed(t *testing.T) {
	doc := `<root><legend>
 <label color="ff00ff00" id="x" isMain="0">bad id</label>
 <label color="ff00ff00" id="1" isMain="2">bad main</label>
 <label color="zz" id="2" isMain="0">bad color</label>
 <label color="ffff0000" id="3" isMain="0">red</label>
</legend></root>`
	legend, err := DecodeLegend(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, legend, 1)
	assert.Equal(t, "red", legend[0].Name)
	assert.Equal(t, 3, legend[0].ID)
}

func TestLabelingRoundTrip(t *testing.T) {
	store, palette := sampleModel()
	snap := store.Snapshot()
	mask := raster.Build(6, 7, snap.Boxes, snap.Polygons)

	in := &Labeling{
		ImagePath:   "/data/a.png",
		Description: "street",
		Tags:        "city",
		Legend:      LegendFromPalette(palette),
		Boxes:       snap.Boxes,
		Polygons:    snap.Polygons,
		Width:       6,
		Height:      7,
		Mask:        mask,
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeLabeling(&buf, in))
	text := buf.String()
	assert.Contains(t, text, `<bbox id="1">1;2;3;4;</bbox>`)
	assert.Contains(t, text, `<poly id="2">0;0;5;0;5;5;</poly>`)
	assert.Contains(t, text, `<image_size>6;7</image_size>`)

	out, err := DecodeLabeling(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.ImagePath, out.ImagePath)
	assert.Equal(t, in.Description, out.Description)
	assert.Equal(t, in.Boxes, out.Boxes)
	assert.Equal(t, in.Polygons, out.Polygons)
	assert.Equal(t, 6, out.Width)
	require.NotNil(t, out.Mask)
	assert.Equal(t, mask.Labels, out.Mask.Labels)

	gotStore := annotation.NewStore()
	gotPalette := annotation.NewPalette()
	out.Apply(gotStore, gotPalette)
	assert.Equal(t, snap, gotStore.Snapshot())
	assert.Equal(t, 3, gotPalette.Len())
}

func TestLabelingNormalizesBoxes(t *testing.T) {
	in := &Labeling{
		ImagePath: "a.png",
		Boxes: []annotation.BoundingBox{{
			Rect:    geometry.RectFromCorners(geometry.Pt(10, 10), geometry.Pt(4, 6)),
			LabelID: 1,
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeLabeling(&buf, in))
	assert.Contains(t, buf.String(), `<bbox id="1">4;6;6;4;</bbox>`)
}

func TestDecodeLabelingSkipsMalformedObjects(t *testing.T) {
	doc := `<pixelwise_labeling>
 <image>a.png</image>
 <objects>
  <bbox id="1">1;2;3;4;</bbox>
  <bbox id="x">1;2;3;4;</bbox>
  <bbox id="1"></bbox>
  <bbox id="1">1;2;0;4;</bbox>
  <poly id="2">1;2;3;</poly>
  <poly id="2">1;2;3;4;5;6;</poly>
 </objects>
 <image_size>bogus</image_size>
</pixelwise_labeling>`
	l, err := DecodeLabeling(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, l.Boxes, 1)
	assert.Len(t, l.Polygons, 1)
	assert.Equal(t, 2, l.Polygons[0].LabelID)
	assert.Zero(t, l.Width)
	assert.Nil(t, l.Mask)
}

func TestDecodeLabelingRequiresImage(t *testing.T) {
	_, err := DecodeLabeling(strings.NewReader(`<pixelwise_labeling><objects/></pixelwise_labeling>`))
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestDecodeLabelingBadPixelData(t *testing.T) {
	doc := `<pixelwise_labeling><image>a.png</image><image_size>2;2</image_size>
<pure_data>
0;1;
</pure_data></pixelwise_labeling>`
	l, err := DecodeLabeling(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, l.Height)
	assert.Nil(t, l.Mask)
}

func TestLabelingFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a_labeled.dat")
	require.NoError(t, WriteLabelingFile(path, &Labeling{ImagePath: "a.png"}))
	l, err := ReadLabelingFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a.png", l.ImagePath)
}
