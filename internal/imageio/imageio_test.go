package imageio

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	img.Set(3, 2, color.RGBA{G: 255, A: 255})
	return img
}

func TestDerivedPath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "cat_labeled.dat"), DerivedPath(filepath.Join("a", "cat.jpg"), SuffixLabeled, ".dat"))
	assert.Equal(t, "cat_segmented.png", DerivedPath("cat.tiff", SuffixSegmented, ".png"))
	assert.Equal(t, filepath.Join("x", "my.image_legend.dat"), DerivedPath(filepath.Join("x", "my.image.png"), SuffixLegend, ".dat"))
}

func TestFormats(t *testing.T) {
	assert.Equal(t, FormatJPEG, FormatFromPath("a.JPG"))
	assert.Equal(t, FormatWebP, FormatFromPath("a.webp"))
	assert.Equal(t, FormatPNG, FormatFromPath("a.unknown"))

	_, err := ParseFormat("gif")
	assert.Error(t, err)

	assert.True(t, IsImage("x/y.TIF"))
	assert.False(t, IsImage("x/y_labeled.dat"))
}

func TestSaveLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.png")
	require.NoError(t, Save(testImage(), path, FormatPNG, 0))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	r, g, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
}

func TestSaveLoadWebPLossless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.webp")
	require.NoError(t, Save(testImage(), path, FormatWebP, 100))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	_, g, _, _ := img.At(3, 2).RGBA()
	assert.Equal(t, uint32(0xffff), g)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestEncodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testImage(), FormatJPEG, 80))
	assert.Equal(t, []byte{0xff, 0xd8}, buf.Bytes()[:2])
	assert.Equal(t, "image/jpeg", FormatJPEG.ContentType())
	assert.Equal(t, "image/png", Format("").ContentType())
}

func TestFormatExt(t *testing.T) {
	assert.Equal(t, ".jpg", FormatJPEG.Ext())
	assert.Equal(t, ".webp", FormatWebP.Ext())
	assert.Equal(t, ".png", FormatPNG.Ext())
}
