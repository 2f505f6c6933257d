package meta

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visualoom/visualoom/internal/errors"
)

// writePNG writes a w x h test image and returns its path.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestExtract_ReadsDimensionsAndStats(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "red.png", 100, 60)

	rec, err := NewExtractor(nil).Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "red.png", rec.ID, "provisional id is the file name")
	assert.Equal(t, path, rec.Path)
	assert.Equal(t, "png", rec.Format)
	assert.Equal(t, 100, rec.Width)
	assert.Equal(t, 60, rec.Height)
	assert.Positive(t, rec.SizeBytes)
	assert.False(t, rec.Modified.IsZero())
	assert.NotNil(t, rec.Tags)
}

func TestExtract_RawFormatIsStatOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.nef")
	require.NoError(t, os.WriteFile(path, []byte("not really raw bytes"), 0o644))

	rec, err := NewExtractor(nil).Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "nef", rec.Format)
	assert.Zero(t, rec.Width)
	assert.Zero(t, rec.Height)
	assert.Equal(t, int64(20), rec.SizeBytes)
}

func TestExtract_NonImageContentIsUnreadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake.jpg")
	require.NoError(t, os.WriteFile(path, []byte("this is a text file"), 0o644))

	_, err := NewExtractor(nil).Extract(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.New(errors.ErrCodeUnreadableImage, "", nil))
}

func TestExtract_UnsupportedExtensionIsUnreadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := NewExtractor(nil).Extract(path)
	assert.Error(t, err)
}

func TestExtract_MissingFileIsUnreadable(t *testing.T) {
	_, err := NewExtractor(nil).Extract(filepath.Join(t.TempDir(), "gone.png"))
	assert.Error(t, err)
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.JPG", true},
		{"b.png", true},
		{"c.webp", true},
		{"d.heic", true},
		{"e.CR2", true},
		{"f.dng", true},
		{"g.txt", false},
		{"h", false},
		{"i.mp4", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsImageFile(tt.name), tt.name)
	}
}

func TestIsRawFile(t *testing.T) {
	assert.True(t, IsRawFile("x.ARW"))
	assert.False(t, IsRawFile("x.png"))
}
