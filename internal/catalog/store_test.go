package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(
		filepath.Join(dir, "image_data.json"),
		filepath.Join(dir, "tag_data.json"),
		nil,
	)
}

func TestLoadImages_AbsentFileIsEmptyCatalog(t *testing.T) {
	s := newTestStore(t)
	records := s.LoadImages()
	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestSaveAndLoadImages_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	in := []*ImageRecord{
		{
			ID:        "img-1",
			Path:      "/photos/beach.jpg",
			Format:    "jpeg",
			Width:     4000,
			Height:    3000,
			SizeBytes: 123456,
			Created:   now,
			Modified:  now,
			Tags:      []string{"t1"},
			Embedding: []float32{0.1, 0.2, 0.3},
		},
		{ID: "img-2", Path: "/photos/city.png", Format: "png"},
	}
	require.NoError(t, s.SaveImages(in))

	out := s.LoadImages()
	require.Len(t, out, 2)
	assert.Equal(t, "img-1", out[0].ID)
	assert.Equal(t, "/photos/beach.jpg", out[0].Path)
	assert.Equal(t, []string{"t1"}, out[0].Tags)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, out[0].Embedding)
}

func TestLoadImages_CorruptedFileRecoversToEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.CatalogPath()), 0o755))
	require.NoError(t, os.WriteFile(s.CatalogPath(), []byte("{definitely not json"), 0o644))

	records := s.LoadImages()
	require.NotNil(t, records)
	assert.Empty(t, records, "corrupted store should load as empty, not fail")
}

func TestSaveImages_LeavesNoTempFilesBehind(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveImages([]*ImageRecord{{ID: "a", Path: "/a.jpg"}}))

	entries, err := os.ReadDir(filepath.Dir(s.CatalogPath()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"),
			"atomic save should not leave temp file %s", e.Name())
	}
}

func TestSaveImages_OverwritesPriorContent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveImages([]*ImageRecord{{ID: "a", Path: "/a.jpg"}}))
	require.NoError(t, s.SaveImages([]*ImageRecord{{ID: "b", Path: "/b.jpg"}}))

	out := s.LoadImages()
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)
}

func TestSaveAndLoadTags_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveTags([]*Tag{
		{ID: "t1", Name: "Alice", Type: TagTypePerson},
		{ID: "t2", Name: "vacation", Type: TagTypeTopic},
	}))

	tags := s.LoadTags()
	require.Len(t, tags, 2)
	assert.Equal(t, "Alice", tags[0].Name)
	assert.Equal(t, TagTypeTopic, tags[1].Type)
}

func TestImageRecord_Clone(t *testing.T) {
	r := &ImageRecord{ID: "x", Tags: []string{"t1"}, Embedding: []float32{1}}
	c := r.Clone()
	c.Tags[0] = "t9"
	c.Embedding[0] = 9

	assert.Equal(t, "t1", r.Tags[0], "clone must not alias tags")
	assert.Equal(t, float32(1), r.Embedding[0], "clone must not alias embedding")
}

func TestImageRecord_HasTag(t *testing.T) {
	r := &ImageRecord{Tags: []string{"a", "b"}}
	assert.True(t, r.HasTag("a"))
	assert.False(t, r.HasTag("z"))
}
