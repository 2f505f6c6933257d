package search

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visualoom/visualoom/internal/catalog"
	"github.com/visualoom/visualoom/internal/tags"
	"github.com/visualoom/visualoom/internal/vector"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		people   []string
		topics   []string
		keywords string
	}{
		{
			name:     "plain keywords",
			raw:      "sunset over the beach",
			keywords: "sunset over the beach",
		},
		{
			name:   "person only",
			raw:    "@alice",
			people: []string{"alice"},
		},
		{
			name:     "mixed markers and keywords",
			raw:      "@alice beach sunset #travel",
			people:   []string{"alice"},
			topics:   []string{"travel"},
			keywords: "beach sunset",
		},
		{
			name:   "multiple people",
			raw:    "@alice @bob",
			people: []string{"alice", "bob"},
		},
		{
			name:   "hyphens and underscores in names",
			raw:    "@mary-jane #road_trip",
			people: []string{"mary-jane"},
			topics: []string{"road_trip"},
		},
		{
			name: "empty query",
			raw:  "",
		},
		{
			name:     "marker mid-sentence keeps surrounding keywords",
			raw:      "photos of @bob hiking",
			people:   []string{"bob"},
			keywords: "photos of hiking",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Parse(tt.raw)
			assert.Equal(t, tt.raw, q.Raw)
			assert.Equal(t, tt.people, q.People)
			assert.Equal(t, tt.topics, q.Topics)
			assert.Equal(t, tt.keywords, q.Keywords)
		})
	}
}

// fixedEmbedder returns the same vector for every text. Satisfies the
// embed.Embedder interface without any real model.
type fixedEmbedder struct {
	vec []float32
}

func (f *fixedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return f.vec, nil
}
func (f *fixedEmbedder) EmbedImage(ctx context.Context, path string) ([]float32, error) {
	return f.vec, nil
}
func (f *fixedEmbedder) Dimensions() int                    { return len(f.vec) }
func (f *fixedEmbedder) ModelName() string                  { return "fixed" }
func (f *fixedEmbedder) Available(ctx context.Context) bool { return true }
func (f *fixedEmbedder) Close() error                       { return nil }

func newTestEngine(t *testing.T, topK int) (*Engine, *tags.Manager) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	store := catalog.NewStore(
		filepath.Join(dir, "catalog.json"),
		filepath.Join(dir, "tags.json"),
		logger,
	)

	require.NoError(t, store.SaveTags([]*catalog.Tag{
		{ID: "t-alice", Name: "Alice", Type: catalog.TagTypePerson},
		{ID: "t-bob", Name: "Bob", Type: catalog.TagTypePerson},
	}))

	records := []*catalog.ImageRecord{
		{ID: "img-1", Path: "/p/1.jpg", Embedding: []float32{1, 0, 0}},
		{ID: "img-2", Path: "/p/2.jpg", Embedding: []float32{0, 1, 0}},
		{ID: "img-3", Path: "/p/3.jpg", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "img-4", Path: "/p/4.jpg", Tags: []string{"t-alice"}},
		{ID: "img-5", Path: "/p/5.jpg", Tags: []string{"t-alice", "t-bob"}, Embedding: []float32{0.8, 0.2, 0}},
	}
	require.NoError(t, store.SaveImages(records))

	manager := tags.NewManager(store, logger)
	vectors := vector.NewStore(records)
	embedder := &fixedEmbedder{vec: []float32{1, 0, 0}}

	return NewEngine(manager, vectors, embedder, topK, logger), manager
}

func TestEngine_SemanticOnly(t *testing.T) {
	engine, _ := newTestEngine(t, 10)

	results, err := engine.Search(context.Background(), "red sunset", 0)
	require.NoError(t, err)

	// img-4 has no embedding and cannot appear.
	require.Len(t, results, 4)
	assert.Equal(t, "img-1", results[0].Image.ID)
	assert.Equal(t, "img-3", results[1].Image.ID)
	assert.Equal(t, "img-5", results[2].Image.ID)
	assert.Equal(t, "img-2", results[3].Image.ID)
	for _, r := range results {
		assert.Equal(t, MatchSemantic, r.Kind)
	}
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestEngine_SemanticTopK(t *testing.T) {
	engine, _ := newTestEngine(t, 2)

	results, err := engine.Search(context.Background(), "red sunset", 0)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "img-1", results[0].Image.ID)
	assert.Equal(t, "img-3", results[1].Image.ID)
}

func TestEngine_PerCallTopKOverridesDefault(t *testing.T) {
	engine, _ := newTestEngine(t, 10)

	results, err := engine.Search(context.Background(), "red sunset", 1)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "img-1", results[0].Image.ID)

	// Zero falls back to the engine default.
	results, err = engine.Search(context.Background(), "red sunset", 0)
	require.NoError(t, err)
	assert.Len(t, results, 4)
}

func TestEngine_TagOnly(t *testing.T) {
	engine, _ := newTestEngine(t, 10)

	results, err := engine.Search(context.Background(), "@alice", 0)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "img-4", results[0].Image.ID, "tag matches keep catalog order")
	assert.Equal(t, "img-5", results[1].Image.ID)
	for _, r := range results {
		assert.Equal(t, MatchTag, r.Kind)
		assert.Zero(t, r.Score)
	}
}

func TestEngine_TagNameCaseInsensitive(t *testing.T) {
	engine, _ := newTestEngine(t, 10)

	results, err := engine.Search(context.Background(), "@ALICE", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestEngine_UnknownPerson(t *testing.T) {
	engine, _ := newTestEngine(t, 10)

	results, err := engine.Search(context.Background(), "@nobody", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_HybridMerge(t *testing.T) {
	engine, _ := newTestEngine(t, 3)

	results, err := engine.Search(context.Background(), "@alice red sunset", 0)
	require.NoError(t, err)

	// Tag branch: img-4, img-5. Semantic branch (topK=3): img-1, img-3,
	// and img-5, which already matched by tag and is dropped. The merged
	// list has 4 entries even though topK is 3.
	require.Len(t, results, 4)
	assert.Equal(t, "img-4", results[0].Image.ID)
	assert.Equal(t, MatchTag, results[0].Kind)
	assert.Equal(t, "img-5", results[1].Image.ID)
	assert.Equal(t, MatchTag, results[1].Kind)
	assert.Equal(t, "img-1", results[2].Image.ID)
	assert.Equal(t, MatchSemantic, results[2].Kind)
	assert.Equal(t, "img-3", results[3].Image.ID)
	assert.Equal(t, MatchSemantic, results[3].Kind)
}

func TestEngine_TopicsDoNotFilter(t *testing.T) {
	engine, _ := newTestEngine(t, 10)

	tagged, err := engine.Search(context.Background(), "@alice #somewhere", 0)
	require.NoError(t, err)
	plain, err := engine.Search(context.Background(), "@alice", 0)
	require.NoError(t, err)

	assert.Equal(t, len(plain), len(tagged), "topic markers are parsed but do not affect matching")
}

func TestEngine_DuplicatePeopleMarkers(t *testing.T) {
	engine, _ := newTestEngine(t, 10)

	results, err := engine.Search(context.Background(), "@alice @bob", 0)
	require.NoError(t, err)

	// img-5 carries both tags but appears once.
	require.Len(t, results, 2)
	assert.Equal(t, "img-4", results[0].Image.ID)
	assert.Equal(t, "img-5", results[1].Image.ID)
}

func TestEngine_EmptyQuery(t *testing.T) {
	engine, _ := newTestEngine(t, 10)

	results, err := engine.Search(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
