package vector

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visualoom/visualoom/internal/catalog"
)

func rec(id string, v []float32) *catalog.ImageRecord {
	return &catalog.ImageRecord{ID: id, Path: "/photos/" + id + ".jpg", Embedding: v}
}

func TestSearch_OrdersByCosineSimilarity(t *testing.T) {
	// Given: vectors [1,0,0], [0,1,0], [0.9,0.1,0]
	s := NewStore([]*catalog.ImageRecord{
		rec("a", []float32{1, 0, 0}),
		rec("b", []float32{0, 1, 0}),
		rec("c", []float32{0.9, 0.1, 0}),
	})

	// When: searching for [1,0,0] with topK=2
	results := s.Search([]float32{1, 0, 0}, 2)

	// Then: a then c, scores descending in [0,1]
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Record.ID)
	assert.Equal(t, "c", results[1].Record.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
}

func TestSearch_EmptyStoreReturnsEmpty(t *testing.T) {
	s := NewStore(nil)
	results := s.Search([]float32{1, 2, 3}, 5)
	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearch_TopKBeyondCountReturnsAll(t *testing.T) {
	s := NewStore([]*catalog.ImageRecord{
		rec("a", []float32{1, 0}),
		rec("b", []float32{0, 1}),
	})
	results := s.Search([]float32{1, 0}, 50)
	assert.Len(t, results, 2)
}

func TestSearch_TiesKeepCatalogOrder(t *testing.T) {
	// Identical vectors score identically; catalog order must hold.
	s := NewStore([]*catalog.ImageRecord{
		rec("first", []float32{0, 1}),
		rec("second", []float32{0, 1}),
		rec("third", []float32{0, 1}),
	})
	results := s.Search([]float32{0, 1}, 3)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Record.ID)
	assert.Equal(t, "second", results[1].Record.ID)
	assert.Equal(t, "third", results[2].Record.ID)
}

func TestSearch_UnnormalizedVectorsStillCosine(t *testing.T) {
	// Stored rows and query are scaled arbitrarily; cosine is scale-free.
	s := NewStore([]*catalog.ImageRecord{
		rec("a", []float32{10, 0, 0}),
		rec("b", []float32{0, 0.001, 0}),
	})
	results := s.Search([]float32{3, 0, 0}, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Record.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestRecordsWithoutEmbeddingAreExcludedFromSearch(t *testing.T) {
	s := NewStore([]*catalog.ImageRecord{
		rec("embedded", []float32{1, 0}),
		{ID: "tagonly", Path: "/photos/tagonly.jpg"},
	})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.EmbeddedCount())

	results := s.Search([]float32{1, 0}, 10)
	require.Len(t, results, 1)
	assert.Equal(t, "embedded", results[0].Record.ID)
}

func TestRemove_ThenSearchNeverReturnsID(t *testing.T) {
	s := NewStore([]*catalog.ImageRecord{
		rec("a", []float32{1, 0}),
		rec("b", []float32{0.9, 0.1}),
	})

	s.Remove("a")

	for _, q := range [][]float32{{1, 0}, {0, 1}, {0.5, 0.5}} {
		for _, r := range s.Search(q, 10) {
			assert.NotEqual(t, "a", r.Record.ID)
		}
	}
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestAdd_RebuildsView(t *testing.T) {
	s := NewStore(nil)
	s.Add(rec("a", []float32{1, 0}))

	results := s.Search([]float32{1, 0}, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Record.ID)
}

func TestSearch_ZeroQueryDoesNotPanic(t *testing.T) {
	s := NewStore([]*catalog.ImageRecord{rec("a", []float32{1, 0})})
	results := s.Search([]float32{0, 0}, 1)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
}

func TestConcurrentSearchAndMutate(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Add(rec(fmt.Sprintf("r%d", i), []float32{float32(i), 1}))
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Search([]float32{1, 0}, 5)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
}
