// Package vector provides the embedding store: a dense matrix of unit
// vectors with a parallel id list, searched by exact brute-force cosine
// similarity. Approximate indexes are deliberately out of scope; rebuild
// cost is O(total embedded records) per mutation, a simplicity-over-
// throughput tradeoff for catalogs that fit in memory.
package vector

import (
	"math"
	"sort"
	"sync"

	"github.com/visualoom/visualoom/internal/catalog"
)

// Result is one similarity hit.
type Result struct {
	Record *catalog.ImageRecord
	Score  float64
}

// Store holds the full record set and an id-indexed view of the records
// that carry an embedding. Records without a vector are excluded from the
// matrix, not zero-filled, so they stay invisible to semantic search.
//
// Reads (Search) and rebuilds triggered by Add/Remove from another job are
// safe to run concurrently: mutations take the write lock, searches the
// read lock.
type Store struct {
	mu      sync.RWMutex
	records []*catalog.ImageRecord

	// matrix rows are unit vectors, parallel to ids and rows, rebuilt
	// from the record set after every mutation.
	matrix [][]float32
	ids    []string
	byID   map[string]*catalog.ImageRecord
}

// NewStore builds a store from the full record set.
func NewStore(records []*catalog.ImageRecord) *Store {
	s := &Store{}
	s.Reset(records)
	return s
}

// Reset replaces the record set wholesale and rebuilds. Records are
// deep-copied on the way in: the store serves its own snapshot, and
// caller-side mutation after Reset cannot skew it against the matrix.
func (s *Store) Reset(records []*catalog.ImageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
	for _, r := range records {
		s.records = append(s.records, r.Clone())
	}
	s.rebuild()
}

// Add appends a copy of rec and rebuilds the matrix and id list.
func (s *Store) Add(rec *catalog.ImageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec.Clone())
	s.rebuild()
}

// Remove filters the record with the given id out and rebuilds.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, r := range s.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.records = kept
	s.rebuild()
}

// Len returns the total record count, embedded or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// EmbeddedCount returns the number of rows in the matrix.
func (s *Store) EmbeddedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Get returns the record with the given id, if present.
func (s *Store) Get(id string) (*catalog.ImageRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	return r, ok
}

// Search returns the topK most similar records in strictly descending
// score order, ties broken by catalog order. The query and every stored
// row are normalized to unit length, so the score is cosine similarity.
// An empty store yields an empty slice; topK beyond the row count yields
// all rows.
func (s *Store) Search(query []float32, topK int) []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.ids) == 0 || topK <= 0 {
		return []Result{}
	}

	q := normalize(query)

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(s.ids))
	for i, row := range s.matrix {
		// Rows are unit length from rebuild time, but re-normalize to
		// tolerate drift in persisted vectors.
		scores[i] = scored{idx: i, score: dot(normalize(row), q)}
	}

	// Stable: equal scores keep catalog order.
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if topK > len(scores) {
		topK = len(scores)
	}

	results := make([]Result, 0, topK)
	for _, sc := range scores[:topK] {
		results = append(results, Result{
			Record: s.byID[s.ids[sc.idx]],
			Score:  sc.score,
		})
	}
	return results
}

// rebuild regenerates the matrix, id list, and id index from the record
// set. Caller holds the write lock.
func (s *Store) rebuild() {
	s.matrix = s.matrix[:0]
	s.ids = s.ids[:0]
	s.byID = make(map[string]*catalog.ImageRecord, len(s.records))

	for _, r := range s.records {
		s.byID[r.ID] = r
		if len(r.Embedding) == 0 {
			continue
		}
		s.matrix = append(s.matrix, normalize(r.Embedding))
		s.ids = append(s.ids, r.ID)
	}
}

// normalize returns v scaled to unit length. Zero vectors are returned
// as-is rather than dividing by zero.
func normalize(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / magnitude)
	}
	return out
}

// dot computes the dot product of equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
