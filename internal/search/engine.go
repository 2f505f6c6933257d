// Package search implements hybrid retrieval over the catalog: exact
// tag matches for @person markers combined with brute-force semantic
// similarity over image embeddings.
package search

import (
	"context"
	"log/slog"

	"github.com/visualoom/visualoom/internal/catalog"
	"github.com/visualoom/visualoom/internal/embed"
	"github.com/visualoom/visualoom/internal/tags"
	"github.com/visualoom/visualoom/internal/vector"
)

// DefaultTopK bounds the semantic half of a hybrid query.
const DefaultTopK = 10

// MatchKind says which branch produced a result.
type MatchKind string

const (
	// MatchTag means the image carried a tag named in the query.
	MatchTag MatchKind = "tag"
	// MatchSemantic means the image scored in the vector search.
	MatchSemantic MatchKind = "semantic"
)

// Result is one search hit.
type Result struct {
	Image *catalog.ImageRecord
	Kind  MatchKind
	// Score is the cosine similarity for semantic hits, 0 for tag hits.
	Score float64
}

// Engine answers hybrid queries.
type Engine struct {
	tags     *tags.Manager
	vectors  *vector.Store
	embedder embed.Embedder
	logger   *slog.Logger
	topK     int
}

// NewEngine creates an Engine. topK <= 0 uses DefaultTopK.
func NewEngine(tagManager *tags.Manager, vectors *vector.Store, embedder embed.Embedder, topK int, logger *slog.Logger) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		tags:     tagManager,
		vectors:  vectors,
		embedder: embedder,
		logger:   logger,
		topK:     topK,
	}
}

// Search parses raw and runs both branches. Tag matches come first in
// catalog order, then semantic hits by descending similarity, with
// images already matched by tag removed. The combined list is not cut
// back down to topK: the cap applies to the semantic branch only.
// topK <= 0 uses the engine's configured default.
func (e *Engine) Search(ctx context.Context, raw string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = e.topK
	}
	query := Parse(raw)

	var results []Result
	seen := make(map[string]struct{})

	for _, person := range query.People {
		for _, img := range e.tags.ImagesByTagName(person) {
			if _, dup := seen[img.ID]; dup {
				continue
			}
			seen[img.ID] = struct{}{}
			results = append(results, Result{Image: img, Kind: MatchTag})
		}
	}

	if query.HasKeywords() {
		semantic, err := e.semantic(ctx, query.Keywords, topK)
		if err != nil {
			return nil, err
		}
		for _, hit := range semantic {
			if _, dup := seen[hit.Image.ID]; dup {
				continue
			}
			seen[hit.Image.ID] = struct{}{}
			results = append(results, hit)
		}
	}

	e.logger.Debug("search_complete",
		slog.String("query", raw),
		slog.Int("people", len(query.People)),
		slog.Int("results", len(results)))

	return results, nil
}

func (e *Engine) semantic(ctx context.Context, keywords string, topK int) ([]Result, error) {
	queryVec, err := e.embedder.EmbedText(ctx, keywords)
	if err != nil {
		return nil, err
	}

	hits := e.vectors.Search(queryVec, topK)
	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			Image: hit.Record,
			Kind:  MatchSemantic,
			Score: hit.Score,
		})
	}
	return results, nil
}
