// Package indexer discovers image files and folds them into the
// catalog incrementally: already-cataloged paths are skipped, new
// files get metadata records and embeddings.
package indexer

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/visualoom/visualoom/internal/catalog"
	"github.com/visualoom/visualoom/internal/embed"
	loomerr "github.com/visualoom/visualoom/internal/errors"
	"github.com/visualoom/visualoom/internal/meta"
	"github.com/visualoom/visualoom/internal/vector"
)

// DefaultBatchSize is how many records are indexed between catalog
// saves. A crash mid-sweep loses at most one batch of progress.
const DefaultBatchSize = 100

// Options configures a sweep.
type Options struct {
	// TagID, when set, is attached to every newly cataloged image.
	TagID string
	// OnTotal is called once with the number of new files found.
	OnTotal func(total int)
	// OnIndexed is called after each new record is fully processed.
	OnIndexed func(done int)
}

// Result summarizes a completed sweep.
type Result struct {
	// New holds the records created by this sweep, in scan order.
	New []*catalog.ImageRecord
	// Scanned is the number of image files seen under the root.
	Scanned int
	// Skipped is the number of files already in the catalog.
	Skipped int
	// Embedded is the number of new records that received a vector.
	Embedded int
}

// Indexer performs incremental catalog sweeps.
type Indexer struct {
	store     *catalog.Store
	vectors   *vector.Store
	extractor *meta.Extractor
	embedder  embed.Embedder
	walker    *Walker
	logger    *slog.Logger
	batchSize int
	workers   int
}

// Config wires an Indexer's collaborators.
type Config struct {
	Store     *catalog.Store
	Vectors   *vector.Store
	Embedder  embed.Embedder
	Logger    *slog.Logger
	BatchSize int
	Workers   int
}

// New creates an Indexer.
func New(cfg Config) *Indexer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Indexer{
		store:     cfg.Store,
		vectors:   cfg.Vectors,
		extractor: meta.NewExtractor(cfg.Logger),
		embedder:  cfg.Embedder,
		walker:    NewWalker(cfg.Logger),
		logger:    cfg.Logger,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
	}
}

// Sweep walks root and catalogs every image file not already present.
// Presence is keyed on absolute path: a file indexed once is never
// re-cataloged, whatever else changed about it. New records are
// persisted in batches as the sweep progresses, and the vector store
// is refreshed once at the end.
func (ix *Indexer) Sweep(ctx context.Context, root string, opts Options) (*Result, error) {
	scans, err := ix.walker.Walk(ctx, root)
	if err != nil {
		return nil, err
	}

	all := ix.store.LoadImages()
	known := make(map[string]struct{}, len(all))
	for _, rec := range all {
		known[rec.Path] = struct{}{}
	}

	result := &Result{}

	// Metadata pass runs serially so records land in scan order.
	for scan := range scans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if scan.Err != nil {
			return nil, scan.Err
		}

		result.Scanned++
		if _, ok := known[scan.Path]; ok {
			result.Skipped++
			continue
		}

		rec, err := ix.extractor.Extract(scan.Path)
		if err != nil {
			ix.logger.Warn("image_skipped",
				slog.String("path", scan.Path),
				slog.String("error", err.Error()))
			continue
		}

		rec.ID = uuid.NewString()
		if opts.TagID != "" {
			rec.Tags = []string{opts.TagID}
		}
		known[rec.Path] = struct{}{}
		result.New = append(result.New, rec)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.OnTotal != nil {
		opts.OnTotal(len(result.New))
	}
	if len(result.New) == 0 {
		ix.logger.Info("sweep_empty",
			slog.String("root", root),
			slog.Int("scanned", result.Scanned))
		return result, nil
	}

	all = append(all, result.New...)
	if err := ix.embedBatch(ctx, all, result, opts); err != nil {
		return nil, err
	}

	if err := ix.store.SaveImages(all); err != nil {
		return nil, err
	}
	ix.vectors.Reset(all)

	ix.logger.Info("sweep_complete",
		slog.String("root", root),
		slog.Int("scanned", result.Scanned),
		slog.Int("new", len(result.New)),
		slog.Int("skipped", result.Skipped),
		slog.Int("embedded", result.Embedded))

	return result, nil
}

// embedBatch embeds new records concurrently. Embedding failures are
// tolerated: the record stays in the catalog without a vector and is
// simply invisible to semantic search.
func (ix *Indexer) embedBatch(ctx context.Context, all []*catalog.ImageRecord, result *Result, opts Options) error {
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)

	for _, rec := range result.New {
		rec := rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			vec, err := ix.embedder.EmbedImage(gctx, rec.Path)
			embedded := err == nil
			if err != nil {
				ix.logger.Warn("embedding_failed",
					slog.String("path", rec.Path),
					slog.String("error", loomerr.EmbeddingFailure(err).Error()))
			}

			mu.Lock()
			defer mu.Unlock()
			if embedded {
				rec.Embedding = vec
				result.Embedded++
			}
			done++
			if done%ix.batchSize == 0 {
				if err := ix.store.SaveImages(all); err != nil {
					return err
				}
				ix.logger.Debug("sweep_checkpoint", slog.Int("indexed", done))
			}
			if opts.OnIndexed != nil {
				opts.OnIndexed(done)
			}
			return nil
		})
	}

	return g.Wait()
}
