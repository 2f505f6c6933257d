// Package service assembles the catalog, stores, embedder, indexer,
// job tracker, and search engine into one facade the CLI talks to.
package service

import (
	"context"
	"log/slog"

	"github.com/visualoom/visualoom/internal/catalog"
	"github.com/visualoom/visualoom/internal/config"
	"github.com/visualoom/visualoom/internal/embed"
	loomerr "github.com/visualoom/visualoom/internal/errors"
	"github.com/visualoom/visualoom/internal/indexer"
	"github.com/visualoom/visualoom/internal/jobs"
	"github.com/visualoom/visualoom/internal/search"
	"github.com/visualoom/visualoom/internal/tags"
	"github.com/visualoom/visualoom/internal/vector"
)

// Service is the application core behind the CLI commands.
type Service struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *catalog.Store
	vectors  *vector.Store
	tags     *tags.Manager
	embedder embed.Embedder
	indexer  *indexer.Indexer
	tracker  *jobs.Tracker
	engine   *search.Engine
}

// New wires a Service from configuration. The catalog is loaded
// eagerly so the vector store starts warm.
func New(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store := catalog.NewStore(cfg.CatalogPath(), cfg.TagPath(), logger)
	vectors := vector.NewStore(store.LoadImages())
	tagManager := tags.NewManager(store, logger)

	embedder, err := embed.New(embed.Options{
		Provider:   cfg.Embeddings.Provider,
		Endpoint:   cfg.Embeddings.Endpoint,
		Model:      cfg.Embeddings.Model,
		Dimensions: cfg.Embeddings.Dimensions,
		Timeout:    cfg.Embeddings.Timeout,
		CacheSize:  cfg.Embeddings.CacheSize,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	ix := indexer.New(indexer.Config{
		Store:     store,
		Vectors:   vectors,
		Embedder:  embedder,
		Logger:    logger,
		BatchSize: cfg.Indexer.BatchSize,
		Workers:   cfg.Indexer.Workers,
	})

	svc := &Service{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		vectors:  vectors,
		tags:     tagManager,
		embedder: embedder,
		indexer:  ix,
		engine:   search.NewEngine(tagManager, vectors, embedder, cfg.Search.TopK, logger),
	}
	svc.tracker = jobs.NewTracker(svc.runSweep, logger)

	return svc, nil
}

// runSweep is the job body executed by the tracker.
func (s *Service) runSweep(ctx context.Context, path, tag string, onTotal func(int), onDone func(int)) (int, error) {
	opts := indexer.Options{OnTotal: onTotal, OnIndexed: onDone}

	if tag != "" {
		tagID, err := s.tags.CreateTag(tag, catalog.TagTypeCustom)
		if err != nil {
			return 0, err
		}
		opts.TagID = tagID
	}

	result, err := s.indexer.Sweep(ctx, path, opts)
	if err != nil {
		return 0, err
	}
	return len(result.New), nil
}

// SubmitIndex starts a background sweep of path and returns a job id.
// tag, when non-empty, is attached to every newly cataloged image.
func (s *Service) SubmitIndex(ctx context.Context, path, tag string) string {
	return s.tracker.Submit(ctx, path, tag)
}

// IndexSync runs a sweep in the foreground. Used by the CLI when the
// caller wants to watch progress rather than poll a job.
func (s *Service) IndexSync(ctx context.Context, path, tag string, opts indexer.Options) (*indexer.Result, error) {
	if tag != "" {
		tagID, err := s.tags.CreateTag(tag, catalog.TagTypeCustom)
		if err != nil {
			return nil, err
		}
		opts.TagID = tagID
	}
	return s.indexer.Sweep(ctx, path, opts)
}

// JobStatus returns the snapshot for a job id.
func (s *Service) JobStatus(id string) (jobs.Snapshot, error) {
	return s.tracker.Status(id)
}

// Jobs returns all known jobs.
func (s *Service) Jobs() []jobs.Snapshot {
	return s.tracker.List()
}

// CancelJob stops a running job.
func (s *Service) CancelJob(id string) error {
	return s.tracker.Cancel(id)
}

// Search runs a hybrid query. topK caps the semantic branch; zero or
// negative falls back to the configured default.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]search.Result, error) {
	return s.engine.Search(ctx, query, topK)
}

// AddTag attaches a tag to an image, creating the tag if needed.
func (s *Service) AddTag(imageID, tagName string) (bool, error) {
	changed, err := s.tags.AddTagToImage(imageID, tagName)
	if changed {
		s.refreshVectors()
	}
	return changed, err
}

// RemoveTag detaches a tag from an image.
func (s *Service) RemoveTag(imageID, tagName string) (bool, error) {
	changed, err := s.tags.RemoveTagFromImage(imageID, tagName)
	if changed {
		s.refreshVectors()
	}
	return changed, err
}

// refreshVectors reloads the vector store's snapshot from the catalog.
// Tag mutations persist through the store; without this, semantic hits
// would keep serving the records captured at the last sweep.
func (s *Service) refreshVectors() {
	s.vectors.Reset(s.store.LoadImages())
}

// Tags returns all known tags.
func (s *Service) Tags() []*catalog.Tag {
	return s.tags.AllTags()
}

// TagName resolves a tag id to a display name.
func (s *Service) TagName(id string) string {
	return s.tags.TagName(id)
}

// ListImages returns every cataloged image in catalog order.
func (s *Service) ListImages() []*catalog.ImageRecord {
	return s.store.LoadImages()
}

// GetImage returns one image by id.
func (s *Service) GetImage(id string) (*catalog.ImageRecord, error) {
	for _, rec := range s.store.LoadImages() {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, loomerr.ImageNotFound(id)
}

// DeleteImage removes a record from the catalog and the vector store.
// The file on disk is untouched.
func (s *Service) DeleteImage(id string) error {
	all := s.store.LoadImages()
	kept := all[:0:0]
	found := false
	for _, rec := range all {
		if rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		return loomerr.ImageNotFound(id)
	}
	if err := s.store.SaveImages(kept); err != nil {
		return err
	}
	s.vectors.Remove(id)

	s.logger.Info("image_deleted", slog.String("image_id", id))
	return nil
}

// Stats summarizes the catalog.
type Stats struct {
	Images   int `json:"images"`
	Embedded int `json:"embedded"`
	Tags     int `json:"tags"`
}

// Stats returns catalog counts.
func (s *Service) Stats() Stats {
	return Stats{
		Images:   len(s.store.LoadImages()),
		Embedded: s.vectors.EmbeddedCount(),
		Tags:     len(s.tags.AllTags()),
	}
}

// Config exposes the active configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Close waits for background jobs and releases the embedder.
func (s *Service) Close() error {
	s.tracker.Wait()
	return s.embedder.Close()
}
