package indexer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	loomerr "github.com/visualoom/visualoom/internal/errors"
	"github.com/visualoom/visualoom/internal/meta"
)

// ScanResult is one discovered image file or a traversal error.
type ScanResult struct {
	// Path is the absolute path of the discovered image.
	Path string
	// Err is set when the walk itself failed.
	Err error
}

// Walker discovers image files under a root directory.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a Walker.
func NewWalker(logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{logger: logger}
}

// Walk streams image files found under root. The channel is closed
// when traversal completes. Unreadable directories are logged and
// skipped; traversal continues with the rest of the tree.
func (w *Walker) Walk(ctx context.Context, root string) (<-chan ScanResult, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, loomerr.Wrap(loomerr.ErrCodePermissionDenied, err).WithDetail("path", root)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsPermission(err) {
			return nil, loomerr.Wrap(loomerr.ErrCodePermissionDenied, err).WithDetail("path", absRoot)
		}
		return nil, loomerr.New(loomerr.ErrCodeNotADirectory, "scan root does not exist", err).
			WithDetail("path", absRoot)
	}
	if !info.IsDir() {
		return nil, loomerr.New(loomerr.ErrCodeNotADirectory, "scan root is not a directory", nil).
			WithDetail("path", absRoot)
	}

	results := make(chan ScanResult, 64)

	go func() {
		defer close(results)
		w.walk(ctx, absRoot, results)
	}()

	return results, nil
}

func (w *Walker) walk(ctx context.Context, absRoot string, results chan<- ScanResult) {
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			w.logger.Warn("scan_entry_skipped",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			// Hidden directories hold thumbnails, trash, and metadata
			// caches, never user photos.
			if path != absRoot && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if !meta.IsImageFile(d.Name()) {
			return nil
		}

		select {
		case results <- ScanResult{Path: path}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	if err != nil && err != context.Canceled {
		select {
		case results <- ScanResult{Err: err}:
		default:
		}
	}
}
