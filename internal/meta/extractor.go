// Package meta extracts descriptive records from image files: intrinsic
// width/height/format plus filesystem size and timestamps.
package meta

import (
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Registered decoders for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/visualoom/visualoom/internal/catalog"
	"github.com/visualoom/visualoom/internal/errors"
)

// Extractor reads per-file metadata.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract builds an ImageRecord for the file at path.
//
// The returned record's ID is the bare file name, which is not unique
// across folders; the indexer must override it with a real unique id
// before insertion. Unreadable or non-image content returns an
// UnreadableImage error; batch callers log and skip those.
func (e *Extractor) Extract(path string) (*catalog.ImageRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.UnreadableImage(path, err)
	}
	if info.IsDir() {
		return nil, errors.UnreadableImage(path, os.ErrInvalid)
	}

	rec := &catalog.ImageRecord{
		ID:        filepath.Base(path),
		Path:      path,
		SizeBytes: info.Size(),
		// Creation time is not portably exposed; modification time
		// stands in for both, matching catalog ordering needs.
		Created:  info.ModTime(),
		Modified: info.ModTime(),
		Tags:     []string{},
	}

	if !isDecodable(path) {
		if !IsRawFile(path) && !isStatOnly(path) {
			return nil, errors.UnreadableImage(path, os.ErrInvalid)
		}
		// Camera RAW and other stat-only formats: record the extension as
		// the format, dimensions stay zero.
		rec.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		return rec, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.UnreadableImage(path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, errors.UnreadableImage(path, err)
	}

	rec.Format = format
	rec.Width = cfg.Width
	rec.Height = cfg.Height
	return rec, nil
}
