// Package catalog provides the image record data model and flat-file
// persistence. The catalog is the single source of truth for an image;
// the embedding store and tag manager hold id-indexed views of it.
package catalog

import (
	"time"
)

// TagType classifies tags for filtering.
type TagType string

const (
	TagTypePerson TagType = "person"
	TagTypeTopic  TagType = "topic"
	TagTypeCustom TagType = "custom"
)

// ImageRecord is one cataloged image. Path is the de-duplication key and
// unique across all records; ID is unique and immutable once assigned.
type ImageRecord struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SizeBytes int64     `json:"size_bytes"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`

	// Tags holds tag ids in attach order, duplicates forbidden.
	// A dangling id (tag deleted later) is treated as silently absent.
	Tags []string `json:"tags"`

	// Embedding is the fixed-length vector for semantic search, or nil
	// when embedding failed; such records stay tag-searchable.
	Embedding []float32 `json:"embedding,omitempty"`

	// Thumbnail is a derived artifact path, opaque to this core.
	Thumbnail string `json:"thumbnail,omitempty"`
}

// HasTag reports whether the record carries the given tag id.
func (r *ImageRecord) HasTag(tagID string) bool {
	for _, id := range r.Tags {
		if id == tagID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate snapshots freely.
func (r *ImageRecord) Clone() *ImageRecord {
	c := *r
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	if r.Embedding != nil {
		c.Embedding = append([]float32(nil), r.Embedding...)
	}
	return &c
}

// Tag is a named label. Name is unique case-insensitively; the first
// writer wins and later lookups resolve any casing to the same id.
type Tag struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Type TagType `json:"type"`
}
