// Package tags manages the name-to-id tag catalog and image-tag
// associations. Tag names are unique case-insensitively: the first writer
// wins and any later casing resolves to the same id.
package tags

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/visualoom/visualoom/internal/catalog"
)

// UnknownTagName is the sentinel returned for unresolvable tag ids.
// Reverse lookups never fail; a dangling id simply renders as this.
const UnknownTagName = "Unknown"

// Manager resolves and mutates tags through the catalog store.
type Manager struct {
	mu     sync.Mutex
	store  *catalog.Store
	logger *slog.Logger
}

// NewManager creates a tag manager over the given store.
func NewManager(store *catalog.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger}
}

// newTagID generates a short unique tag id.
func newTagID() string {
	return "t" + uuid.NewString()[:6]
}

// findByName returns the tag with the given name, compared
// case-insensitively, or nil.
func findByName(all []*catalog.Tag, name string) *catalog.Tag {
	for _, t := range all {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// CreateTag returns the id of the tag with the given name, creating and
// persisting it when absent. Idempotent and safe to call repeatedly with
// any casing of the same name.
func (m *Manager) CreateTag(name string, tagType catalog.TagType) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(name, tagType)
}

func (m *Manager) createLocked(name string, tagType catalog.TagType) (string, error) {
	if tagType == "" {
		tagType = catalog.TagTypeCustom
	}

	all := m.store.LoadTags()
	if existing := findByName(all, name); existing != nil {
		return existing.ID, nil
	}

	tag := &catalog.Tag{ID: newTagID(), Name: name, Type: tagType}
	all = append(all, tag)
	if err := m.store.SaveTags(all); err != nil {
		return "", err
	}

	m.logger.Debug("tag_created",
		slog.String("id", tag.ID),
		slog.String("name", tag.Name),
		slog.String("type", string(tag.Type)))
	return tag.ID, nil
}

// AddTagToImage resolves or creates the named tag and appends its id to
// the image's tag list. Returns true only when the list actually changed;
// the catalog is persisted only in that case. Unknown image ids are a
// no-op returning false.
func (m *Manager) AddTagToImage(imageID, tagName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tagID, err := m.createLocked(tagName, catalog.TagTypeCustom)
	if err != nil {
		return false, err
	}

	records := m.store.LoadImages()
	changed := false
	for _, rec := range records {
		if rec.ID != imageID {
			continue
		}
		if !rec.HasTag(tagID) {
			rec.Tags = append(rec.Tags, tagID)
			changed = true
		}
		break
	}

	if !changed {
		return false, nil
	}
	if err := m.store.SaveImages(records); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveTagFromImage removes the named tag's id from the image's tag
// list. Returns false when the tag or image is unknown, or when they were
// not associated.
func (m *Manager) RemoveTagFromImage(imageID, tagName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tag := findByName(m.store.LoadTags(), tagName)
	if tag == nil {
		return false, nil
	}

	records := m.store.LoadImages()
	changed := false
	for _, rec := range records {
		if rec.ID != imageID {
			continue
		}
		kept := rec.Tags[:0]
		for _, id := range rec.Tags {
			if id == tag.ID {
				changed = true
				continue
			}
			kept = append(kept, id)
		}
		rec.Tags = kept
		break
	}

	if !changed {
		return false, nil
	}
	if err := m.store.SaveImages(records); err != nil {
		return false, err
	}
	return true, nil
}

// ImagesByTagName returns all records carrying the named tag, in catalog
// order. Unknown tag names yield an empty slice.
func (m *Manager) ImagesByTagName(name string) []*catalog.ImageRecord {
	tag := findByName(m.store.LoadTags(), name)
	if tag == nil {
		return []*catalog.ImageRecord{}
	}

	var matched []*catalog.ImageRecord
	for _, rec := range m.store.LoadImages() {
		if rec.HasTag(tag.ID) {
			matched = append(matched, rec)
		}
	}
	if matched == nil {
		matched = []*catalog.ImageRecord{}
	}
	return matched
}

// TagName resolves a tag id back to its name, or UnknownTagName.
func (m *Manager) TagName(id string) string {
	for _, t := range m.store.LoadTags() {
		if t.ID == id {
			return t.Name
		}
	}
	return UnknownTagName
}

// AllTags returns every tag in the catalog.
func (m *Manager) AllTags() []*catalog.Tag {
	return m.store.LoadTags()
}
