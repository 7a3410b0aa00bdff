package document

import (
	"fmt"
	"regexp"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxTextSize is the maximum document text size in bytes.
const MaxTextSize = 1 << 20 // 1MB

// Tag is a name/value annotation used to scope document selection.
// Filtering matches on Value; Name is descriptive only.
type Tag struct {
	Name  string
	Value string
}

// Document is the document aggregate (immutable value object).
// Text never mutates in place; a rewrite replaces the whole record.
type Document struct {
	id   string
	text string
	meta map[string]any
	tags []Tag
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Text: non-empty, max 1MB.
// Meta values must be scalars (validated at the ingestion boundary).
func New(id, text string, meta map[string]any, tags []Tag) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	if text == "" {
		return Document{}, fmt.Errorf("text is required")
	}
	if len(text) > MaxTextSize {
		return Document{}, fmt.Errorf("text too large (max %d bytes)", MaxTextSize)
	}

	return Document{
		id:   id,
		text: text,
		meta: cloneMeta(meta),
		tags: cloneTags(tags),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, text string, meta map[string]any, tags []Tag) Document {
	return Document{id: id, text: text, meta: meta, tags: tags}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Text returns the full passage content.
func (d *Document) Text() string { return d.text }

// Meta returns the metadata fields.
func (d *Document) Meta() map[string]any { return d.meta }

// Tags returns the associated tag pairs.
func (d *Document) Tags() []Tag { return d.tags }

func cloneMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneTags(tags []Tag) []Tag {
	if tags == nil {
		return nil
	}
	c := make([]Tag, len(tags))
	copy(c, tags)
	return c
}
