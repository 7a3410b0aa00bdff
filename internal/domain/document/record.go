package document

import (
	"fmt"

	"github.com/kailas-cloud/answerdex/internal/domain"
)

// reserved are ingestion record keys with fixed meaning; everything else
// is folded into meta.
var reserved = map[string]bool{"id": true, "text": true, "meta": true, "tags": true}

// Record is one inbound ingestion record. Fields holds the raw decoded
// key/value pairs of the record; Normalize gives them structure.
type Record struct {
	Fields map[string]any
}

// Normalize turns a raw record into a Document. Keys other than
// id/text/meta/tags are merged into meta. fallbackID is used when the
// record carries no id of its own.
func (r Record) Normalize(fallbackID string) (Document, error) {
	text, _ := r.Fields["text"].(string)
	if text == "" {
		return Document{}, fmt.Errorf("record has no text field: %w", domain.ErrInvalidRecord)
	}

	id := fallbackID
	if v, ok := r.Fields["id"].(string); ok && v != "" {
		id = v
	}

	meta := make(map[string]any)
	if m, ok := r.Fields["meta"].(map[string]any); ok {
		for k, v := range m {
			meta[k] = v
		}
	}
	for k, v := range r.Fields {
		if reserved[k] {
			continue
		}
		meta[k] = v
	}
	for k, v := range meta {
		if !isScalar(v) {
			return Document{}, fmt.Errorf("meta field %q is not a scalar: %w", k, domain.ErrInvalidRecord)
		}
	}
	if len(meta) == 0 {
		meta = nil
	}

	tags, err := tagsFromField(r.Fields["tags"])
	if err != nil {
		return Document{}, err
	}

	doc, err := New(id, text, meta, tags)
	if err != nil {
		return Document{}, fmt.Errorf("%v: %w", err, domain.ErrInvalidRecord)
	}
	return doc, nil
}

// tagsFromField accepts the JSON shapes {"name": "value"} and
// {"name": ["v1", "v2"]}.
func tagsFromField(v any) ([]Tag, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("tags must be a mapping: %w", domain.ErrInvalidRecord)
	}

	var tags []Tag
	for name, raw := range m {
		switch val := raw.(type) {
		case string:
			tags = append(tags, Tag{Name: name, Value: val})
		case []any:
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("tag %q has a non-string value: %w", name, domain.ErrInvalidRecord)
				}
				tags = append(tags, Tag{Name: name, Value: s})
			}
		default:
			return nil, fmt.Errorf("tag %q must be a string or list of strings: %w", name, domain.ErrInvalidRecord)
		}
	}
	return tags, nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, int, int64, nil:
		return true
	default:
		return false
	}
}
