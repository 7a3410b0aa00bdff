package answerdex

import (
	"context"
	"fmt"
	"time"

	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
)

// DocumentService manages the document store.
type DocumentService struct {
	svc documentUseCase
	obs *observer
}

// Write normalizes and persists ingestion records as one atomic batch.
func (s *DocumentService) Write(ctx context.Context, records []Record) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("write_documents", start, err) }()

	items := make([]domdoc.Record, len(records))
	for i, r := range records {
		items[i] = domdoc.Record{Fields: r}
	}
	if err = s.svc.Write(ctx, items); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get_document", start, err) }()

	d, err := s.svc.GetByID(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// List returns every stored document in insertion order.
func (s *DocumentService) List(ctx context.Context) (_ []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("list_documents", start, err) }()

	docs, err := s.svc.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = fromInternalDocument(&docs[i])
	}
	return out, nil
}

// FilterByTags returns ids of documents matching every tag criterion.
// Within one key the listed values are alternatives; across keys all
// criteria must hold.
func (s *DocumentService) FilterByTags(
	ctx context.Context, tags map[string][]string,
) (_ []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("filter_documents", start, err) }()

	ids, err := s.svc.IDsByTags(ctx, tags)
	if err != nil {
		return nil, fmt.Errorf("filter documents: %w", err)
	}
	return ids, nil
}

// Count returns the number of stored documents.
func (s *DocumentService) Count(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("count_documents", start, err) }()

	n, err := s.svc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func fromInternalDocument(d *domdoc.Document) Document {
	doc := Document{
		ID:   d.ID(),
		Text: d.Text(),
		Meta: d.Meta(),
	}
	if len(d.Tags()) > 0 {
		tags := make(map[string][]string)
		for _, t := range d.Tags() {
			tags[t.Name] = append(tags[t.Name], t.Value)
		}
		doc.Tags = tags
	}
	return doc
}
