package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/answerdex/internal/domain"
	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
)

// Service handles document ingestion and retrieval.
type Service struct {
	repo  Repository
	newID IDGenerator
}

// New creates a document service.
func New(repo Repository) *Service {
	return &Service{repo: repo, newID: uuid.NewString}
}

// WithIDGenerator overrides store-assigned id generation (tests).
func (s *Service) WithIDGenerator(gen IDGenerator) *Service {
	if gen != nil {
		s.newID = gen
	}
	return s
}

// Write normalizes and persists a batch of ingestion records as one
// atomic batch. Records without an id get a store-assigned one; any
// record field other than id/text/meta/tags is folded into meta.
func (s *Service) Write(ctx context.Context, records []domdoc.Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]domdoc.Document, 0, len(records))
	for i, rec := range records {
		doc, err := rec.Normalize(s.newID())
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		docs = append(docs, doc)
	}

	if err := s.repo.Write(ctx, docs); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	return nil
}

// GetByID retrieves a document, mapping a store-level miss to
// ErrDocumentNotFound for the transport layer.
func (s *Service) GetByID(ctx context.Context, id string) (domdoc.Document, error) {
	doc, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	if !ok {
		return domdoc.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return doc, nil
}

// GetAll returns every stored document.
func (s *Service) GetAll(ctx context.Context) ([]domdoc.Document, error) {
	docs, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// IDsByTags returns ids of documents matching every criterion.
func (s *Service) IDsByTags(ctx context.Context, tags map[string][]string) ([]string, error) {
	ids, err := s.repo.IDsByTags(ctx, tags)
	if err != nil {
		return nil, fmt.Errorf("filter documents: %w", err)
	}
	return ids, nil
}

// Count returns the number of stored documents.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
