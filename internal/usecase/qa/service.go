// Package qa is the answer fusion engine: it resolves the target
// document set, dispatches the reader per document, and merges the
// per-document predictions into one ranked, probability-annotated answer
// list with a single no-answer decision across all documents searched.
package qa

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/answerdex/internal/domain"
	"github.com/kailas-cloud/answerdex/internal/domain/answer"
	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
)

// Service answers questions over the document store.
type Service struct {
	store  DocumentStore
	reader domain.Reader
	spans  domain.SpanReader
	opts   Options
	logger *zap.Logger
}

// New creates a fusion-path service around a gap-emitting reader.
func New(store DocumentStore, reader domain.Reader, opts Options, logger *zap.Logger) *Service {
	return &Service{store: store, reader: reader, opts: opts.withDefaults(), logger: logger}
}

// NewSinglePass creates a service around a single-pass span reader.
// This path ranks per-document probabilities directly and performs no
// no-answer calibration.
func NewSinglePass(store DocumentStore, spans domain.SpanReader, opts Options, logger *zap.Logger) *Service {
	return &Service{store: store, spans: spans, opts: opts.withDefaults(), logger: logger}
}

// Answer runs the question against the selected documents.
// topK < 0 returns the whole merged pool; topK == 0 returns an empty
// list without error.
func (s *Service) Answer(ctx context.Context, question string, sel Selection, topK int) (answer.Result, error) {
	docs, err := s.resolve(ctx, sel)
	if err != nil {
		return answer.Result{}, err
	}
	if len(docs) == 0 {
		return answer.Result{}, fmt.Errorf("no documents selected for question: %w", domain.ErrEmptyCorpus)
	}

	if s.reader != nil {
		return s.answerFused(ctx, question, docs, topK)
	}
	return s.answerSinglePass(ctx, question, docs, topK)
}

// resolve turns the selection into a concrete document set. Explicit ids
// win over tags; with neither, the whole store is searched.
func (s *Service) resolve(ctx context.Context, sel Selection) ([]domdoc.Document, error) {
	switch {
	case len(sel.IDs) > 0:
		return s.byIDs(ctx, sel.IDs)
	case len(sel.Tags) > 0:
		ids, err := s.store.IDsByTags(ctx, sel.Tags)
		if err != nil {
			return nil, fmt.Errorf("resolve tag selection: %w", err)
		}
		return s.byIDs(ctx, ids)
	default:
		docs, err := s.store.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve full corpus: %w", err)
		}
		return docs, nil
	}
}

func (s *Service) byIDs(ctx context.Context, ids []string) ([]domdoc.Document, error) {
	docs := make([]domdoc.Document, 0, len(ids))
	for _, id := range ids {
		doc, ok, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve document %s: %w", id, err)
		}
		if !ok {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Service) answerFused(ctx context.Context, question string, docs []domdoc.Document, topK int) (answer.Result, error) {
	if topK == 0 {
		return answer.Result{Question: question, Answers: []answer.Answer{}}, nil
	}

	preds, skipped, err := dispatch(ctx, docs, s.opts, s.logger,
		func(ctx context.Context, doc *domdoc.Document) (answer.Prediction, error) {
			return s.reader.Read(ctx, question, doc.Text())
		})
	if err != nil {
		return answer.Result{}, err
	}
	if len(preds) == 0 {
		return answer.Result{}, fmt.Errorf("reader failed for all %d selected documents: %w", len(docs), domain.ErrReader)
	}

	result := fuse(question, preds, s.opts.TopKPerCandidate, s.opts.ReturnNoAnswer, topK)
	result.Skipped = skipped
	return result, nil
}

// docResult pairs a per-document reader outcome with its source document.
type docResult[T any] struct {
	docID string
	value T
}

// dispatch fans the reader out over the documents through a bounded
// worker pool and waits for every call: the no-answer calibration needs
// the full set of gaps before fusion may run. Under the default policy a
// single failure fails the whole query, naming the document; with
// SkipFailedDocuments the failed ids are reported instead of fused over.
func dispatch[T any](
	ctx context.Context, docs []domdoc.Document, opts Options, logger *zap.Logger,
	read func(ctx context.Context, doc *domdoc.Document) (T, error),
) ([]docResult[T], []string, error) {
	type outcome struct {
		value T
		err   error
	}

	outcomes := make([]outcome, len(docs))
	sem := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup

	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			value, err := read(ctx, &docs[i])
			outcomes[i] = outcome{value: value, err: err}
		}(i)
	}
	wg.Wait()

	results := make([]docResult[T], 0, len(docs))
	var skipped []string
	for i := range docs {
		if err := outcomes[i].err; err != nil {
			if !opts.SkipFailedDocuments {
				return nil, nil, domain.NewReaderError(docs[i].ID(), err)
			}
			logger.Warn("Skipping document after reader failure",
				zap.String("document_id", docs[i].ID()), zap.Error(err))
			skipped = append(skipped, docs[i].ID())
			continue
		}
		results = append(results, docResult[T]{docID: docs[i].ID(), value: outcomes[i].value})
	}
	return results, skipped, nil
}
