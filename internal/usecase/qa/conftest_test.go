package qa

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/answerdex/internal/domain/answer"
	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
)

// mockStore implements DocumentStore with function fields.
type mockStore struct {
	getByIDFn func(ctx context.Context, id string) (domdoc.Document, bool, error)
	getAllFn  func(ctx context.Context) ([]domdoc.Document, error)
	byTagsFn  func(ctx context.Context, tags map[string][]string) ([]string, error)
}

func (m *mockStore) GetByID(ctx context.Context, id string) (domdoc.Document, bool, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return domdoc.Document{}, false, nil
}

func (m *mockStore) GetAll(ctx context.Context) ([]domdoc.Document, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return nil, nil
}

func (m *mockStore) IDsByTags(ctx context.Context, tags map[string][]string) ([]string, error) {
	if m.byTagsFn != nil {
		return m.byTagsFn(ctx, tags)
	}
	return nil, nil
}

// mockReader implements domain.Reader with a function field.
type mockReader struct {
	readFn func(ctx context.Context, question, text string) (answer.Prediction, error)
}

func (m *mockReader) Read(ctx context.Context, question, text string) (answer.Prediction, error) {
	return m.readFn(ctx, question, text)
}

// mockSpanReader implements domain.SpanReader with a function field.
type mockSpanReader struct {
	readFn func(ctx context.Context, question, text string) ([]answer.Span, error)
}

func (m *mockSpanReader) ReadSpans(ctx context.Context, question, text string) ([]answer.Span, error) {
	return m.readFn(ctx, question, text)
}

func makeDoc(t *testing.T, id, text string) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New(id, text, nil, nil)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return doc
}

func storeWithDocs(docs ...domdoc.Document) *mockStore {
	byID := make(map[string]domdoc.Document, len(docs))
	for _, d := range docs {
		byID[d.ID()] = d
	}
	return &mockStore{
		getByIDFn: func(_ context.Context, id string) (domdoc.Document, bool, error) {
			d, ok := byID[id]
			return d, ok, nil
		},
		getAllFn: func(_ context.Context) ([]domdoc.Document, error) {
			return docs, nil
		},
	}
}

func candidate(text string, score float64, start, end int) answer.Candidate {
	return answer.Candidate{
		Answer:           text,
		Score:            score,
		Context:          text,
		OffsetStartInDoc: start,
		OffsetEndInDoc:   end,
	}
}

func noAnswerPlaceholder(score float64) answer.Candidate {
	return answer.Candidate{Score: score}
}

func testLogger() *zap.Logger { return zap.NewNop() }
