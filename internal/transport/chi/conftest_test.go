package chi

import (
	"context"
	"net/http/httptest"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/answerdex/internal/domain/answer"
	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
	repodoc "github.com/kailas-cloud/answerdex/internal/repository/document"
	documentuc "github.com/kailas-cloud/answerdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/answerdex/internal/usecase/health"
	qauc "github.com/kailas-cloud/answerdex/internal/usecase/qa"
)

// mockRepo implements usecase/document.Repository over an in-memory map.
type mockRepo struct {
	docs    map[string]domdoc.Document
	order   []string
	byTags  func(tags map[string][]string) ([]string, error)
	writeFn func(docs []domdoc.Document) error
}

func newMockRepo() *mockRepo {
	return &mockRepo{docs: make(map[string]domdoc.Document)}
}

func (m *mockRepo) add(doc domdoc.Document) {
	if _, ok := m.docs[doc.ID()]; !ok {
		m.order = append(m.order, doc.ID())
	}
	m.docs[doc.ID()] = doc
}

func (m *mockRepo) Write(_ context.Context, docs []domdoc.Document) error {
	if m.writeFn != nil {
		return m.writeFn(docs)
	}
	for _, d := range docs {
		m.add(d)
	}
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (domdoc.Document, bool, error) {
	d, ok := m.docs[id]
	return d, ok, nil
}

func (m *mockRepo) GetAll(_ context.Context) ([]domdoc.Document, error) {
	out := make([]domdoc.Document, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.docs[id])
	}
	return out, nil
}

func (m *mockRepo) IDsByTags(_ context.Context, tags map[string][]string) ([]string, error) {
	if m.byTags != nil {
		return m.byTags(tags)
	}
	return nil, nil
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	return len(m.docs), nil
}

func (m *mockRepo) QueryByEmbedding(_ context.Context, _ []float32, _ int) ([]domdoc.Document, error) {
	return nil, nil
}

func (m *mockRepo) Capabilities() repodoc.Capabilities {
	return repodoc.Capabilities{TagFiltering: true}
}

// mockReader implements domain.Reader with a function field.
type mockReader struct {
	readFn func(ctx context.Context, question, text string) (answer.Prediction, error)
}

func (m *mockReader) Read(ctx context.Context, question, text string) (answer.Prediction, error) {
	if m.readFn != nil {
		return m.readFn(ctx, question, text)
	}
	return answer.Prediction{NoAnswerGap: 1.0}, nil
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// newTestServer wires the handler stack with mock-backed services.
func newTestServer(t *testing.T, repo *mockRepo, reader *mockReader) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()

	docSvc := documentuc.New(repo).WithIDGenerator(func() string { return "generated-id" })
	qaSvc := qauc.New(repo, reader, qauc.Options{ReturnNoAnswer: false}, logger)
	healthSvc := healthuc.New(&mockPinger{}, nil)

	server := NewServer(docSvc, qaSvc, healthSvc, logger)
	r := gochi.NewRouter()
	server.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func makeDoc(t *testing.T, id, text string, tags []domdoc.Tag) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New(id, text, nil, tags)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return doc
}
