package qa

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/answerdex/internal/domain"
	"github.com/kailas-cloud/answerdex/internal/domain/answer"
)

func TestAnswer_EmptyCorpus(t *testing.T) {
	store := storeWithDocs()
	svc := New(store, &mockReader{}, Options{}, testLogger())

	_, err := svc.Answer(context.Background(), "q", Selection{}, -1)
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestAnswer_TopKZeroReturnsEmptyList(t *testing.T) {
	store := storeWithDocs(makeDoc(t, "d1", "some text"))
	reader := &mockReader{readFn: func(_ context.Context, _, _ string) (answer.Prediction, error) {
		t.Error("reader should not be called for top_k = 0")
		return answer.Prediction{}, nil
	}}
	svc := New(store, reader, Options{}, testLogger())

	res, err := svc.Answer(context.Background(), "q", Selection{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Answers == nil || len(res.Answers) != 0 {
		t.Errorf("expected empty non-nil answer list, got %#v", res.Answers)
	}
}

func TestAnswer_MissingIDFailsSelection(t *testing.T) {
	store := storeWithDocs(makeDoc(t, "d1", "some text"))
	svc := New(store, &mockReader{}, Options{}, testLogger())

	_, err := svc.Answer(context.Background(), "q", Selection{IDs: []string{"d1", "ghost"}}, -1)
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestAnswer_IDsWinOverTags(t *testing.T) {
	store := storeWithDocs(makeDoc(t, "d1", "some text"))
	store.byTagsFn = func(_ context.Context, _ map[string][]string) ([]string, error) {
		t.Error("tag filter should not run when explicit ids are given")
		return nil, nil
	}
	reader := &mockReader{readFn: func(_ context.Context, _, _ string) (answer.Prediction, error) {
		return answer.Prediction{
			Candidates:  []answer.Candidate{candidate("some", 2.0, 0, 4)},
			NoAnswerGap: -1.0,
		}, nil
	}}
	svc := New(store, reader, Options{}, testLogger())

	res, err := svc.Answer(context.Background(), "q",
		Selection{IDs: []string{"d1"}, Tags: map[string][]string{"topic": {"x"}}}, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Answers) != 1 {
		t.Fatalf("expected 1 answer, got %d", len(res.Answers))
	}
	if res.Answers[0].DocumentID != "d1" {
		t.Errorf("answer document = %q, want d1", res.Answers[0].DocumentID)
	}
}

func TestAnswer_TagSelection(t *testing.T) {
	doc := makeDoc(t, "d2", "tagged text")
	store := storeWithDocs(doc, makeDoc(t, "d1", "other text"))
	store.byTagsFn = func(_ context.Context, tags map[string][]string) ([]string, error) {
		if len(tags["topic"]) != 1 || tags["topic"][0] != "geo" {
			t.Errorf("unexpected tag filter: %v", tags)
		}
		return []string{"d2"}, nil
	}

	var readTexts []string
	reader := &mockReader{readFn: func(_ context.Context, _, text string) (answer.Prediction, error) {
		readTexts = append(readTexts, text)
		return answer.Prediction{NoAnswerGap: 1.0}, nil
	}}
	svc := New(store, reader, Options{Concurrency: 1}, testLogger())

	_, err := svc.Answer(context.Background(), "q",
		Selection{Tags: map[string][]string{"topic": {"geo"}}}, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(readTexts) != 1 || readTexts[0] != "tagged text" {
		t.Errorf("reader saw %v, want only the tagged document", readTexts)
	}
}

func TestAnswer_ReaderFailureFailsQueryByDefault(t *testing.T) {
	store := storeWithDocs(makeDoc(t, "d1", "text one"), makeDoc(t, "d2", "text two"))
	reader := &mockReader{readFn: func(_ context.Context, _, text string) (answer.Prediction, error) {
		if text == "text two" {
			return answer.Prediction{}, errors.New("boom")
		}
		return answer.Prediction{NoAnswerGap: -1.0}, nil
	}}
	svc := New(store, reader, Options{}, testLogger())

	_, err := svc.Answer(context.Background(), "q", Selection{}, -1)
	if !errors.Is(err, domain.ErrReader) {
		t.Fatalf("expected ErrReader, got %v", err)
	}

	var re *domain.ReaderError
	if !errors.As(err, &re) {
		t.Fatalf("expected ReaderError, got %T", err)
	}
	if re.DocumentID != "d2" {
		t.Errorf("failed document = %q, want d2", re.DocumentID)
	}
}

func TestAnswer_SkipFailedDocuments(t *testing.T) {
	store := storeWithDocs(makeDoc(t, "d1", "text one"), makeDoc(t, "d2", "text two"))
	reader := &mockReader{readFn: func(_ context.Context, _, text string) (answer.Prediction, error) {
		if text == "text two" {
			return answer.Prediction{}, errors.New("boom")
		}
		return answer.Prediction{
			Candidates:  []answer.Candidate{candidate("one", 3.0, 5, 8)},
			NoAnswerGap: -1.0,
		}, nil
	}}
	svc := New(store, reader, Options{SkipFailedDocuments: true}, testLogger())

	res, err := svc.Answer(context.Background(), "q", Selection{}, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "d2" {
		t.Errorf("Skipped = %v, want [d2]", res.Skipped)
	}
	if len(res.Answers) != 1 {
		t.Errorf("expected 1 answer from the surviving document, got %d", len(res.Answers))
	}
}

func TestAnswer_AllDocumentsFailed(t *testing.T) {
	store := storeWithDocs(makeDoc(t, "d1", "text one"))
	reader := &mockReader{readFn: func(_ context.Context, _, _ string) (answer.Prediction, error) {
		return answer.Prediction{}, errors.New("boom")
	}}
	svc := New(store, reader, Options{SkipFailedDocuments: true}, testLogger())

	_, err := svc.Answer(context.Background(), "q", Selection{}, -1)
	if !errors.Is(err, domain.ErrReader) {
		t.Fatalf("expected ErrReader when every document fails, got %v", err)
	}
}
