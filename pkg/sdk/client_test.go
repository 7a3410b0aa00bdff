package answerdex

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeReader scores any span containing the word "Berlin" highly.
type fakeReader struct {
	err error
}

func (f *fakeReader) Read(_ context.Context, _ string, text string) (Prediction, error) {
	if f.err != nil {
		return Prediction{}, f.err
	}
	if idx := strings.Index(text, "Berlin"); idx >= 0 {
		return Prediction{
			Spans:       []PredictedSpan{{Answer: "Berlin", Score: 9.0, Start: idx, End: idx + 6}},
			NoAnswerGap: -2.0,
		}, nil
	}
	return Prediction{NoAnswerGap: 1.5}, nil
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithDatabase(":memory:")}, opts...)
	client, err := New(context.Background(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func seedDocuments(t *testing.T, client *Client) {
	t.Helper()
	err := client.Documents().Write(context.Background(), []Record{
		{
			"id":   "geo-1",
			"text": "Berlin is the capital of Germany.",
			"tags": map[string]any{"topic": "geo"},
		},
		{
			"id":   "food-1",
			"text": "Currywurst is a popular street food.",
			"tags": map[string]any{"topic": "food"},
		},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func TestClient_WriteAndAsk(t *testing.T) {
	client := newTestClient(t, WithReader(&fakeReader{}), WithNoAnswer())
	seedDocuments(t, client)

	res, err := client.Ask(context.Background(), "What is the capital of Germany?", AskParams{})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if len(res.Answers) == 0 {
		t.Fatal("expected answers")
	}
	top := res.Answers[0]
	if top.Answer == nil || *top.Answer != "Berlin" {
		t.Errorf("top answer = %+v, want Berlin", top)
	}
	if top.DocumentID != "geo-1" {
		t.Errorf("document = %q", top.DocumentID)
	}
	// One document leaned toward no-answer with gap +1.5 against a best
	// score of 9.0: the calibrated entry scores 7.5 and ranks second.
	if res.NoAnsGap != 1.5 {
		t.Errorf("NoAnsGap = %v, want 1.5", res.NoAnsGap)
	}
	if len(res.Answers) < 2 || res.Answers[1].Answer != nil || res.Answers[1].Score != 7.5 {
		t.Errorf("expected calibrated no-answer entry at rank 1: %+v", res.Answers)
	}
}

func TestClient_AskScopedByTags(t *testing.T) {
	client := newTestClient(t, WithReader(&fakeReader{}))
	seedDocuments(t, client)

	res, err := client.Ask(context.Background(), "capital?", AskParams{
		Tags: map[string][]string{"topic": {"food"}},
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	for _, a := range res.Answers {
		if a.DocumentID == "geo-1" {
			t.Errorf("tag scope leaked: %+v", a)
		}
	}
}

func TestClient_AskWithoutReader(t *testing.T) {
	client := newTestClient(t)
	seedDocuments(t, client)

	if _, err := client.Ask(context.Background(), "q", AskParams{}); err == nil {
		t.Fatal("expected error without a configured reader")
	}
}

func TestClient_AskEmptyStore(t *testing.T) {
	client := newTestClient(t, WithReader(&fakeReader{}))

	_, err := client.Ask(context.Background(), "q", AskParams{})
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestClient_DocumentRoundTrip(t *testing.T) {
	client := newTestClient(t)
	seedDocuments(t, client)

	doc, err := client.Documents().Get(context.Background(), "geo-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Text != "Berlin is the capital of Germany." {
		t.Errorf("text = %q", doc.Text)
	}
	if len(doc.Tags["topic"]) != 1 || doc.Tags["topic"][0] != "geo" {
		t.Errorf("tags = %v", doc.Tags)
	}

	n, err := client.Documents().Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	if _, err := client.Documents().Get(context.Background(), "ghost"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestClient_FilterByTags(t *testing.T) {
	client := newTestClient(t)
	seedDocuments(t, client)

	ids, err := client.Documents().FilterByTags(context.Background(),
		map[string][]string{"topic": {"geo"}})
	if err != nil {
		t.Fatalf("FilterByTags: %v", err)
	}
	if len(ids) != 1 || ids[0] != "geo-1" {
		t.Errorf("ids = %v, want [geo-1]", ids)
	}

	if _, err := client.Documents().FilterByTags(context.Background(), nil); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestClient_Health(t *testing.T) {
	client := newTestClient(t)

	status := client.Health(context.Background())
	if status.Status != "ok" {
		t.Errorf("status = %q, want ok", status.Status)
	}
	if status.Checks["database"] != "ok" {
		t.Errorf("checks = %v", status.Checks)
	}
}
