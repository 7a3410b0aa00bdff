package qa

import (
	"context"
	"strings"
	"testing"

	"github.com/kailas-cloud/answerdex/internal/domain/answer"
)

func TestSinglePass_RanksByProbability(t *testing.T) {
	store := storeWithDocs(
		makeDoc(t, "d1", "Berlin is the capital of Germany."),
		makeDoc(t, "d2", "Paris is the capital of France."),
	)
	spans := &mockSpanReader{readFn: func(_ context.Context, _, text string) ([]answer.Span, error) {
		if strings.HasPrefix(text, "Berlin") {
			return []answer.Span{{Answer: "Berlin", Probability: 0.9, Start: 0, End: 6}}, nil
		}
		return []answer.Span{{Answer: "Paris", Probability: 0.4, Start: 0, End: 5}}, nil
	}}
	svc := NewSinglePass(store, spans, Options{ContextWindow: 10}, testLogger())

	res, err := svc.Answer(context.Background(), "capital?", Selection{}, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(res.Answers))
	}
	if *res.Answers[0].Answer != "Berlin" || *res.Answers[1].Answer != "Paris" {
		t.Errorf("wrong order: %q, %q", *res.Answers[0].Answer, *res.Answers[1].Answer)
	}
	if res.NoAnsGap != 0 {
		t.Errorf("single-pass NoAnsGap = %v, want 0 (no calibration)", res.NoAnsGap)
	}
}

func TestSinglePass_SkipsEmptySpans(t *testing.T) {
	store := storeWithDocs(makeDoc(t, "d1", "some text"))
	spans := &mockSpanReader{readFn: func(_ context.Context, _, _ string) ([]answer.Span, error) {
		return []answer.Span{
			{Answer: "", Probability: 0.99},
			{Answer: "some", Probability: 0.5, Start: 0, End: 4},
		}, nil
	}}
	svc := NewSinglePass(store, spans, Options{}, testLogger())

	res, err := svc.Answer(context.Background(), "q", Selection{}, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Answers) != 1 {
		t.Fatalf("empty span leaked: %+v", res.Answers)
	}
}

func TestWindowedAnswer_ClampsToDocumentBounds(t *testing.T) {
	text := "short passage"

	tests := []struct {
		name        string
		span        answer.Span
		window      int
		wantContext string
		wantStart   int
		wantEnd     int
	}{
		{
			name:        "window exceeds document",
			span:        answer.Span{Answer: "short", Start: 0, End: 5},
			window:      100,
			wantContext: text,
			wantStart:   0,
			wantEnd:     5,
		},
		{
			name:        "window clipped at start",
			span:        answer.Span{Answer: "passage", Start: 6, End: 13},
			window:      3,
			wantContext: "rt passage",
			wantStart:   3,
			wantEnd:     10,
		},
		{
			name:        "offsets beyond text are clamped",
			span:        answer.Span{Answer: "x", Start: 10, End: 99},
			window:      2,
			wantContext: "ssage",
			wantStart:   2,
			wantEnd:     5,
		},
		{
			name:        "negative start clamped to zero",
			span:        answer.Span{Answer: "s", Start: -4, End: 1},
			window:      2,
			wantContext: "sho",
			wantStart:   0,
			wantEnd:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := windowedAnswer(tt.span, text, "d1", tt.window)
			if *got.Context != tt.wantContext {
				t.Errorf("context = %q, want %q", *got.Context, tt.wantContext)
			}
			if got.OffsetStart != tt.wantStart || got.OffsetEnd != tt.wantEnd {
				t.Errorf("offsets = (%d, %d), want (%d, %d)",
					got.OffsetStart, got.OffsetEnd, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
