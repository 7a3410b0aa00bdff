package openai

import (
	"testing"

	"go.uber.org/zap"
)

func testReader(window int) *Reader {
	return &Reader{contextWindow: window, logger: zap.NewNop()}
}

func TestAssemble_LocatesSpansAndWindows(t *testing.T) {
	text := "Berlin is the capital of Germany."
	r := testReader(4)

	pred := r.assemble(readerPayload{
		Spans:         []spanPayload{{Text: "Berlin", Score: 9.0}},
		NoAnswerScore: 7.0,
	}, text)

	if len(pred.Candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(pred.Candidates))
	}
	c := pred.Candidates[0]
	if c.OffsetStartInDoc != 0 || c.OffsetEndInDoc != 6 {
		t.Errorf("doc offsets = (%d, %d), want (0, 6)", c.OffsetStartInDoc, c.OffsetEndInDoc)
	}
	if c.Context != "Berlin is " {
		t.Errorf("context = %q", c.Context)
	}
	if c.OffsetStart != 0 || c.OffsetEnd != 6 {
		t.Errorf("context offsets = (%d, %d), want (0, 6)", c.OffsetStart, c.OffsetEnd)
	}
	// Gap = no-answer confidence minus best span score.
	if pred.NoAnswerGap != -2.0 {
		t.Errorf("gap = %v, want -2.0", pred.NoAnswerGap)
	}
}

func TestAssemble_DropsHallucinatedSpans(t *testing.T) {
	r := testReader(10)

	pred := r.assemble(readerPayload{
		Spans: []spanPayload{
			{Text: "not in passage", Score: 9.0},
			{Text: "real", Score: 3.0},
			{Text: "", Score: 5.0},
		},
		NoAnswerScore: 1.0,
	}, "a real passage")

	if len(pred.Candidates) != 1 {
		t.Fatalf("candidates = %d, want only the verbatim span", len(pred.Candidates))
	}
	if pred.Candidates[0].Answer != "real" {
		t.Errorf("answer = %q", pred.Candidates[0].Answer)
	}
	// bestScore only counts kept spans.
	if pred.NoAnswerGap != -2.0 {
		t.Errorf("gap = %v, want 1.0 - 3.0 = -2.0", pred.NoAnswerGap)
	}
}

func TestAssemble_SortsByScore(t *testing.T) {
	text := "alpha beta gamma"
	r := testReader(0)

	pred := r.assemble(readerPayload{
		Spans: []spanPayload{
			{Text: "alpha", Score: 1.0},
			{Text: "gamma", Score: 5.0},
			{Text: "beta", Score: 3.0},
		},
	}, text)

	if len(pred.Candidates) != 3 {
		t.Fatalf("candidates = %d", len(pred.Candidates))
	}
	want := []string{"gamma", "beta", "alpha"}
	for i, w := range want {
		if pred.Candidates[i].Answer != w {
			t.Errorf("rank %d = %q, want %q", i, pred.Candidates[i].Answer, w)
		}
	}
}

func TestAssemble_NoSpansMeansPositiveGap(t *testing.T) {
	r := testReader(10)

	pred := r.assemble(readerPayload{NoAnswerScore: 4.0}, "text")

	if len(pred.Candidates) != 0 {
		t.Fatalf("candidates = %d, want 0", len(pred.Candidates))
	}
	if pred.NoAnswerGap != 4.0 {
		t.Errorf("gap = %v, want 4.0 (no span to subtract)", pred.NoAnswerGap)
	}
}
