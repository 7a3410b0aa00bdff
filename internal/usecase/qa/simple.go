package qa

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/answerdex/internal/domain"
	"github.com/kailas-cloud/answerdex/internal/domain/answer"
	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
)

// answerSinglePass aggregates span-reader output: a fixed-size character
// window is sliced around each span, clamped to document bounds, and the
// pool is ranked by the per-document probability. There is no gap signal
// on this path, so no no-answer calibration happens; the result shape is
// identical to the fusion path.
func (s *Service) answerSinglePass(ctx context.Context, question string, docs []domdoc.Document, topK int) (answer.Result, error) {
	if topK == 0 {
		return answer.Result{Question: question, Answers: []answer.Answer{}}, nil
	}

	results, skipped, err := dispatch(ctx, docs, s.opts, s.logger,
		func(ctx context.Context, doc *domdoc.Document) ([]answer.Span, error) {
			return s.spans.ReadSpans(ctx, question, doc.Text())
		})
	if err != nil {
		return answer.Result{}, err
	}
	if len(results) == 0 {
		return answer.Result{}, fmt.Errorf("reader failed for all %d selected documents: %w", len(docs), domain.ErrReader)
	}

	textByID := make(map[string]string, len(docs))
	for i := range docs {
		textByID[docs[i].ID()] = docs[i].Text()
	}

	var merged []answer.Answer
	for _, dr := range results {
		text := textByID[dr.docID]
		for _, span := range dr.value {
			if span.Answer == "" {
				continue
			}
			merged = append(merged, windowedAnswer(span, text, dr.docID, s.opts.ContextWindow))
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Probability > merged[j].Probability
	})

	if topK >= 0 && len(merged) > topK {
		merged = merged[:topK]
	}
	if merged == nil {
		merged = []answer.Answer{}
	}

	return answer.Result{Question: question, Answers: merged, Skipped: skipped}, nil
}

// windowedAnswer slices the context window around a span, clamped to
// [0, len(text)] for any start/end/window combination.
func windowedAnswer(span answer.Span, text, docID string, window int) answer.Answer {
	start, end := span.Start, span.End
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if end < start {
		end = start
	}

	ctxStart := max(0, start-window)
	ctxEnd := min(len(text), end+window)

	ans := span.Answer
	context := text[ctxStart:ctxEnd]

	return answer.Answer{
		Answer:           &ans,
		Probability:      span.Probability,
		Context:          &context,
		OffsetStart:      start - ctxStart,
		OffsetEnd:        end - ctxStart,
		OffsetStartInDoc: start,
		OffsetEndInDoc:   end,
		DocumentID:       docID,
	}
}
