package answerdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/answerdex/internal/domain/answer"
	qauc "github.com/kailas-cloud/answerdex/internal/usecase/qa"
)

// Ask runs a question against the selected documents and returns the
// fused, ranked answer list.
func (c *Client) Ask(ctx context.Context, question string, params AskParams) (_ Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	if c.qaSvc == nil {
		return Result{}, errors.New(
			"answerdex: reader not configured (use WithReader or WithQAEndpoint)",
		)
	}
	if question == "" {
		return Result{}, errors.New("answerdex: question is required")
	}
	if len(params.DocumentIDs) > 0 && len(params.Tags) > 0 {
		return Result{}, errors.New("answerdex: DocumentIDs and Tags are mutually exclusive")
	}

	topK := -1
	if params.TopK != nil {
		if *params.TopK < 0 {
			return Result{}, errors.New("answerdex: TopK must not be negative")
		}
		topK = *params.TopK
	}

	res, err := c.qaSvc.Answer(ctx, question, qauc.Selection{
		IDs:  params.DocumentIDs,
		Tags: params.Tags,
	}, topK)
	if err != nil {
		return Result{}, fmt.Errorf("ask: %w", err)
	}

	return fromInternalResult(res), nil
}

func fromInternalResult(res answer.Result) Result {
	answers := make([]Answer, len(res.Answers))
	for i, a := range res.Answers {
		answers[i] = Answer{
			Answer:           a.Answer,
			Probability:      a.Probability,
			Score:            a.Score,
			Context:          a.Context,
			OffsetStart:      a.OffsetStart,
			OffsetEnd:        a.OffsetEnd,
			OffsetStartInDoc: a.OffsetStartInDoc,
			OffsetEndInDoc:   a.OffsetEndInDoc,
			DocumentID:       a.DocumentID,
		}
	}
	return Result{
		Question: res.Question,
		NoAnsGap: res.NoAnsGap,
		Answers:  answers,
		Skipped:  res.Skipped,
	}
}
