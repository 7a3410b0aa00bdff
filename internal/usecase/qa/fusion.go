package qa

import (
	"sort"

	"github.com/kailas-cloud/answerdex/internal/domain/answer"
)

// fuse merges per-document predictions into one ranked answer list with
// a single no-answer decision. Candidate lists arrive pre-sorted by
// decreasing relevance from the reader; topKPerCandidate caps what one
// long or noisy document can contribute to the merged pool.
func fuse(
	question string, preds []docResult[answer.Prediction],
	topKPerCandidate int, returnNoAnswer bool, topK int,
) answer.Result {
	merged := make([]answer.Answer, 0, len(preds)*topKPerCandidate)
	noAnsGaps := make([]float64, 0, len(preds))
	bestScore := 0.0

	for _, dp := range preds {
		noAnsGaps = append(noAnsGaps, dp.value.NoAnswerGap)

		perDoc := make([]answer.Answer, 0, len(dp.value.Candidates))
		for _, cand := range dp.value.Candidates {
			// The document's own no-answer placeholder is replaced by the
			// calibrated cross-document entry below.
			if cand.IsNoAnswer() {
				continue
			}

			ans, context := cand.Answer, cand.Context
			perDoc = append(perDoc, answer.Answer{
				Answer:           &ans,
				Probability:      answer.Probability(cand.Score),
				Score:            cand.Score,
				Context:          &context,
				OffsetStart:      cand.OffsetStart,
				OffsetEnd:        cand.OffsetEnd,
				OffsetStartInDoc: cand.OffsetStartInDoc,
				OffsetEndInDoc:   cand.OffsetEndInDoc,
				DocumentID:       dp.docID,
			})

			if cand.Score > bestScore {
				bestScore = cand.Score
			}
		}
		if len(perDoc) > topKPerCandidate {
			perDoc = perDoc[:topKPerCandidate]
		}
		merged = append(merged, perDoc...)
	}

	noAnsEntry, maxGap := calcNoAnswer(noAnsGaps, bestScore)
	if returnNoAnswer {
		merged = append(merged, noAnsEntry)
	}

	// Probability is a monotonic transform of score, and the reader
	// orders same-score ties deterministically; a stable sort preserves
	// that tie order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Probability > merged[j].Probability
	})

	if topK >= 0 && len(merged) > topK {
		merged = merged[:topK]
	}

	return answer.Result{Question: question, NoAnsGap: maxGap, Answers: merged}
}

// calcNoAnswer turns the per-document gap signals into one no-answer
// entry comparable with positive answers. A positive span score is tied
// to one document while the no-answer decision spans all of them, so the
// score is anchored to the best positive answer and shifted by the most
// significant gap: the margin by which some document's model would flip
// between predicting a span and predicting no answer. When every gap is
// negative (each document leaned toward a findable answer), subtracting
// the negative maximum lifts the no-answer score above the best span;
// otherwise it lands below it.
func calcNoAnswer(noAnsGaps []float64, bestScore float64) (answer.Answer, float64) {
	maxGap := noAnsGaps[0]
	for _, gap := range noAnsGaps[1:] {
		if gap > maxGap {
			maxGap = gap
		}
	}

	noAnsScore := bestScore - maxGap

	return answer.Answer{
		Answer:      nil,
		Probability: answer.Probability(noAnsScore),
		Score:       noAnsScore,
		Context:     nil,
	}, maxGap
}
