// Package answer holds the transfer types exchanged between reader
// adapters and the fusion engine, and the fused output shape.
package answer

import "math"

// scoreTemperature scales raw logits before the sigmoid squash.
const scoreTemperature = 8

// Candidate is one scored span proposed by the reader for a single
// document. An empty Answer combined with zero offsets marks the
// document's own "no answer" placeholder.
type Candidate struct {
	Answer           string
	Score            float64
	Context          string
	OffsetStart      int
	OffsetEnd        int
	OffsetStartInDoc int
	OffsetEndInDoc   int
}

// IsNoAnswer reports whether the candidate is a no-answer placeholder.
func (c Candidate) IsNoAnswer() bool {
	return c.Answer == "" && c.OffsetStartInDoc == 0 && c.OffsetEndInDoc == 0
}

// Prediction is the per-document reader output: candidates sorted by
// decreasing relevance plus the no-answer gap signal.
type Prediction struct {
	Candidates  []Candidate
	NoAnswerGap float64
}

// Span is the single-pass reader output: one final span per prediction
// with a model probability, offsets relative to the document.
type Span struct {
	Answer      string
	Probability float64
	Start       int
	End         int
}

// Answer is one fused, ranked answer. Answer and Context are nil for the
// synthesized no-answer entry.
type Answer struct {
	Answer           *string `json:"answer"`
	Probability      float64 `json:"probability"`
	Score            float64 `json:"score"`
	Context          *string `json:"context"`
	OffsetStart      int     `json:"offset_start"`
	OffsetEnd        int     `json:"offset_end"`
	OffsetStartInDoc int     `json:"offset_start_in_doc"`
	OffsetEndInDoc   int     `json:"offset_end_in_doc"`
	DocumentID       string  `json:"document_id,omitempty"`
}

// Result is the outcome of one question: answers sorted by decreasing
// probability. Skipped lists documents excluded by the skip-and-continue
// failure policy; empty under the default fail-whole-query policy.
type Result struct {
	Question string   `json:"question"`
	NoAnsGap float64  `json:"no_ans_gap"`
	Answers  []Answer `json:"answers"`
	Skipped  []string `json:"skipped_documents,omitempty"`
}

// Probability squashes a raw reader score into (0, 1) via a temperature
// scaled logistic sigmoid. This is a presentation-only pseudo
// probability, not a calibrated likelihood.
func Probability(score float64) float64 {
	return 1 / (1 + math.Exp(-score/scoreTemperature))
}
