package answerdex

// Record is one raw ingestion record. Keys other than id/text/meta/tags
// are folded into meta; a missing id gets a store-assigned one.
type Record map[string]any

// Document is a stored document.
type Document struct {
	ID   string
	Text string
	Meta map[string]any
	Tags map[string][]string
}

// PredictedSpan is one candidate answer emitted by a Reader for a
// single document. Offsets are byte positions within the document text.
type PredictedSpan struct {
	Answer string
	Score  float64
	Start  int
	End    int
}

// Prediction is a Reader's output for one (question, document) pair.
// NoAnswerGap is the margin by which the no-answer confidence beats the
// best span; positive values lean toward "no answer here".
type Prediction struct {
	Spans       []PredictedSpan
	NoAnswerGap float64
}

// AskParams scopes a question. DocumentIDs and Tags are mutually
// exclusive; with neither set the whole store is searched. A nil TopK
// returns the whole merged pool.
type AskParams struct {
	DocumentIDs []string
	Tags        map[string][]string
	TopK        *int
}

// Answer is one ranked entry in an ask result. A nil Answer pointer is
// the calibrated no-answer entry.
type Answer struct {
	Answer           *string
	Probability      float64
	Score            float64
	Context          *string
	OffsetStart      int
	OffsetEnd        int
	OffsetStartInDoc int
	OffsetEndInDoc   int
	DocumentID       string
}

// Result is a ranked answer list for one question.
type Result struct {
	Question string
	NoAnsGap float64
	Answers  []Answer
	Skipped  []string
}
