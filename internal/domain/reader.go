package domain

import (
	"context"

	"github.com/kailas-cloud/answerdex/internal/domain/answer"
)

// Reader is the inference capability consumed by the fusion engine.
// One call per document, no cross-document state.
type Reader interface {
	Read(ctx context.Context, question, text string) (answer.Prediction, error)
}

// SpanReader is the single-pass inference capability: the adapter emits
// final spans with probabilities directly and no gap signal.
type SpanReader interface {
	ReadSpans(ctx context.Context, question, text string) ([]answer.Span, error)
}

// HealthChecker is implemented by adapters that can verify provider
// availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
