package qa

import (
	"context"

	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
)

// DocumentStore is the retrieval contract the fusion engine needs.
type DocumentStore interface {
	GetByID(ctx context.Context, id string) (doc domdoc.Document, ok bool, err error)
	GetAll(ctx context.Context) ([]domdoc.Document, error)
	IDsByTags(ctx context.Context, tags map[string][]string) ([]string, error)
}

// Selection scopes a question to a document set: explicit ids, a tag
// filter, or (both empty) the whole store.
type Selection struct {
	IDs  []string
	Tags map[string][]string
}

// Options tune the fusion engine.
type Options struct {
	// TopKPerCandidate caps how many spans one document may contribute
	// to the merged pool, independent of the global top-k.
	TopKPerCandidate int
	// ReturnNoAnswer opts into the synthesized no-answer entry.
	ReturnNoAnswer bool
	// Concurrency bounds parallel reader dispatch.
	Concurrency int
	// SkipFailedDocuments downgrades a per-document reader failure from a
	// whole-query error to an entry in Result.Skipped.
	SkipFailedDocuments bool
	// ContextWindow is the half-width, in characters, of the context
	// slice on the single-pass path.
	ContextWindow int
}

func (o Options) withDefaults() Options {
	if o.TopKPerCandidate <= 0 {
		o.TopKPerCandidate = 3
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.ContextWindow <= 0 {
		o.ContextWindow = 30
	}
	return o
}
