package document

import (
	"context"

	repodoc "github.com/kailas-cloud/answerdex/internal/repository/document"

	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Write(ctx context.Context, docs []domdoc.Document) error
	GetByID(ctx context.Context, id string) (doc domdoc.Document, ok bool, err error)
	GetAll(ctx context.Context) ([]domdoc.Document, error)
	IDsByTags(ctx context.Context, tags map[string][]string) ([]string, error)
	Count(ctx context.Context) (int, error)
	QueryByEmbedding(ctx context.Context, embedding []float32, topK int) ([]domdoc.Document, error)
	Capabilities() repodoc.Capabilities
}

// IDGenerator assigns identifiers to records that carry none.
type IDGenerator func() string
