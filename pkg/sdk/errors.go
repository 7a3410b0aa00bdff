package answerdex

import "github.com/kailas-cloud/answerdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery         = domain.ErrInvalidQuery
	ErrInvalidRecord        = domain.ErrInvalidRecord
	ErrDocumentNotFound     = domain.ErrDocumentNotFound
	ErrUnsupportedOperation = domain.ErrUnsupportedOperation
	ErrStorage              = domain.ErrStorage
	ErrReader               = domain.ErrReader
	ErrEmptyCorpus          = domain.ErrEmptyCorpus
)
