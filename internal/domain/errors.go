package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery signals an empty or malformed filter.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrUnsupportedOperation signals a capability the store variant lacks.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrStorage signals an I/O or transaction failure. The whole batch is safe to retry.
	ErrStorage = errors.New("storage failure")
	// ErrReader signals a failed inference call for one or more documents.
	ErrReader = errors.New("reader failure")
	// ErrEmptyCorpus signals that answer fusion was invoked with zero documents.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrInvalidRecord signals a malformed ingestion record.
	ErrInvalidRecord = errors.New("invalid record")
)

// ReaderError wraps ErrReader with the document that triggered it.
type ReaderError struct {
	DocumentID string
	Err        error
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("%s: document %s: %v", ErrReader.Error(), e.DocumentID, e.Err)
}

func (e *ReaderError) Unwrap() error { return ErrReader }

// NewReaderError creates a reader error naming the failed document.
func NewReaderError(documentID string, err error) error {
	return &ReaderError{DocumentID: documentID, Err: err}
}
