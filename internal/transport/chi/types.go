package chi

// errorCode is a machine-readable error discriminator.
type errorCode string

const (
	codeBadRequest           errorCode = "bad_request"
	codeValidationFailed     errorCode = "validation_failed"
	codeInvalidQuery         errorCode = "invalid_query"
	codeInvalidRecord        errorCode = "invalid_record"
	codeDocumentNotFound     errorCode = "document_not_found"
	codeEmptyCorpus          errorCode = "empty_corpus"
	codeUnsupportedOperation errorCode = "unsupported_operation"
	codeReaderError          errorCode = "reader_error"
	codeStorageError         errorCode = "storage_error"
	codeInternalError        errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type askRequest struct {
	Question    string              `json:"question"`
	DocumentIDs []string            `json:"document_ids,omitempty"`
	Tags        map[string][]string `json:"tags,omitempty"`
	TopK        *int                `json:"top_k,omitempty"`
}

type writeDocumentsRequest struct {
	Documents []map[string]any `json:"documents"`
}

type writeDocumentsResponse struct {
	Written int `json:"written"`
}

type documentResponse struct {
	ID   string              `json:"id"`
	Text string              `json:"text"`
	Meta map[string]any      `json:"meta,omitempty"`
	Tags map[string][]string `json:"tags,omitempty"`
}

type documentListResponse struct {
	Items []documentResponse `json:"items"`
	Total int                `json:"total"`
}

type countResponse struct {
	Count int `json:"count"`
}

type filterRequest struct {
	Tags map[string][]string `json:"tags"`
}

type filterResponse struct {
	DocumentIDs []string `json:"document_ids"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
