package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/answerdex/internal/domain"
	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
	documentuc "github.com/kailas-cloud/answerdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/answerdex/internal/usecase/health"
	qauc "github.com/kailas-cloud/answerdex/internal/usecase/qa"
)

const maxWriteBatchSize = 1000

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API surface over the document and QA services.
type Server struct {
	documents     *documentuc.Service
	qa            *qauc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *documentuc.Service,
	qa *qauc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		documents: documents,
		qa:        qa,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		readerFailureHandler,
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, codeInvalidRecord),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrEmptyCorpus, http.StatusUnprocessableEntity, codeEmptyCorpus),
		sentinelHandler(domain.ErrUnsupportedOperation, http.StatusNotImplemented, codeUnsupportedOperation),
		sentinelHandler(domain.ErrStorage, http.StatusInternalServerError, codeStorageError),
	}
	return s
}

// Routes mounts all API routes onto the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/ask", s.Ask)
	r.Post("/documents", s.WriteDocuments)
	r.Get("/documents", s.ListDocuments)
	r.Get("/documents/count", s.CountDocuments)
	r.Get("/documents/{id}", s.GetDocument)
	r.Post("/documents/filter", s.FilterDocuments)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Question is required")
		return
	}
	if len(req.DocumentIDs) > 0 && len(req.Tags) > 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"document_ids and tags are mutually exclusive")
		return
	}

	// Absent top_k means the whole merged pool; an explicit 0 is a valid
	// request for an empty ranking.
	topK := -1
	if req.TopK != nil {
		if *req.TopK < 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "top_k must not be negative")
			return
		}
		topK = *req.TopK
	}

	result, err := s.qa.Answer(r.Context(), req.Question, qauc.Selection{
		IDs:  req.DocumentIDs,
		Tags: req.Tags,
	}, topK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// WriteDocuments handles POST /documents.
func (s *Server) WriteDocuments(w http.ResponseWriter, r *http.Request) {
	var req writeDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Documents) == 0 || len(req.Documents) > maxWriteBatchSize {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"documents count must be between 1 and 1000")
		return
	}

	records := make([]domdoc.Record, len(req.Documents))
	for i, fields := range req.Documents {
		records[i] = domdoc.Record{Fields: fields}
	}

	if err := s.documents.Write(r.Context(), records); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, writeDocumentsResponse{Written: len(records)})
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.GetAll(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i := range docs {
		items[i] = documentToResponse(&docs[i])
	}

	writeJSON(w, http.StatusOK, documentListResponse{Items: items, Total: len(items)})
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.documents.GetByID(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// CountDocuments handles GET /documents/count.
func (s *Server) CountDocuments(w http.ResponseWriter, r *http.Request) {
	count, err := s.documents.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

// FilterDocuments handles POST /documents/filter.
func (s *Server) FilterDocuments(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ids, err := s.documents.IDsByTags(r.Context(), req.Tags)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, filterResponse{DocumentIDs: ids})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrInvalidRecord,
		domain.ErrDocumentNotFound,
		domain.ErrEmptyCorpus,
		domain.ErrUnsupportedOperation,
		domain.ErrReader,
		domain.ErrStorage,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// readerFailureHandler handles ErrReader, naming the failed document when known.
func readerFailureHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrReader) {
		return false
	}
	var re *domain.ReaderError
	if errors.As(err, &re) {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"code":        codeReaderError,
			"message":     msg,
			"document_id": re.DocumentID,
		})
		return true
	}
	writeError(w, http.StatusBadGateway, codeReaderError, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func documentToResponse(doc *domdoc.Document) documentResponse {
	resp := documentResponse{
		ID:   doc.ID(),
		Text: doc.Text(),
	}
	if len(doc.Meta()) > 0 {
		resp.Meta = doc.Meta()
	}
	if len(doc.Tags()) > 0 {
		tags := make(map[string][]string)
		for _, t := range doc.Tags() {
			tags[t.Name] = append(tags[t.Name], t.Value)
		}
		resp.Tags = tags
	}
	return resp
}
