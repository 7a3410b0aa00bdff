package answerdex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/answerdex/internal/db/sqlite"
	"github.com/kailas-cloud/answerdex/internal/domain"
	"github.com/kailas-cloud/answerdex/internal/domain/answer"
	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
	documentrepo "github.com/kailas-cloud/answerdex/internal/repository/document"
	hfReader "github.com/kailas-cloud/answerdex/internal/transport/hf"
	documentuc "github.com/kailas-cloud/answerdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/answerdex/internal/usecase/health"
	qauc "github.com/kailas-cloud/answerdex/internal/usecase/qa"
)

const defaultDatabasePath = "answerdex.db"

// Internal interfaces for test substitution.
type documentUseCase interface {
	Write(ctx context.Context, records []domdoc.Record) error
	GetByID(ctx context.Context, id string) (domdoc.Document, error)
	GetAll(ctx context.Context) ([]domdoc.Document, error)
	IDsByTags(ctx context.Context, tags map[string][]string) ([]string, error)
	Count(ctx context.Context) (int, error)
}

type qaUseCase interface {
	Answer(ctx context.Context, question string, sel qauc.Selection, topK int) (answer.Result, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the answerdex SDK entry point.
type Client struct {
	store     *sqlite.DB
	docSvc    documentUseCase
	qaSvc     qaUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates an answerdex Client and opens the document database.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dbPath: defaultDatabasePath,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	store, err := sqlite.Open(cfg.dbPath)
	if err != nil {
		return nil, fmt.Errorf("answerdex: open database: %w", err)
	}

	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("answerdex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store *sqlite.DB, cfg *clientConfig, obs *observer) *Client {
	docRepo := documentrepo.New(store.Handle())
	docSvc := documentuc.New(docRepo)

	qaOpts := qauc.Options{
		TopKPerCandidate:    cfg.topKPerCandidate,
		ReturnNoAnswer:      cfg.returnNoAnswer,
		Concurrency:         cfg.concurrency,
		SkipFailedDocuments: cfg.skipFailedDocuments,
		ContextWindow:       cfg.contextWindow,
	}
	// qa logging goes through the observer, not zap
	qaLogger := zap.NewNop()

	var qaSvc qaUseCase
	switch {
	case cfg.reader != nil:
		window := cfg.contextWindow
		if window <= 0 {
			window = 150
		}
		reader := &readerAdapter{inner: cfg.reader, window: window}
		qaSvc = qauc.New(docRepo, reader, qaOpts, qaLogger)
	case cfg.qaEndpoint != "":
		spans := hfReader.NewReader(&hfReader.Config{
			Endpoint: cfg.qaEndpoint,
			Token:    cfg.qaToken,
			Timeout:  cfg.qaTimeout,
			Provider: "qa_endpoint",
			Logger:   qaLogger,
		})
		qaSvc = qauc.NewSinglePass(docRepo, spans, qaOpts, qaLogger)
	}

	healthSvc := healthuc.New(store, nil)

	return &Client{
		store:     store,
		docSvc:    docSvc,
		qaSvc:     qaSvc,
		healthSvc: healthSvc,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		_ = c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Documents returns the document store service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{svc: c.docSvc, obs: c.obs}
}

// readerAdapter wraps the public Reader to satisfy internal domain.Reader.
// Context windows are sliced here so public implementations only return
// spans and scores.
type readerAdapter struct {
	inner  Reader
	window int
}

func (a *readerAdapter) Read(ctx context.Context, question, text string) (answer.Prediction, error) {
	p, err := a.inner.Read(ctx, question, text)
	if err != nil {
		return answer.Prediction{}, fmt.Errorf("read: %v: %w", err, domain.ErrReader)
	}

	candidates := make([]answer.Candidate, 0, len(p.Spans))
	for _, span := range p.Spans {
		start, end := span.Start, span.End
		if start < 0 {
			start = 0
		}
		if end > len(text) {
			end = len(text)
		}
		if end < start {
			end = start
		}
		ctxStart := max(0, start-a.window)
		ctxEnd := min(len(text), end+a.window)

		candidates = append(candidates, answer.Candidate{
			Answer:           span.Answer,
			Score:            span.Score,
			Context:          text[ctxStart:ctxEnd],
			OffsetStart:      start - ctxStart,
			OffsetEnd:        end - ctxStart,
			OffsetStartInDoc: start,
			OffsetEndInDoc:   end,
		})
	}

	return answer.Prediction{
		Candidates:  candidates,
		NoAnswerGap: p.NoAnswerGap,
	}, nil
}
