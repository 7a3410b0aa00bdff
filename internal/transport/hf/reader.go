// Package hf implements the single-pass span reader against a
// HuggingFace-style question-answering inference endpoint. The endpoint
// returns final spans with character offsets and a probability, so no
// gap calibration is available on this path.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/answerdex/internal/domain"
	"github.com/kailas-cloud/answerdex/internal/domain/answer"
	"github.com/kailas-cloud/answerdex/internal/metrics"
)

// Reader posts (question, context) pairs to a QA pipeline endpoint.
type Reader struct {
	endpoint string
	token    string
	client   *http.Client
	provider string
	logger   *zap.Logger
}

// Config holds the endpoint settings.
type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
	Provider string
	Logger   *zap.Logger
}

// NewReader creates a span reader for a QA inference endpoint.
func NewReader(cfg *Config) *Reader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Reader{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		client:   &http.Client{Timeout: timeout},
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

type qaRequest struct {
	Inputs qaInputs `json:"inputs"`
	TopK   int      `json:"top_k,omitempty"`
}

type qaInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type qaPrediction struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

// ReadSpans implements domain.SpanReader.
func (r *Reader) ReadSpans(ctx context.Context, question, text string) ([]answer.Span, error) {
	body, err := json.Marshal(qaRequest{Inputs: qaInputs{Question: question, Context: text}})
	if err != nil {
		return nil, fmt.Errorf("encode qa request: %v: %w", err, domain.ErrReader)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build qa request: %v: %w", err, domain.ErrReader)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.ReaderRequestsTotal.WithLabelValues(r.provider, "qa", "error").Inc()
		metrics.ReaderErrorsTotal.WithLabelValues(r.provider, "qa", "transport_error").Inc()
		return nil, fmt.Errorf("qa endpoint: %v: %w", err, domain.ErrReader)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ReaderErrorsTotal.WithLabelValues(r.provider, "qa", "read_error").Inc()
		return nil, fmt.Errorf("read qa response: %v: %w", err, domain.ErrReader)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.ReaderRequestsTotal.WithLabelValues(r.provider, "qa", "error").Inc()
		metrics.ReaderErrorsTotal.WithLabelValues(r.provider, "qa", "api_error").Inc()
		return nil, fmt.Errorf("qa endpoint status %d: %s: %w", resp.StatusCode, data, domain.ErrReader)
	}

	metrics.ReaderRequestsTotal.WithLabelValues(r.provider, "qa", "success").Inc()
	metrics.ReaderRequestDuration.WithLabelValues(r.provider, "qa").Observe(time.Since(start).Seconds())

	preds, err := parsePredictions(data)
	if err != nil {
		return nil, err
	}

	spans := make([]answer.Span, 0, len(preds))
	for _, p := range preds {
		spans = append(spans, answer.Span{
			Answer:      p.Answer,
			Probability: p.Score,
			Start:       p.Start,
			End:         p.End,
		})
	}
	return spans, nil
}

// parsePredictions accepts both the single-object and list response
// shapes the pipeline emits depending on top_k.
func parsePredictions(data []byte) ([]qaPrediction, error) {
	var list []qaPrediction
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var single qaPrediction
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parse qa response: %v: %w", err, domain.ErrReader)
	}
	return []qaPrediction{single}, nil
}
