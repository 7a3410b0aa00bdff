// Package openai implements the reader capability on an OpenAI-compatible
// chat completion API. The model is prompted into a strict JSON shape of
// verbatim spans; offsets and context windows are computed locally so the
// output matches what an extractive reader would emit.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/answerdex/internal/domain"
	"github.com/kailas-cloud/answerdex/internal/domain/answer"
	"github.com/kailas-cloud/answerdex/internal/metrics"
)

const systemPrompt = `You are an extractive question answering engine.
Given a question and a passage, return a JSON object:
{"spans": [{"text": "<verbatim substring of the passage>", "score": <number>}], "no_answer_score": <number>}
Rules: each span text MUST be copied verbatim from the passage; score is an
unbounded confidence logit (higher = more confident); no_answer_score is the
confidence that the passage contains no answer. Return at most %d spans.
Return ONLY the JSON object.`

// Reader is a gap-emitting reader using the OpenAI-compatible API.
type Reader struct {
	client        *openai.Client
	model         string
	maxSpans      int
	contextWindow int
	provider      string
	logger        *zap.Logger
}

// Config holds the reader provider settings.
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	MaxSpans      int
	ContextWindow int
	Provider      string
	Logger        *zap.Logger
}

// NewReader creates an OpenAI-compatible reader.
func NewReader(cfg *Config) *Reader {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxSpans := cfg.MaxSpans
	if maxSpans <= 0 {
		maxSpans = 5
	}
	contextWindow := cfg.ContextWindow
	if contextWindow <= 0 {
		contextWindow = 150
	}

	return &Reader{
		client:        openai.NewClientWithConfig(clientCfg),
		model:         cfg.Model,
		maxSpans:      maxSpans,
		contextWindow: contextWindow,
		provider:      cfg.Provider,
		logger:        cfg.Logger,
	}
}

type spanPayload struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type readerPayload struct {
	Spans         []spanPayload `json:"spans"`
	NoAnswerScore float64       `json:"no_answer_score"`
}

// Read implements domain.Reader. Candidates come back sorted by
// decreasing score; the no-answer gap is the margin by which the
// no-answer confidence beats the best span.
func (r *Reader) Read(ctx context.Context, question, text string) (answer.Prediction, error) {
	req := openai.ChatCompletionRequest{
		Model: r.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPrompt, r.maxSpans)},
			{Role: openai.ChatMessageRoleUser, Content: "Question: " + question + "\n\nPassage:\n" + text},
		},
	}

	start := time.Now()

	resp, err := r.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ReaderRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
		metrics.ReaderErrorsTotal.WithLabelValues(r.provider, r.model, "api_error").Inc()
		return answer.Prediction{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.ReaderRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
		metrics.ReaderErrorsTotal.WithLabelValues(r.provider, r.model, "empty_response").Inc()
		return answer.Prediction{}, fmt.Errorf("empty completion response: %w", domain.ErrReader)
	}

	var payload readerPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		metrics.ReaderRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
		metrics.ReaderErrorsTotal.WithLabelValues(r.provider, r.model, "bad_payload").Inc()
		return answer.Prediction{}, fmt.Errorf("parse reader payload: %v: %w", err, domain.ErrReader)
	}

	metrics.ReaderRequestsTotal.WithLabelValues(r.provider, r.model, "success").Inc()
	metrics.ReaderRequestDuration.WithLabelValues(r.provider, r.model).Observe(duration.Seconds())

	return r.assemble(payload, text), nil
}

// assemble locates each span in the passage and builds the prediction.
// Spans the model hallucinated (not verbatim in the passage) are dropped.
func (r *Reader) assemble(payload readerPayload, text string) answer.Prediction {
	candidates := make([]answer.Candidate, 0, len(payload.Spans)+1)
	bestScore := 0.0

	for _, span := range payload.Spans {
		if span.Text == "" {
			continue
		}
		idx := strings.Index(text, span.Text)
		if idx < 0 {
			r.logger.Debug("Dropping non-verbatim span", zap.String("span", span.Text))
			continue
		}
		start := idx
		end := idx + len(span.Text)
		ctxStart := max(0, start-r.contextWindow)
		ctxEnd := min(len(text), end+r.contextWindow)

		candidates = append(candidates, answer.Candidate{
			Answer:           span.Text,
			Score:            span.Score,
			Context:          text[ctxStart:ctxEnd],
			OffsetStart:      start - ctxStart,
			OffsetEnd:        end - ctxStart,
			OffsetStartInDoc: start,
			OffsetEndInDoc:   end,
		})
		if span.Score > bestScore {
			bestScore = span.Score
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return answer.Prediction{
		Candidates:  candidates,
		NoAnswerGap: payload.NoAnswerScore - bestScore,
	}
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (r *Reader) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrReader for correct 502 mapping.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("reader API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), domain.ErrReader)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("reader API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrReader)
	}

	return fmt.Errorf("reader request failed: %v: %w", err, domain.ErrReader)
}
