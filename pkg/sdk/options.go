package answerdex

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reader produces per-document answer predictions. Implementations call
// whatever inference backend they like; the client handles fan-out and
// fusion.
type Reader interface {
	Read(ctx context.Context, question, text string) (Prediction, error)
}

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dbPath string

	reader     Reader
	qaEndpoint string
	qaToken    string
	qaTimeout  time.Duration

	topKPerCandidate    int
	returnNoAnswer      bool
	concurrency         int
	skipFailedDocuments bool
	contextWindow       int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithDatabase sets the SQLite database file path.
// Use ":memory:" for an ephemeral store. Default: "answerdex.db".
func WithDatabase(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dbPath = path
	})
}

// WithReader sets the answer prediction provider.
// Required for Ask; document operations work without it.
func WithReader(r Reader) Option {
	return optionFunc(func(c *clientConfig) {
		c.reader = r
	})
}

// WithQAEndpoint points Ask at a hosted question-answering inference
// endpoint instead of a local Reader. This path ranks the endpoint's
// probabilities directly and performs no no-answer calibration.
func WithQAEndpoint(endpoint, token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.qaEndpoint = endpoint
		c.qaToken = token
	})
}

// WithQAEndpointTimeout sets the inference request timeout.
// Default: 30s.
func WithQAEndpointTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.qaTimeout = d
	})
}

// WithTopKPerCandidate caps how many spans one document may contribute
// to the merged pool. Default: 3.
func WithTopKPerCandidate(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topKPerCandidate = k
	})
}

// WithNoAnswer includes the calibrated no-answer entry in results.
func WithNoAnswer() Option {
	return optionFunc(func(c *clientConfig) {
		c.returnNoAnswer = true
	})
}

// WithConcurrency bounds parallel reader dispatch. Default: 4.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithSkipFailedDocuments downgrades a per-document reader failure from
// a whole-query error to an entry in Result.Skipped.
func WithSkipFailedDocuments() Option {
	return optionFunc(func(c *clientConfig) {
		c.skipFailedDocuments = true
	})
}

// WithContextWindow sets the context slice half-width in characters.
// Default: 150.
func WithContextWindow(w int) Option {
	return optionFunc(func(c *clientConfig) {
		c.contextWindow = w
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
