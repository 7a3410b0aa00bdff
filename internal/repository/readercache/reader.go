// Package readercache decorates a reader with a key-value prediction
// cache. Document text is immutable once stored, so a (question, text)
// pair always maps to the same prediction until the entry expires.
package readercache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/answerdex/internal/db"
	"github.com/kailas-cloud/answerdex/internal/domain"
	"github.com/kailas-cloud/answerdex/internal/domain/answer"
)

const cacheKeyPrefix = "answerdex:pred_cache:"

// store is the consumer interface for the prediction cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedReader caches reader predictions in a key-value store.
type CachedReader struct {
	inner      domain.Reader
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Reader,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedReader {
	return &CachedReader{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Read returns a cached prediction or calls the inner reader.
func (c *CachedReader) Read(ctx context.Context, question, text string) (answer.Prediction, error) {
	key := c.cacheKey(question, text)

	if pred, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return pred, nil
	}

	c.incCache("miss")

	pred, err := c.inner.Read(ctx, question, text)
	if err != nil {
		return answer.Prediction{}, fmt.Errorf("read prediction: %w", err)
	}

	c.putToCache(ctx, key, pred)
	return pred, nil
}

// HealthCheck delegates to the inner reader when it supports checks.
func (c *CachedReader) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (c *CachedReader) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedReader) cacheKey(question, text string) string {
	h := sha256.New()
	h.Write([]byte(question))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedReader) getFromCache(ctx context.Context, key string) (answer.Prediction, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached prediction", zap.String("key", key), zap.Error(err))
		}
		return answer.Prediction{}, false
	}
	if len(data) == 0 {
		return answer.Prediction{}, false
	}

	var pred answer.Prediction
	if err := json.Unmarshal(data, &pred); err != nil {
		c.logger.Warn("Failed to parse cached prediction", zap.String("key", key), zap.Error(err))
		return answer.Prediction{}, false
	}
	return pred, true
}

func (c *CachedReader) putToCache(ctx context.Context, key string, pred answer.Prediction) {
	data, err := json.Marshal(pred)
	if err != nil {
		c.logger.Warn("Failed to encode prediction", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache prediction", zap.String("key", key), zap.Error(err))
	}
}
