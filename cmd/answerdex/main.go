package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/answerdex/internal/config"
	dbRedis "github.com/kailas-cloud/answerdex/internal/db/redis"
	"github.com/kailas-cloud/answerdex/internal/db/sqlite"
	"github.com/kailas-cloud/answerdex/internal/domain"
	logpkg "github.com/kailas-cloud/answerdex/internal/logger"
	"github.com/kailas-cloud/answerdex/internal/metrics"
	documentrepo "github.com/kailas-cloud/answerdex/internal/repository/document"
	"github.com/kailas-cloud/answerdex/internal/repository/readercache"
	chiTransport "github.com/kailas-cloud/answerdex/internal/transport/chi"
	hfReader "github.com/kailas-cloud/answerdex/internal/transport/hf"
	openaiReader "github.com/kailas-cloud/answerdex/internal/transport/openai"
	documentuc "github.com/kailas-cloud/answerdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/answerdex/internal/usecase/health"
	qauc "github.com/kailas-cloud/answerdex/internal/usecase/qa"
	"github.com/kailas-cloud/answerdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting answerdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
		zap.String("reader_kind", cfg.Reader.Kind),
	)

	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open document database", zap.Error(err))
	}
	defer func() { _ = store.Close() }()
	logger.Info("Connected to document database")

	// Register reader metrics explicitly (no init())
	metrics.RegisterReaderMetrics()

	// Optional prediction cache
	ctx := context.Background()
	var cache *dbRedis.Store
	if cfg.Cache.Enabled {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create prediction cache", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Prediction cache not ready", zap.Error(err))
		}
		logger.Info("Connected to prediction cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Repositories and use case services
	docRepo := documentrepo.New(store.Handle())
	docSvc := documentuc.New(docRepo)

	qaOpts := qauc.Options{
		TopKPerCandidate:    cfg.QA.TopKPerCandidate,
		ReturnNoAnswer:      cfg.QA.ReturnNoAnswer,
		Concurrency:         cfg.QA.Concurrency,
		SkipFailedDocuments: cfg.QA.SkipFailedDocuments,
		ContextWindow:       cfg.Reader.ContextWindow,
	}

	var qaSvc *qauc.Service
	var readerChecker healthuc.ReaderChecker

	switch cfg.Reader.Kind {
	case "openai":
		reader := buildFusedReader(cfg, cache, logger)
		qaSvc = qauc.New(docRepo, reader, qaOpts, logger)
		readerChecker = newReaderHealthChecker(reader)
	case "qa_endpoint":
		spans := hfReader.NewReader(&hfReader.Config{
			Endpoint: cfg.Reader.Endpoint,
			Token:    cfg.Reader.APIKey,
			Timeout:  time.Duration(cfg.Reader.TimeoutSec) * time.Second,
			Provider: cfg.Reader.Provider,
			Logger:   logger,
		})
		qaSvc = qauc.NewSinglePass(docRepo, spans, qaOpts, logger)
	default:
		logger.Fatal("Unknown reader kind", zap.String("kind", cfg.Reader.Kind))
	}

	healthSvc := healthuc.New(store, readerChecker)

	// Create chi server
	server := chiTransport.NewServer(docSvc, qaSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildFusedReader assembles the reader decorator chain: OpenAI -> Cached.
func buildFusedReader(cfg config.Config, cache *dbRedis.Store, logger *zap.Logger) domain.Reader {
	base := openaiReader.NewReader(&openaiReader.Config{
		APIKey:        cfg.Reader.APIKey,
		BaseURL:       cfg.Reader.BaseURL,
		Model:         cfg.Reader.Model,
		MaxSpans:      cfg.Reader.MaxSpans,
		ContextWindow: cfg.Reader.ContextWindow,
		Provider:      cfg.Reader.Provider,
		Logger:        logger,
	})

	if cache == nil {
		return base
	}
	return readercache.New(
		base, cache,
		time.Duration(cfg.Cache.TTLSec)*time.Second,
		metrics.ReaderCacheTotal, logger,
	)
}

// readerHealthChecker wraps domain.Reader to implement health.ReaderChecker.
type readerHealthChecker struct {
	reader domain.Reader
}

func newReaderHealthChecker(reader domain.Reader) *readerHealthChecker {
	return &readerHealthChecker{reader: reader}
}

func (h *readerHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.reader.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("reader health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
