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

	"github.com/kailas-cloud/contentiq/internal/config"
	dbRedis "github.com/kailas-cloud/contentiq/internal/db/redis"
	logpkg "github.com/kailas-cloud/contentiq/internal/logger"
	"github.com/kailas-cloud/contentiq/internal/metrics"
	catalogrepo "github.com/kailas-cloud/contentiq/internal/repository/catalog"
	taxonomyrepo "github.com/kailas-cloud/contentiq/internal/repository/taxonomy"
	chiTransport "github.com/kailas-cloud/contentiq/internal/transport/chi"
	openaiLLM "github.com/kailas-cloud/contentiq/internal/transport/openai"
	"github.com/kailas-cloud/contentiq/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/contentiq/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/contentiq/internal/usecase/ingest"
	"github.com/kailas-cloud/contentiq/internal/usecase/parse"
	planuc "github.com/kailas-cloud/contentiq/internal/usecase/plan"
	schemauc "github.com/kailas-cloud/contentiq/internal/usecase/schema"
	"github.com/kailas-cloud/contentiq/internal/version"
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

	logger.Info("Starting contentiq API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register query metrics explicitly (no init())
	metrics.RegisterQueryMetrics()

	// Repositories
	taxonomyRepo := taxonomyrepo.New(store)
	catalogRepo := catalogrepo.New(store)

	// Schema resolver with the configured cache TTL (0 = explicit invalidation only)
	resolver := schemauc.New(taxonomyRepo, taxonomyRepo, time.Duration(cfg.Cache.SchemaTTLSec)*time.Second)

	// Optional LLM fallback extractor.
	// Pass nil interface (not typed nil pointer!) if the fallback is not configured.
	var fallback parse.FallbackExtractor
	var extractor *openaiLLM.Extractor
	if cfg.LLM.APIKey != "" {
		extractor = openaiLLM.NewExtractor(&openaiLLM.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			Logger:      logger,
		})
		fallback = extractor
		logger.Info("Fallback extractor created",
			zap.String("model", cfg.LLM.Model),
			zap.String("base_url", cfg.LLM.BaseURL),
		)
	}

	// Use case services
	parser := parse.New(resolver, parse.MatcherConfig{
		FuzzyThreshold:       cfg.Parser.FuzzyThreshold,
		MinFuzzyTokenLen:     cfg.Parser.MinFuzzyTokenLen,
		SynonymMinConfidence: cfg.Parser.SynonymMinConfidence,
	}, fallback)
	synthesizer := planuc.New(resolver, planuc.Config{ListLimit: cfg.Planner.ListLimit})
	answerSvc := answer.New(parser, synthesizer, catalogRepo)
	ingestSvc := ingestuc.New(catalogRepo, resolver)

	var extractorChecker healthuc.ExtractorChecker
	if extractor != nil {
		extractorChecker = extractor
	}
	healthSvc := healthuc.New(store, extractorChecker)

	server := chiTransport.NewServer(answerSvc, ingestSvc, resolver, healthSvc, logger)

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

			// One canonical log line per request
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
