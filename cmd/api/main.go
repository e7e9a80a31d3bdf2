// Package main is the entry point for the API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/analyzer"
	"github.com/skillbridge/skillbridge-api/internal/cache"
	"github.com/skillbridge/skillbridge-api/internal/chat"
	"github.com/skillbridge/skillbridge-api/internal/config"
	"github.com/skillbridge/skillbridge-api/internal/extract"
	"github.com/skillbridge/skillbridge-api/internal/handler"
	"github.com/skillbridge/skillbridge-api/internal/language"
	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/internal/model"
	natsclient "github.com/skillbridge/skillbridge-api/internal/nats"
	"github.com/skillbridge/skillbridge-api/internal/service"
	"github.com/skillbridge/skillbridge-api/internal/store"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.FromEnv(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("starting API server", zap.String("env", cfg.Env))
	ctx := context.Background()

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, tracing.Config{
			ServiceName: "skillbridge-api",
			Environment: cfg.Env,
			Endpoint:    cfg.TracingEndpoint,
			Insecure:    cfg.TracingInsecure,
			SampleRatio: cfg.TracingSampleRatio,
		})
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Database
	db, err := store.Open(ctx, store.Config{
		Driver:   cfg.DatabaseDriver,
		DSN:      cfg.DatabaseDSN,
		MaxRetry: cfg.DatabaseMaxRetry,
	}, log)
	if err != nil {
		return err
	}
	users := store.NewUserStore(db)
	resumes := store.NewResumeStore(db)
	analyses := store.NewAnalysisStore(db)
	history := store.NewHistoryStore(db)
	goals := store.NewGoalStore(db)
	chats := store.NewChatStore(db)
	contexts := store.NewContextStore(db)

	// Caches
	var (
		contextCache cache.Cache[string, *model.UserContext]
		redisClient  *redis.Client
	)
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		contextCache = cache.NewRedis[*model.UserContext](redisClient, "context", cfg.ContextCacheTTL, log)
		log.Info("context cache backed by redis")
	} else {
		contextCache = cache.NewMemory[string, *model.UserContext]("context", cfg.ContextCacheSize, cfg.ContextCacheTTL)
	}
	translations := cache.NewMemory[string, string]("translation", cfg.TranslationCacheSize, cfg.TranslationCacheTTL)

	// Event bus
	var (
		events     service.EventPublisher = service.NopPublisher{}
		replayer   handler.ChatEventReplayer
		natsClient *natsclient.Client
	)
	if cfg.NATSEnabled {
		natsClient, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("NATS unavailable, events disabled", zap.Error(err))
		} else {
			defer natsClient.Close()
			streamManager := natsclient.NewStreamManager(natsClient)
			if err := streamManager.EnsureStream(ctx); err != nil {
				return fmt.Errorf("ensure stream: %w", err)
			}
			events = streamManager
			replayer = streamManager
		}
	}

	// Collaborators
	analyzerClient := analyzer.New(analyzer.Config{
		BaseURL:       cfg.AnalyzerURL,
		Timeout:       cfg.AnalyzerTimeout,
		HealthTimeout: cfg.AnalyzerHealthTimeout,
	}, log)
	extractor := extract.New(cfg.ExtractMaxBytes).WithValidation(cfg.ExtractMinChars, cfg.ExtractMinKeyword)
	lang, err := language.NewService(translations)
	if err != nil {
		return err
	}
	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiration)
	validator := middleware.NewValidator()

	// Initialize services
	contextSvc := service.NewContextService(contexts, contextCache, log)
	chatSvc := service.NewChatService(
		chat.NewSelector(chat.DefaultPhraseTable(), analyses, log.Named("selector")),
		chat.NewPersonalizer(nil),
		contextSvc,
		lang,
		chats,
		events,
		log,
	)
	resumeSvc := service.NewResumeService(resumes, analyses, extractor, cfg.UploadDir, cfg.UploadMaxBytes, log)
	analysisSvc := service.NewAnalysisService(resumes, analyses, history, analyzerClient, extractor, events, cfg.AnalysisReuseWindow, log)
	dashboardSvc := service.NewDashboardService(history, goals, users, resumes, log)
	goalSvc := service.NewGoalService(goals, log)
	userSvc := service.NewUserService(users, log)
	authSvc := service.NewAuthService(users, tokens, []service.Cascade{
		{Name: "contexts", Delete: contextSvc.Delete},
		{Name: "chats", Delete: chats.DeleteByUser},
		{Name: "goals", Delete: goals.DeleteByUser},
		{Name: "history", Delete: history.DeleteByUser},
		{Name: "analyses", Delete: analyses.DeleteByUser},
		{Name: "resumes", Delete: resumeSvc.DeleteAll},
	}, log)

	// Initialize handlers
	checks := []handler.Check{
		{Name: "database", Probe: func(ctx context.Context) error { return store.Ping(ctx, db) }},
		{Name: "analyzer", Probe: analyzerClient.Health},
		{Name: "nats"},
		{Name: "redis"},
	}
	if natsClient != nil {
		checks[2].Probe = natsClient.Ping
	}
	if redisClient != nil {
		checks[3].Probe = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := handler.NewRouter(handler.Handlers{
		Health:    handler.NewHealthHandler(checks...),
		Auth:      handler.NewAuthHandler(authSvc, validator, log),
		User:      handler.NewUserHandler(userSvc, validator, log),
		Resume:    handler.NewResumeHandler(resumeSvc, cfg.UploadMaxBytes, log),
		Analysis:  handler.NewAnalysisHandler(analysisSvc, log),
		Stream:    handler.NewStreamHandler(analysisSvc, replayer, log),
		Dashboard: handler.NewDashboardHandler(dashboardSvc, log),
		Goal:      handler.NewGoalHandler(goalSvc, validator, log),
		Chat:      handler.NewChatHandler(chatSvc, contextSvc, validator, log),
	}, handler.RouterConfig{
		Tokens:            tokens,
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		Logger:            log,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}
