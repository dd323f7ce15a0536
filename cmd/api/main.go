package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/visitnote/visit-summary/internal/adapter/handler"
	"github.com/visitnote/visit-summary/internal/adapter/repository"
	"github.com/visitnote/visit-summary/internal/domain/repositories"
	"github.com/visitnote/visit-summary/internal/infrastructure/cache"
	"github.com/visitnote/visit-summary/internal/infrastructure/database"
	httpmw "github.com/visitnote/visit-summary/internal/infrastructure/http/middleware"
	"github.com/visitnote/visit-summary/internal/infrastructure/metrics"
	"github.com/visitnote/visit-summary/internal/usecase/summary"
	"github.com/visitnote/visit-summary/pkg/ai"
	"github.com/visitnote/visit-summary/pkg/config"
	"github.com/visitnote/visit-summary/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize dependencies
	logger.Info("🔧 Initializing dependencies...")

	// Summary cache
	store := newSummaryStore(ctx, cfg, logger, m)
	logger.Info("📦 Summary cache configured",
		zap.String("driver", cfg.Cache.Driver),
		zap.String("redis_url", cfg.Redis.RedactedURL()),
		zap.Bool("available", store.Available()),
		zap.Duration("ttl", cfg.SummaryCacheTTL()),
	)

	// Document store
	forms, patients, closeDocStore, ping := newDocStore(ctx, cfg, logger)
	defer closeDocStore()

	// Completion client
	completer := ai.NewAnthropicClient(&cfg.Anthropic, logger, m)
	logger.Info("🤖 Completion client configured",
		zap.String("model", completer.Model()),
		zap.String("credential", completer.CredentialStatus().String()),
	)

	service := summary.NewSummaryService(
		forms,
		patients,
		store,
		completer,
		summary.NewPromptBuilder(logger),
		cfg.SummaryCacheTTL(),
		logger,
	)

	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))

	router := handler.NewRouter(cfg, handler.NewSummary(service, logger), httpmw.EchoAuth(jwtManager, logger), m.Handler())
	router.AddHealthCheck("cache", store.Ping)
	router.AddHealthCheck("docstore", ping)
	router.Setup(e)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("✅ Server stopped gracefully")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newSummaryStore connects the configured cache backend. A redis connection
// failure leaves the store disconnected instead of aborting startup.
func newSummaryStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *cache.SummaryStore {
	if cfg.Cache.Driver == "memory" {
		return cache.NewSummaryStore(cache.NewMemoryStore(), logger, m)
	}

	client, err := cache.NewRedisClient(ctx, &cfg.Redis, logger)
	if err != nil {
		logger.Warn("⚠️ Redis unavailable, summaries will not be cached", zap.Error(err))
		return cache.NewSummaryStore(nil, logger, m)
	}
	return cache.NewSummaryStore(cache.NewRedisBackend(client), logger, m)
}

// newDocStore opens the configured document store and returns its
// repositories, a close func and a health probe. Failing to connect is fatal.
func newDocStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (
	repositories.FormRepository,
	repositories.PatientRepository,
	func(),
	handler.HealthCheck,
) {
	switch cfg.DocStore.Driver {
	case "postgres":
		db, err := database.NewPostgresDB(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		ping := func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
		closeFn := func() {
			if err := database.ClosePostgresDB(db); err != nil {
				logger.Warn("Failed to close database", zap.Error(err))
			}
		}
		return repository.NewPostgresFormRepository(db), repository.NewPostgresPatientRepository(db), closeFn, ping

	default:
		client, db, err := database.NewMongoDatabase(ctx, &cfg.Mongo, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		ping := func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("Failed to disconnect MongoDB", zap.Error(err))
			}
		}
		return repository.NewMongoFormRepository(db), repository.NewMongoPatientRepository(db), closeFn, ping
	}
}

// requestLogger logs one line per request through zap
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}
