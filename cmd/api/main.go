package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tourbook/internal/api"
	"tourbook/internal/checkout"
	"tourbook/internal/config"
	"tourbook/internal/database"
	"tourbook/internal/domain"
	"tourbook/internal/events"
	"tourbook/internal/export"
	"tourbook/internal/integrations/catalog"
	"tourbook/internal/integrations/directbooking"
	"tourbook/internal/integrations/paygate"
	"tourbook/internal/logging"
	"tourbook/internal/metrics"
	"tourbook/internal/models"
	"tourbook/internal/repository"
	"tourbook/internal/service"
	"tourbook/internal/wizard"
	"tourbook/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	draftTTL := time.Duration(cfg.Wizard.DraftTTL) * time.Second
	drafts := initDraftRepository(redisClient, draftTTL, &logger)

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, time.Duration(cfg.Catalog.Timeout)*time.Second, &logger)
	if redisClient != nil {
		catalogClient.UseRedisCache(redisClient, time.Duration(cfg.Catalog.CacheTTL)*time.Second)
	}

	eventBus := events.NewEventBus()
	subscribeEventLogging(eventBus, &logger)

	bookingService := service.NewBookingService(db, catalogClient, eventBus, cfg.Checkout.Mode, &logger)

	provider, err := initProvider(cfg, &logger)
	if err != nil {
		return err
	}

	dispatcher := checkout.NewDispatcher(provider, drafts, cfg.Checkout.Currency, &logger)
	wizardService := wizard.NewService(drafts, catalogClient, dispatcher, eventBus, &logger)
	exporter := export.NewExporter(bookingService, cfg.Exports.Path, &logger)

	httpServer := api.NewHTTPServer(*cfg, wizardService, bookingService, catalogClient, drafts, exporter, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)

	refreshWorker := worker.NewCatalogRefreshWorker(
		catalogClient,
		time.Duration(cfg.Catalog.RefreshInterval)*time.Second,
		worker.DefaultRetryPolicy(),
		&logger,
	)
	go refreshWorker.Start(ctx)

	backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
	go backup.Start(ctx)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initDraftRepository prefers Redis with an in-memory fallback; without Redis
// the drafts live purely in process memory.
func initDraftRepository(redisClient *redis.Client, ttl time.Duration, logger *zerolog.Logger) domain.DraftRepository {
	memory := repository.NewMemoryDraftRepository(ttl)
	if redisClient == nil {
		logger.Warn().Msg("draft store running in-memory only; drafts will not survive restarts")
		return memory
	}
	primary := repository.NewRedisDraftRepository(redisClient, ttl)
	return repository.NewFailoverDraftRepository(primary, memory, logger)
}

func initProvider(cfg *config.Config, logger *zerolog.Logger) (domain.CheckoutProvider, error) {
	timeout := time.Duration(cfg.Checkout.Timeout) * time.Second

	switch cfg.Checkout.Mode {
	case models.ModeGateway:
		return paygate.NewClient(cfg.Checkout.GatewayURL, timeout, logger), nil
	case models.ModeDirect:
		endpoint := cfg.Checkout.DirectURL
		if endpoint == "" {
			// Default to our own direct-booking endpoint.
			endpoint = fmt.Sprintf("http://127.0.0.1:%d/api/v1/bookings", cfg.API.HTTP.Port)
		}
		return directbooking.NewClient(endpoint, timeout, logger), nil
	default:
		return nil, fmt.Errorf("unsupported checkout mode: %s", cfg.Checkout.Mode)
	}
}

func subscribeEventLogging(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventDraftStarted,
		events.EventBookingCreated,
		events.EventCheckoutSucceeded,
		events.EventCheckoutFailed,
	} {
		bus.Subscribe(eventType, func(event *events.Event) error {
			logger.Info().Str("event", event.Type).RawJSON("payload", event.Payload).Msg("domain event")
			return nil
		})
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Int("port", port).Msg("metrics server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().
		Int("http_port", cfg.API.HTTP.Port).
		Str("checkout_mode", cfg.Checkout.Mode).
		Msg("tourbook API started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.API.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("tourbook API stopped")
	return nil
}
