package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/volcano-alert-service/internal/adapter/bmkg"
	"github.com/couchcryptid/volcano-alert-service/internal/adapter/fcm"
	"github.com/couchcryptid/volcano-alert-service/internal/adapter/filestore"
	httpadapter "github.com/couchcryptid/volcano-alert-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/volcano-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/volcano-alert-service/internal/adapter/logsender"
	"github.com/couchcryptid/volcano-alert-service/internal/adapter/magma"
	"github.com/couchcryptid/volcano-alert-service/internal/adapter/ntfy"
	"github.com/couchcryptid/volcano-alert-service/internal/adapter/redisstore"
	"github.com/couchcryptid/volcano-alert-service/internal/config"
	"github.com/couchcryptid/volcano-alert-service/internal/domain"
	"github.com/couchcryptid/volcano-alert-service/internal/observability"
	"github.com/couchcryptid/volcano-alert-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender, closeSender, err := newSender(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init push provider", "provider", cfg.PushProvider, "error", err)
		os.Exit(1)
	}
	defer closeSender()
	logger.Info("push provider ready", "provider", cfg.PushProvider)

	stateStore, emergencyStore, closeStores, err := newStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init state backend", "backend", cfg.StateBackend, "error", err)
		os.Exit(1)
	}
	defer closeStores()

	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is empty; admin endpoints are disabled")
	}
	if cfg.ListingURL == "" {
		logger.Warn("MAGMA_TINGKAT_URL is empty; scheduled cycles will be skipped")
	}

	fetcher := magma.NewHTTPFetcher(cfg.FetchTimeout, cfg.UserAgent, logger)
	locator := magma.NewLocator(fetcher, cfg.VolcanoName, logger)
	parser := magma.NewParser(fetcher, cfg.VolcanoName, logger)
	dispatcher := pipeline.NewDispatcher(sender, logger, metrics)

	if st, err := stateStore.Load(ctx); err == nil {
		metrics.SetLastLevel(st.LastLevel)
	}

	checker := pipeline.NewChecker(
		pipeline.CheckerConfig{ListingURL: cfg.ListingURL, Volcano: cfg.VolcanoName, Topic: cfg.Topic},
		locator, parser, stateStore, dispatcher, logger, metrics,
	)
	scheduler := pipeline.NewScheduler(checker, cfg.CheckInterval, nil, logger, metrics)
	dashboard := pipeline.NewDashboard(cfg.ListingURL, cfg.VolcanoName, locator, parser,
		bmkg.NewClient(cfg.BMKGURL, cfg.FetchTimeout, cfg.UserAgent, logger), logger)
	emergency := pipeline.NewEmergency(
		pipeline.EmergencyConfig{Topic: cfg.EmergencyTopic, NotifyClear: cfg.EmergencyNotifyClear},
		emergencyStore, dispatcher, logger,
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Ready:      scheduler,
		Status:     checker,
		Dashboard:  dashboard,
		Trigger:    scheduler,
		Emergency:  emergency,
		AdminToken: cfg.AdminToken,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start scheduler.
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if err := scheduler.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-schedDone:
	case <-shutdownCtx.Done():
		logger.Warn("in-flight cycle did not finish before shutdown timeout")
	}

	logger.Info("shutdown complete")
}

// newSender builds the configured push provider. The returned func releases
// any provider resources.
func newSender(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Sender, func(), error) {
	noop := func() {}
	switch cfg.PushProvider {
	case config.ProviderFCM:
		s, err := fcm.NewSender(ctx, cfg.CredentialsFile, logger)
		return s, noop, err
	case config.ProviderNtfy:
		return ntfy.NewSender(cfg.NtfyURL, cfg.FetchTimeout, logger), noop, nil
	case config.ProviderKafka:
		s := kafkaadapter.NewSender(cfg.KafkaBrokers, logger)
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}, nil
	default:
		return logsender.NewSender(logger), noop, nil
	}
}

// newStores builds the monitoring and emergency record stores for the
// configured backend.
func newStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (
	pipeline.Store[domain.MonitoringState], pipeline.Store[domain.EmergencyState], func(), error,
) {
	zeroState := func() domain.MonitoringState { return domain.MonitoringState{} }
	stateKey := "state_" + strings.ToLower(cfg.VolcanoName)

	if cfg.StateBackend == config.BackendRedis {
		client, err := redisstore.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Error("redis close error", "error", err)
			}
		}
		return redisstore.New(client, stateKey, zeroState, logger),
			redisstore.New(client, "emergency_state", domain.DefaultEmergencyState, logger),
			closeFn, nil
	}

	return filestore.New(cfg.DataDir, stateKey, zeroState, logger),
		filestore.New(cfg.DataDir, "emergency_state", domain.DefaultEmergencyState, logger),
		func() {}, nil
}
