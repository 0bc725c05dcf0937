package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	memcache "github.com/kitbuilder587/reactor-bot/internal/cache/memory"
	"github.com/kitbuilder587/reactor-bot/internal/config"
	"github.com/kitbuilder587/reactor-bot/internal/metrics"
	memrepo "github.com/kitbuilder587/reactor-bot/internal/repository/memory"
	"github.com/kitbuilder587/reactor-bot/internal/service"
	"github.com/kitbuilder587/reactor-bot/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("reactor-bot failed", zap.Error(err))
	}

	logger.Info("reactor-bot stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	repo := memrepo.NewReactorRepository()

	batchCache := memcache.NewWithContext(ctx, cfg.Cache.SweepInterval)
	defer batchCache.Stop()

	extra, err := config.LoadPresets(cfg.PresetsPath)
	if err != nil {
		return fmt.Errorf("load presets: %w", err)
	}

	catalog, err := service.NewPresetCatalog(extra, cfg.DefaultPreset)
	if err != nil {
		return fmt.Errorf("build preset catalog: %w", err)
	}

	reactors := service.NewReactorService(repo, catalog, logger, m)
	batches := service.NewBatchService(service.BatchServiceDeps{
		Cache:   batchCache,
		Logger:  logger,
		Metrics: m,
		Config: service.BatchConfig{
			Workers:      cfg.Batch.Workers,
			MaxScenarios: cfg.Batch.MaxScenarios,
			CacheTTL:     cfg.Cache.TTL,
			Timeout:      cfg.Batch.Timeout,
		},
	})

	bot, err := telegram.New(telegram.BotConfig{
		Token:             cfg.Telegram.Token,
		Debug:             cfg.Telegram.Debug,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	}, reactors, batches, logger, m)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	defer bot.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	metricsServer := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("metrics server started", zap.String("addr", cfg.Metrics.Addr))
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return bot.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
