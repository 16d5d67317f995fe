package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockroom/internal/backup"
	"stockroom/internal/cli"
	"stockroom/internal/config"
	"stockroom/internal/events"
	"stockroom/internal/export"
	"stockroom/internal/logging"
	"stockroom/internal/metrics"
	"stockroom/internal/service"
	"stockroom/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorMessage(err))
		os.Exit(1)
	}
}

// app holds everything a command needs once the config is loaded.
type app struct {
	cfg    *config.Config
	logger *zerolog.Logger
	closer io.Closer
	store  *store.Store
	items  *service.ItemService
}

func newApp(configPath string) (*app, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger, session := logging.WithSession(baseLogger)
	logger.Debug().Str("store", cfg.Store.Path).Msg("starting session " + session)

	st, err := store.New(cfg.Store.Path, logger)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		logger.Error().Err(err).Str("path", cfg.Store.Path).Msg("init store")
		return nil, err
	}

	bus := events.NewEventBus()
	bus.Subscribe(events.EventStockLow, func(ev *events.Event) error {
		p, err := events.DecodeStock(ev)
		if err != nil {
			return err
		}
		logger.Warn().Str("code", p.Code).Float32("quantity", p.Quantity).
			Int32("reorder_level", p.ReorderLevel).Msg("stock at or below reorder level")
		return nil
	})

	return &app{
		cfg:    cfg,
		logger: logger,
		closer: closer,
		store:  st,
		items:  service.NewItemService(st, bus, cfg.CLI.TruncateCodes, logger),
	}, nil
}

func (a *app) Close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

func (a *app) seedFromConfig(ctx context.Context) error {
	if a.cfg.Seed.ItemsPath == "" {
		return nil
	}
	items, err := config.LoadItems(a.cfg.Seed.ItemsPath)
	if err != nil {
		a.logger.Error().Err(err).Str("items_path", a.cfg.Seed.ItemsPath).Msg("read seed items")
		return err
	}
	_, err = a.items.Seed(ctx, items)
	return err
}

func (a *app) exportReport(ctx context.Context) (string, error) {
	inv, err := a.items.List(ctx)
	if err != nil {
		return "", err
	}
	path, err := export.WriteXLSX(inv, a.cfg.Exports.Path, time.Now())
	if err != nil {
		a.logger.Error().Err(err).Msg("export report")
		return "", err
	}
	a.logger.Info().Str("path", path).Int("items", inv.Len()).Msg("report exported")
	return path, nil
}

// runMenu is the interactive session started by the bare command.
func (a *app) runMenu(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := a.seedFromConfig(ctx); err != nil {
		return err
	}

	startMetrics(ctx, a.cfg, a.logger)

	if a.cfg.Backup.Enabled {
		svc := backup.NewBackupService(a.cfg.Store.Path, a.cfg.Backup, a.logger)
		go svc.Start(ctx)
	}

	menu := cli.NewMenu(a.items, in, out, cli.Options{
		ClearScreen:    a.cfg.CLI.ClearScreen,
		AllowLongCodes: a.cfg.CLI.TruncateCodes,
		Export:         a.exportReport,
	}, a.logger)

	a.logger.Info().Str("store", a.store.Path()).Msg("session started")
	err := menu.Run(ctx)
	a.logger.Info().Msg("session finished")
	return err
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

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	logger.Info().Int("port", port).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
