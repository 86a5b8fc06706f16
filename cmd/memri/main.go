// Command memri is the screen memory recorder daemon: it loads config,
// opens the store, starts one capture loop per configured monitor, and
// serves the live event/search/metrics HTTP surface until interrupted.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/memri-app/memri/internal/archive"
	"github.com/memri-app/memri/internal/backoff"
	"github.com/memri-app/memri/internal/capture"
	"github.com/memri-app/memri/internal/config"
	"github.com/memri-app/memri/internal/events"
	"github.com/memri-app/memri/internal/frame"
	"github.com/memri-app/memri/internal/httpapi"
	"github.com/memri-app/memri/internal/logger"
	"github.com/memri-app/memri/internal/metrics"
	"github.com/memri-app/memri/internal/ocr"
	"github.com/memri-app/memri/internal/platform"
	"github.com/memri-app/memri/internal/store"
	"github.com/memri-app/memri/internal/windowfilter"
)

func main() {
	var configPath, logLevel, logFile string

	root := &cobra.Command{
		Use:   "memri",
		Short: "continuous screen-memory capture daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, logLevel, logFile)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to config.yaml (default: $MEMRI_CONFIG or ~/.config/memri/config.yaml)")
	root.Flags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	root.Flags().StringVar(&logFile, "log-file", "", "override the configured log file")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath, logLevelOverride, logFileOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevelOverride != "" {
		cfg.LogLevel = logLevelOverride
	}
	if logFileOverride != "" {
		cfg.LogFile = logFileOverride
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log := logger.Log

	st, err := store.Open(cfg.SQLiteDSN())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	st.SetRetentionPolicy(store.RetentionPolicy{
		RetentionDays: cfg.RetentionDays,
		MaxCaptures:   cfg.MaxCaptures,
	})

	src := platform.NewScreenshotSource()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	numMonitors, err := src.NumMonitors(ctx)
	if err != nil || numMonitors == 0 {
		return fmt.Errorf("no monitors available: %w", err)
	}

	hub := events.NewHub()
	reg := prometheus.NewRegistry()
	mtr := metrics.New(reg)

	var archiveDispatcher *archive.Dispatcher
	if cfg.ArchiveDir != "" {
		backend, err := archive.Open(cfg.ArchiveDir, archive.S3Config{})
		if err != nil {
			log.Warn("archive backend disabled", "error", err)
		} else {
			archiveDispatcher = archive.NewDispatcher(backend, st, logger.Component("archive"))
			defer archiveDispatcher.Wait()
		}
	}

	filter := windowfilter.NewLive(windowfilter.New(cfg.WindowIgnore, cfg.WindowInclude))
	engine := ocr.NewStubEngine()

	g, gctx := errgroup.WithContext(ctx)

	for _, monitorID := range cfg.MonitorIDs {
		monitorID := monitorID
		monitorLog := logger.Component(fmt.Sprintf("monitor-%d", monitorID))
		dispatcher := capture.NewDispatcher(cfg.ImageDir, engine, cfg.Languages, monitorLog)
		dispatcher.Metrics = mtr
		loop := &capture.Loop{
			MonitorID:        monitorID,
			Source:           src,
			Detector:         frame.NewDetector(),
			Backoff:          backoff.New(cfg.IntervalDuration(), cfg.MaxIntervalDuration()),
			Filter:           filter,
			Dispatcher:       dispatcher,
			Sink:             st,
			Events:           hub,
			IncludeUnfocused: cfg.CaptureUnfocusedWindows,
			Metrics:          mtr,
			Log:              monitorLog,
		}
		if archiveDispatcher != nil {
			loop.Archiver = archiveDispatcher
		}
		g.Go(func() error {
			return loop.Run(gctx)
		})
	}

	if cf := cfg.ConfigFile(); cf != "" {
		err := config.WatchReload(cf, func(next *config.Config) {
			st.SetRetentionPolicy(store.RetentionPolicy{
				RetentionDays: next.RetentionDays,
				MaxCaptures:   next.MaxCaptures,
			})
			filter.Store(windowfilter.New(next.WindowIgnore, next.WindowInclude))
			log.Info("config reloaded", "file", cf)
		}, func(err error) {
			log.Warn("config reload failed", "file", cf, "error", err)
		})
		if err != nil {
			log.Warn("config hot-reload disabled", "file", cf, "error", err)
		}
	}

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.New(hub, st, logger.Component("httpapi")),
	}
	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return httpSrv.Close()
	})
	g.Go(func() error {
		log.Info("metrics server listening", "addr", cfg.MetricsAddr)
		return metrics.Serve(gctx, cfg.MetricsAddr, reg)
	})

	return g.Wait()
}
