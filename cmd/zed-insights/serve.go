package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/zed-insights/internal/api"
	"github.com/yourusername/zed-insights/internal/health"
	"github.com/yourusername/zed-insights/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with scheduled refreshes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	appLog.WithFields(logrus.Fields{
		"environment":   cfg.App.Environment,
		"cache_backend": cfg.Cache.Backend,
		"schedule":      cfg.Refresh.Schedule,
		"version":       Version,
	}).Info("ZED insights engine starting")

	hub := api.NewEventHub(appLog)
	go hub.Run(ctx)
	go hub.Forward(ctx, orchestrator)

	var metricsPath string
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	server := api.NewServer(api.Config{
		Port:        cfg.Server.Port,
		Logger:      appLog,
		Engine:      orchestrator,
		Events:      hub,
		MetricsPath: metricsPath,
	})

	healthCfg := health.Config{
		ServiceName:   cfg.App.Name,
		Version:       Version,
		Commit:        GitCommit,
		Port:          strconv.Itoa(cfg.Server.HealthPort),
		Logger:        appLog,
		Dataset:       orchestrator,
		MaxDatasetAge: 3 * cfg.CacheTTL(),
	}
	if db != nil {
		healthCfg.DB = db
	}
	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		return err
	}

	sched := scheduler.NewScheduler(orchestrator, appLog)
	if err := sched.ScheduleRefresh(cfg.Refresh.Schedule, false); err != nil {
		return err
	}
	if cfg.Refresh.RunOnStart {
		go func() {
			_ = sched.RunNow(ctx, false)
		}()
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		appLog.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
