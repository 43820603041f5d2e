package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/odds-edge/internal/api"
	"github.com/yourusername/odds-edge/internal/cache"
	"github.com/yourusername/odds-edge/internal/database"
	"github.com/yourusername/odds-edge/internal/health"
	"github.com/yourusername/odds-edge/internal/metrics"
	"github.com/yourusername/odds-edge/internal/repository"
	"github.com/yourusername/odds-edge/internal/scheduler"
)

var skipWarmup bool

func init() {
	serveCmd.Flags().BoolVar(&skipWarmup, "skip-warmup", false, "Do not run the pipeline for every sport at startup")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and refresh odds on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := loadConfig(ctx); err != nil {
			return err
		}
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	logger.WithFields(logrus.Fields{
		"version":     Version,
		"environment": cfg.App.Environment,
		"sports":      cfg.OddsAPI.Sports,
	}).Info("odds-edge starting")

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	db, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open line history database: %w", err)
	}
	var (
		quoteRepo repository.QuoteRepository
		history   api.HistoryReader
	)
	if db != nil {
		defer db.Close()
		repos, err := repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
		quoteRepo, history = repos.Quote, repos.Quote
		logger.Info("Line history database connected")
	}

	svc, store, err := newOddsService(ctx, quoteRepo)
	if err != nil {
		return err
	}
	if rs, ok := store.(*cache.RedisStore); ok {
		defer rs.Close()
	}

	hcfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Health.Port,
		Logger:      logger,
	}
	if cfg.Metrics.Enabled {
		hcfg.MetricsHandler = metrics.Handler()
		hcfg.MetricsPath = cfg.Metrics.Path
	}
	healthServer := health.NewServer(hcfg)
	if db != nil {
		healthServer.AddCheck("database", db)
	}
	if rs, ok := store.(*cache.RedisStore); ok {
		healthServer.AddCheck("redis", rs)
	}

	sched := scheduler.NewScheduler(svc, logger)
	for _, sport := range cfg.OddsAPI.Sports {
		if err := sched.ScheduleRefresh(cfg.Schedule.RefreshCron, sport); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", sport, err)
		}
	}

	if !skipWarmup {
		for _, sport := range cfg.OddsAPI.Sports {
			if _, err := svc.RunSport(ctx, sport); err != nil {
				logger.WithError(err).WithField("sport_key", sport).Warn("Warmup run failed")
			}
		}
	}

	apiServer := api.NewServer(svc, history, api.Options{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
		DefaultSport:   cfg.OddsAPI.Sports[0],
	}, logger)

	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	healthServer.SetReady(true)
	logger.WithFields(logrus.Fields{
		"api_port":    cfg.API.Port,
		"health_port": cfg.Health.Port,
		"next_run":    sched.NextRun(),
	}).Info("odds-edge running")

	err = apiServer.Start(ctx)

	healthServer.SetReady(false)
	logger.Info("odds-edge stopped")
	return err
}
