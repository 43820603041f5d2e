// Package main provides the odds-edge command line entry point.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/odds-edge/internal/cache"
	"github.com/yourusername/odds-edge/internal/config"
	"github.com/yourusername/odds-edge/internal/datasource"
	applogger "github.com/yourusername/odds-edge/internal/logger"
	"github.com/yourusername/odds-edge/internal/pipeline"
	"github.com/yourusername/odds-edge/internal/repository"
	"github.com/yourusername/odds-edge/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	useSample  bool
	cfg        *config.Config
	logger     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&useSample, "sample", false, "Read odds from the bundled sample file instead of the live feed")

	rootCmd.AddCommand(scanCmd, serveCmd, convertCmd, devigCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:           "odds-edge",
	Short:         "Find +EV bets and arbitrage across sportsbooks",
	Long:          `Fetches bookmaker odds, removes the margin, prices every outcome for expected value and risk, and sizes stakes with fractional Kelly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("odds-edge %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig reads the configuration, overlays AWS secrets when enabled and validates it
func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if useSample {
		cfg.OddsAPI.UseSample = true
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger = applogger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	return nil
}

// pipelineConfig merges the pricing section with the cache freshness window
func pipelineConfig() pipeline.Config {
	pc := pipeline.FromConfig(&cfg.Pipeline)
	pc.FreshnessWindow = cfg.Cache.FreshnessWindow
	return pc
}

// newOddsService wires the fetcher, snapshot cache and optional line history store
func newOddsService(ctx context.Context, repo repository.QuoteRepository) (*service.OddsService, cache.Store, error) {
	factory := datasource.NewFactory(&cfg.OddsAPI, logger)
	fetcher, err := factory.NewFetcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create odds fetcher: %w", err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	store, err := cache.New(storeCtx, &cfg.Cache, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create snapshot cache: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"source":        factory.SourceType(),
		"cache_backend": cfg.Cache.Backend,
		"line_history":  repo != nil,
	}).Debug("Odds service initialized")

	return service.NewOddsService(fetcher, store, repo, factory, pipelineConfig(), logger), store, nil
}
