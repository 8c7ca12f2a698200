// Package main provides the zed-insights command line and service entry point.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/zed-insights/internal/config"
	"github.com/yourusername/zed-insights/internal/database"
	"github.com/yourusername/zed-insights/internal/datasource"
	"github.com/yourusername/zed-insights/internal/logger"
	"github.com/yourusername/zed-insights/internal/metrics"
	"github.com/yourusername/zed-insights/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile   string
	appLog       *logrus.Logger
	cfg          *config.Config
	db           *database.DB
	orchestrator *service.RefreshOrchestrator
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(serveCmd, refreshCmd, clearCacheCmd, horseCmd, raceCmd, setsCmd, summaryCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "zed-insights",
	Short: "ZED Champions race data aggregation engine",
	Long: `Builds horse profiles, odds-implied expected ranks and equipment-set
statistics from the historical ZED Champions race table.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("zed-insights %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
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

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()

	if cfg.Cache.Backend == config.CacheBackendPostgres {
		var err error
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		appLog.Info("Database connection established")
	}

	source, err := datasource.NewFactory(cfg, appLog).NewRecordSource(db)
	if err != nil {
		return err
	}

	orchestrator = service.NewRefreshOrchestrator(source, cfg.CacheTTL(), appLog)
	return nil
}
