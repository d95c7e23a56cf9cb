package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"device-sync/core/config"
	"device-sync/core/database"
	"device-sync/core/logger"
	"device-sync/core/storage"
	"device-sync/feature/devicesync"
	"device-sync/feature/devicesync/models"
	"device-sync/feature/devicesync/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncTimeoutMinutes int

// syncCmd is the parent command for sync operations.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run or inspect device inventory reconciliation",
}

// syncRunCmd executes one reconciliation run from the CLI.
var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reconciliation and print the report",
	Long: `Fetches both device inventories, reconciles them, persists the unified
view, and prints the full run report as JSON.

The command exits non-zero only when the run fails outright (a source could
not be fetched). A partial run prints its report and exits zero; the failures
are embedded in the report.`,
	RunE: runSync,
}

// syncStatusCmd prints the last run's persisted record.
var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the last run's metadata and document counts",
	RunE:  runSyncStatus,
}

// syncReportCmd prints one archived run report.
var syncReportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Print an archived run report",
	Long: `Fetches a run report from the archive bucket by run ID and prints it
as JSON. Requires storage to be enabled. Use "sync reports" to list the
available run IDs.`,
	Args: cobra.ExactArgs(1),
	RunE: runSyncReport,
}

// syncReportsCmd lists the archived run report IDs.
var syncReportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List the run IDs of all archived reports",
	RunE:  runSyncReports,
}

func init() {
	syncRunCmd.Flags().IntVar(&syncTimeoutMinutes, "timeout", 30, "Run timeout in minutes")

	syncCmd.AddCommand(syncRunCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncReportCmd)
	syncCmd.AddCommand(syncReportsCmd)
	RootCmd.AddCommand(syncCmd)
}

// buildFeature wires the sync feature for one-shot CLI use: no scheduler,
// console logging.
func buildFeature() (*devicesync.Feature, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: "console"})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var store storage.Client
	if cfg.Storage.Enabled {
		store, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	syncCfg := cfg.Sync
	syncCfg.ScheduleEnabled = false

	feature := devicesync.NewFeature(syncCfg, devicesync.Deps{
		DB:         db,
		Storage:    store,
		Bucket:     cfg.Storage.Bucket,
		Protection: cfg.Sources.Protection,
		Mdm:        cfg.Sources.Mdm,
		Logger:     logg,
	})

	if err := feature.Migrate(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate sync tables: %w", err)
	}

	return feature, logg, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	feature, logg, err := buildFeature()
	if err != nil {
		return err
	}
	defer logg.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(syncTimeoutMinutes)*time.Minute)
	defer cancel()

	result, runErr := feature.Service().TriggerRun(ctx)
	if result != nil {
		printJSON(result)
	}
	if runErr != nil {
		return fmt.Errorf("reconciliation failed: %w", runErr)
	}

	if result.Status == models.StatusPartial {
		logg.Warn("Run completed with failures",
			zap.Int("failed", result.Statistics.ErrorCount),
		)
	}
	return nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	feature, logg, err := buildFeature()
	if err != nil {
		return err
	}
	defer logg.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	status, err := feature.Service().GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sync status: %w", err)
	}

	printJSON(status)
	return nil
}

// buildArchive wires the report archive for CLI use. Fails when storage is
// disabled, since there is nothing to read from.
func buildArchive() (*report.Archive, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if !cfg.Storage.Enabled {
		return nil, nil, fmt.Errorf("report archiving is disabled (set STORAGE_ENABLED=true)")
	}

	logg, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: "console"})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return report.NewArchive(client, cfg.Storage.Bucket, logg), logg, nil
}

func runSyncReport(cmd *cobra.Command, args []string) error {
	archive, logg, err := buildArchive()
	if err != nil {
		return err
	}
	defer logg.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := archive.Load(ctx, args[0])
	if err != nil {
		return err
	}

	printJSON(result)
	return nil
}

func runSyncReports(cmd *cobra.Command, args []string) error {
	archive, logg, err := buildArchive()
	if err != nil {
		return err
	}
	defer logg.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ids, err := archive.List(ctx)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		fmt.Println("no archived reports")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
