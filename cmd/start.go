package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"device-sync/core/config"
	"device-sync/core/database"
	"device-sync/core/loader"
	"device-sync/core/logger"
	"device-sync/core/middleware/auth"
	"device-sync/core/middleware/rayid"
	"device-sync/core/storage"

	"device-sync/feature/devicesync"
	"device-sync/feature/devicesync/report"
	"device-sync/feature/devicesync/source"
	"device-sync/feature/diagnostics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "device-sync/docs/swagger"
)

// @title Device Sync API
// @version 1.0
// @description API for reconciling endpoint-protection and MDM device inventories.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the device sync server",
	Long:  `Starts the HTTP server, the background sync scheduler, and all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		logg.Info("Connected to database", zap.String("name", cfg.Database.Name))

		// 4. Initialize Storage (optional report archive)
		var store storage.Client
		if cfg.Storage.Enabled {
			store, err = storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}

			archive := report.NewArchive(store, cfg.Storage.Bucket, logg)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := archive.EnsureBucket(ctx); err != nil {
				logg.Warn("Report bucket unavailable, archiving may fail", zap.Error(err))
			}
			cancel()
		} else {
			logg.Info("Report archiving disabled")
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()

		syncFeature := devicesync.NewFeature(cfg.Sync, devicesync.Deps{
			DB:         db,
			Storage:    store,
			Bucket:     cfg.Storage.Bucket,
			Protection: cfg.Sources.Protection,
			Mdm:        cfg.Sources.Mdm,
			Logger:     logg,
		})
		mgr.Register(syncFeature)

		mgr.Register(diagnostics.NewFeature(db, store, cfg.Storage.Bucket,
			[]diagnostics.Pinger{
				source.NewProtectionSource(cfg.Sources.Protection, logg),
				source.NewMdmSource(cfg.Sources.Mdm, logg),
			}, logg))

		// Middleware Registration
		// 1. RayID (must be first so everything downstream is traceable)
		app.Use(rayid.New())

		// 2. Request logging via Zap + RayID
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Swagger Documentation (public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth (protect the API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 5. Rate limiting, mainly for the manual sync trigger
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.Server.RateLimitPerMinute,
			Expiration: time.Minute,
		}))

		// 6. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		syncFeature.Shutdown()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
