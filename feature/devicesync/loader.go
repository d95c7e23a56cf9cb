package devicesync

import (
	"context"

	"device-sync/core/storage"
	"device-sync/feature/devicesync/engine"
	"device-sync/feature/devicesync/report"
	"device-sync/feature/devicesync/source"
	"device-sync/feature/devicesync/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	cfg       Config
	service   *Service
	handler   *Handler
	scheduler *Scheduler
	store     *store.SyncStore
	logger    *zap.Logger
}

// Deps carries everything the device-sync feature needs from the outside.
type Deps struct {
	DB         *gorm.DB
	Storage    storage.Client // nil when report archiving is disabled
	Bucket     string
	Protection source.Config
	Mdm        source.Config
	Logger     *zap.Logger
}

// NewFeature wires the sources, store, engine, and scheduler together.
func NewFeature(cfg Config, deps Deps) *Feature {
	logger := deps.Logger

	syncStore := store.New(deps.DB, logger, cfg.StoreConfig())
	protection := source.NewProtectionSource(deps.Protection, logger)
	mdm := source.NewMdmSource(deps.Mdm, logger)

	var archive engine.Archiver
	if deps.Storage != nil {
		archive = report.NewArchive(deps.Storage, deps.Bucket, logger)
	}

	eng := engine.New(protection, mdm, syncStore, archive, logger)
	svc := NewService(eng, syncStore, logger)

	var scheduler *Scheduler
	if cfg.ScheduleEnabled {
		scheduler = NewScheduler(svc, cfg.ScheduleInterval(), logger)
	}

	return &Feature{
		cfg:       cfg,
		service:   svc,
		handler:   NewHandler(svc),
		scheduler: scheduler,
		store:     syncStore,
		logger:    logger,
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "devicesync"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.cfg.Enabled
}

// Migrate creates or updates the sync tables.
func (f *Feature) Migrate(ctx context.Context) error {
	return f.store.AutoMigrate(ctx)
}

// Load migrates the sync tables, registers the routes, and starts the
// scheduler when enabled.
func (f *Feature) Load(app fiber.Router) error {
	if err := f.Migrate(context.Background()); err != nil {
		return err
	}

	f.handler.RegisterRoutes(app)

	if f.scheduler != nil {
		f.scheduler.Start()
	}
	return nil
}

// Shutdown stops the scheduler. Safe to call when scheduling is disabled.
func (f *Feature) Shutdown() {
	if f.scheduler != nil {
		f.scheduler.Stop()
	}
}

// Service exposes the feature's service for CLI commands.
func (f *Feature) Service() *Service {
	return f.service
}
