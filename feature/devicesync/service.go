package devicesync

import (
	"context"

	"device-sync/feature/devicesync/engine"
	"device-sync/feature/devicesync/models"
	"device-sync/feature/devicesync/store"

	"go.uber.org/zap"
)

// Runner triggers reconciliation runs. Satisfied by *engine.Engine.
type Runner interface {
	Run(ctx context.Context) (*models.RunResult, error)
	State() engine.State
}

// MetadataReader exposes the last run's persisted record. Satisfied by
// *store.SyncStore.
type MetadataReader interface {
	LoadMetadata(ctx context.Context) (*models.SyncMetadata, error)
	CountByState(ctx context.Context) (map[models.SyncState]int64, error)
}

// Service exposes reconciliation operations to the HTTP handler and the
// scheduler.
type Service struct {
	runner Runner
	meta   MetadataReader
	logger *zap.Logger
}

// NewService creates a new device-sync service.
func NewService(runner Runner, meta MetadataReader, logger *zap.Logger) *Service {
	return &Service{
		runner: runner,
		meta:   meta,
		logger: logger,
	}
}

// TriggerRun executes one reconciliation run.
func (s *Service) TriggerRun(ctx context.Context) (*models.RunResult, error) {
	return s.runner.Run(ctx)
}

// Status describes the engine state and the last completed run.
type Status struct {
	// EngineState is the engine's current phase.
	EngineState engine.State `json:"engineState"`
	// LastRun is the persisted record of the most recent run, nil before
	// the first run.
	LastRun *models.SyncMetadata `json:"lastRun,omitempty"`
	// Documents counts the stored documents per sync state.
	Documents map[models.SyncState]int64 `json:"documents"`
}

// GetStatus reads the engine state and the last run's metadata.
func (s *Service) GetStatus(ctx context.Context) (*Status, error) {
	md, err := s.meta.LoadMetadata(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.meta.CountByState(ctx)
	if err != nil {
		return nil, err
	}

	return &Status{
		EngineState: s.runner.State(),
		LastRun:     md,
		Documents:   counts,
	}, nil
}

var _ Runner = (*engine.Engine)(nil)
var _ MetadataReader = (*store.SyncStore)(nil)
