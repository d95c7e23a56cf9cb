package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"device-sync/feature/devicesync/matcher"
	"device-sync/feature/devicesync/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrRunInProgress is returned when a run is triggered while another run is
// still executing. Runs are never queued or coalesced.
var ErrRunInProgress = errors.New("a reconciliation run is already in progress")

// State is the engine's observable phase.
type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching_sources"
	StateMatching   State = "matching"
	StateClearing   State = "clearing_store"
	StatePersisting State = "persisting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// ProtectionFetcher drains the endpoint-protection inventory.
type ProtectionFetcher interface {
	FetchAll(ctx context.Context) ([]models.ProtectionDevice, models.Cost, error)
}

// MdmFetcher drains the device-management inventory.
type MdmFetcher interface {
	FetchAll(ctx context.Context) ([]models.ManagedDevice, models.Cost, error)
}

// Store is the persistence surface the engine drives.
type Store interface {
	ClearAll(ctx context.Context) (int64, models.Cost, error)
	BulkUpsert(ctx context.Context, docs []models.SyncDocument) models.BulkResult
	LoadMetadata(ctx context.Context) (*models.SyncMetadata, error)
	SaveMetadata(ctx context.Context, md *models.SyncMetadata) error
}

// Archiver stores the full run report after a run. Optional.
type Archiver interface {
	Archive(ctx context.Context, result *models.RunResult) error
}

// Engine runs the reconciliation pipeline: fetch both inventories
// concurrently, classify, clear the store, persist the new view, and record
// metadata. One run at a time.
type Engine struct {
	protection ProtectionFetcher
	mdm        MdmFetcher
	store      Store
	archive    Archiver
	logger     *zap.Logger
	now        func() time.Time

	runMu sync.Mutex
	state atomic.Value
}

// New creates an Engine. archive may be nil when report archiving is
// disabled.
func New(protection ProtectionFetcher, mdm MdmFetcher, store Store, archive Archiver, logger *zap.Logger) *Engine {
	e := &Engine{
		protection: protection,
		mdm:        mdm,
		store:      store,
		archive:    archive,
		logger:     logger.Named("engine"),
		now:        time.Now,
	}
	e.state.Store(StateIdle)
	return e
}

// State reports the engine's current phase.
func (e *Engine) State() State {
	return e.state.Load().(State)
}

func (e *Engine) setState(s State) {
	e.state.Store(s)
}

// Run executes one reconciliation run and returns its report. The returned
// error is non-nil only for fatal outcomes: a concurrent run, a source fetch
// failure, or cancellation before persistence. Partial persistence is not an
// error; the report carries the failure details.
//
// Run metadata is written exactly once per run, whatever the outcome.
func (e *Engine) Run(ctx context.Context) (*models.RunResult, error) {
	if !e.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.runMu.Unlock()

	rec := NewMetricsRecorder(e.now)
	result := &models.RunResult{
		RunID:     uuid.NewString(),
		StartedAt: e.now().UTC(),
	}

	e.logger.Info("Reconciliation run started", zap.String("run_id", result.RunID))

	runErr := e.execute(ctx, rec, result)

	result.FinishedAt = e.now().UTC()
	result.Performance = rec.Performance()
	result.ResourceUsage = rec.Usage()
	result.Percentages = Percentages(result.Statistics)

	switch {
	case runErr != nil:
		result.Status = models.StatusFailed
		result.Errors = append(result.Errors, runErr.Error())
		e.setState(StateFailed)
	case result.Statistics.ErrorCount > 0 || len(result.Errors) > 0:
		result.Status = models.StatusPartial
		e.setState(StateCompleted)
	default:
		result.Status = models.StatusSuccess
		e.setState(StateCompleted)
	}

	// Metadata and the archived report must survive a cancelled trigger.
	tail := context.WithoutCancel(ctx)
	e.writeMetadata(tail, result)
	e.archiveReport(tail, result)

	e.logger.Info("Reconciliation run finished",
		zap.String("run_id", result.RunID),
		zap.String("status", string(result.Status)),
		zap.Int("processed", result.Statistics.TotalProcessed),
		zap.Int("failed", result.Statistics.ErrorCount),
		zap.Int64("total_ms", result.Performance.TotalExecutionTimeMs),
	)

	return result, runErr
}

// execute walks the run's phases, mutating result as it goes. An error from
// any phase before persistence aborts the run with zero writes.
func (e *Engine) execute(ctx context.Context, rec *MetricsRecorder, result *models.RunResult) error {
	e.setState(StateFetching)

	var (
		protection []models.ProtectionDevice
		managed    []models.ManagedDevice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		started := rec.Phase()
		devices, cost, err := e.protection.FetchAll(gctx)
		rec.FetchProtection(started, cost)
		if err != nil {
			return fmt.Errorf("protection inventory: %w", err)
		}
		protection = devices
		return nil
	})
	g.Go(func() error {
		started := rec.Phase()
		devices, cost, err := e.mdm.FetchAll(gctx)
		rec.FetchMdm(started, cost)
		if err != nil {
			return fmt.Errorf("mdm inventory: %w", err)
		}
		managed = devices
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	e.setState(StateMatching)

	started := rec.Phase()
	outcome := matcher.Classify(protection, managed, result.StartedAt)
	rec.Matching(started)

	result.Statistics = models.Statistics{
		TotalProcessed: len(outcome.Documents),
		Matched:        outcome.Matched,
		OnlyProtection: outcome.OnlyProtection,
		OnlyMdm:        outcome.OnlyMdm,
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	e.setState(StateClearing)

	started = rec.Phase()
	deleted, clearCost, err := e.store.ClearAll(ctx)
	rec.Clear(started, clearCost)
	if err != nil {
		// The upsert overwrites by key, so stale survivors from a partial
		// clear are tolerable. Degrade to partial instead of aborting.
		e.logger.Warn("Clearing the store failed partially", zap.Error(err))
		result.Errors = append(result.Errors, fmt.Sprintf("clear incomplete: %v", err))
	}
	e.logger.Debug("Store cleared", zap.Int64("deleted", deleted))

	if err := ctx.Err(); err != nil {
		return err
	}
	e.setState(StatePersisting)

	started = rec.Phase()
	bulk := e.store.BulkUpsert(ctx, outcome.Documents)
	rec.Upsert(started, bulk.Cost)

	result.Statistics.ErrorCount = bulk.Failure
	result.Errors = append(result.Errors, bulk.Errors...)

	return nil
}

// writeMetadata persists the singleton run record, chaining a snapshot of the
// previous run. Failures are logged, never propagated.
func (e *Engine) writeMetadata(ctx context.Context, result *models.RunResult) {
	previous, err := e.store.LoadMetadata(ctx)
	if err != nil {
		e.logger.Warn("Failed to load previous run metadata", zap.Error(err))
	}

	// A failed run never reaches persistence, so every classified document
	// counts as unwritten.
	written := result.Statistics.TotalProcessed - result.Statistics.ErrorCount
	failed := result.Statistics.ErrorCount
	if result.Status == models.StatusFailed {
		written = 0
		failed = result.Statistics.TotalProcessed
	}

	md := &models.SyncMetadata{
		RunID:          result.RunID,
		StartedAt:      result.StartedAt,
		FinishedAt:     result.FinishedAt,
		Status:         result.Status,
		Processed:      written,
		Failed:         failed,
		Matched:        result.Statistics.Matched,
		OnlyProtection: result.Statistics.OnlyProtection,
		OnlyMdm:        result.Statistics.OnlyMdm,
		TotalCost:      result.ResourceUsage.TotalCost,
		LastErrors:     result.Errors,
		PreviousRun:    previous.Snapshot(),
	}

	if err := e.store.SaveMetadata(ctx, md); err != nil {
		e.logger.Error("Failed to persist run metadata",
			zap.String("run_id", result.RunID),
			zap.Error(err),
		)
	}
}

// archiveReport stores the full run report. Best-effort.
func (e *Engine) archiveReport(ctx context.Context, result *models.RunResult) {
	if e.archive == nil {
		return
	}
	if err := e.archive.Archive(ctx, result); err != nil {
		e.logger.Warn("Failed to archive run report",
			zap.String("run_id", result.RunID),
			zap.Error(err),
		)
	}
}
