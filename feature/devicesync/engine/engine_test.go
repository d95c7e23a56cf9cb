package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"device-sync/feature/devicesync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProtection struct {
	devices []models.ProtectionDevice
	cost    models.Cost
	err     error
	block   chan struct{}
	calls   int
}

func (f *fakeProtection) FetchAll(ctx context.Context) ([]models.ProtectionDevice, models.Cost, error) {
	f.calls++
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	return f.devices, f.cost, f.err
}

type fakeMdm struct {
	devices []models.ManagedDevice
	cost    models.Cost
	err     error
	calls   int
}

func (f *fakeMdm) FetchAll(ctx context.Context) ([]models.ManagedDevice, models.Cost, error) {
	f.calls++
	return f.devices, f.cost, f.err
}

type fakeStore struct {
	mu sync.Mutex

	clearCalls  int
	clearCost   models.Cost
	clearErr    error
	upsertCalls int
	upserted    []models.SyncDocument
	bulkResult  *models.BulkResult

	metadata   *models.SyncMetadata
	saved      []*models.SyncMetadata
	saveErr    error
	loadErr    error
	cancelNext context.CancelFunc
}

func (f *fakeStore) ClearAll(ctx context.Context) (int64, models.Cost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	if f.cancelNext != nil {
		f.cancelNext()
	}
	return 2, f.clearCost, f.clearErr
}

func (f *fakeStore) BulkUpsert(ctx context.Context, docs []models.SyncDocument) models.BulkResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	f.upserted = docs
	if f.bulkResult != nil {
		return *f.bulkResult
	}
	return models.BulkResult{Success: len(docs), Cost: models.Cost(len(docs)) * 5}
}

func (f *fakeStore) LoadMetadata(ctx context.Context) (*models.SyncMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metadata, f.loadErr
}

func (f *fakeStore) SaveMetadata(ctx context.Context, md *models.SyncMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, md)
	f.metadata = md
	return f.saveErr
}

type fakeArchive struct {
	archived []*models.RunResult
	err      error
}

func (f *fakeArchive) Archive(ctx context.Context, result *models.RunResult) error {
	f.archived = append(f.archived, result)
	return f.err
}

func strptr(s string) *string { return &s }

func testInventories() ([]models.ProtectionDevice, []models.ManagedDevice) {
	protection := []models.ProtectionDevice{
		{ID: "ep-1", DirectoryDeviceID: strptr("aad-1"), Hostname: "alpha"},
		{ID: "ep-2", Hostname: "beta", SerialNumber: strptr("SER-2")},
		{ID: "ep-3", Hostname: "gamma"},
	}
	managed := []models.ManagedDevice{
		{ID: "md-1", DirectoryDeviceID: strptr("aad-1"), DeviceName: "ALPHA"},
		{ID: "md-2", DeviceName: "beta-renamed", SerialNumber: strptr("SER-2")},
		{ID: "md-4", DeviceName: "delta"},
	}
	return protection, managed
}

func newTestEngine(protection *fakeProtection, mdm *fakeMdm, store *fakeStore, archive Archiver) *Engine {
	return New(protection, mdm, store, archive, zap.NewNop())
}

func TestEngine_Run_Success(t *testing.T) {
	protDevices, mdmDevices := testInventories()
	protection := &fakeProtection{devices: protDevices, cost: 7}
	mdm := &fakeMdm{devices: mdmDevices, cost: 3}
	store := &fakeStore{clearCost: 2}
	archive := &fakeArchive{}

	e := newTestEngine(protection, mdm, store, archive)

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, StateCompleted, e.State())
	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.Errors)

	// Two matched pairs, one leftover on each side.
	assert.Equal(t, 4, result.Statistics.TotalProcessed)
	assert.Equal(t, 2, result.Statistics.Matched)
	assert.Equal(t, 1, result.Statistics.OnlyProtection)
	assert.Equal(t, 1, result.Statistics.OnlyMdm)
	assert.Equal(t, 0, result.Statistics.ErrorCount)

	assert.InDelta(t, 50.0, result.Percentages.Matched, 0.01)
	assert.InDelta(t, 25.0, result.Percentages.OnlyProtection, 0.01)

	assert.Equal(t, models.Cost(7), result.ResourceUsage.Breakdown.FetchProtection)
	assert.Equal(t, models.Cost(3), result.ResourceUsage.Breakdown.FetchMdm)
	assert.Equal(t, models.Cost(2), result.ResourceUsage.Breakdown.Clear)
	assert.Equal(t, models.Cost(4*5), result.ResourceUsage.Breakdown.Upsert)
	assert.Equal(t, models.Cost(7+3+2+20), result.ResourceUsage.TotalCost)

	assert.Equal(t, 1, store.clearCalls)
	assert.Equal(t, 1, store.upsertCalls)
	assert.Len(t, store.upserted, 4)

	require.Len(t, store.saved, 1)
	md := store.saved[0]
	assert.Equal(t, result.RunID, md.RunID)
	assert.Equal(t, models.StatusSuccess, md.Status)
	assert.Equal(t, 4, md.Processed)
	assert.Equal(t, 0, md.Failed)
	assert.Nil(t, md.PreviousRun)

	require.Len(t, archive.archived, 1)
	assert.Equal(t, result.RunID, archive.archived[0].RunID)
}

func TestEngine_Run_FetchFailureIsFatal(t *testing.T) {
	protection := &fakeProtection{err: errors.New("token endpoint unreachable")}
	mdm := &fakeMdm{}
	store := &fakeStore{}

	e := newTestEngine(protection, mdm, store, nil)

	result, err := e.Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, result)

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Equal(t, StateFailed, e.State())
	assert.Contains(t, err.Error(), "protection inventory")

	// No store mutation on a fatal fetch.
	assert.Zero(t, store.clearCalls)
	assert.Zero(t, store.upsertCalls)

	// Metadata is still written exactly once.
	require.Len(t, store.saved, 1)
	assert.Equal(t, models.StatusFailed, store.saved[0].Status)
	assert.Zero(t, store.saved[0].Processed)
	assert.NotEmpty(t, store.saved[0].LastErrors)
}

func TestEngine_Run_PartialPersistence(t *testing.T) {
	protDevices, mdmDevices := testInventories()
	protection := &fakeProtection{devices: protDevices}
	mdm := &fakeMdm{devices: mdmDevices}
	store := &fakeStore{
		bulkResult: &models.BulkResult{
			Success: 3,
			Failure: 1,
			Cost:    15,
			Errors:  []string{"failed to write p:ep-3: deadlock"},
		},
	}

	e := newTestEngine(protection, mdm, store, nil)

	result, err := e.Run(context.Background())
	require.NoError(t, err, "partial persistence is not a run error")
	require.NotNil(t, result)

	assert.Equal(t, models.StatusPartial, result.Status)
	assert.Equal(t, StateCompleted, e.State())
	assert.Equal(t, 1, result.Statistics.ErrorCount)
	assert.Contains(t, result.Errors, "failed to write p:ep-3: deadlock")

	require.Len(t, store.saved, 1)
	assert.Equal(t, models.StatusPartial, store.saved[0].Status)
	assert.Equal(t, 3, store.saved[0].Processed)
	assert.Equal(t, 1, store.saved[0].Failed)
}

func TestEngine_Run_ClearFailureDegradesToPartial(t *testing.T) {
	protDevices, mdmDevices := testInventories()
	protection := &fakeProtection{devices: protDevices}
	mdm := &fakeMdm{devices: mdmDevices}
	store := &fakeStore{clearErr: errors.New("lock wait timeout")}

	e := newTestEngine(protection, mdm, store, nil)

	result, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPartial, result.Status)
	// The upsert still ran; clearing is best-effort.
	assert.Equal(t, 1, store.upsertCalls)
}

func TestEngine_Run_RejectsConcurrentRun(t *testing.T) {
	protDevices, mdmDevices := testInventories()
	block := make(chan struct{})
	protection := &fakeProtection{devices: protDevices, block: block}
	mdm := &fakeMdm{devices: mdmDevices}
	store := &fakeStore{}

	e := newTestEngine(protection, mdm, store, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.Run(context.Background())
	}()

	// Wait for the first run to hold the guard.
	require.Eventually(t, func() bool {
		return e.State() == StateFetching
	}, time.Second, time.Millisecond)

	_, err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(block)
	<-done

	// Only the first run wrote metadata.
	assert.Len(t, store.saved, 1)
}

func TestEngine_Run_CancelledBetweenPhases(t *testing.T) {
	protDevices, mdmDevices := testInventories()
	protection := &fakeProtection{devices: protDevices}
	mdm := &fakeMdm{devices: mdmDevices}
	store := &fakeStore{}

	ctx, cancel := context.WithCancel(context.Background())
	store.cancelNext = cancel

	e := newTestEngine(protection, mdm, store, nil)

	result, err := e.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.StatusFailed, result.Status)

	// Cancelled after clearing, before persisting.
	assert.Equal(t, 1, store.clearCalls)
	assert.Zero(t, store.upsertCalls)

	// Metadata survives the dead context and counts everything unwritten.
	require.Len(t, store.saved, 1)
	assert.Zero(t, store.saved[0].Processed)
	assert.Equal(t, result.Statistics.TotalProcessed, store.saved[0].Failed)
}

func TestEngine_Run_ChainsPreviousSnapshot(t *testing.T) {
	protDevices, mdmDevices := testInventories()
	protection := &fakeProtection{devices: protDevices}
	mdm := &fakeMdm{devices: mdmDevices}
	store := &fakeStore{
		metadata: &models.SyncMetadata{
			ID:        models.MetadataID,
			RunID:     "previous-run",
			Status:    models.StatusSuccess,
			Processed: 9,
		},
	}

	e := newTestEngine(protection, mdm, store, nil)

	result, err := e.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	md := store.saved[0]
	assert.Equal(t, result.RunID, md.RunID)
	require.NotNil(t, md.PreviousRun)
	assert.Equal(t, "previous-run", md.PreviousRun.RunID)
	assert.Equal(t, 9, md.PreviousRun.Processed)
}

func TestEngine_Run_ArchiveFailureIsBestEffort(t *testing.T) {
	protDevices, mdmDevices := testInventories()
	protection := &fakeProtection{devices: protDevices}
	mdm := &fakeMdm{devices: mdmDevices}
	store := &fakeStore{}
	archive := &fakeArchive{err: errors.New("bucket missing")}

	e := newTestEngine(protection, mdm, store, archive)

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Len(t, archive.archived, 1)
}

func TestPercentages(t *testing.T) {
	t.Run("Zero total yields zeroes", func(t *testing.T) {
		assert.Equal(t, models.Percentages{}, Percentages(models.Statistics{}))
	})

	t.Run("Shares sum to one hundred", func(t *testing.T) {
		p := Percentages(models.Statistics{TotalProcessed: 8, Matched: 4, OnlyProtection: 3, OnlyMdm: 1})
		assert.InDelta(t, 50.0, p.Matched, 0.01)
		assert.InDelta(t, 37.5, p.OnlyProtection, 0.01)
		assert.InDelta(t, 12.5, p.OnlyMdm, 0.01)
		assert.InDelta(t, 100.0, p.Matched+p.OnlyProtection+p.OnlyMdm, 0.01)
	})
}

func TestMetricsRecorder_Totals(t *testing.T) {
	base := time.Unix(1000, 0)
	current := base
	now := func() time.Time { return current }

	rec := NewMetricsRecorder(now)

	started := rec.Phase()
	current = current.Add(40 * time.Millisecond)
	rec.FetchProtection(started, 7)

	started = rec.Phase()
	current = current.Add(10 * time.Millisecond)
	rec.Matching(started)

	started = rec.Phase()
	current = current.Add(5 * time.Millisecond)
	rec.Clear(started, 2)

	started = rec.Phase()
	current = current.Add(25 * time.Millisecond)
	rec.Upsert(started, 20)

	perf := rec.Performance()
	assert.Equal(t, int64(40), perf.Phases.FetchProtectionMs)
	assert.Equal(t, int64(10), perf.Phases.MatchingMs)
	assert.Equal(t, int64(5), perf.Phases.ClearMs)
	assert.Equal(t, int64(25), perf.Phases.UpsertMs)
	assert.Equal(t, int64(80), perf.TotalExecutionTimeMs)

	usage := rec.Usage()
	assert.Equal(t, models.Cost(29), usage.TotalCost)
}
