package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"device-sync/feature/devicesync/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Unit weights for cost accounting. Deletes touch only the key, upserts
// carry the full document.
const (
	deleteCostUnit = models.Cost(1)
	upsertCostUnit = models.Cost(5)
)

// Config holds the store's batching and retry policy.
type Config struct {
	// BatchSize is the number of documents per bulk write.
	BatchSize int
	// MaxRetryAttempts bounds the per-item retry loop for throttled writes.
	MaxRetryAttempts int
	// RetryBaseDelay is the initial backoff delay, doubled per attempt.
	RetryBaseDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.MaxRetryAttempts <= 0 {
		c.MaxRetryAttempts = 5
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 100 * time.Millisecond
	}
	return c
}

// SyncStore is the durable keyed store for the reconciled view.
type SyncStore struct {
	db     *gorm.DB
	logger *zap.Logger
	cfg    Config
	sleep  sleepFunc
}

// New creates a SyncStore over the given database connection.
func New(db *gorm.DB, logger *zap.Logger, cfg Config) *SyncStore {
	return &SyncStore{
		db:     db,
		logger: logger.Named("store"),
		cfg:    cfg.withDefaults(),
		sleep:  contextSleep,
	}
}

// AutoMigrate creates or updates the sync tables.
func (s *SyncStore) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&models.SyncDocument{}, &models.SyncMetadata{})
}

// ClearAll removes every document from the store: it lists the existing keys
// with a minimal projection, then deletes them in batches. Deletion is
// best-effort: a partial failure is returned but callers may proceed,
// because the subsequent upsert is idempotent by key and will overwrite
// whatever survived.
func (s *SyncStore) ClearAll(ctx context.Context) (int64, models.Cost, error) {
	var keys []string
	if err := s.db.WithContext(ctx).
		Model(&models.SyncDocument{}).
		Pluck("sync_key", &keys).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to list document keys: %w", err)
	}

	var (
		deleted int64
		cost    models.Cost
		failed  error
	)

	for start := 0; start < len(keys); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(keys) {
			end = len(keys)
		}

		result := s.db.WithContext(ctx).
			Where("sync_key IN ?", keys[start:end]).
			Delete(&models.SyncDocument{})
		if result.Error != nil {
			s.logger.Warn("Batch delete failed, continuing",
				zap.Int("batch_start", start),
				zap.Error(result.Error),
			)
			failed = result.Error
			continue
		}

		deleted += result.RowsAffected
		cost += models.Cost(result.RowsAffected) * deleteCostUnit
	}

	return deleted, cost, failed
}

// BulkUpsert writes documents in fixed-size batches. Batch failures are
// isolated: one bad batch never stops the rest, and the accumulated
// BulkResult reports exactly what landed.
func (s *SyncStore) BulkUpsert(ctx context.Context, docs []models.SyncDocument) models.BulkResult {
	var result models.BulkResult

	for start := 0; start < len(docs); start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			// Do not start another batch on a dead context; everything not
			// yet written counts as failed.
			remaining := len(docs) - start
			result.Failure += remaining
			result.Errors = append(result.Errors, fmt.Sprintf("cancelled with %d documents unwritten: %v", remaining, err))
			break
		}

		end := start + s.cfg.BatchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch := s.upsertBatch(ctx, docs[start:end])
		result.Merge(batch)
	}

	return result
}

// upsertBatch writes one batch, falling back to per-item writes when the
// bulk statement fails so individual failures can be isolated and throttled
// items retried.
func (s *SyncStore) upsertBatch(ctx context.Context, batch []models.SyncDocument) models.BulkResult {
	var result models.BulkResult

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&batch).Error
	if err == nil {
		result.Success = len(batch)
		result.Cost = models.Cost(len(batch)) * upsertCostUnit
		return result
	}

	if Throttled(err) {
		// The whole statement was rejected for capacity: every item counts
		// as throttled, and a fully-throttled batch is not retried
		// item-by-item.
		result.Failure = len(batch)
		result.Errors = append(result.Errors,
			fmt.Sprintf("batch of %d throttled in full, not retried: %v", len(batch), err))
		s.logger.Warn("Batch fully throttled", zap.Int("size", len(batch)), zap.Error(err))
		return result
	}

	s.logger.Warn("Bulk write failed, isolating items", zap.Int("size", len(batch)), zap.Error(err))
	return s.upsertItems(ctx, batch)
}

// upsertItems writes a failed batch item by item. Throttled items are
// retried with backoff while they remain a minority of the batch; once a
// majority has throttled, the remainder is abandoned rather than hammering
// a saturated store.
func (s *SyncStore) upsertItems(ctx context.Context, batch []models.SyncDocument) models.BulkResult {
	var result models.BulkResult

	majority := len(batch)/2 + 1
	throttledSeen := 0

	for i := range batch {
		if throttledSeen >= majority {
			remaining := len(batch) - i
			result.Failure += remaining
			result.Errors = append(result.Errors,
				fmt.Sprintf("majority of batch throttled, %d documents not retried", remaining))
			break
		}

		err := s.upsertOne(ctx, &batch[i])
		if err == nil {
			result.Success++
			result.Cost += upsertCostUnit
			continue
		}

		if Throttled(err) {
			throttledSeen++
			err = s.retryThrottled(ctx, &batch[i], err)
			if err == nil {
				result.Success++
				result.Cost += upsertCostUnit
				continue
			}
		}

		result.Failure++
		switch {
		case conflict(err):
			result.Errors = append(result.Errors, fmt.Sprintf("conflict on %s: %v", batch[i].SyncKey, err))
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("failed to write %s: %v", batch[i].SyncKey, err))
		}
	}

	return result
}

func (s *SyncStore) upsertOne(ctx context.Context, doc *models.SyncDocument) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(doc).Error
}

// retryThrottled retries a single throttled write with exponential backoff.
// The first attempt already happened and produced firstErr; the loop is
// iterative and checks cancellation between attempts.
func (s *SyncStore) retryThrottled(ctx context.Context, doc *models.SyncDocument, firstErr error) error {
	delay := s.cfg.RetryBaseDelay

	err := firstErr
	for attempt := 2; attempt <= s.cfg.MaxRetryAttempts; attempt++ {
		if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
		delay *= 2

		err = s.upsertOne(ctx, doc)
		if err == nil {
			return nil
		}
		if !Throttled(err) {
			return err
		}

		s.logger.Debug("Throttled write retry failed",
			zap.String("sync_key", doc.SyncKey),
			zap.Int("attempt", attempt),
		)
	}

	return err
}

// LoadMetadata reads the singleton metadata row. A missing row yields nil
// without an error (first run).
func (s *SyncStore) LoadMetadata(ctx context.Context) (*models.SyncMetadata, error) {
	var md models.SyncMetadata
	err := s.db.WithContext(ctx).First(&md, "id = ?", models.MetadataID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sync metadata: %w", err)
	}
	return &md, nil
}

// SaveMetadata upserts the singleton metadata row.
func (s *SyncStore) SaveMetadata(ctx context.Context, md *models.SyncMetadata) error {
	md.ID = models.MetadataID
	if len(md.LastErrors) > models.MaxLastErrors {
		md.LastErrors = md.LastErrors[:models.MaxLastErrors]
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(md).Error
}

// CountByState returns document counts per sync state.
func (s *SyncStore) CountByState(ctx context.Context) (map[models.SyncState]int64, error) {
	type row struct {
		SyncState models.SyncState
		N         int64
	}

	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.SyncDocument{}).
		Select("sync_state, count(*) as n").
		Group("sync_state").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	counts := make(map[models.SyncState]int64, len(rows))
	for _, r := range rows {
		counts[r.SyncState] = r.N
	}
	return counts, nil
}
