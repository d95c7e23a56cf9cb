package diagnostics

import (
	"context"
	"fmt"

	"device-sync/core/database"
	"device-sync/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Pinger is a connectivity probe for an upstream inventory.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckResult is one probe's outcome.
type CheckResult struct {
	// Name identifies the probe.
	Name string `json:"name"`
	// Healthy is true when the probe passed.
	Healthy bool `json:"healthy"`
	// Detail carries the failure reason or a short success note.
	Detail string `json:"detail,omitempty"`
}

// Report aggregates all probe outcomes.
type Report struct {
	// Healthy is true only when every check passed.
	Healthy bool `json:"healthy"`
	// Checks lists the individual probe outcomes.
	Checks []CheckResult `json:"checks"`
}

// syncTables are the tables the reconciliation engine owns.
var syncTables = []string{"sync_documents", "sync_metadata"}

// Service runs connectivity and schema diagnostics.
type Service struct {
	db      *gorm.DB
	client  storage.Client // nil when storage is disabled
	bucket  string
	sources []Pinger
	logger  *zap.Logger
}

// NewService creates a new diagnostics service.
func NewService(db *gorm.DB, client storage.Client, bucket string, sources []Pinger, logger *zap.Logger) *Service {
	return &Service{
		db:      db,
		client:  client,
		bucket:  bucket,
		sources: sources,
		logger:  logger,
	}
}

// RunChecks probes the database, the report bucket, and both inventory
// sources. It always returns a full report; individual failures never abort
// the remaining checks.
func (s *Service) RunChecks(ctx context.Context) *Report {
	report := &Report{Healthy: true}

	add := func(r CheckResult) {
		if !r.Healthy {
			report.Healthy = false
			s.logger.Warn("Diagnostics check failed",
				zap.String("check", r.Name),
				zap.String("detail", r.Detail),
			)
		}
		report.Checks = append(report.Checks, r)
	}

	add(s.checkDatabase(ctx))
	add(s.checkStorage(ctx))
	for _, src := range s.sources {
		add(s.checkSource(ctx, src))
	}

	return report
}

// checkDatabase verifies connectivity and that both sync tables exist with
// readable schemas.
func (s *Service) checkDatabase(ctx context.Context) CheckResult {
	result := CheckResult{Name: "database"}

	sqlDB, err := s.db.DB()
	if err != nil {
		result.Detail = fmt.Sprintf("connection handle unavailable: %v", err)
		return result
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		result.Detail = fmt.Sprintf("ping failed: %v", err)
		return result
	}

	for _, table := range syncTables {
		if !database.HasTable(s.db, table) {
			result.Detail = fmt.Sprintf("table %s is missing", table)
			return result
		}
		columns, err := database.GetTableColumns(s.db, table)
		if err != nil {
			result.Detail = fmt.Sprintf("cannot inspect %s: %v", table, err)
			return result
		}
		if len(columns) == 0 {
			result.Detail = fmt.Sprintf("table %s has no columns", table)
			return result
		}
	}

	result.Healthy = true
	result.Detail = "connected, sync tables present"
	return result
}

// checkStorage verifies the report bucket is reachable.
func (s *Service) checkStorage(ctx context.Context) CheckResult {
	result := CheckResult{Name: "storage"}

	if s.client == nil {
		result.Healthy = true
		result.Detail = "disabled"
		return result
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		result.Detail = fmt.Sprintf("bucket check failed: %v", err)
		return result
	}
	if !exists {
		result.Detail = fmt.Sprintf("bucket %s does not exist", s.bucket)
		return result
	}

	result.Healthy = true
	result.Detail = fmt.Sprintf("bucket %s reachable", s.bucket)
	return result
}

func (s *Service) checkSource(ctx context.Context, src Pinger) CheckResult {
	result := CheckResult{Name: "source:" + src.Name()}

	if err := src.Ping(ctx); err != nil {
		result.Detail = err.Error()
		return result
	}

	result.Healthy = true
	return result
}
