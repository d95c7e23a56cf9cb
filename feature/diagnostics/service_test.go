package diagnostics

import (
	"context"
	"errors"
	"testing"

	"device-sync/core/database"
	"device-sync/core/storage/mocks"
	"device-sync/feature/devicesync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakePinger struct {
	name string
	err  error
}

func (f *fakePinger) Name() string { return f.name }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func setupDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	if migrate {
		require.NoError(t, db.AutoMigrate(&models.SyncDocument{}, &models.SyncMetadata{}))
	}
	return db
}

func checkByName(report *Report, name string) *CheckResult {
	for i := range report.Checks {
		if report.Checks[i].Name == name {
			return &report.Checks[i]
		}
	}
	return nil
}

func TestRunChecks_AllHealthy(t *testing.T) {
	db := setupDB(t, true)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "sync-reports").Return(true, nil)

	sources := []Pinger{
		&fakePinger{name: "protection"},
		&fakePinger{name: "mdm"},
	}

	svc := NewService(db, client, "sync-reports", sources, zap.NewNop())
	report := svc.RunChecks(context.Background())

	assert.True(t, report.Healthy)
	assert.Len(t, report.Checks, 4)
	for _, c := range report.Checks {
		assert.True(t, c.Healthy, "check %s", c.Name)
	}
}

func TestRunChecks_MissingTables(t *testing.T) {
	db := setupDB(t, false)

	svc := NewService(db, nil, "", nil, zap.NewNop())
	report := svc.RunChecks(context.Background())

	assert.False(t, report.Healthy)
	dbCheck := checkByName(report, "database")
	require.NotNil(t, dbCheck)
	assert.False(t, dbCheck.Healthy)
	assert.Contains(t, dbCheck.Detail, "missing")
}

func TestRunChecks_StorageDisabled(t *testing.T) {
	db := setupDB(t, true)

	svc := NewService(db, nil, "", nil, zap.NewNop())
	report := svc.RunChecks(context.Background())

	storageCheck := checkByName(report, "storage")
	require.NotNil(t, storageCheck)
	assert.True(t, storageCheck.Healthy)
	assert.Equal(t, "disabled", storageCheck.Detail)
}

func TestRunChecks_StorageBucketMissing(t *testing.T) {
	db := setupDB(t, true)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "sync-reports").Return(false, nil)

	svc := NewService(db, client, "sync-reports", nil, zap.NewNop())
	report := svc.RunChecks(context.Background())

	assert.False(t, report.Healthy)
	storageCheck := checkByName(report, "storage")
	require.NotNil(t, storageCheck)
	assert.False(t, storageCheck.Healthy)
}

func TestRunChecks_SourceFailureDoesNotAbort(t *testing.T) {
	db := setupDB(t, true)

	sources := []Pinger{
		&fakePinger{name: "protection", err: errors.New("connection refused")},
		&fakePinger{name: "mdm"},
	}

	svc := NewService(db, nil, "", sources, zap.NewNop())
	report := svc.RunChecks(context.Background())

	assert.False(t, report.Healthy)
	assert.Len(t, report.Checks, 4)

	protection := checkByName(report, "source:protection")
	require.NotNil(t, protection)
	assert.False(t, protection.Healthy)
	assert.Contains(t, protection.Detail, "connection refused")

	mdm := checkByName(report, "source:mdm")
	require.NotNil(t, mdm)
	assert.True(t, mdm.Healthy)
}
