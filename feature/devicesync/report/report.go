// Package report archives run reports to object storage.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"device-sync/core/storage"
	"device-sync/feature/devicesync/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const reportPrefix = "reports/"

// Archive stores full run reports as JSON objects under reports/<runID>.json
// in a dedicated bucket. The engine treats archiving as best-effort.
type Archive struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewArchive creates an Archive over the given storage client.
func NewArchive(client storage.Client, bucket string, logger *zap.Logger) *Archive {
	return &Archive{
		client: client,
		bucket: bucket,
		logger: logger.Named("report"),
	}
}

// EnsureBucket creates the report bucket if it does not exist yet.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check report bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create report bucket: %w", err)
	}
	a.logger.Info("Report bucket created", zap.String("bucket", a.bucket))
	return nil
}

// Archive uploads the run report.
func (a *Archive) Archive(ctx context.Context, result *models.RunResult) error {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}

	name := objectName(result.RunID)
	_, err = a.client.PutObject(ctx, a.bucket, name,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to upload run report %s: %w", name, err)
	}

	a.logger.Debug("Run report archived",
		zap.String("run_id", result.RunID),
		zap.String("object", name),
	)
	return nil
}

// Load fetches a previously archived report by run ID.
func (a *Archive) Load(ctx context.Context, runID string) (*models.RunResult, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, objectName(runID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch run report %s: %w", runID, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read run report %s: %w", runID, err)
	}

	var result models.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode run report %s: %w", runID, err)
	}
	return &result, nil
}

// List returns the run IDs of all archived reports, newest-last by ID order.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	var ids []string
	for info := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: reportPrefix}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list run reports: %w", info.Err)
		}
		id := strings.TrimSuffix(strings.TrimPrefix(info.Key, reportPrefix), ".json")
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func objectName(runID string) string {
	return reportPrefix + runID + ".json"
}
