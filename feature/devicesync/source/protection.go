package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"device-sync/feature/devicesync/models"

	"go.uber.org/zap"
)

// protectionName is the source name reported in FetchError and metrics.
const protectionName = "protection"

// protectionPage is one page of the protection platform's device listing.
type protectionPage struct {
	Devices     []models.ProtectionDevice `json:"devices"`
	NextCursor  string                    `json:"nextCursor"`
	RequestCost models.Cost               `json:"requestCost"`
}

// ProtectionSource fetches the endpoint-protection platform's device inventory.
type ProtectionSource struct {
	cfg        Config
	httpClient *http.Client
	tokens     TokenProvider
	logger     *zap.Logger
}

// NewProtectionSource creates a protection inventory client with a cached
// token provider and tuned HTTP transport.
func NewProtectionSource(cfg Config, logger *zap.Logger) *ProtectionSource {
	httpClient := newHTTPClient(cfg.TimeoutSeconds)
	return &ProtectionSource{
		cfg:        cfg,
		httpClient: httpClient,
		tokens:     NewCachedTokenProvider(newClientCredentialsProvider(cfg, httpClient), time.Hour),
		logger:     logger.Named(protectionName),
	}
}

// Name returns the source name.
func (s *ProtectionSource) Name() string {
	return protectionName
}

// FetchAll drains the device listing to exhaustion. Any page failure fails
// the whole fetch; the pagination is restarted from scratch on a re-run
// rather than resumed.
func (s *ProtectionSource) FetchAll(ctx context.Context) ([]models.ProtectionDevice, models.Cost, error) {
	pageSize := s.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	var (
		devices []models.ProtectionDevice
		cost    models.Cost
		cursor  string
	)

	for page := 1; ; page++ {
		reqURL := fmt.Sprintf("%s/api/v1/devices?limit=%d",
			strings.TrimRight(s.cfg.Endpoint, "/"), pageSize)
		if cursor != "" {
			reqURL += "&cursor=" + url.QueryEscape(cursor)
		}

		var resp protectionPage
		if err := authorizedGet(ctx, s.httpClient, s.tokens, reqURL, &resp); err != nil {
			return nil, 0, fetchErr(protectionName, fmt.Errorf("page %d: %w", page, err))
		}

		devices = append(devices, resp.Devices...)
		cost += resp.RequestCost

		s.logger.Debug("Fetched inventory page",
			zap.Int("page", page),
			zap.Int("page_devices", len(resp.Devices)),
			zap.Int("total_devices", len(devices)),
		)

		if resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	s.logger.Info("Inventory fetch complete",
		zap.Int("devices", len(devices)),
		zap.Float64("cost", float64(cost)),
	)

	return devices, cost, nil
}

// Ping verifies credentials and reachability without draining the inventory.
// The diagnostics feature uses it.
func (s *ProtectionSource) Ping(ctx context.Context) error {
	reqURL := fmt.Sprintf("%s/api/v1/devices?limit=1", strings.TrimRight(s.cfg.Endpoint, "/"))

	var resp protectionPage
	if err := authorizedGet(ctx, s.httpClient, s.tokens, reqURL, &resp); err != nil {
		return fetchErr(protectionName, err)
	}
	return nil
}
