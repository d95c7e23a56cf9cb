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

// mdmName is the source name reported in FetchError and metrics.
const mdmName = "mdm"

// mdmPage is one page of the MDM platform's managed device listing. The
// wire shape is deliberately different from the protection listing; the two
// platforms do not coordinate their APIs.
type mdmPage struct {
	Value        []models.ManagedDevice `json:"value"`
	NextToken    string                 `json:"nextToken"`
	RequestUnits models.Cost            `json:"requestUnits"`
}

// MdmSource fetches the MDM platform's managed device inventory.
type MdmSource struct {
	cfg        Config
	httpClient *http.Client
	tokens     TokenProvider
	logger     *zap.Logger
}

// NewMdmSource creates an MDM inventory client with a cached token provider
// and tuned HTTP transport.
func NewMdmSource(cfg Config, logger *zap.Logger) *MdmSource {
	httpClient := newHTTPClient(cfg.TimeoutSeconds)
	return &MdmSource{
		cfg:        cfg,
		httpClient: httpClient,
		tokens:     NewCachedTokenProvider(newClientCredentialsProvider(cfg, httpClient), time.Hour),
		logger:     logger.Named(mdmName),
	}
}

// Name returns the source name.
func (s *MdmSource) Name() string {
	return mdmName
}

// FetchAll drains the managed device listing to exhaustion. Any page failure
// fails the whole fetch.
func (s *MdmSource) FetchAll(ctx context.Context) ([]models.ManagedDevice, models.Cost, error) {
	pageSize := s.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	var (
		devices []models.ManagedDevice
		cost    models.Cost
		token   string
	)

	for page := 1; ; page++ {
		reqURL := fmt.Sprintf("%s/api/v1/managedDevices?top=%d",
			strings.TrimRight(s.cfg.Endpoint, "/"), pageSize)
		if token != "" {
			reqURL += "&skipToken=" + url.QueryEscape(token)
		}

		var resp mdmPage
		if err := authorizedGet(ctx, s.httpClient, s.tokens, reqURL, &resp); err != nil {
			return nil, 0, fetchErr(mdmName, fmt.Errorf("page %d: %w", page, err))
		}

		devices = append(devices, resp.Value...)
		cost += resp.RequestUnits

		s.logger.Debug("Fetched inventory page",
			zap.Int("page", page),
			zap.Int("page_devices", len(resp.Value)),
			zap.Int("total_devices", len(devices)),
		)

		if resp.NextToken == "" {
			break
		}
		token = resp.NextToken
	}

	s.logger.Info("Inventory fetch complete",
		zap.Int("devices", len(devices)),
		zap.Float64("cost", float64(cost)),
	)

	return devices, cost, nil
}

// Ping verifies credentials and reachability without draining the inventory.
func (s *MdmSource) Ping(ctx context.Context) error {
	reqURL := fmt.Sprintf("%s/api/v1/managedDevices?top=1", strings.TrimRight(s.cfg.Endpoint, "/"))

	var resp mdmPage
	if err := authorizedGet(ctx, s.httpClient, s.tokens, reqURL, &resp); err != nil {
		return fetchErr(mdmName, err)
	}
	return nil
}
