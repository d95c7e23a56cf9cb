package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"device-sync/feature/devicesync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newInventoryServer serves a token endpoint plus a paginated device listing.
// failOnPage > 0 makes that page return a 500.
func newInventoryServer(t *testing.T, pages [][]models.ProtectionDevice, failOnPage int) (*httptest.Server, *int32) {
	t.Helper()

	var tokenCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/api/v1/devices", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		page := 1
		if cursor := r.URL.Query().Get("cursor"); cursor != "" {
			_, _ = fmt.Sscanf(cursor, "page-%d", &page)
		}

		if failOnPage > 0 && page == failOnPage {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		next := ""
		if page < len(pages) {
			next = fmt.Sprintf("page-%d", page+1)
		}

		_ = json.NewEncoder(w).Encode(protectionPage{
			Devices:     pages[page-1],
			NextCursor:  next,
			RequestCost: 2.5,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenCalls
}

func strPtr(s string) *string { return &s }

func TestProtectionSource_FetchAll(t *testing.T) {
	pages := [][]models.ProtectionDevice{
		{
			{ID: "p-1", Hostname: "PC1", DirectoryDeviceID: strPtr("d-1")},
			{ID: "p-2", Hostname: "PC2"},
		},
		{
			{ID: "p-3", Hostname: "PC3", SerialNumber: strPtr("S3")},
		},
	}

	t.Run("Drains all pages", func(t *testing.T) {
		srv, tokenCalls := newInventoryServer(t, pages, 0)

		src := NewProtectionSource(Config{Endpoint: srv.URL, PageSize: 2}, zap.NewNop())
		devices, cost, err := src.FetchAll(context.Background())

		require.NoError(t, err)
		assert.Len(t, devices, 3)
		assert.Equal(t, "p-3", devices[2].ID)
		assert.Equal(t, models.Cost(5.0), cost)
		// Token fetched once and reused across pages
		assert.Equal(t, int32(1), atomic.LoadInt32(tokenCalls))
	})

	t.Run("Page failure fails whole fetch", func(t *testing.T) {
		srv, _ := newInventoryServer(t, pages, 2)

		src := NewProtectionSource(Config{Endpoint: srv.URL, PageSize: 2}, zap.NewNop())
		devices, cost, err := src.FetchAll(context.Background())

		require.Error(t, err)
		assert.Nil(t, devices)
		assert.Zero(t, cost)

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "protection", fe.Source)
	})

	t.Run("Ping succeeds against healthy server", func(t *testing.T) {
		srv, _ := newInventoryServer(t, pages, 0)

		src := NewProtectionSource(Config{Endpoint: srv.URL}, zap.NewNop())
		assert.NoError(t, src.Ping(context.Background()))
	})
}

func TestMdmSource_FetchAll(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "test-token", "expires_in": 3600})
	})
	mux.HandleFunc("/api/v1/managedDevices", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("skipToken") == "" {
			_ = json.NewEncoder(w).Encode(mdmPage{
				Value:        []models.ManagedDevice{{ID: "m-1", DeviceName: "PC1"}},
				NextToken:    "next",
				RequestUnits: 1,
			})
			return
		}
		_ = json.NewEncoder(w).Encode(mdmPage{
			Value:        []models.ManagedDevice{{ID: "m-2", DeviceName: "PC2"}},
			RequestUnits: 1,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	src := NewMdmSource(Config{Endpoint: srv.URL, PageSize: 1}, zap.NewNop())
	devices, cost, err := src.FetchAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, devices, 2)
	assert.Equal(t, models.Cost(2), cost)
}

func TestAuthorizedGet_RetriesOnceOn401(t *testing.T) {
	var deviceCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "test-token", "expires_in": 3600})
	})
	mux.HandleFunc("/api/v1/devices", func(w http.ResponseWriter, r *http.Request) {
		// First call rejects the token, the retry with a fresh one succeeds.
		if atomic.AddInt32(&deviceCalls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(protectionPage{
			Devices: []models.ProtectionDevice{{ID: "p-1", Hostname: "PC1"}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	src := NewProtectionSource(Config{Endpoint: srv.URL}, zap.NewNop())
	devices, _, err := src.FetchAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, devices, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&deviceCalls))
}
