package geoip

import (
	"LinkPulse-Backend/internal/config"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Geolocation{
		Enabled: true,
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	}
	return NewClient(cfg, zap.NewNop())
}

func TestClient_ResolveByIP(t *testing.T) {
	ctx := context.Background()

	t.Run("successful_lookup", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/json/203.0.113.10", r.URL.Path)
			assert.NotEmpty(t, r.URL.Query().Get("fields"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"status": "success",
				"country": "Germany",
				"countryCode": "DE",
				"regionName": "Berlin",
				"city": "Berlin",
				"lat": 52.52,
				"lon": 13.405,
				"timezone": "Europe/Berlin",
				"isp": "Example ISP"
			}`))
		}))
		defer server.Close()

		loc, err := newTestClient(server.URL).ResolveByIP(ctx, "203.0.113.10")
		require.NoError(t, err)

		require.NotNil(t, loc.Country)
		assert.Equal(t, "Germany", *loc.Country)
		assert.Equal(t, "DE", *loc.CountryCode)
		assert.Equal(t, "Berlin", *loc.City)
		assert.InDelta(t, 52.52, *loc.Latitude, 0.001)
		assert.Equal(t, "Europe/Berlin", *loc.Timezone)
		assert.Equal(t, "ip", loc.Source)
	})

	t.Run("api_reports_failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status": "fail", "message": "reserved range"}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).ResolveByIP(ctx, "203.0.113.10")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reserved range")
	})

	t.Run("non_200_status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).ResolveByIP(ctx, "203.0.113.10")
		assert.Error(t, err)
	})

	t.Run("rejects_invalid_addresses", func(t *testing.T) {
		client := newTestClient("http://geolocation.invalid")

		for _, ip := range []string{"", "not-an-ip", "127.0.0.1", "10.0.0.5", "192.168.1.1", "0.0.0.0", "::1"} {
			_, err := client.ResolveByIP(ctx, ip)
			assert.Error(t, err, "expected rejection for %q", ip)
		}
	})

	t.Run("respects_context_cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := newTestClient(server.URL).ResolveByIP(cancelCtx, "203.0.113.10")
		assert.Error(t, err)
	})
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.ResolveByIP(context.Background(), "203.0.113.10")
	assert.Error(t, err)
}
