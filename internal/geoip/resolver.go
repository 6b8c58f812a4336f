// Package geoip resolves IP addresses to best-effort locations via an
// external geolocation API. Failures are expected (network, rate limits,
// non-routable addresses) and must never abort click tracking: callers
// log the error and proceed with an empty location.
package geoip

import (
	"LinkPulse-Backend/internal/config"
	"LinkPulse-Backend/internal/domain"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Resolver resolves an IP address to a location. Implementations never
// panic and bound their own latency; on error the returned location is
// zero-valued and safe to store as is.
type Resolver interface {
	ResolveByIP(ctx context.Context, ip string) (domain.Location, error)
}

// Client is a Resolver backed by the ip-api.com JSON endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
}

// NewClient creates a geolocation client. The configured timeout caps
// every lookup regardless of the caller's context.
func NewClient(cfg *config.Geolocation, log *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		log:        log,
	}
}

// apiResponse mirrors the ip-api.com JSON payload.
type apiResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
}

const queryFields = "status,message,country,countryCode,regionName,city,lat,lon,timezone,isp"

// ResolveByIP looks the address up against the external API.
func (c *Client) ResolveByIP(ctx context.Context, ip string) (domain.Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return domain.Location{}, fmt.Errorf("unparseable ip address: %q", ip)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return domain.Location{}, fmt.Errorf("non-routable ip address: %s", ip)
	}

	url := fmt.Sprintf("%s/json/%s?fields=%s", c.baseURL, ip, queryFields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Location{}, fmt.Errorf("failed to build geolocation request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Location{}, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Location{}, fmt.Errorf("geolocation service returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Location{}, fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	if payload.Status != "success" {
		return domain.Location{}, fmt.Errorf("geolocation lookup failed: %s", payload.Message)
	}

	loc := domain.Location{Source: domain.LocationSourceIP}
	if payload.Country != "" {
		loc.Country = &payload.Country
	}
	if payload.CountryCode != "" {
		loc.CountryCode = &payload.CountryCode
	}
	if payload.RegionName != "" {
		loc.Region = &payload.RegionName
	}
	if payload.City != "" {
		loc.City = &payload.City
	}
	if payload.Lat != 0 || payload.Lon != 0 {
		loc.Latitude = &payload.Lat
		loc.Longitude = &payload.Lon
	}
	if payload.Timezone != "" {
		loc.Timezone = &payload.Timezone
	}
	if payload.ISP != "" {
		loc.ISP = &payload.ISP
	}

	c.log.Debug("resolved ip location",
		zap.String("ip", ip),
		zap.String("country", payload.Country),
		zap.String("city", payload.City))

	return loc, nil
}

// Disabled is a Resolver used when geolocation is turned off in config.
type Disabled struct{}

func (Disabled) ResolveByIP(_ context.Context, _ string) (domain.Location, error) {
	return domain.Location{}, fmt.Errorf("geolocation is disabled")
}
