// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RedirectsTotal counts redirect requests by outcome:
	// redirect, not_found, gone, password_required, bot, error.
	RedirectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkpulse",
		Subsystem: "redirect",
		Name:      "requests_total",
		Help:      "Redirect requests by outcome.",
	}, []string{"outcome"})

	// ClicksTracked counts clicks successfully recorded by the tracker.
	ClicksTracked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "linkpulse",
		Subsystem: "tracking",
		Name:      "clicks_tracked_total",
		Help:      "Clicks recorded by the async tracker.",
	})

	// ClicksDropped counts clicks dropped because the tracker queue was full.
	ClicksDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "linkpulse",
		Subsystem: "tracking",
		Name:      "clicks_dropped_total",
		Help:      "Clicks dropped because the tracking queue was full.",
	})

	// TrackingFailures counts clicks lost to storage errors.
	TrackingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "linkpulse",
		Subsystem: "tracking",
		Name:      "failures_total",
		Help:      "Clicks lost to storage errors.",
	})

	// GeoLookupFailures counts failed geolocation lookups.
	GeoLookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "linkpulse",
		Subsystem: "geoip",
		Name:      "lookup_failures_total",
		Help:      "Failed IP geolocation lookups.",
	})
)

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
