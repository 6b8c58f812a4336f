package analytics

import (
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"LinkPulse-Backend/pkg/referrer"
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	topLinksLimit     = 5
	topLocationsLimit = 10
	overviewRecent    = 10
	linkStatsRecent   = 50
	dateFormat        = "2006-01-02"
	directBucket      = "Direct"
	unknownCountry    = "Unknown"
)

// Aggregator recomputes summary statistics over the full store snapshot
// on every call. No caching, no incremental state: the result is a pure
// function of the collections at call time.
type Aggregator struct {
	storage repository.Storage
}

func NewAggregator(storage repository.Storage) *Aggregator {
	return &Aggregator{storage: storage}
}

// Overview builds the service-wide analytics summary.
func (a *Aggregator) Overview(ctx context.Context) (*domain.AnalyticsOverview, error) {
	links, err := a.storage.ListLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}
	clicks, err := a.storage.ListClicks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks: %w", err)
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.Add(-7 * 24 * time.Hour)
	monthStart := now.Add(-30 * 24 * time.Hour)

	overview := &domain.AnalyticsOverview{
		TotalLinks:   int64(len(links)),
		TotalClicks:  int64(len(clicks)),
		TopLinks:     []*domain.Link{},
		RecentClicks: []domain.RecentClick{},
	}

	sessions := make(map[string]struct{})
	for _, c := range clicks {
		sessions[c.SessionID] = struct{}{}
		if !c.Timestamp.Before(dayStart) {
			overview.ClicksToday++
		}
		if !c.Timestamp.Before(weekStart) {
			overview.ClicksThisWeek++
		}
		if !c.Timestamp.Before(monthStart) {
			overview.ClicksThisMonth++
		}
	}
	overview.UniqueClicks = int64(len(sessions))

	sorted := make([]*domain.Link, len(links))
	copy(sorted, links)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TotalClicks > sorted[j].TotalClicks
	})
	if len(sorted) > topLinksLimit {
		sorted = sorted[:topLinksLimit]
	}
	overview.TopLinks = sorted

	recent := sortClicksDesc(clicks)
	if len(recent) > overviewRecent {
		recent = recent[:overviewRecent]
	}
	for _, c := range recent {
		rc := domain.RecentClick{
			ShortCode:  c.ShortCode,
			Timestamp:  c.Timestamp,
			Location:   formatLocation(c.Location),
			DeviceType: c.Device.Type,
			Browser:    c.Device.Browser,
		}
		if c.Referer != nil {
			rc.Referer = *c.Referer
		}
		overview.RecentClicks = append(overview.RecentClicks, rc)
	}

	return overview, nil
}

// LinkStats builds the per-link rollup. Returns repository.ErrLinkNotFound
// for an unknown link.
func (a *Aggregator) LinkStats(ctx context.Context, linkID string) (*domain.LinkStats, error) {
	link, err := a.storage.GetLinkByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	clicks, err := a.storage.ListClicksForLink(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks: %w", err)
	}

	stats := &domain.LinkStats{
		ClicksByDate:    make(map[string]int64),
		ClicksByCountry: make(map[string]int64),
		ClicksByDevice:  make(map[string]int64),
		ClicksByBrowser: make(map[string]int64),
		ClicksByReferer: make(map[string]int64),
		TopLocations:    []domain.LocationCount{},
		RecentClicks:    []*domain.Click{},
	}

	for _, c := range clicks {
		stats.ClicksByDate[c.Timestamp.Format(dateFormat)]++
		stats.ClicksByCountry[countryOf(c.Location)]++
		stats.ClicksByDevice[c.Device.Type]++
		stats.ClicksByBrowser[c.Device.Browser]++
		stats.ClicksByReferer[refererBucket(c.Referer)]++
	}

	// Доли стран считаются от хранимого счетчика ссылки, а не от
	// локальной суммы: при гонке записи проценты могут не давать 100.
	type countryCount struct {
		country string
		clicks  int64
	}
	counts := make([]countryCount, 0, len(stats.ClicksByCountry))
	for country, n := range stats.ClicksByCountry {
		counts = append(counts, countryCount{country, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].clicks != counts[j].clicks {
			return counts[i].clicks > counts[j].clicks
		}
		return counts[i].country < counts[j].country
	})
	if len(counts) > topLocationsLimit {
		counts = counts[:topLocationsLimit]
	}
	for _, cc := range counts {
		lc := domain.LocationCount{Country: cc.country, Clicks: cc.clicks}
		if link.TotalClicks > 0 {
			lc.Percentage = float64(cc.clicks) / float64(link.TotalClicks) * 100
		}
		stats.TopLocations = append(stats.TopLocations, lc)
	}

	days := int64(math.Ceil(time.Since(link.CreatedAt).Hours() / 24))
	if days < 1 {
		days = 1
	}
	stats.AverageClicksPerDay = float64(link.TotalClicks) / float64(days)

	recent := sortClicksDesc(clicks)
	if len(recent) > linkStatsRecent {
		recent = recent[:linkStatsRecent]
	}
	stats.RecentClicks = recent

	return stats, nil
}

func sortClicksDesc(clicks []*domain.Click) []*domain.Click {
	sorted := make([]*domain.Click, len(clicks))
	copy(sorted, clicks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted
}

func countryOf(loc domain.Location) string {
	if loc.Country != nil && *loc.Country != "" {
		return *loc.Country
	}
	return unknownCountry
}

func refererBucket(ref *string) string {
	if ref == nil || *ref == "" {
		return directBucket
	}
	return referrer.Classify(*ref).Domain
}

// formatLocation renders "City, Country", bare country, or "Unknown".
func formatLocation(loc domain.Location) string {
	country := ""
	if loc.Country != nil {
		country = *loc.Country
	}
	city := ""
	if loc.City != nil {
		city = *loc.City
	}
	switch {
	case city != "" && country != "":
		return city + ", " + country
	case country != "":
		return country
	default:
		return unknownCountry
	}
}
