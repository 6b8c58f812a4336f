package analytics

import (
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"LinkPulse-Backend/internal/repository/memory"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func seedLink(t *testing.T, store *memory.MemStorage, id, code string) *domain.Link {
	t.Helper()
	now := time.Now()
	link := &domain.Link{
		ID:          id,
		ShortCode:   code,
		OriginalURL: "https://example.com",
		CreatedAt:   now,
		UpdatedAt:   now,
		IsActive:    true,
	}
	require.NoError(t, store.InsertLink(context.Background(), link))
	return link
}

func seedClick(t *testing.T, store *memory.MemStorage, linkID string, n int, country, deviceType, browser string, referer *string, ts time.Time) {
	t.Helper()
	click := &domain.Click{
		ID:        fmt.Sprintf("%s-click-%d", linkID, n),
		LinkID:    linkID,
		ShortCode: "xxxxxxxx",
		Timestamp: ts,
		IPAddress: "203.0.113.1",
		UserAgent: "test-agent",
		Referer:   referer,
		SessionID: fmt.Sprintf("%s-session-%d", linkID, n),
		Device:    domain.DeviceInfo{Type: deviceType, Browser: browser},
	}
	if country != "" {
		click.Location = domain.Location{Country: strPtr(country), Source: domain.LocationSourceIP}
	}
	require.NoError(t, store.InsertClick(context.Background(), click))
}

// staleCounterStore serves links whose stored counters lag behind the
// click rows, as can happen when writers race on the same link.
type staleCounterStore struct {
	*memory.MemStorage
}

func (s *staleCounterStore) GetLinkByID(ctx context.Context, id string) (*domain.Link, error) {
	link, err := s.MemStorage.GetLinkByID(ctx, id)
	if err != nil {
		return nil, err
	}
	link.TotalClicks = 0
	return link, nil
}

func TestAggregator_Overview(t *testing.T) {
	ctx := context.Background()

	t.Run("empty_store", func(t *testing.T) {
		agg := NewAggregator(memory.New())

		overview, err := agg.Overview(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(0), overview.TotalLinks)
		assert.Equal(t, int64(0), overview.TotalClicks)
		assert.Equal(t, int64(0), overview.UniqueClicks)
		assert.Equal(t, int64(0), overview.ClicksToday)
		assert.NotNil(t, overview.TopLinks)
		assert.Empty(t, overview.TopLinks)
		assert.NotNil(t, overview.RecentClicks)
		assert.Empty(t, overview.RecentClicks)
	})

	t.Run("time_windows", func(t *testing.T) {
		store := memory.New()
		seedLink(t, store, "link-1", "win12345")

		now := time.Now()
		seedClick(t, store, "link-1", 1, "Germany", "desktop", "Chrome", nil, now.Add(-time.Minute))
		seedClick(t, store, "link-1", 2, "Germany", "desktop", "Chrome", nil, now.Add(-3*24*time.Hour))
		seedClick(t, store, "link-1", 3, "Germany", "desktop", "Chrome", nil, now.Add(-20*24*time.Hour))
		seedClick(t, store, "link-1", 4, "Germany", "desktop", "Chrome", nil, now.Add(-40*24*time.Hour))

		agg := NewAggregator(store)
		overview, err := agg.Overview(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(1), overview.TotalLinks)
		assert.Equal(t, int64(4), overview.TotalClicks)
		assert.Equal(t, int64(4), overview.UniqueClicks)
		assert.Equal(t, int64(1), overview.ClicksToday)
		assert.Equal(t, int64(2), overview.ClicksThisWeek)
		assert.Equal(t, int64(3), overview.ClicksThisMonth)
	})

	t.Run("top_links_sorted_and_capped", func(t *testing.T) {
		store := memory.New()
		for i := 0; i < 7; i++ {
			id := fmt.Sprintf("link-%d", i)
			seedLink(t, store, id, fmt.Sprintf("top%05d", i))
			for n := 0; n <= i; n++ {
				seedClick(t, store, id, n, "", "desktop", "Chrome", nil, time.Now())
			}
		}

		agg := NewAggregator(store)
		overview, err := agg.Overview(ctx)
		require.NoError(t, err)

		require.Len(t, overview.TopLinks, 5)
		assert.Equal(t, "link-6", overview.TopLinks[0].ID)
		assert.Equal(t, int64(7), overview.TopLinks[0].TotalClicks)
		for i := 1; i < len(overview.TopLinks); i++ {
			assert.GreaterOrEqual(t, overview.TopLinks[i-1].TotalClicks, overview.TopLinks[i].TotalClicks)
		}
	})

	t.Run("recent_clicks_formatting", func(t *testing.T) {
		store := memory.New()
		seedLink(t, store, "link-1", "rec12345")

		click := &domain.Click{
			ID:        "click-1",
			LinkID:    "link-1",
			ShortCode: "rec12345",
			Timestamp: time.Now(),
			SessionID: "s1",
			Location:  domain.Location{Country: strPtr("Germany"), City: strPtr("Berlin")},
			Device:    domain.DeviceInfo{Type: "mobile", Browser: "Safari"},
			Referer:   strPtr("https://www.google.com/"),
		}
		require.NoError(t, store.InsertClick(ctx, click))

		agg := NewAggregator(store)
		overview, err := agg.Overview(ctx)
		require.NoError(t, err)

		require.Len(t, overview.RecentClicks, 1)
		rc := overview.RecentClicks[0]
		assert.Equal(t, "rec12345", rc.ShortCode)
		assert.Equal(t, "Berlin, Germany", rc.Location)
		assert.Equal(t, "mobile", rc.DeviceType)
		assert.Equal(t, "Safari", rc.Browser)
		assert.Equal(t, "https://www.google.com/", rc.Referer)
	})
}

func TestAggregator_LinkStats(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown_link", func(t *testing.T) {
		agg := NewAggregator(memory.New())

		_, err := agg.LinkStats(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrLinkNotFound)
	})

	t.Run("no_clicks", func(t *testing.T) {
		store := memory.New()
		seedLink(t, store, "link-1", "emp12345")

		agg := NewAggregator(store)
		stats, err := agg.LinkStats(ctx, "link-1")
		require.NoError(t, err)

		assert.Empty(t, stats.ClicksByDate)
		assert.NotNil(t, stats.TopLocations)
		assert.Empty(t, stats.TopLocations)
		assert.NotNil(t, stats.RecentClicks)
		assert.Empty(t, stats.RecentClicks)
		assert.Equal(t, float64(0), stats.AverageClicksPerDay)
	})

	t.Run("grouping", func(t *testing.T) {
		store := memory.New()
		seedLink(t, store, "link-1", "grp12345")

		now := time.Now()
		seedClick(t, store, "link-1", 1, "Germany", "desktop", "Chrome", strPtr("https://www.google.com/"), now)
		seedClick(t, store, "link-1", 2, "Germany", "mobile", "Safari", nil, now)
		seedClick(t, store, "link-1", 3, "France", "desktop", "Chrome", strPtr("https://www.google.com/"), now)
		seedClick(t, store, "link-1", 4, "", "desktop", "Chrome", nil, now)

		agg := NewAggregator(store)
		stats, err := agg.LinkStats(ctx, "link-1")
		require.NoError(t, err)

		assert.Equal(t, int64(4), stats.ClicksByDate[now.Format("2006-01-02")])
		assert.Equal(t, int64(2), stats.ClicksByCountry["Germany"])
		assert.Equal(t, int64(1), stats.ClicksByCountry["France"])
		assert.Equal(t, int64(1), stats.ClicksByCountry["Unknown"])
		assert.Equal(t, int64(3), stats.ClicksByDevice["desktop"])
		assert.Equal(t, int64(1), stats.ClicksByDevice["mobile"])
		assert.Equal(t, int64(3), stats.ClicksByBrowser["Chrome"])
		assert.Equal(t, int64(2), stats.ClicksByReferer["www.google.com"])
		assert.Equal(t, int64(2), stats.ClicksByReferer["Direct"])
	})

	t.Run("top_locations_percentages", func(t *testing.T) {
		store := memory.New()
		seedLink(t, store, "link-1", "pct12345")

		now := time.Now()
		seedClick(t, store, "link-1", 1, "Germany", "desktop", "Chrome", nil, now)
		seedClick(t, store, "link-1", 2, "Germany", "desktop", "Chrome", nil, now)
		seedClick(t, store, "link-1", 3, "Germany", "desktop", "Chrome", nil, now)
		seedClick(t, store, "link-1", 4, "France", "desktop", "Chrome", nil, now)

		agg := NewAggregator(store)
		stats, err := agg.LinkStats(ctx, "link-1")
		require.NoError(t, err)

		require.Len(t, stats.TopLocations, 2)
		assert.Equal(t, "Germany", stats.TopLocations[0].Country)
		assert.Equal(t, int64(3), stats.TopLocations[0].Clicks)
		assert.InDelta(t, 75.0, stats.TopLocations[0].Percentage, 0.001)
		assert.Equal(t, "France", stats.TopLocations[1].Country)
		assert.InDelta(t, 25.0, stats.TopLocations[1].Percentage, 0.001)
	})

	t.Run("stale_counter_yields_zero_percentages", func(t *testing.T) {
		store := memory.New()
		seedLink(t, store, "link-1", "stl12345")

		now := time.Now()
		seedClick(t, store, "link-1", 1, "Germany", "desktop", "Chrome", nil, now)
		seedClick(t, store, "link-1", 2, "Germany", "desktop", "Chrome", nil, now)

		// Percentages divide by the link's stored counter, not the local
		// country sums; with the counter stuck at zero they must stay 0
		// instead of dividing by zero.
		agg := NewAggregator(&staleCounterStore{MemStorage: store})
		stats, err := agg.LinkStats(ctx, "link-1")
		require.NoError(t, err)

		require.Len(t, stats.TopLocations, 1)
		assert.Equal(t, "Germany", stats.TopLocations[0].Country)
		assert.Equal(t, int64(2), stats.TopLocations[0].Clicks)
		assert.Equal(t, float64(0), stats.TopLocations[0].Percentage)
	})

	t.Run("ties_break_by_country_name", func(t *testing.T) {
		store := memory.New()
		seedLink(t, store, "link-1", "tie12345")

		now := time.Now()
		seedClick(t, store, "link-1", 1, "France", "desktop", "Chrome", nil, now)
		seedClick(t, store, "link-1", 2, "Brazil", "desktop", "Chrome", nil, now)

		agg := NewAggregator(store)
		stats, err := agg.LinkStats(ctx, "link-1")
		require.NoError(t, err)

		require.Len(t, stats.TopLocations, 2)
		assert.Equal(t, "Brazil", stats.TopLocations[0].Country)
		assert.Equal(t, "France", stats.TopLocations[1].Country)
	})

	t.Run("recent_clicks_newest_first", func(t *testing.T) {
		store := memory.New()
		seedLink(t, store, "link-1", "new12345")

		now := time.Now()
		seedClick(t, store, "link-1", 1, "", "desktop", "Chrome", nil, now.Add(-2*time.Hour))
		seedClick(t, store, "link-1", 2, "", "desktop", "Chrome", nil, now)
		seedClick(t, store, "link-1", 3, "", "desktop", "Chrome", nil, now.Add(-time.Hour))

		agg := NewAggregator(store)
		stats, err := agg.LinkStats(ctx, "link-1")
		require.NoError(t, err)

		require.Len(t, stats.RecentClicks, 3)
		assert.Equal(t, "link-1-click-2", stats.RecentClicks[0].ID)
		assert.Equal(t, "link-1-click-3", stats.RecentClicks[1].ID)
		assert.Equal(t, "link-1-click-1", stats.RecentClicks[2].ID)
	})

	t.Run("average_clicks_per_day", func(t *testing.T) {
		store := memory.New()
		seedLink(t, store, "link-1", "avg12345")

		now := time.Now()
		for n := 0; n < 6; n++ {
			seedClick(t, store, "link-1", n, "", "desktop", "Chrome", nil, now)
		}

		agg := NewAggregator(store)
		stats, err := agg.LinkStats(ctx, "link-1")
		require.NoError(t, err)

		// A freshly created link still divides by at least one day.
		assert.InDelta(t, 6.0, stats.AverageClicksPerDay, 0.001)
	})
}
