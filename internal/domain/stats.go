package domain

import "time"

// LinkStats — производная статистика по одной ссылке. Не хранится,
// пересчитывается агрегатором по полной истории кликов.
type LinkStats struct {
	ClicksByDate        map[string]int64 `json:"clicks_by_date"` // ключ: YYYY-MM-DD
	ClicksByCountry     map[string]int64 `json:"clicks_by_country"`
	ClicksByDevice      map[string]int64 `json:"clicks_by_device"`
	ClicksByBrowser     map[string]int64 `json:"clicks_by_browser"`
	ClicksByReferer     map[string]int64 `json:"clicks_by_referer"`
	TopLocations        []LocationCount  `json:"top_locations"`
	AverageClicksPerDay float64          `json:"average_clicks_per_day"`
	RecentClicks        []*Click         `json:"recent_clicks"`
}

// LocationCount — количество кликов из страны с долей от общего числа
type LocationCount struct {
	Country    string  `json:"country"`
	Clicks     int64   `json:"clicks"`
	Percentage float64 `json:"percentage"`
}

// AnalyticsOverview — производная сводка по всему сервису
type AnalyticsOverview struct {
	TotalLinks      int64         `json:"total_links"`
	TotalClicks     int64         `json:"total_clicks"`
	UniqueClicks    int64         `json:"unique_clicks"`
	ClicksToday     int64         `json:"clicks_today"`
	ClicksThisWeek  int64         `json:"clicks_this_week"`
	ClicksThisMonth int64         `json:"clicks_this_month"`
	TopLinks        []*Link       `json:"top_links"`
	RecentClicks    []RecentClick `json:"recent_clicks"`
}

// RecentClick — недавний клик в сводке с уже отформатированной локацией
type RecentClick struct {
	ShortCode  string    `json:"short_code"`
	Timestamp  time.Time `json:"timestamp"`
	Location   string    `json:"location"`
	DeviceType string    `json:"device_type"`
	Browser    string    `json:"browser"`
	Referer    string    `json:"referer,omitempty"`
}
