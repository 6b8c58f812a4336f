package domain

import "time"

// Источники данных геолокации
const (
	LocationSourceIP      = "ip"
	LocationSourceBrowser = "browser"
	LocationSourceBoth    = "both"
)

// Click представляет один отслеженный переход по сокращенной ссылке.
// Записи кликов неизменяемы: они создаются один раз и удаляются только
// каскадно вместе со ссылкой.
type Click struct {
	ID        string     `gorm:"primaryKey;column:id;size:36" json:"id"`
	LinkID    string     `gorm:"column:link_id;size:36;not null;index" json:"link_id"`
	ShortCode string     `gorm:"column:short_code;size:52;not null;index" json:"short_code"`
	Timestamp time.Time  `gorm:"column:timestamp;not null;index" json:"timestamp"`
	IPAddress string     `gorm:"column:ip_address;size:45" json:"ip_address"`
	UserAgent string     `gorm:"column:user_agent;size:500" json:"user_agent"`
	Referer   *string    `gorm:"column:referer;size:500" json:"referer,omitempty"`
	SessionID string     `gorm:"column:session_id;size:36;not null;index" json:"session_id"`
	Location  Location   `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Device    DeviceInfo `gorm:"embedded;embeddedPrefix:device_" json:"device"`
}

// TableName возвращает название таблицы для GORM
func (Click) TableName() string {
	return "clicks"
}

// Location описывает геолокацию клика (best-effort, все поля опциональны)
type Location struct {
	Country     *string  `gorm:"column:country;size:100" json:"country,omitempty"`
	CountryCode *string  `gorm:"column:country_code;size:2" json:"country_code,omitempty"`
	Region      *string  `gorm:"column:region;size:100" json:"region,omitempty"`
	City        *string  `gorm:"column:city;size:100" json:"city,omitempty"`
	Latitude    *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude   *float64 `gorm:"column:longitude" json:"longitude,omitempty"`
	Timezone    *string  `gorm:"column:timezone;size:64" json:"timezone,omitempty"`
	ISP         *string  `gorm:"column:isp;size:255" json:"isp,omitempty"`
	Accuracy    *float64 `gorm:"column:accuracy" json:"accuracy,omitempty"` // метры, только от браузера
	Source      string   `gorm:"column:source;size:10" json:"source"`
}

// Типы устройств
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

// DeviceInfo описывает устройство, с которого был сделан клик
type DeviceInfo struct {
	Type           string `gorm:"column:type;size:10" json:"type"` // desktop, mobile, tablet, unknown
	Browser        string `gorm:"column:browser;size:50" json:"browser"`
	BrowserVersion string `gorm:"column:browser_version;size:20" json:"browser_version"`
	OS             string `gorm:"column:os;size:50" json:"os"`
	OSVersion      string `gorm:"column:os_version;size:20" json:"os_version"`
	ScreenWidth    *int   `gorm:"column:screen_width" json:"screen_width,omitempty"`
	ScreenHeight   *int   `gorm:"column:screen_height" json:"screen_height,omitempty"`
}
