package domain

import "time"

// Link представляет запись сокращенной ссылки.
//
// TotalClicks, UniqueClicks и LastClickAt денормализованы: хранилище
// пересчитывает их при каждой вставке клика, так что они всегда равны
// значениям, выводимым из таблицы кликов.
type Link struct {
	ID           string     `gorm:"primaryKey;column:id;size:36" json:"id"`
	ShortCode    string     `gorm:"column:short_code;size:52;not null;uniqueIndex" json:"short_code"`
	OriginalURL  string     `gorm:"column:original_url;type:text;not null" json:"original_url"`
	Title        *string    `gorm:"column:title;size:255" json:"title,omitempty"`
	Description  *string    `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ExpiresAt    *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	Password     *string    `gorm:"column:password;size:255" json:"-"`
	UserID       *string    `gorm:"column:user_id;size:36" json:"user_id,omitempty"`
	TotalClicks  int64      `gorm:"column:total_clicks;not null;default:0" json:"total_clicks"`
	UniqueClicks int64      `gorm:"column:unique_clicks;not null;default:0" json:"unique_clicks"`
	LastClickAt  *time.Time `gorm:"column:last_click_at" json:"last_click_at,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (Link) TableName() string {
	return "links"
}

// IsExpired проверяет, истек ли срок действия ссылки.
// Ссылка без ExpiresAt не истекает никогда.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// IsPasswordProtected проверяет, защищена ли ссылка паролем
func (l *Link) IsPasswordProtected() bool {
	return l.Password != nil && *l.Password != ""
}
