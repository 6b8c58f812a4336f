package repository

import (
	"LinkPulse-Backend/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrLinkNotFound = errors.New("link not found")
	ErrCodeExists   = errors.New("short code already exists")
)

// LinkPatch перечисляет поля, которые разрешено менять при частичном
// обновлении ссылки. nil означает "поле не трогать".
type LinkPatch struct {
	Title       *string
	Description *string
	IsActive    *bool
	Password    *string
	ExpiresAt   *time.Time
}

// IsEmpty проверяет, задано ли хотя бы одно поле
func (p LinkPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.IsActive == nil &&
		p.Password == nil && p.ExpiresAt == nil
}

// Storage — контракт хранилища ссылок и кликов. Хранилище владеет
// каноническими коллекциями; все мутации идут через него. После
// InsertClick счетчики ссылки (total_clicks, unique_clicks,
// last_click_at) обновлены атомарно относительно вставки клика.
type Storage interface {
	// Link methods
	ListLinks(ctx context.Context) ([]*domain.Link, error)
	GetLinkByCode(ctx context.Context, code string) (*domain.Link, error)
	GetLinkByID(ctx context.Context, id string) (*domain.Link, error)
	InsertLink(ctx context.Context, link *domain.Link) error
	UpdateLink(ctx context.Context, id string, patch LinkPatch) (bool, error)
	DeleteLink(ctx context.Context, id string) (bool, error)
	CodeExists(ctx context.Context, code string) (bool, error)

	// Click methods
	ListClicks(ctx context.Context) ([]*domain.Click, error)
	ListClicksForLink(ctx context.Context, linkID string) ([]*domain.Click, error)
	InsertClick(ctx context.Context, click *domain.Click) error

	Close() error
}
