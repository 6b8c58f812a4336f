package memory

import (
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"context"
	"sort"
	"sync"
	"time"
)

// MemStorage — потокобезопасное хранилище в памяти. Используется в тестах
// и как запасной вариант без базы данных.
type MemStorage struct {
	mu          sync.RWMutex
	linksByID   map[string]*domain.Link
	linksByCode map[string]string // short code -> link id
	clicks      map[string][]*domain.Click
}

func New() *MemStorage {
	return &MemStorage{
		linksByID:   make(map[string]*domain.Link),
		linksByCode: make(map[string]string),
		clicks:      make(map[string][]*domain.Click),
	}
}

// --- Link Methods ---

func (s *MemStorage) ListLinks(_ context.Context) ([]*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := make([]*domain.Link, 0, len(s.linksByID))
	for _, link := range s.linksByID {
		links = append(links, copyLink(link))
	}
	// стабильный порядок: новые сверху
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return links, nil
}

func (s *MemStorage) GetLinkByCode(_ context.Context, code string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.linksByCode[code]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return copyLink(s.linksByID[id]), nil
}

func (s *MemStorage) GetLinkByID(_ context.Context, id string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.linksByID[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return copyLink(link), nil
}

func (s *MemStorage) InsertLink(_ context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.linksByCode[link.ShortCode]; exists {
		return repository.ErrCodeExists
	}
	stored := copyLink(link)
	s.linksByID[stored.ID] = stored
	s.linksByCode[stored.ShortCode] = stored.ID
	return nil
}

func (s *MemStorage) UpdateLink(_ context.Context, id string, patch repository.LinkPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.linksByID[id]
	if !ok {
		return false, nil
	}

	if patch.Title != nil {
		link.Title = patch.Title
	}
	if patch.Description != nil {
		link.Description = patch.Description
	}
	if patch.IsActive != nil {
		link.IsActive = *patch.IsActive
	}
	if patch.Password != nil {
		link.Password = patch.Password
	}
	if patch.ExpiresAt != nil {
		link.ExpiresAt = patch.ExpiresAt
	}
	link.UpdatedAt = time.Now()

	return true, nil
}

func (s *MemStorage) DeleteLink(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.linksByID[id]
	if !ok {
		return false, nil
	}
	delete(s.linksByCode, link.ShortCode)
	delete(s.linksByID, id)
	delete(s.clicks, id) // каскадное удаление кликов
	return true, nil
}

func (s *MemStorage) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.linksByCode[code]
	return ok, nil
}

// --- Click Methods ---

func (s *MemStorage) ListClicks(_ context.Context) ([]*domain.Click, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*domain.Click
	for _, clicks := range s.clicks {
		for _, c := range clicks {
			all = append(all, copyClick(c))
		}
	}
	return all, nil
}

func (s *MemStorage) ListClicksForLink(_ context.Context, linkID string) ([]*domain.Click, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clicks := make([]*domain.Click, 0, len(s.clicks[linkID]))
	for _, c := range s.clicks[linkID] {
		clicks = append(clicks, copyClick(c))
	}
	return clicks, nil
}

func (s *MemStorage) InsertClick(_ context.Context, click *domain.Click) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.linksByID[click.LinkID]
	if !ok {
		return repository.ErrLinkNotFound
	}

	stored := copyClick(click)
	s.clicks[click.LinkID] = append(s.clicks[click.LinkID], stored)

	// пересчет денормализованных счетчиков под тем же локом,
	// что и вставка: наблюдатель не увидит клик без счетчиков
	sessions := make(map[string]struct{})
	for _, c := range s.clicks[click.LinkID] {
		sessions[c.SessionID] = struct{}{}
	}
	link.TotalClicks = int64(len(s.clicks[click.LinkID]))
	link.UniqueClicks = int64(len(sessions))
	ts := stored.Timestamp
	link.LastClickAt = &ts

	return nil
}

func (s *MemStorage) Close() error {
	return nil
}

// возвращаем копии, чтобы вызывающие не могли мутировать канонические записи
func copyLink(link *domain.Link) *domain.Link {
	cp := *link
	return &cp
}

func copyClick(click *domain.Click) *domain.Click {
	cp := *click
	return &cp
}
