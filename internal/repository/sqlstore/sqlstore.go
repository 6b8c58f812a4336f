package sqlstore

import (
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SQLStorage реализует интерфейс Storage поверх GORM.
// Работает с SQLite (файловое хранилище по умолчанию) и PostgreSQL.
type SQLStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр SQL storage
func New(db *gorm.DB, log *zap.Logger) *SQLStorage {
	return &SQLStorage{
		db:  db,
		log: log,
	}
}

// --- Link Methods ---

// ListLinks возвращает все ссылки, новые сверху
func (s *SQLStorage) ListLinks(ctx context.Context) ([]*domain.Link, error) {
	var links []*domain.Link

	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&links).Error
	if err != nil {
		s.log.Error("failed to list links", zap.Error(err))
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	return links, nil
}

// GetLinkByCode получает ссылку по короткому коду. Не фильтрует
// неактивные и истекшие ссылки: решение о выдаче 410 принимает pipeline.
func (s *SQLStorage) GetLinkByCode(ctx context.Context, code string) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).Where("short_code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get link by code", zap.String("short_code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &link, nil
}

// GetLinkByID получает ссылку по идентификатору записи
func (s *SQLStorage) GetLinkByID(ctx context.Context, id string) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get link by id", zap.String("link_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &link, nil
}

// InsertLink сохраняет новую ссылку
func (s *SQLStorage) InsertLink(ctx context.Context, link *domain.Link) error {
	// Проверяем, занят ли короткий код
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("short_code = ?", link.ShortCode).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check short code", zap.String("short_code", link.ShortCode), zap.Error(err))
		return fmt.Errorf("failed to check short code: %w", err)
	}
	if count > 0 {
		return repository.ErrCodeExists
	}

	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		s.log.Error("failed to insert link", zap.String("short_code", link.ShortCode), zap.Error(err))
		return fmt.Errorf("failed to insert link: %w", err)
	}

	s.log.Info("inserted link", zap.String("short_code", link.ShortCode), zap.String("link_id", link.ID))
	return nil
}

// UpdateLink применяет частичное обновление по маске полей.
// Возвращает false, если ссылка не найдена. Счетчики кликов не трогает.
func (s *SQLStorage) UpdateLink(ctx context.Context, id string, patch repository.LinkPatch) (bool, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.Password != nil {
		updates["password"] = *patch.Password
	}
	if patch.ExpiresAt != nil {
		updates["expires_at"] = *patch.ExpiresAt
	}

	result := s.db.WithContext(ctx).Model(&domain.Link{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		s.log.Error("failed to update link", zap.String("link_id", id), zap.Error(result.Error))
		return false, fmt.Errorf("failed to update link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	s.log.Info("updated link", zap.String("link_id", id))
	return true, nil
}

// DeleteLink удаляет ссылку и каскадно все её клики
func (s *SQLStorage) DeleteLink(ctx context.Context, id string) (bool, error) {
	var deleted bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&domain.Link{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete link: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true

		if err := tx.Where("link_id = ?", id).Delete(&domain.Click{}).Error; err != nil {
			return fmt.Errorf("failed to delete clicks: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to delete link", zap.String("link_id", id), zap.Error(err))
		return false, err
	}

	if deleted {
		s.log.Info("deleted link with clicks", zap.String("link_id", id))
	}
	return deleted, nil
}

// CodeExists проверяет, занят ли короткий код
func (s *SQLStorage) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("short_code = ?", code).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check short code", zap.String("short_code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check short code: %w", err)
	}

	return count > 0, nil
}

// --- Click Methods ---

// ListClicks возвращает все клики по всем ссылкам
func (s *SQLStorage) ListClicks(ctx context.Context) ([]*domain.Click, error) {
	var clicks []*domain.Click

	err := s.db.WithContext(ctx).Find(&clicks).Error
	if err != nil {
		s.log.Error("failed to list clicks", zap.Error(err))
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}

	return clicks, nil
}

// ListClicksForLink возвращает все клики одной ссылки
func (s *SQLStorage) ListClicksForLink(ctx context.Context, linkID string) ([]*domain.Click, error) {
	var clicks []*domain.Click

	err := s.db.WithContext(ctx).Where("link_id = ?", linkID).Find(&clicks).Error
	if err != nil {
		s.log.Error("failed to list clicks", zap.String("link_id", linkID), zap.Error(err))
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}

	return clicks, nil
}

// InsertClick вставляет клик и в той же транзакции пересчитывает
// денормализованные счетчики владеющей ссылки
func (s *SQLStorage) InsertClick(ctx context.Context, click *domain.Click) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link domain.Link
		err := tx.Where("id = ?", click.LinkID).First(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrLinkNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get link: %w", err)
		}

		if err := tx.Create(click).Error; err != nil {
			return fmt.Errorf("failed to create click: %w", err)
		}

		var total int64
		if err := tx.Model(&domain.Click{}).Where("link_id = ?", click.LinkID).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count clicks: %w", err)
		}

		var unique int64
		if err := tx.Model(&domain.Click{}).Where("link_id = ?", click.LinkID).
			Distinct("session_id").Count(&unique).Error; err != nil {
			return fmt.Errorf("failed to count sessions: %w", err)
		}

		err = tx.Model(&domain.Link{}).Where("id = ?", click.LinkID).Updates(map[string]interface{}{
			"total_clicks":  total,
			"unique_clicks": unique,
			"last_click_at": click.Timestamp,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update click counters: %w", err)
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrLinkNotFound) {
			s.log.Error("failed to insert click", zap.String("link_id", click.LinkID), zap.Error(err))
		}
		return err
	}

	s.log.Debug("inserted click",
		zap.String("short_code", click.ShortCode),
		zap.String("device_type", click.Device.Type))
	return nil
}

// Close закрывает нижележащее соединение с базой
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	return sqlDB.Close()
}
