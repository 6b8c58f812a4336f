package service

import (
	"LinkPulse-Backend/internal/config"
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"LinkPulse-Backend/pkg/random"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxRetries = 10

// ErrCodeGeneration возвращается, если не удалось подобрать свободный
// короткий код (вероятностно почти невозможно, но отказ должен быть
// определен явно, а не маскироваться переиспользованием кода).
var ErrCodeGeneration = errors.New("could not generate a unique short code")

// ValidationError агрегирует сообщения проверки входных данных:
// по одному первому сообщению на поле.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

var codePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// CreateLinkInput — входные данные создания ссылки
type CreateLinkInput struct {
	OriginalURL string
	CustomCode  string
	Title       string
	Description string
	Password    string
	ExpiresAt   *time.Time
	UserID      string
}

// UpdateLinkInput — маска частичного обновления ссылки
type UpdateLinkInput struct {
	Title       *string
	Description *string
	IsActive    *bool
	Password    *string
	ExpiresAt   *time.Time
}

// LinkService инкапсулирует создание, обновление и удаление ссылок
type LinkService struct {
	storage repository.Storage
	config  *config.URLShortener
}

func NewLinkService(storage repository.Storage, cfg *config.URLShortener) *LinkService {
	return &LinkService{
		storage: storage,
		config:  cfg,
	}
}

// Create валидирует вход, подбирает короткий код и сохраняет ссылку
func (s *LinkService) Create(ctx context.Context, in CreateLinkInput) (*domain.Link, error) {
	if details := validateCreate(in); len(details) > 0 {
		return nil, &ValidationError{Details: details}
	}

	code, err := s.newShortCode(ctx, in.CustomCode)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	link := &domain.Link{
		ID:          uuid.NewString(),
		ShortCode:   code,
		OriginalURL: in.OriginalURL,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsActive:    true,
		ExpiresAt:   in.ExpiresAt,
	}
	if in.Title != "" {
		link.Title = &in.Title
	}
	if in.Description != "" {
		link.Description = &in.Description
	}
	if in.Password != "" {
		link.Password = &in.Password
	}
	if in.UserID != "" {
		link.UserID = &in.UserID
	}

	if err := s.storage.InsertLink(ctx, link); err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save link: %w", err)
	}

	return link, nil
}

// Update применяет частичное обновление и возвращает обновленную ссылку
func (s *LinkService) Update(ctx context.Context, id string, in UpdateLinkInput) (*domain.Link, error) {
	if in.ExpiresAt != nil && !in.ExpiresAt.After(time.Now()) {
		return nil, &ValidationError{Details: []string{"expires_at must be in the future"}}
	}

	patch := repository.LinkPatch{
		Title:       in.Title,
		Description: in.Description,
		IsActive:    in.IsActive,
		Password:    in.Password,
		ExpiresAt:   in.ExpiresAt,
	}
	if patch.IsEmpty() {
		return nil, &ValidationError{Details: []string{"at least one field must be provided"}}
	}

	ok, err := s.storage.UpdateLink(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update link: %w", err)
	}
	if !ok {
		return nil, repository.ErrLinkNotFound
	}

	return s.storage.GetLinkByID(ctx, id)
}

// Delete удаляет ссылку вместе со всеми её кликами
func (s *LinkService) Delete(ctx context.Context, id string) (bool, error) {
	return s.storage.DeleteLink(ctx, id)
}

// newShortCode возвращает кастомный код после проверки занятости либо
// подбирает случайный: до maxRetries попыток стандартной длины, затем
// одна попытка длины+2, затем ErrCodeGeneration.
func (s *LinkService) newShortCode(ctx context.Context, customCode string) (string, error) {
	if customCode != "" {
		exists, err := s.storage.CodeExists(ctx, customCode)
		if err != nil {
			return "", fmt.Errorf("failed to check custom code existence: %w", err)
		}
		if exists {
			return "", repository.ErrCodeExists
		}
		return customCode, nil
	}

	for i := 0; i < maxRetries; i++ {
		code, err := random.NewRandomString(s.config.CodeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		exists, err := s.storage.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code existence: %w", err)
		}
		if !exists {
			return code, nil
		}
	}

	// последняя попытка более длинным кодом
	code, err := random.NewRandomString(s.config.CodeLength + 2)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	exists, err := s.storage.CodeExists(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to check code existence: %w", err)
	}
	if exists {
		return "", ErrCodeGeneration
	}
	return code, nil
}

func validateCreate(in CreateLinkInput) []string {
	var details []string

	if in.OriginalURL == "" {
		details = append(details, "original_url is required")
	} else if !isValidHTTPURL(in.OriginalURL) {
		details = append(details, "original_url must be a valid http or https URL")
	}

	if in.CustomCode != "" {
		if len(in.CustomCode) < 3 || len(in.CustomCode) > 52 {
			details = append(details, "custom_code must be between 3 and 52 characters")
		} else if !codePattern.MatchString(in.CustomCode) {
			details = append(details, "custom_code may only contain letters, digits, hyphens and underscores")
		}
	}

	if in.ExpiresAt != nil && !in.ExpiresAt.After(time.Now()) {
		details = append(details, "expires_at must be in the future")
	}

	return details
}

func isValidHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
