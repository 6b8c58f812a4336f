package service

import (
	"LinkPulse-Backend/internal/config"
	"LinkPulse-Backend/internal/repository"
	"LinkPulse-Backend/internal/repository/memory"
	"LinkPulse-Backend/pkg/random"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*LinkService, *memory.MemStorage) {
	store := memory.New()
	cfg := &config.URLShortener{
		BaseURL:    "http://localhost:8080",
		CodeLength: 8,
	}
	return NewLinkService(store, cfg), store
}

func TestLinkService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("generates_eight_char_code", func(t *testing.T) {
		svc, _ := newTestService()

		link, err := svc.Create(ctx, CreateLinkInput{OriginalURL: "https://example.com/page"})
		require.NoError(t, err)

		assert.Len(t, link.ShortCode, 8)
		for _, r := range link.ShortCode {
			assert.True(t, strings.ContainsRune(random.Alphabet, r))
		}
		assert.NotEmpty(t, link.ID)
		assert.True(t, link.IsActive)
		assert.Equal(t, int64(0), link.TotalClicks)
	})

	t.Run("custom_code_passthrough", func(t *testing.T) {
		svc, _ := newTestService()

		link, err := svc.Create(ctx, CreateLinkInput{
			OriginalURL: "https://example.com",
			CustomCode:  "my-promo_1",
		})
		require.NoError(t, err)
		assert.Equal(t, "my-promo_1", link.ShortCode)
	})

	t.Run("custom_code_conflict", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Create(ctx, CreateLinkInput{
			OriginalURL: "https://example.com",
			CustomCode:  "taken",
		})
		require.NoError(t, err)

		_, err = svc.Create(ctx, CreateLinkInput{
			OriginalURL: "https://example.com/other",
			CustomCode:  "taken",
		})
		assert.ErrorIs(t, err, repository.ErrCodeExists)
	})

	t.Run("optional_fields_stored_as_pointers", func(t *testing.T) {
		svc, _ := newTestService()

		expires := time.Now().Add(24 * time.Hour)
		link, err := svc.Create(ctx, CreateLinkInput{
			OriginalURL: "https://example.com",
			Title:       "Promo",
			Description: "Summer campaign",
			Password:    "s3cret",
			ExpiresAt:   &expires,
		})
		require.NoError(t, err)

		assert.Equal(t, "Promo", *link.Title)
		assert.Equal(t, "Summer campaign", *link.Description)
		assert.Equal(t, "s3cret", *link.Password)
		require.NotNil(t, link.ExpiresAt)
	})

	t.Run("validation_details", func(t *testing.T) {
		svc, _ := newTestService()

		cases := []struct {
			name   string
			input  CreateLinkInput
			detail string
		}{
			{"missing_url", CreateLinkInput{}, "original_url is required"},
			{"bad_scheme", CreateLinkInput{OriginalURL: "ftp://example.com"}, "original_url must be a valid http or https URL"},
			{"no_host", CreateLinkInput{OriginalURL: "https://"}, "original_url must be a valid http or https URL"},
			{"short_custom_code", CreateLinkInput{OriginalURL: "https://example.com", CustomCode: "ab"}, "custom_code must be between 3 and 52 characters"},
			{"bad_custom_code_chars", CreateLinkInput{OriginalURL: "https://example.com", CustomCode: "has space"}, "custom_code may only contain letters, digits, hyphens and underscores"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Create(ctx, tc.input)
				require.Error(t, err)

				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Contains(t, vErr.Details, tc.detail)
			})
		}
	})

	t.Run("past_expiry_rejected", func(t *testing.T) {
		svc, _ := newTestService()

		past := time.Now().Add(-time.Hour)
		_, err := svc.Create(ctx, CreateLinkInput{
			OriginalURL: "https://example.com",
			ExpiresAt:   &past,
		})

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Contains(t, vErr.Details, "expires_at must be in the future")
	})
}

func TestLinkService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial_update", func(t *testing.T) {
		svc, _ := newTestService()

		created, err := svc.Create(ctx, CreateLinkInput{OriginalURL: "https://example.com"})
		require.NoError(t, err)

		title := "Renamed"
		inactive := false
		updated, err := svc.Update(ctx, created.ID, UpdateLinkInput{
			Title:    &title,
			IsActive: &inactive,
		})
		require.NoError(t, err)

		assert.Equal(t, "Renamed", *updated.Title)
		assert.False(t, updated.IsActive)
		assert.Equal(t, created.OriginalURL, updated.OriginalURL)
	})

	t.Run("unknown_link", func(t *testing.T) {
		svc, _ := newTestService()

		title := "x"
		_, err := svc.Update(ctx, "missing", UpdateLinkInput{Title: &title})
		assert.ErrorIs(t, err, repository.ErrLinkNotFound)
	})

	t.Run("past_expiry_rejected", func(t *testing.T) {
		svc, _ := newTestService()

		created, err := svc.Create(ctx, CreateLinkInput{OriginalURL: "https://example.com"})
		require.NoError(t, err)

		past := time.Now().Add(-time.Minute)
		_, err = svc.Update(ctx, created.ID, UpdateLinkInput{ExpiresAt: &past})

		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("empty_patch_rejected", func(t *testing.T) {
		svc, _ := newTestService()

		created, err := svc.Create(ctx, CreateLinkInput{OriginalURL: "https://example.com"})
		require.NoError(t, err)

		_, err = svc.Update(ctx, created.ID, UpdateLinkInput{})

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Contains(t, vErr.Details, "at least one field must be provided")
	})
}

func TestLinkService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	created, err := svc.Create(ctx, CreateLinkInput{OriginalURL: "https://example.com"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.GetLinkByID(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	deleted, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
