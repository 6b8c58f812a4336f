package http

import (
	"LinkPulse-Backend/internal/analytics"
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"LinkPulse-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LinksHandler обработчик для работы со ссылками
type LinksHandler struct {
	storage    repository.Storage
	links      *service.LinkService
	aggregator *analytics.Aggregator
	log        *zap.Logger
	baseURL    string
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(storage repository.Storage, links *service.LinkService, aggregator *analytics.Aggregator, log *zap.Logger, baseURL string) *LinksHandler {
	return &LinksHandler{
		storage:    storage,
		links:      links,
		aggregator: aggregator,
		log:        log,
		baseURL:    baseURL,
	}
}

// CreateLinkRequest структура запроса создания ссылки
type CreateLinkRequest struct {
	OriginalURL string `json:"original_url"`
	CustomCode  string `json:"custom_code,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Password    string `json:"password,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

// UpdateLinkRequest — частичное обновление; разрешены только эти поля
type UpdateLinkRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Password    *string `json:"password,omitempty"`
	ExpiresAt   *string `json:"expires_at,omitempty"`
}

// CreateLinkResponse структура ответа создания ссылки
type CreateLinkResponse struct {
	Success  bool         `json:"success"`
	Data     *domain.Link `json:"data"`
	ShortURL string       `json:"short_url"`
}

// LinkWithStats — ссылка с опциональной статистикой
type LinkWithStats struct {
	*domain.Link
	Stats *domain.LinkStats `json:"stats,omitempty"`
}

// CreateLink создает новую короткую ссылку
//
//	@Summary		Create a short link
//	@Description	Create a new shortened URL with optional custom code, password and expiration
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateLinkRequest	true	"Link creation request"
//	@Success		201		{object}	CreateLinkResponse	"Link created successfully"
//	@Failure		400		{object}	APIResponse			"Validation failure"
//	@Failure		409		{object}	APIResponse			"Short code already exists"
//	@Router			/api/links [post]
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create link request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	in := service.CreateLinkInput{
		OriginalURL: req.OriginalURL,
		CustomCode:  req.CustomCode,
		Title:       req.Title,
		Description: req.Description,
		Password:    req.Password,
	}

	if req.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			writeValidationError(w, []string{"expires_at must be in RFC3339 format"})
			return
		}
		in.ExpiresAt = &expiresAt
	}

	link, err := h.links.Create(r.Context(), in)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeValidationError(w, vErr.Details)
		case errors.Is(err, repository.ErrCodeExists):
			writeError(w, http.StatusConflict, "Short code already exists")
		default:
			h.log.Error("failed to create link", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to create link")
		}
		return
	}

	h.log.Info("created link", zap.String("short_code", link.ShortCode), zap.String("link_id", link.ID))
	writeJSON(w, http.StatusCreated, CreateLinkResponse{
		Success:  true,
		Data:     link,
		ShortURL: h.baseURL + "/r/" + link.ShortCode,
	})
}

// ListLinks возвращает список всех ссылок
//
//	@Summary	List links
//	@Tags		Links
//	@Produce	json
//	@Success	200	{object}	APIResponse
//	@Router		/api/links [get]
func (h *LinksHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.storage.ListLinks(r.Context())
	if err != nil {
		h.log.Error("failed to list links", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve links")
		return
	}

	writeSuccess(w, http.StatusOK, links)
}

// GetLink возвращает одну ссылку, опционально со статистикой
//
//	@Summary	Get a link
//	@Tags		Links
//	@Produce	json
//	@Param		id				path		string	true	"Link id"
//	@Param		includeStats	query		bool	false	"Include aggregated statistics"
//	@Success	200				{object}	APIResponse
//	@Failure	404				{object}	APIResponse	"Link not found"
//	@Router		/api/links/{id} [get]
func (h *LinksHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	link, err := h.storage.GetLinkByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			writeError(w, http.StatusNotFound, "Link not found")
			return
		}
		h.log.Error("failed to get link", zap.String("link_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve link")
		return
	}

	if r.URL.Query().Get("includeStats") != "true" {
		writeSuccess(w, http.StatusOK, link)
		return
	}

	stats, err := h.aggregator.LinkStats(r.Context(), id)
	if err != nil {
		h.log.Error("failed to build link stats", zap.String("link_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to build link statistics")
		return
	}

	writeSuccess(w, http.StatusOK, LinkWithStats{Link: link, Stats: stats})
}

// UpdateLink применяет частичное обновление ссылки
//
//	@Summary	Update a link
//	@Tags		Links
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Link id"
//	@Param		request	body		UpdateLinkRequest	true	"Fields to update"
//	@Success	200		{object}	APIResponse
//	@Failure	400		{object}	APIResponse	"Validation failure"
//	@Failure	404		{object}	APIResponse	"Link not found"
//	@Router		/api/links/{id} [put]
func (h *LinksHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid update link request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	in := service.UpdateLinkInput{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
		Password:    req.Password,
	}

	if req.ExpiresAt != nil {
		expiresAt, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			writeValidationError(w, []string{"expires_at must be in RFC3339 format"})
			return
		}
		in.ExpiresAt = &expiresAt
	}

	link, err := h.links.Update(r.Context(), id, in)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeValidationError(w, vErr.Details)
		case errors.Is(err, repository.ErrLinkNotFound):
			writeError(w, http.StatusNotFound, "Link not found")
		default:
			h.log.Error("failed to update link", zap.String("link_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to update link")
		}
		return
	}

	h.log.Info("updated link", zap.String("link_id", id))
	writeSuccess(w, http.StatusOK, link)
}

// DeleteLink удаляет ссылку и каскадно её клики
//
//	@Summary	Delete a link
//	@Tags		Links
//	@Produce	json
//	@Param		id	path		string	true	"Link id"
//	@Success	200	{object}	APIResponse
//	@Failure	404	{object}	APIResponse	"Link not found"
//	@Router		/api/links/{id} [delete]
func (h *LinksHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.links.Delete(r.Context(), id)
	if err != nil {
		h.log.Error("failed to delete link", zap.String("link_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete link")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Link not found")
		return
	}

	h.log.Info("deleted link", zap.String("link_id", id))
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Link and its clicks deleted"})
}
