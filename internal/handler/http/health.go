package http

import (
	"LinkPulse-Backend/internal/repository"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthHandler обработчик health checks
type HealthHandler struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewHealthHandler создает новый health handler
func NewHealthHandler(storage repository.Storage, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		log:     log,
	}
}

// HealthResponse структура ответа health check
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version"`
	StorageStatus string    `json:"storage_status"`
	Uptime        string    `json:"uptime,omitempty"`
}

const version = "1.0.0"

var startTime = time.Now()

// Health основной health check endpoint
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Проверяем хранилище: запрос заведомо несуществующего кода
	// должен вернуть "не найдено", любая другая ошибка - проблема с базой
	storageStatus := "healthy"
	_, err := h.storage.GetLinkByCode(ctx, "health-check-non-existent")
	if err != nil && !errors.Is(err, repository.ErrLinkNotFound) {
		storageStatus = "unhealthy"
		h.log.Error("storage health check failed", zap.Error(err))
	}

	status := "healthy"
	statusCode := http.StatusOK
	if storageStatus == "unhealthy" {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status:        status,
		Timestamp:     time.Now(),
		Version:       version,
		StorageStatus: storageStatus,
		Uptime:        time.Since(startTime).Round(time.Second).String(),
	})
}

// Ready readiness probe
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
