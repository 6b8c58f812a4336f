package http

import (
	"LinkPulse-Backend/internal/analytics"
	"net/http"

	"go.uber.org/zap"
)

// AnalyticsHandler обработчик сводной аналитики
type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
	log        *zap.Logger
}

// NewAnalyticsHandler создает новый обработчик аналитики
func NewAnalyticsHandler(aggregator *analytics.Aggregator, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		aggregator: aggregator,
		log:        log,
	}
}

// Overview возвращает сводную статистику по всему сервису
//
//	@Summary	Analytics overview
//	@Tags		Analytics
//	@Produce	json
//	@Success	200	{object}	APIResponse
//	@Router		/api/analytics [get]
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.aggregator.Overview(r.Context())
	if err != nil {
		h.log.Error("failed to build analytics overview", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to build analytics overview")
		return
	}

	writeSuccess(w, http.StatusOK, overview)
}
