package http

import (
	"LinkPulse-Backend/internal/analytics"
	"LinkPulse-Backend/internal/metrics"
	"LinkPulse-Backend/internal/repository"
	"LinkPulse-Backend/pkg/useragent"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RedirectHandler обработчик редиректов с отслеживанием кликов
type RedirectHandler struct {
	storage repository.Storage
	tracker *analytics.Tracker
	log     *zap.Logger
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(storage repository.Storage, tracker *analytics.Tracker, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		storage: storage,
		tracker: tracker,
		log:     log,
	}
}

var passwordPromptTmpl = template.Must(template.New("password").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Password required</title>
<style>
body { font-family: -apple-system, sans-serif; display: flex; justify-content: center; align-items: center; min-height: 100vh; margin: 0; background: #f5f5f5; }
.card { background: #fff; padding: 2rem; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,.1); max-width: 320px; width: 100%; }
input { width: 100%; padding: .5rem; margin: .75rem 0; box-sizing: border-box; }
button { width: 100%; padding: .5rem; cursor: pointer; }
.error { color: #c0392b; font-size: .875rem; }
</style>
</head>
<body>
<div class="card">
<h2>This link is password protected</h2>
{{if .Retry}}<p class="error">Incorrect password, please try again.</p>{{end}}
<form method="GET" action="/r/{{.Code}}">
<input type="password" name="password" placeholder="Password" autofocus required>
<button type="submit">Open link</button>
</form>
</div>
</body>
</html>
`))

// HandleRedirect разрешает короткий код и выполняет редирект.
//
// Состояния: не найдено -> 404; неактивна или истекла -> 410; защищена
// паролем без правильного пароля -> 200 HTML форма; иначе клик ставится
// в очередь трекинга и клиент сразу получает 302. Ошибки трекинга
// никогда не превращают успешный редирект в ошибку.
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	link, err := h.storage.GetLinkByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			metrics.RedirectsTotal.WithLabelValues("not_found").Inc()
			h.log.Debug("short code not found", zap.String("short_code", code))
			writeError(w, http.StatusNotFound, "Link not found")
			return
		}
		metrics.RedirectsTotal.WithLabelValues("error").Inc()
		h.log.Error("failed to resolve short code", zap.String("short_code", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	now := time.Now()

	if !link.IsActive {
		metrics.RedirectsTotal.WithLabelValues("gone").Inc()
		h.log.Debug("link is inactive", zap.String("short_code", code))
		writeError(w, http.StatusGone, "Link is no longer available")
		return
	}
	if link.IsExpired(now) {
		metrics.RedirectsTotal.WithLabelValues("gone").Inc()
		h.log.Debug("link is expired", zap.String("short_code", code))
		writeError(w, http.StatusGone, "Link has expired")
		return
	}

	if link.IsPasswordProtected() {
		supplied := r.URL.Query().Get("password")
		if supplied != *link.Password {
			metrics.RedirectsTotal.WithLabelValues("password_required").Inc()
			h.servePasswordPrompt(w, code, supplied != "")
			return
		}
	}

	userAgent := r.UserAgent()
	if useragent.IsBot(userAgent) {
		// боты редиректятся без записи клика
		metrics.RedirectsTotal.WithLabelValues("bot").Inc()
		http.Redirect(w, r, link.OriginalURL, http.StatusFound)
		return
	}

	job := &analytics.ClickJob{
		LinkID:    link.ID,
		ShortCode: link.ShortCode,
		IPAddress: extractIPAddress(r),
		UserAgent: userAgent,
		Referer:   r.Referer(),
		ClickedAt: now,
	}
	if err := h.tracker.Submit(job); err != nil {
		// редирект выполняется независимо от судьбы клика
		h.log.Warn("click not queued for tracking", zap.String("short_code", code), zap.Error(err))
	}

	metrics.RedirectsTotal.WithLabelValues("redirect").Inc()
	h.log.Info("successful redirect",
		zap.String("short_code", code),
		zap.String("original_url", link.OriginalURL),
		zap.String("ip", job.IPAddress))

	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

func (h *RedirectHandler) servePasswordPrompt(w http.ResponseWriter, code string, retry bool) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := passwordPromptTmpl.Execute(w, struct {
		Code  string
		Retry bool
	}{Code: code, Retry: retry}); err != nil {
		h.log.Error("failed to render password prompt", zap.String("short_code", code), zap.Error(err))
	}
}

// extractIPAddress извлекает IP адрес из запроса с учетом прокси
func extractIPAddress(r *http.Request) string {
	// Проверяем заголовки прокси в порядке приоритета
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For может содержать список IP через запятую
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	// Fallback к RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
