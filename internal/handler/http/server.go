package http

import (
	"LinkPulse-Backend/internal/analytics"
	"LinkPulse-Backend/internal/metrics"
	"LinkPulse-Backend/internal/repository"
	"LinkPulse-Backend/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Server HTTP сервер с обработчиками
type Server struct {
	linksHandler     *LinksHandler
	redirectHandler  *RedirectHandler
	analyticsHandler *AnalyticsHandler
	healthHandler    *HealthHandler
	log              *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	storage repository.Storage,
	links *service.LinkService,
	aggregator *analytics.Aggregator,
	tracker *analytics.Tracker,
	log *zap.Logger,
	baseURL string,
) *Server {
	return &Server{
		linksHandler:     NewLinksHandler(storage, links, aggregator, log, baseURL),
		redirectHandler:  NewRedirectHandler(storage, tracker, log),
		analyticsHandler: NewAnalyticsHandler(aggregator, log),
		healthHandler:    NewHealthHandler(storage, log),
		log:              log,
	}
}

// Router настраивает маршруты
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Health checks и метрики
	r.Get("/health", s.healthHandler.Health)
	r.Get("/ready", s.healthHandler.Ready)
	r.Handle("/metrics", metrics.Handler())

	// Swagger документация
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API endpoints
	r.Route("/api", func(r chi.Router) {
		r.Use(corsMiddleware)
		r.Get("/links", s.linksHandler.ListLinks)
		r.Post("/links", s.linksHandler.CreateLink)
		r.Get("/links/{id}", s.linksHandler.GetLink)
		r.Put("/links/{id}", s.linksHandler.UpdateLink)
		r.Delete("/links/{id}", s.linksHandler.DeleteLink)
		r.Get("/analytics", s.analyticsHandler.Overview)
	})

	// Redirect endpoint
	r.Get("/r/{code}", s.redirectHandler.HandleRedirect)

	return r
}

// corsMiddleware добавляет CORS headers для фронтенда
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Список разрешенных origins для разработки
		allowedOrigins := []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
