package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/satheeshds/contactbook/docs"
	"github.com/satheeshds/contactbook/metrics"
)

// RouterConfig carries the optional pieces of the HTTP surface.
type RouterConfig struct {
	AuthUser string
	AuthPass string
	// Metrics instruments every request when set.
	Metrics *metrics.Metrics
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// NewRouter builds the application router around h.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(BasicAuth(cfg.AuthUser, cfg.AuthPass))

			r.Get("/contacts", h.ListContacts)
			r.Post("/contacts", h.CreateContact)
			r.Delete("/contacts/{id}", h.DeleteContact)
		})
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
