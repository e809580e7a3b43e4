package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"sku-mapper/internal/config"
	mapHnd "sku-mapper/internal/mapping/handler"
	"sku-mapper/internal/middleware"
	"sku-mapper/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	// health-check
	r.Get("/health", handlers.Health)

	h := mapHnd.New(cfg, logger)
	r.Route("/api", func(r chi.Router) {
		r.Post("/upload/mapping", h.UploadMapping)
		r.Post("/upload/sales", h.UploadSales)
		r.Post("/process", h.Process)
		r.Get("/analytics", h.Analytics)
		r.Get("/data/preview", h.Preview)
		r.Post("/export", h.Export)
	})

	return r
}
