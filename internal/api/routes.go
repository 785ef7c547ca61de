package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the HTTP routing tree
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(h.cfg.HTTP.TimeoutSeconds) * time.Second))
	r.Use(CORSMiddleware(h.cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	r.Get("/health", h.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/sign-up", h.HandleSignUp)
		r.Post("/auth/sign-in", h.HandleSignIn)
		r.Post("/auth/sign-out", h.HandleSignOut)

		r.Get("/news", h.HandleNews)
		r.Get("/stocks/{symbol}", h.HandleStockDetails)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/search", h.HandleSearch)
			r.Get("/watchlist", h.HandleGetWatchlist)
			r.Get("/watchlist/items", h.HandleGetWatchlistItems)
			r.Post("/watchlist", h.HandleAddToWatchlist)
			r.Delete("/watchlist/{symbol}", h.HandleRemoveFromWatchlist)
		})
	})

	return r
}
