package ratinghttp

import (
	"github.com/go-chi/chi/v5"
)

// RouteConfig carries the middleware dependencies of the rating routes.
type RouteConfig struct {
	AllowedOrigins []string
	Tokens         *TokenProvider
	AdminLimiter   *IPRateLimiter
}

// Mount registers the rating API under /api/leagues.
func Mount(r chi.Router, h *Handlers, cfg RouteConfig) {
	r.Route("/api/leagues/{leagueID}", func(r chi.Router) {
		r.Use(CORSMiddleware(cfg.AllowedOrigins))

		r.Get("/ranking", h.HandleGetRanking)
		r.Get("/ranking.xlsx", h.HandleExportRanking)
		r.Get("/entities/{entityID}/history", h.HandleGetHistory)
		r.Get("/entities/{entityID}/history.png", h.HandleGetHistoryChart)
		r.Post("/expected-score", h.HandleExpectedScore)

		r.Group(func(r chi.Router) {
			if cfg.AdminLimiter != nil {
				r.Use(RateLimitMiddleware(cfg.AdminLimiter))
			}
			r.Use(AdminAuthMiddleware(cfg.Tokens))

			r.Post("/games", h.HandleApplyGame)
			r.Post("/regenerate", h.HandleRegenerate)
		})
	})
}
