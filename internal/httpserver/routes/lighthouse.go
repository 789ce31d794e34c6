package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/lightkeep/lightkeep/internal/httpserver/deps"
	"github.com/lightkeep/lightkeep/internal/httpserver/handlers"
	"github.com/lightkeep/lightkeep/internal/httpserver/mw"
)

func init() { Register(registerLighthouse) }

func registerLighthouse(r chi.Router, d deps.Deps) {
	r.Route("/lh", func(r chi.Router) {
		r.Get("/categories", handlers.Categories(d))
		r.Get("/audits", handlers.Audits(d))
		r.Get("/urls", handlers.URLs(d))
		r.Get("/reports", handlers.Reports(d))
		r.With(mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RateLimitBurst,
			RefillPerIPPerMin: d.RateLimitPerMinute,
			TrustProxy:        d.TrustProxy,
		})).Post("/newaudit", handlers.NewAudit(d))
	})
}
