package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/lightkeep/lightkeep/internal/httpserver/deps"
	"github.com/lightkeep/lightkeep/internal/httpserver/handlers"
	"github.com/lightkeep/lightkeep/internal/httpserver/mw"
)

func init() { Register(registerCron) }

func registerCron(r chi.Router, d deps.Deps) {
	r.With(mw.RequireCronCaller(d.Logger)).Get("/cron/update_lighthouse_scores", handlers.UpdateScores(d))
}
