package handlers

import (
	"net/http"

	"github.com/lightkeep/lightkeep/internal/httpserver/deps"
)

// Categories serves the static category metadata from the bundled
// reference report. No store interaction.
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Reference.Categories())
	}
}

// Audits serves the static per-check metadata from the bundled reference
// report. No store interaction.
func Audits(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Reference.Audits())
	}
}
