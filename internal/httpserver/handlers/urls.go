package handlers

import (
	"net/http"

	"github.com/lightkeep/lightkeep/internal/httpserver/deps"
	"github.com/lightkeep/lightkeep/internal/logger"
)

// URLs serves the sorted list of URLs with at least one stored report.
func URLs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		urls, err := d.Store.ListKnownURLs(r.Context())
		if err != nil {
			d.Logger.Error("failed to list known urls", logger.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, urls)
	}
}
