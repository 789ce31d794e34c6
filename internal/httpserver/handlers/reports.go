package handlers

import (
	"net/http"
	"strings"

	"github.com/lightkeep/lightkeep/internal/httpserver/deps"
	"github.com/lightkeep/lightkeep/internal/logger"
	"github.com/lightkeep/lightkeep/internal/store"
)

// Reports serves a URL's report history, oldest to newest, capped at
// store.MaxReports. An empty history triggers one synchronous audit so the
// caller always gets something to render; a failed audit degrades to an
// empty object in that slot instead of an error.
func Reports(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := strings.TrimSpace(r.URL.Query().Get("url"))
		if url == "" {
			writeError(w, http.StatusBadRequest, "No url provided.")
			return
		}

		history, err := d.Store.RecentReports(r.Context(), url, store.MaxReports)
		if err != nil {
			d.Logger.Error("failed to query reports",
				logger.String("url", url),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if len(history) > 0 {
			writeJSON(w, http.StatusOK, history)
			return
		}

		// First request for this URL: audit it now and serve the result.
		d.Logger.Info("no stored reports, running fresh audit",
			logger.String("url", url))

		runs := make([]interface{}, 0, 1)
		if outcome := d.Runner.Run(r.Context(), url); outcome.OK() {
			runs = append(runs, outcome.Report)
		} else {
			runs = append(runs, struct{}{})
		}
		writeJSON(w, http.StatusOK, runs)
	}
}
