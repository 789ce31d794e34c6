package handlers

import (
	"net/http"

	"github.com/lightkeep/lightkeep/internal/httpserver/deps"
	"github.com/lightkeep/lightkeep/internal/logger"
)

// UpdateScores kicks the refresh fan-out and acknowledges immediately;
// it never waits for the per-URL submissions to finish. The trusted-caller
// check lives in the route middleware.
func UpdateScores(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.RefreshTrigger <- struct{}{}:
			d.Logger.Info("refresh fan-out triggered by cron")
		default:
			// A refresh is already pending; the scheduled run covers this tick.
			d.Logger.Warn("refresh already pending, cron trigger dropped")
		}

		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Update tasks scheduled")); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}
