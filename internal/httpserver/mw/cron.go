package mw

import (
	"net/http"

	"github.com/lightkeep/lightkeep/internal/logger"
)

// RequireCronCaller rejects requests that do not carry the scheduler's
// trusted-caller marker header. The front-end strips this header from
// external traffic, so its presence proves the call came from cron.
func RequireCronCaller(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Appengine-Cron") == "" {
				log.Warn("cron endpoint called without trusted header",
					logger.String("remote_ip", r.RemoteAddr))
				w.WriteHeader(http.StatusForbidden)
				if _, err := w.Write([]byte("Sorry, handler can only be run as a cron job.")); err != nil {
					log.Debug("failed to write response", logger.Error(err))
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
