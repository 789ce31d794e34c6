package mw

import (
	"net/http"

	"github.com/lightkeep/lightkeep/internal/logger"
	"github.com/lightkeep/lightkeep/internal/utils"
)

// ForceSSL redirects plain-HTTP requests to their HTTPS equivalent.
// Requests from the cron scheduler or the task queue carry marker headers
// and are exempt, as is localhost. The original protocol is read from
// X-Forwarded-Proto because TLS terminates at the front-end.
func ForceSSL(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromCron := r.Header.Get("X-Appengine-Cron")
			fromTaskQueue := r.Header.Get("X-AppEngine-QueueName")
			host := utils.ParseHostNoPort(r.Host)

			if fromCron == "" && fromTaskQueue == "" && host != "localhost" &&
				r.Header.Get("X-Forwarded-Proto") == "http" {
				target := "https://" + r.Host + r.URL.RequestURI()
				log.Debug("redirecting plain-http request",
					logger.String("host", r.Host),
					logger.String("target", target))
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
