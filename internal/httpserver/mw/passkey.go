package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/nearby/internal/admin"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/metrics"
	"github.com/MrSnakeDoc/nearby/internal/utils"
)

const PasskeyHeader = "X-Admin-Passkey"

// RequirePasskey guards the admin surface. With no passkey configured,
// every request is refused.
func RequirePasskey(expected string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	if expected == "" {
		log.Warn("RequirePasskey: no passkey configured, admin surface locked")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !admin.CheckPasskey(expected, r.Header.Get(PasskeyHeader)) {
				metrics.RequestsDenied.WithLabelValues("passkey").Inc()
				log.Warn("admin access denied",
					logger.String("path", r.URL.Path),
					logger.String("remote_ip", utils.ClientIP(r, trustProxy)))
				w.Header().Set("WWW-Authenticate", `Passkey realm="admin"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
