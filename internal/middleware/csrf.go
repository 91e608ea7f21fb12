package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/pkg/config"
)

const csrfFieldName = "csrf_token"

// CSRF wraps the whole router so every unsafe form post must carry the token
// rendered by csrf.TemplateField. Plain HTTP deployments skip the strict
// referer check gorilla/csrf applies to TLS requests.
func CSRF(cfg config.CSRFConfig, secure bool, log *zap.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	if log == nil {
		log = zap.NewNop()
	}

	protect := csrf.Protect(
		csrfKey(cfg.Secret),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName(csrfFieldName),
		csrf.TrustedOrigins(cfg.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Warn("csrf validation failed",
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)),
			)
			http.Error(w, "The form expired. Go back, reload the page and try again.", http.StatusForbidden)
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// csrfKey pads or truncates the secret to the 32 bytes gorilla/csrf expects.
func csrfKey(secret string) []byte {
	key := make([]byte, 32)
	copy(key, secret)
	return key
}
