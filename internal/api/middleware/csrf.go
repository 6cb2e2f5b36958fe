package middleware

import (
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/thaivisachecklist/server/internal/api/problem"
)

// CSRFFieldName is the form field carrying the token.
const CSRFFieldName = "gorilla.csrf.Token"

// CSRFProtection guards the HTML forms (contact, checklist actions) with
// gorilla/csrf's double-submit cookie. When secure is false requests are
// treated as plain HTTP so local development works without TLS.
func CSRFProtection(authKey []byte, secure bool, env string) func(http.Handler) http.Handler {
	protect := csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName(CSRFFieldName),
		csrf.ErrorHandler(csrfErrorHandler(env)),
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

func csrfErrorHandler(env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden,
			"CSRF token validation failed", csrf.FailureReason(r), env)
	})
}

// CSRFField returns the hidden input element for HTML forms.
func CSRFField(r *http.Request) template.HTML {
	return csrf.TemplateField(r)
}
