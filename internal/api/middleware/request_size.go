package middleware

import (
	"net/http"
)

const (
	// PageMaxBodySize covers the checklist and font size forms.
	PageMaxBodySize int64 = 16 << 10 // 16KB

	// ContactMaxBodySize fits a 5000 character message in any encoding.
	ContactMaxBodySize int64 = 64 << 10 // 64KB
)

// RequestSize wraps the body with http.MaxBytesReader; handlers that read
// past maxBytes get an *http.MaxBytesError.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Connection", "close")
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
