package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/thaivisachecklist/server/internal/api/problem"
	"github.com/thaivisachecklist/server/internal/content"
)

// Sitemap serves /sitemap.xml for the site at baseURL. Every entry carries
// lastModified, which the server sets to its start time.
func Sitemap(sitemap *content.Sitemap, baseURL string, lastModified time.Time, env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := sitemap.WriteXML(&buf, baseURL, lastModified); err != nil {
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
			return
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	})
}
