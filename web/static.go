// Package web holds the embedded page templates and static assets.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed templates static
var files embed.FS

// Templates exposes the template tree rooted at "templates/".
func Templates() fs.FS {
	return files
}

// StaticHandler serves /static/ from the embedded assets. Directory
// listings are refused.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(fmt.Sprintf("embedded static assets missing: %v", err))
	}
	fileServer := http.StripPrefix("/static/", http.FileServerFS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(w, r)
	})
}

// RobotsTxtHandler serves robots.txt pointing crawlers at the sitemap on
// baseURL.
func RobotsTxtHandler(baseURL string) http.Handler {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", strings.TrimRight(baseURL, "/"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=86400") // Cache for 1 day
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}
