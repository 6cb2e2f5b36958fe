package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemap(t *testing.T) {
	env := newTestEnv(t)
	lastMod := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)

	rec := httptest.NewRecorder()
	Sitemap(env.site.Sitemap, testBaseURL, lastMod, "test").
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, "<loc>https://example.test/</loc>")
	assert.Contains(t, body, "<loc>https://example.test/guides/90-day-reporting</loc>")
	assert.Contains(t, body, "<lastmod>2026-10-16T00:00:00Z</lastmod>")
	assert.Equal(t, 23, strings.Count(body, "<url>"))
}
