package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "static path", input: "/guides", expected: "/guides"},
		{name: "method prefix", input: "GET /healthz", expected: "/healthz"},
		{name: "single param", input: "GET /guides/{slug}", expected: "/guides/{param}"},
		{name: "multiple params", input: "/visa/{visa}/stages/{stage}", expected: "/visa/{param}/stages/{param}"},
		{name: "subtree", input: "GET /static/", expected: "/static/"},
		{name: "empty", input: "", expected: ""},
		{name: "non-path input", input: "guides/{slug}", expected: "guides/{slug}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizePath(tt.input))
		})
	}
}

func TestHTTPMiddleware_LabelsByPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /guides/{slug}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	handler := HTTPMiddleware(mux)

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/guides/{param}", "200")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/guides/tm30", "/guides/tdac"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestHTTPMiddleware_Unmatched(t *testing.T) {
	handler := HTTPMiddleware(http.NewServeMux())

	counter := HTTPRequestsTotal.WithLabelValues("GET", unmatchedPath, "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/does-not-exist/12345", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHTTPMiddleware_KeepsFirstStatus(t *testing.T) {
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	counter := HTTPRequestsTotal.WithLabelValues("POST", unmatchedPath, "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(HTTPRequestsInFlight))
}
