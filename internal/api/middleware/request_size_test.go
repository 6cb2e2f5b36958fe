package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestSize_RejectsDeclaredOversize(t *testing.T) {
	called := false
	handler := RequestSize(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(strings.Repeat("a", 11)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
	if called {
		t.Error("handler should not run")
	}
}

func TestRequestSize_LimitsStreamedBody(t *testing.T) {
	var readErr error
	handler := RequestSize(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(strings.Repeat("a", 50)))
	req.ContentLength = -1
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var maxErr *http.MaxBytesError
	if !errors.As(readErr, &maxErr) {
		t.Fatalf("expected MaxBytesError, got %v", readErr)
	}
}

func TestRequestSize_AllowsSmallBody(t *testing.T) {
	var body []byte
	handler := RequestSize(ContactMaxBodySize)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Jane"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if string(body) != `{"name":"Jane"}` {
		t.Errorf("unexpected body %q", body)
	}
}
