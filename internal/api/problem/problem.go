// Package problem writes RFC 7807 problem documents.
package problem

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

// Problem type URIs.
const (
	TypeValidation  = "https://www.thaivisachecklist.com/problems/validation"
	TypeBadRequest  = "https://www.thaivisachecklist.com/problems/bad-request"
	TypeNotFound    = "https://www.thaivisachecklist.com/problems/not-found"
	TypeRateLimited = "https://www.thaivisachecklist.com/problems/rate-limited"
	TypeTooLarge    = "https://www.thaivisachecklist.com/problems/payload-too-large"
	TypeForbidden   = "https://www.thaivisachecklist.com/problems/forbidden"
	TypeServerError = "https://www.thaivisachecklist.com/problems/server-error"
)

type ProblemDetails struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Status   int            `json:"status"`
	Detail   string         `json:"detail,omitempty"`
	Instance string         `json:"instance,omitempty"`
	Errors   map[string]any `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithErrors(errs map[string]any) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// Write logs err at a level matching status and writes the problem. The
// error text becomes the detail only in development and test; elsewhere the
// detail falls back to the status text.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	problem := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&problem)
	}

	if problem.Detail == "" && err != nil {
		if env == "development" || env == "test" {
			problem.Detail = err.Error()
		} else {
			problem.Detail = http.StatusText(status)
		}
	}

	if r != nil {
		problem.Instance = r.URL.Path
		if err != nil {
			logger := zerolog.Ctx(r.Context())
			event := logger.Warn()
			if status >= 500 {
				event = logger.Error()
			}
			event.Err(err).
				Int("status", status).
				Str("type", typ).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg(title)
		}
	}

	WriteProblem(w, problem)
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}
