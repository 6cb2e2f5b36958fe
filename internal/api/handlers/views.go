package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/thaivisachecklist/server/internal/api/middleware"
	"github.com/thaivisachecklist/server/internal/api/problem"
	"github.com/thaivisachecklist/server/internal/api/render"
	"github.com/thaivisachecklist/server/internal/checklist"
)

// Views carries what every HTML handler needs to put a page on screen.
type Views struct {
	Renderer *render.Renderer
	Cookies  *checklist.CookieJar
	BaseURL  string
	Env      string

	now func() time.Time
}

func NewViews(renderer *render.Renderer, cookies *checklist.CookieJar, baseURL, env string) *Views {
	return &Views{
		Renderer: renderer,
		Cookies:  cookies,
		BaseURL:  baseURL,
		Env:      env,
		now:      time.Now,
	}
}

// page fills the layout fields shared by every template.
func (v *Views) page(w http.ResponseWriter, r *http.Request, title, description string, data any) render.Page {
	return render.Page{
		Title:        title,
		Description:  description,
		Path:         r.URL.Path,
		CanonicalURL: v.BaseURL + r.URL.Path,
		FontSize:     checklist.LoadFontSize(v.Cookies.Store(w, r)),
		CSRFField:    middleware.CSRFField(r),
		Year:         v.now().Year(),
		Data:         data,
	}
}

func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, name string, page render.Page) {
	if err := v.Renderer.HTML(w, status, name, page); err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, v.Env)
	}
}

// NotFound renders the site's 404 page.
func (v *Views) NotFound(w http.ResponseWriter, r *http.Request) {
	v.render(w, r, http.StatusNotFound, "notfound", v.page(w, r, "Page not found", "", nil))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// localPath accepts only same-site absolute paths for redirects.
func localPath(raw, fallback string) string {
	if len(raw) < 1 || raw[0] != '/' || (len(raw) > 1 && (raw[1] == '/' || raw[1] == '\\')) {
		return fallback
	}
	return raw
}

func logger(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}
