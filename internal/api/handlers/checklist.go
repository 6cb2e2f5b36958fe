package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/thaivisachecklist/server/internal/api/problem"
	"github.com/thaivisachecklist/server/internal/checklist"
	"github.com/thaivisachecklist/server/internal/metrics"
)

// ChecklistHandler serves the checklist pages and the form posts that tick
// items, reset progress and change the text size. Progress lives in signed
// cookies on the visitor's device.
type ChecklistHandler struct {
	Views   *Views
	Catalog *checklist.Catalog
}

func NewChecklistHandler(views *Views, catalog *checklist.Catalog) *ChecklistHandler {
	return &ChecklistHandler{Views: views, Catalog: catalog}
}

type checklistData struct {
	Checklist *checklist.Checklist
	State     checklist.State
	Progress  checklist.Progress
	FontSizes []checklist.FontSize
	Print     bool
}

// Extension handles GET /visa/{visa}.
func (h *ChecklistHandler) Extension(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.Extension(r.PathValue("visa"))
	if err != nil {
		h.Views.NotFound(w, r)
		return
	}
	h.show(w, r, list)
}

// Stage handles GET /visa/{visa}/stages/{stage}, where stage is "stage-N".
func (h *ChecklistHandler) Stage(w http.ResponseWriter, r *http.Request) {
	n, ok := parseStage(r.PathValue("stage"))
	if !ok {
		h.Views.NotFound(w, r)
		return
	}
	list, err := h.Catalog.Stage(r.PathValue("visa"), n)
	if err != nil {
		h.Views.NotFound(w, r)
		return
	}
	if list.Path() != r.URL.Path {
		http.Redirect(w, r, list.Path(), http.StatusMovedPermanently)
		return
	}
	h.show(w, r, list)
}

func parseStage(raw string) (int, bool) {
	digits, ok := strings.CutPrefix(raw, "stage-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (h *ChecklistHandler) show(w http.ResponseWriter, r *http.Request, list *checklist.Checklist) {
	query := r.URL.Query()
	printView := query.Get("print") == "1"
	if printView {
		metrics.ChecklistPrints.WithLabelValues(list.ID).Inc()
	}
	if query.Get("from") == "home" {
		metrics.HomepageSelections.WithLabelValues(list.ID).Inc()
	}

	tracker := checklist.NewTracker(h.Views.Cookies.Store(w, r), list)
	state := tracker.State()
	data := checklistData{
		Checklist: list,
		State:     state,
		Progress:  tracker.Progress(state),
		FontSizes: checklist.FontSizes,
		Print:     printView,
	}

	page := h.Views.page(w, r, list.MetaTitle, list.MetaDescription, data)
	w.Header().Set("Cache-Control", "private, no-store")
	h.Views.render(w, r, http.StatusOK, "checklist", page)
}

// lookup resolves the {id} path value or writes a 404.
func (h *ChecklistHandler) lookup(w http.ResponseWriter, r *http.Request) (*checklist.Checklist, bool) {
	list, err := h.Catalog.Get(r.PathValue("id"))
	if err != nil {
		h.Views.NotFound(w, r)
		return nil, false
	}
	return list, true
}

// Toggle handles POST /checklists/{id}/toggle and flips the item named by
// the "key" form field.
func (h *ChecklistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	list, ok := h.lookup(w, r)
	if !ok {
		return
	}

	key := r.PostFormValue("key")
	checked, err := checklist.NewTracker(h.Views.Cookies.Store(w, r), list).Toggle(key)
	if err != nil {
		if errors.Is(err, checklist.ErrNotFound) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Unknown checklist item", err, h.Views.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Views.Env)
		return
	}

	metrics.RecordToggle(list.ID, checked)
	http.Redirect(w, r, list.Path(), http.StatusSeeOther)
}

// Reset handles POST /checklists/{id}/reset.
func (h *ChecklistHandler) Reset(w http.ResponseWriter, r *http.Request) {
	list, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := checklist.NewTracker(h.Views.Cookies.Store(w, r), list).Reset(); err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Views.Env)
		return
	}

	metrics.ChecklistResets.WithLabelValues(list.ID).Inc()
	http.Redirect(w, r, list.Path(), http.StatusSeeOther)
}

// FontSize handles POST /preferences/font-size. Unknown sizes leave the
// stored preference untouched.
func (h *ChecklistHandler) FontSize(w http.ResponseWriter, r *http.Request) {
	back := localPath(r.PostFormValue("return"), "/")

	size, ok := checklist.ParseFontSize(r.PostFormValue("size"))
	if ok {
		if err := checklist.SaveFontSize(h.Views.Cookies.Store(w, r), size); err != nil {
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Views.Env)
			return
		}
		metrics.FontSizeChanges.WithLabelValues(string(size)).Inc()
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}
