package handlers

import (
	"errors"
	"net/http"

	"github.com/thaivisachecklist/server/internal/api/problem"
	"github.com/thaivisachecklist/server/internal/content"
	"github.com/thaivisachecklist/server/internal/metrics"
)

// Listing page copy.
const (
	homeDescription   = "Free, comprehensive document checklists for Thai visa applications. Marriage visa, retirement visa, business visa and more."
	guidesTitle       = "Thai Visa Guides"
	guidesDescription = "Plain-English guides to 90-day reporting, re-entry permits, TM.30, TDAC and more."
	newsTitle         = "Thai Visa News"
	newsDescription   = "Announcements from Thai immigration that change what you need to bring."
)

// PagesHandler serves the content pages: home, guides, news, about and
// the visa stage overviews.
type PagesHandler struct {
	Views *Views
	Site  *content.Site
	Calc  *CalculatorHandler
}

func NewPagesHandler(views *Views, site *content.Site, calc *CalculatorHandler) *PagesHandler {
	return &PagesHandler{Views: views, Site: site, Calc: calc}
}

type homeData struct {
	Visas  []content.Visa
	Guides []*content.Guide
}

// Home handles GET /. The pattern "/" matches every unrouted path, so
// anything but the root is a 404.
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.Views.NotFound(w, r)
		return
	}
	data := homeData{Visas: h.Site.Visas, Guides: h.Site.Guides.All()}
	h.Views.render(w, r, http.StatusOK, "home", h.Views.page(w, r, "", homeDescription, data))
}

// Guides handles GET /guides.
func (h *PagesHandler) Guides(w http.ResponseWriter, r *http.Request) {
	data := struct{ Guides []*content.Guide }{Guides: h.Site.Guides.All()}
	h.Views.render(w, r, http.StatusOK, "guides", h.Views.page(w, r, guidesTitle, guidesDescription, data))
}

type guideData struct {
	Guide      *content.Guide
	Calculator *calculatorView
}

// Guide handles GET /guides/{slug}. Guides that live at their own path,
// such as /tdac, redirect there.
func (h *PagesHandler) Guide(w http.ResponseWriter, r *http.Request) {
	guide, err := h.Site.Guides.Get(r.PathValue("slug"))
	if err != nil {
		h.Views.NotFound(w, r)
		return
	}
	if guide.Path != r.URL.Path {
		http.Redirect(w, r, guide.Path, http.StatusMovedPermanently)
		return
	}
	h.renderGuide(w, r, guide)
}

// GuideAt returns a handler serving one guide at a fixed path.
func (h *PagesHandler) GuideAt(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guide, err := h.Site.Guides.Get(slug)
		if err != nil {
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Views.Env)
			return
		}
		h.renderGuide(w, r, guide)
	}
}

func (h *PagesHandler) renderGuide(w http.ResponseWriter, r *http.Request, guide *content.Guide) {
	data := guideData{Guide: guide}
	if guide.Calculator && h.Calc != nil {
		view := h.Calc.view(r, guide.Path)
		data.Calculator = &view
	}
	h.Views.render(w, r, http.StatusOK, "guide", h.Views.page(w, r, guide.MetaTitle, guide.MetaDescription, data))
}

type newsData struct {
	Pinned []content.NewsItem
	Latest []content.NewsItem
}

// News handles GET /visa-news.
func (h *PagesHandler) News(w http.ResponseWriter, r *http.Request) {
	pinned, latest := h.Site.News.Split()
	data := newsData{Pinned: pinned, Latest: latest}
	h.Views.render(w, r, http.StatusOK, "news", h.Views.page(w, r, newsTitle, newsDescription, data))
}

// PageAt returns a handler serving a free-form page by slug.
func (h *PagesHandler) PageAt(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.Site.Page(slug)
		if err != nil {
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Views.Env)
			return
		}
		data := struct{ Page *content.Page }{Page: page}
		h.Views.render(w, r, http.StatusOK, "page", h.Views.page(w, r, page.MetaTitle, page.MetaDescription, data))
	}
}

// Stages handles GET /visa/{visa}/stages. Arriving from the home page
// grid counts as a homepage selection.
func (h *PagesHandler) Stages(w http.ResponseWriter, r *http.Request) {
	visa := r.PathValue("visa")
	route, err := h.Site.Route(visa)
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) {
			logger(r).Error().Err(err).Str("visa", visa).Msg("load stage overview")
		}
		h.Views.NotFound(w, r)
		return
	}

	if r.URL.Query().Get("from") == "home" {
		metrics.HomepageSelections.WithLabelValues(visa).Inc()
	}

	data := struct{ Route *content.Route }{Route: route}
	h.Views.render(w, r, http.StatusOK, "stages", h.Views.page(w, r, route.MetaTitle, route.MetaDescription, data))
}
