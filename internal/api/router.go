package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/thaivisachecklist/server/internal/api/handlers"
	"github.com/thaivisachecklist/server/internal/api/middleware"
	"github.com/thaivisachecklist/server/internal/api/render"
	"github.com/thaivisachecklist/server/internal/checklist"
	"github.com/thaivisachecklist/server/internal/config"
	"github.com/thaivisachecklist/server/internal/contact"
	"github.com/thaivisachecklist/server/internal/content"
	"github.com/thaivisachecklist/server/internal/metrics"
	"github.com/thaivisachecklist/server/internal/reporting"
	"github.com/thaivisachecklist/server/web"
)

// pageTemplates must all parse for the server to report ready.
var pageTemplates = []string{"home", "guides", "guide", "news", "page", "stages", "checklist", "contact", "notfound"}

// Deps are the loaded services the router wires into handlers.
type Deps struct {
	Config     config.Config
	Logger     zerolog.Logger
	Build      BuildInfo
	Site       *content.Site
	Catalog    *checklist.Catalog
	Contact    *contact.Service
	Calculator *reporting.Calculator
	// StartedAt stamps sitemap entries.
	StartedAt time.Time
}

// Router is the assembled HTTP handler plus the parts the server manages
// during shutdown.
type Router struct {
	Handler     http.Handler
	Health      *handlers.HealthChecker
	RateLimiter *middleware.RateLimiter
}

// Close stops background work started by the router.
func (r *Router) Close() {
	if r.RateLimiter != nil {
		r.RateLimiter.Stop()
	}
}

func NewRouter(deps Deps) (*Router, error) {
	cfg := deps.Config
	secure := cfg.IsProduction()

	renderer, err := render.New(web.Templates())
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	jar, err := checklist.NewCookieJar([]byte(cfg.Security.CookieHashKey), secure)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	startedAt := deps.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	views := handlers.NewViews(renderer, jar, cfg.Server.BaseURL, cfg.Environment)
	calc := handlers.NewCalculatorHandler(deps.Calculator, cfg.Environment)
	pages := handlers.NewPagesHandler(views, deps.Site, calc)
	lists := handlers.NewChecklistHandler(views, deps.Catalog)
	contactHandler := handlers.NewContactHandler(views, deps.Contact)

	health := handlers.NewHealthChecker(deps.Build.Version, deps.Build.GitCommit)
	health.AddCheck("content", handlers.ContentCheck(deps.Site, deps.Catalog))
	health.AddCheck("templates", handlers.TemplatesCheck(renderer, pageTemplates...))
	health.AddCheck("email", handlers.EmailCheck(cfg.Email))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.Environment)

	// HTML routes all pass through CSRF protection so forms can embed the
	// token; only unsafe methods are checked.
	csrfProtect := middleware.CSRFProtection([]byte(cfg.Security.CSRFKey), secure, cfg.Environment)
	html := func(h http.HandlerFunc) http.Handler {
		return csrfProtect(h)
	}
	form := func(h http.HandlerFunc) http.Handler {
		return middleware.RequestSize(middleware.PageMaxBodySize)(csrfProtect(h))
	}
	// Contact posts draw from the contact bucket on top of the public one.
	contactPost := func(h http.Handler) http.Handler {
		return middleware.WithRateLimitTierHandler(middleware.TierContact)(
			rateLimiter.Middleware(middleware.RequestSize(middleware.ContactMaxBodySize)(h)))
	}

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", health.Readyz())
	mux.Handle("GET /health", health.Health())
	mux.Handle("GET /version", VersionHandler(deps.Build, cfg.Environment))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /api/v1/openapi.json", OpenAPIHandler())

	mux.Handle("GET /static/", web.StaticHandler())
	mux.Handle("GET /robots.txt", web.RobotsTxtHandler(cfg.Server.BaseURL))
	mux.Handle("GET /sitemap.xml", handlers.Sitemap(deps.Site.Sitemap, cfg.Server.BaseURL, startedAt, cfg.Environment))

	mux.Handle("GET /", html(pages.Home))
	mux.Handle("GET /guides", html(pages.Guides))
	mux.Handle("GET /guides/{slug}", html(pages.Guide))
	mux.Handle("GET /tdac", html(pages.GuideAt("tdac")))
	mux.Handle("GET /visa-news", html(pages.News))
	mux.Handle("GET /about", html(pages.PageAt("about")))
	mux.Handle("GET /visa/{visa}", html(lists.Extension))
	mux.Handle("GET /visa/{visa}/stages", html(pages.Stages))
	mux.Handle("GET /visa/{visa}/stages/{stage}", html(lists.Stage))

	mux.Handle("POST /checklists/{id}/toggle", form(lists.Toggle))
	mux.Handle("POST /checklists/{id}/reset", form(lists.Reset))
	mux.Handle("POST /preferences/font-size", form(lists.FontSize))

	mux.Handle("GET /contact", html(contactHandler.Form))
	mux.Handle("POST /contact", contactPost(csrfProtect(http.HandlerFunc(contactHandler.SubmitForm))))
	mux.Handle("GET /get-in-touch", http.RedirectHandler("/contact", http.StatusMovedPermanently))

	mux.HandleFunc("GET /api/v1/ninety-day", calc.Window)
	mux.HandleFunc("GET /api/v1/ninety-day/reminder.ics", calc.ICS)
	mux.HandleFunc("GET /api/v1/ninety-day/google", calc.Google)
	mux.Handle("POST /api/contact", contactPost(http.HandlerFunc(contactHandler.SubmitJSON)))

	var handler http.Handler = metrics.HTTPMiddleware(mux)
	handler = rateLimiter.Middleware(handler)
	handler = middleware.CORS(cfg.CORS, deps.Logger)(handler)
	handler = middleware.SecurityHeaders(secure)(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)

	return &Router{Handler: handler, Health: health, RateLimiter: rateLimiter}, nil
}
