package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/thaivisachecklist/server/internal/api/render"
	"github.com/thaivisachecklist/server/internal/checklist"
	"github.com/thaivisachecklist/server/internal/contact"
	"github.com/thaivisachecklist/server/internal/content"
	"github.com/thaivisachecklist/server/internal/email"
	"github.com/thaivisachecklist/server/internal/reporting"
	"github.com/thaivisachecklist/server/web"
)

const testBaseURL = "https://example.test"

var testCookieKey = []byte("0123456789abcdef0123456789abcdef")

// recordingMailer captures contact messages instead of sending them.
type recordingMailer struct {
	mu   sync.Mutex
	sent []email.ContactMessage
	err  error
}

func (m *recordingMailer) SendContactMessage(_ context.Context, msg email.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []email.ContactMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.ContactMessage(nil), m.sent...)
}

var errMailerDown = errors.New("smtp: connection refused")

type testEnv struct {
	views     *Views
	site      *content.Site
	catalog   *checklist.Catalog
	mailer    *recordingMailer
	pages     *PagesHandler
	checklist *ChecklistHandler
	contact   *ContactHandler
	calc      *CalculatorHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	renderer, err := render.New(web.Templates())
	require.NoError(t, err)
	site, err := content.Load()
	require.NoError(t, err)
	catalog, err := checklist.LoadCatalog()
	require.NoError(t, err)
	jar, err := checklist.NewCookieJar(testCookieKey, false)
	require.NoError(t, err)

	views := NewViews(renderer, jar, testBaseURL, "test")
	views.now = func() time.Time { return time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC) }

	calc := NewCalculatorHandler(reporting.NewCalculator(reporting.NewICSBuilder(
		reporting.WithUIDFunc(func() string { return "test-uid" }),
	)), "test")
	mailer := &recordingMailer{}

	return &testEnv{
		views:     views,
		site:      site,
		catalog:   catalog,
		mailer:    mailer,
		calc:      calc,
		pages:     NewPagesHandler(views, site, calc),
		checklist: NewChecklistHandler(views, catalog),
		contact:   NewContactHandler(views, contact.NewService(mailer, zerolog.Nop())),
	}
}

// serve runs a single handler as the router would, with pattern supplying
// the path values.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func postForm(target string, form string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// withCookies copies the cookies set on rec onto req.
func withCookies(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}
