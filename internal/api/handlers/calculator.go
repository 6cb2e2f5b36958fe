package handlers

import (
	"net/http"
	"net/url"

	"github.com/thaivisachecklist/server/internal/api/problem"
	"github.com/thaivisachecklist/server/internal/locale"
	"github.com/thaivisachecklist/server/internal/metrics"
	"github.com/thaivisachecklist/server/internal/reporting"
	"github.com/thaivisachecklist/server/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const (
	icsPath    = "/api/v1/ninety-day/reminder.ics"
	googlePath = "/api/v1/ninety-day/google"

	promptMessage = "Pick a date to see your due date + reporting window."
)

// CalculatorHandler serves the 90-day calculator API and the calendar
// exports linked from the calculator.
type CalculatorHandler struct {
	Calculator *reporting.Calculator
	Env        string
}

func NewCalculatorHandler(calc *reporting.Calculator, env string) *CalculatorHandler {
	if calc == nil {
		calc = reporting.NewCalculator(nil)
	}
	return &CalculatorHandler{Calculator: calc, Env: env}
}

type promptResponse struct {
	State   string `json:"state"`
	Message string `json:"message"`
}

type reminderResponse struct {
	Title   string         `json:"title"`
	Details string         `json:"details"`
	Start   reporting.Date `json:"start"`
	End     reporting.Date `json:"end"`
}

type formattedDates struct {
	Due   string `json:"due_date"`
	Open  string `json:"window_open"`
	Close string `json:"window_close"`
}

type windowResponse struct {
	State string `json:"state"`
	reporting.Window
	Formatted         formattedDates   `json:"formatted"`
	Locale            string           `json:"locale"`
	Reminder          reminderResponse `json:"reminder"`
	GoogleCalendarURL string           `json:"google_calendar_url"`
	ICSURL            string           `json:"ics_url"`
}

// calculate runs the calculator on the request's base query parameter in
// the reader's locale.
func (h *CalculatorHandler) calculate(r *http.Request) (*reporting.Result, locale.Formatter, bool) {
	_, span := telemetry.Tracer().Start(r.Context(), "calculate window")
	defer span.End()

	f := locale.FromAcceptLanguage(r.Header.Get("Accept-Language"))
	result, ok := h.Calculator.Calculate(r.URL.Query().Get("base"), f)
	span.SetAttributes(
		attribute.Bool("calculator.valid", ok),
		attribute.String("calculator.locale", f.Tag()),
	)
	if !ok {
		return nil, f, false
	}
	span.SetAttributes(attribute.String("calculator.base_date", result.Base.ISO()))
	return result, f, true
}

func exportQuery(base reporting.Date) string {
	return "?base=" + url.QueryEscape(base.ISO())
}

// Window handles GET /api/v1/ninety-day. A missing or unreadable base date
// is not an error; the response carries the prompt state instead.
func (h *CalculatorHandler) Window(w http.ResponseWriter, r *http.Request) {
	result, f, ok := h.calculate(r)
	if !ok {
		writeJSON(w, http.StatusOK, promptResponse{State: "prompt", Message: promptMessage})
		return
	}
	metrics.CalculatorUses.Inc()

	writeJSON(w, http.StatusOK, windowResponse{
		State:  "result",
		Window: result.Window,
		Formatted: formattedDates{
			Due:   f.FormatLong(result.Due.Time()),
			Open:  f.FormatLong(result.Open.Time()),
			Close: f.FormatLong(result.Close.Time()),
		},
		Locale: f.Tag(),
		Reminder: reminderResponse{
			Title:   result.Reminder.Title,
			Details: result.Reminder.Details,
			Start:   result.Reminder.Start,
			End:     result.Reminder.End,
		},
		GoogleCalendarURL: result.GoogleURL,
		ICSURL:            icsPath + exportQuery(result.Base),
	})
}

// ICS handles GET /api/v1/ninety-day/reminder.ics and downloads the reminder
// as an iCalendar file.
func (h *CalculatorHandler) ICS(w http.ResponseWriter, r *http.Request) {
	result, _, ok := h.calculate(r)
	if !ok {
		invalidBaseDate(w, r, h.Env)
		return
	}

	metrics.CalendarExports.WithLabelValues(metrics.ExportICS).Inc()
	w.Header().Set("Content-Type", reporting.ICSContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+reporting.ICSFilename+`"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.ICS))
}

// Google handles GET /api/v1/ninety-day/google. It counts the export and
// redirects to the pre-filled Google Calendar event.
func (h *CalculatorHandler) Google(w http.ResponseWriter, r *http.Request) {
	result, _, ok := h.calculate(r)
	if !ok {
		invalidBaseDate(w, r, h.Env)
		return
	}

	metrics.CalendarExports.WithLabelValues(metrics.ExportGoogle).Inc()
	http.Redirect(w, r, result.GoogleURL, http.StatusFound)
}

// calculatorView is the data the calculator partial renders.
type calculatorView struct {
	Action string
	Input  string
	Result *calculatorResultView
}

type calculatorResultView struct {
	Due         string
	Open        string
	Close       string
	GoogleLink  string
	ICSLink     string
	ICSFilename string
}

// view calculates for the page at action and shapes the result for the
// calculator partial.
func (h *CalculatorHandler) view(r *http.Request, action string) calculatorView {
	view := calculatorView{Action: action, Input: r.URL.Query().Get("base")}
	result, f, ok := h.calculate(r)
	if !ok {
		return view
	}
	metrics.CalculatorUses.Inc()

	query := exportQuery(result.Base)
	view.Input = result.Base.ISO()
	view.Result = &calculatorResultView{
		Due:         f.FormatLong(result.Due.Time()),
		Open:        f.FormatLong(result.Open.Time()),
		Close:       f.FormatLong(result.Close.Time()),
		GoogleLink:  googlePath + query,
		ICSLink:     icsPath + query,
		ICSFilename: reporting.ICSFilename,
	}
	return view
}

func invalidBaseDate(w http.ResponseWriter, r *http.Request, env string) {
	problem.Write(w, r, http.StatusBadRequest, problem.TypeBadRequest, "Invalid base date", nil, env,
		problem.WithDetail("Enter your last entry or 90-day report date, for example 2026-01-01."),
		problem.WithErrors(map[string]any{"base": "a date such as 2026-01-01 is required"}))
}
