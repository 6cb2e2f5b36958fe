package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Site interaction events. These replace the page-level analytics tags of
// the static site with server-side counters.
var (
	ChecklistToggles = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checklist_item_toggles_total",
			Help:      "Checklist items ticked or unticked",
		},
		[]string{"visa_type", "action"}, // action: check|uncheck
	)

	ChecklistPrints = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checklist_prints_total",
			Help:      "Checklist print views opened",
		},
		[]string{"visa_type"},
	)

	ChecklistResets = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checklist_resets_total",
			Help:      "Checklist progress resets",
		},
		[]string{"visa_type"},
	)

	ContactSubmissions = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions by outcome",
		},
		[]string{"success"},
	)

	CalendarExports = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calendar_exports_total",
			Help:      "90-day reminders exported to a calendar",
		},
		[]string{"type"}, // type: google|ics
	)

	CalculatorUses = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculator_uses_total",
			Help:      "90-day windows computed from a valid base date",
		},
	)

	FontSizeChanges = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "font_size_changes_total",
			Help:      "Text size preference changes",
		},
		[]string{"size"},
	)

	HomepageSelections = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "homepage_checklist_selections_total",
			Help:      "Visa cards chosen from the home page grid",
		},
		[]string{"checklist"},
	)
)

// Calendar export types.
const (
	ExportGoogle = "google"
	ExportICS    = "ics"
)

func RecordToggle(visa string, checked bool) {
	action := "uncheck"
	if checked {
		action = "check"
	}
	ChecklistToggles.WithLabelValues(visa, action).Inc()
}

func RecordContactSubmit(success bool) {
	ContactSubmissions.WithLabelValues(strconv.FormatBool(success)).Inc()
}
