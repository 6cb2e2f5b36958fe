package reporting

import (
	"net/url"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const (
	// GoogleCalendarBaseURL is the event template endpoint of Google Calendar.
	GoogleCalendarBaseURL = "https://calendar.google.com/calendar/render"

	// ICSFilename is the name the downloaded calendar file is saved under.
	ICSFilename = "thailand-90-day-report.ics"
	// ICSContentType is served with every calendar file.
	ICSContentType = "text/calendar; charset=utf-8"

	icsProductID = "-//Thai Visa Checklist//90 Day Report//EN"
)

// GoogleCalendarURL returns a link that opens Google Calendar with r
// pre-filled as an all-day event.
func GoogleCalendarURL(r Reminder) string {
	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", r.Title)
	params.Set("details", r.Details)
	params.Set("dates", r.Start.Compact()+"/"+r.End.Compact())

	u, _ := url.Parse(GoogleCalendarBaseURL)
	u.RawQuery = params.Encode()
	return u.String()
}

// ICSBuilder renders reminders as iCalendar files. The zero value is not
// usable; call NewICSBuilder.
type ICSBuilder struct {
	newUID func() string
	now    func() time.Time
}

// ICSOption customises an ICSBuilder.
type ICSOption func(*ICSBuilder)

// WithUIDFunc replaces the random UID generator.
func WithUIDFunc(fn func() string) ICSOption {
	return func(b *ICSBuilder) {
		b.newUID = fn
	}
}

// WithClock replaces the clock used for DTSTAMP.
func WithClock(fn func() time.Time) ICSOption {
	return func(b *ICSBuilder) {
		b.now = fn
	}
}

// NewICSBuilder returns a builder that stamps each file with a random UUID
// and the current UTC time.
func NewICSBuilder(opts ...ICSOption) *ICSBuilder {
	b := &ICSBuilder{
		newUID: uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build renders r as a single all-day VEVENT with CRLF line endings. The
// library escapes TEXT values and folds lines longer than 75 octets.
func (b *ICSBuilder) Build(r Reminder) string {
	cal := ics.NewCalendar()
	cal.SetProductId(icsProductID)
	cal.SetCalscale("GREGORIAN")

	event := cal.AddEvent(b.newUID())
	event.SetDtStampTime(b.now().UTC())
	event.SetSummary(r.Title)
	event.SetDescription(r.Details)
	event.SetAllDayStartAt(r.Start.Time())
	event.SetAllDayEndAt(r.End.Time())

	return cal.Serialize()
}

// UnfoldICS reverses line folding and splits the payload into content lines.
func UnfoldICS(payload string) []string {
	unfolded := strings.ReplaceAll(payload, "\r\n ", "")
	unfolded = strings.TrimSuffix(unfolded, "\r\n")
	return strings.Split(unfolded, "\r\n")
}
