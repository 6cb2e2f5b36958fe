// Package reporting computes the Thai immigration 90-day reporting deadline
// and the calendar reminders that go with it.
package reporting

import (
	"fmt"
	"time"
)

const (
	// DueAfterDays is the distance from the last entry (or last report) to the
	// next due date.
	DueAfterDays = 90
	// OpensBeforeDays is how early a report may be filed.
	OpensBeforeDays = 15
	// ClosesAfterDays is how late a report may be filed without a fine.
	ClosesAfterDays = 7

	// ReminderTitle is the summary of every generated reminder.
	ReminderTitle = "Thailand 90-Day Report Window Opens"
)

// Window is everything derived from a single base date.
type Window struct {
	Base  Date `json:"base_date"`
	Due   Date `json:"due_date"`
	Open  Date `json:"window_open"`
	Close Date `json:"window_close"`
}

// Compute derives the due date and the reporting window from base.
func Compute(base Date) Window {
	due := base.AddDays(DueAfterDays)
	return Window{
		Base:  base,
		Due:   due,
		Open:  due.AddDays(-OpensBeforeDays),
		Close: due.AddDays(ClosesAfterDays),
	}
}

// Contains reports whether d falls inside the filing window, both ends included.
func (w Window) Contains(d Date) bool {
	t := d.Time()
	return !t.Before(w.Open.Time()) && !t.After(w.Close.Time())
}

// Formatter renders a date for a human reader.
type Formatter interface {
	FormatLong(t time.Time) string
}

// Reminder is an all-day calendar event. End is exclusive, as both Google
// Calendar and iCalendar expect for whole-day events.
type Reminder struct {
	Title   string
	Details string
	Start   Date
	End     Date
}

// Reminder builds the calendar event for w. The event sits on the day the
// window opens, not on the due date.
func (w Window) Reminder(f Formatter) Reminder {
	details := fmt.Sprintf("Your 90-day reporting window opens today.\n\n"+
		"Due date: %s\n"+
		"Window: %s to %s\n\n"+
		"Tip: Do it early (online can be unreliable).",
		f.FormatLong(w.Due.Time()),
		f.FormatLong(w.Open.Time()),
		f.FormatLong(w.Close.Time()),
	)
	return Reminder{
		Title:   ReminderTitle,
		Details: details,
		Start:   w.Open,
		End:     w.Open.AddDays(1),
	}
}
