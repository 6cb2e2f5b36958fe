package reporting

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedBuilder() *ICSBuilder {
	return NewICSBuilder(
		WithUIDFunc(func() string { return "test-uid" }),
		WithClock(func() time.Time {
			return time.Date(2026, time.October, 16, 9, 30, 15, 0, time.FixedZone("ICT", 7*3600))
		}),
	)
}

func sampleReminder() Reminder {
	return Compute(NewDate(2026, time.January, 1)).Reminder(isoFormatter{})
}

func TestGoogleCalendarURL(t *testing.T) {
	r := sampleReminder()

	raw := GoogleCalendarURL(r)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "calendar.google.com", u.Host)
	assert.Equal(t, "/calendar/render", u.Path)

	q := u.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, ReminderTitle, q.Get("text"))
	assert.Equal(t, r.Details, q.Get("details"))
	assert.Equal(t, "20260317/20260318", q.Get("dates"))
}

func TestGoogleCalendarURL_DatesRoundTrip(t *testing.T) {
	r := sampleReminder()

	u, err := url.Parse(GoogleCalendarURL(r))
	require.NoError(t, err)

	parts := strings.Split(u.Query().Get("dates"), "/")
	require.Len(t, parts, 2)

	start, err := ParseCompact(parts[0])
	require.NoError(t, err)
	end, err := ParseCompact(parts[1])
	require.NoError(t, err)

	assert.Equal(t, r.Start, start)
	assert.Equal(t, r.End, end)
}

func TestICSBuilder_Build(t *testing.T) {
	payload := fixedBuilder().Build(sampleReminder())

	assert.True(t, strings.HasPrefix(payload, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n"))
	assert.True(t, strings.HasSuffix(strings.TrimSuffix(payload, "\r\n"), "END:VEVENT\r\nEND:VCALENDAR"))
	assert.NotContains(t, strings.ReplaceAll(payload, "\r\n", ""), "\n", "every line ends with CRLF")

	lines := UnfoldICS(payload)
	assert.Equal(t, []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Thai Visa Checklist//90 Day Report//EN",
		"CALSCALE:GREGORIAN",
		"BEGIN:VEVENT",
		"UID:test-uid",
		"DTSTAMP:20261016T023015Z",
		"SUMMARY:Thailand 90-Day Report Window Opens",
		`DESCRIPTION:Your 90-day reporting window opens today.\n\nDue date: 2026-04-01\nWindow: 2026-03-17 to 2026-04-08\n\nTip: Do it early (online can be unreliable).`,
		"DTSTART;VALUE=DATE:20260317",
		"DTEND;VALUE=DATE:20260318",
		"END:VEVENT",
		"END:VCALENDAR",
	}, lines)
}

func TestICSBuilder_FoldsLongLines(t *testing.T) {
	payload := fixedBuilder().Build(sampleReminder())

	for _, line := range strings.Split(payload, "\r\n") {
		if !strings.HasPrefix(line, " ") {
			assert.LessOrEqual(t, len(line), 75, "line too long: %q", line)
		}
	}
	assert.Contains(t, payload, "\r\n ")
}

func TestICSBuilder_FoldKeepsMultibyteRunes(t *testing.T) {
	r := sampleReminder()
	r.Details = strings.Repeat("ไทย", 30)

	payload := fixedBuilder().Build(r)

	for _, part := range strings.Split(payload, "\r\n") {
		assert.True(t, strings.ToValidUTF8(part, "?") == part, "split rune in %q", part)
	}
	assert.Contains(t, UnfoldICS(payload), "DESCRIPTION:"+r.Details)
}

func TestICSBuilder_EscapesText(t *testing.T) {
	r := Reminder{
		Title:   "a, b; c",
		Details: "line one\nback\\slash",
		Start:   NewDate(2026, time.January, 1),
		End:     NewDate(2026, time.January, 2),
	}

	lines := UnfoldICS(fixedBuilder().Build(r))

	assert.Contains(t, lines, `SUMMARY:a\, b\; c`)
	assert.Contains(t, lines, `DESCRIPTION:line one\nback\\slash`)
}

func TestICSBuilder_DatesRoundTrip(t *testing.T) {
	r := sampleReminder()
	lines := UnfoldICS(fixedBuilder().Build(r))

	var start, end string
	for _, line := range lines {
		if v, ok := strings.CutPrefix(line, "DTSTART;VALUE=DATE:"); ok {
			start = v
		}
		if v, ok := strings.CutPrefix(line, "DTEND;VALUE=DATE:"); ok {
			end = v
		}
	}

	gotStart, err := ParseCompact(start)
	require.NoError(t, err)
	gotEnd, err := ParseCompact(end)
	require.NoError(t, err)
	assert.Equal(t, r.Start, gotStart)
	assert.Equal(t, r.End, gotEnd)
}

func TestICSBuilder_DefaultUIDIsUnique(t *testing.T) {
	b := NewICSBuilder()
	r := sampleReminder()

	uid := func(payload string) string {
		for _, line := range UnfoldICS(payload) {
			if v, ok := strings.CutPrefix(line, "UID:"); ok {
				return v
			}
		}
		return ""
	}

	first := uid(b.Build(r))
	second := uid(b.Build(r))
	require.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
