package reporting

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

const (
	isoLayout     = "2006-01-02"
	compactLayout = "20060102"
)

// Date is a calendar date with no time of day. Arithmetic happens on UTC
// midnights so that the host time zone can never shift a day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalises overflowing fields the way time.Date does, so
// NewDate(2026, 1, 32) is 2026-02-01.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays moves d by n calendar days, carrying into month and year.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// ISO formats d as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Time().Format(isoLayout)
}

// Compact formats d as YYYYMMDD, the form used by calendar URLs and
// VALUE=DATE properties.
func (d Date) Compact() string {
	return d.Time().Format(compactLayout)
}

func (d Date) String() string {
	return d.ISO()
}

// MarshalText encodes d as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.ISO()), nil
}

// UnmarshalText decodes a YYYY-MM-DD value.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseISO(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseCompact parses a YYYYMMDD string.
func ParseCompact(value string) (Date, error) {
	t, err := time.ParseInLocation(compactLayout, value, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("parse compact date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// ParseISO parses a YYYY-MM-DD string.
func ParseISO(value string) (Date, error) {
	t, err := time.ParseInLocation(isoLayout, value, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return DateOf(t), nil
}

var freeFormConfig = &dateparser.Configuration{
	Languages:       []string{"en", "th"},
	DefaultTimezone: time.UTC,
	StrictParsing:   true,
}

// freeFormParser only reads absolute dates. Relative phrases such as
// "yesterday" would tie the result to the wall clock.
var freeFormParser = &dateparser.Parser{
	ParserTypes: []dateparser.ParserType{dateparser.AbsoluteTime},
}

var (
	isoShaped  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	hasYear    = regexp.MustCompile(`(^|\D)\d{4}(\D|$)`)
	hasLetters = regexp.MustCompile(`\p{L}`)
)

// ParseBaseDate reads user input. The date picker sends YYYY-MM-DD; anything
// else is given to a lenient parser so "1 January 2026" also works. Free-form
// input must spell out the month and carry a four-digit year: numeric forms
// like 01/02/2026 read differently per locale and are refused. The boolean is
// false for empty or unreadable input, which callers render as the prompt
// state.
func ParseBaseDate(input string) (Date, bool) {
	value := strings.TrimSpace(input)
	if value == "" {
		return Date{}, false
	}
	if isoShaped.MatchString(value) {
		d, err := ParseISO(value)
		if err != nil {
			return Date{}, false
		}
		return d, true
	}
	if !hasYear.MatchString(value) || !hasLetters.MatchString(value) {
		return Date{}, false
	}
	parsed, err := freeFormParser.Parse(freeFormConfig, value)
	if err != nil || parsed.Time.IsZero() {
		return Date{}, false
	}
	return DateOf(parsed.Time), true
}
