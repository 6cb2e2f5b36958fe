package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Date
		wantOK bool
	}{
		{name: "date picker value", input: "2026-01-01", want: NewDate(2026, time.January, 1), wantOK: true},
		{name: "surrounding whitespace", input: "  2026-12-31 ", want: NewDate(2026, time.December, 31), wantOK: true},
		{name: "far past", input: "1901-02-03", want: NewDate(1901, time.February, 3), wantOK: true},
		{name: "free form", input: "1 January 2026", want: NewDate(2026, time.January, 1), wantOK: true},
		{name: "empty", input: "", wantOK: false},
		{name: "blank", input: "   ", wantOK: false},
		{name: "garbage", input: "not a date", wantOK: false},
		{name: "impossible calendar day", input: "2026-02-30", wantOK: false},
		{name: "impossible month", input: "2026-13-01", wantOK: false},
		{name: "relative word", input: "yesterday", wantOK: false},
		{name: "today", input: "today", wantOK: false},
		{name: "numeric day month order is ambiguous", input: "01/02/2026", wantOK: false},
		{name: "month without year", input: "1 January", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBaseDate(tt.input)

			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDate_ArithmeticIgnoresHostZone(t *testing.T) {
	original := time.Local
	t.Cleanup(func() { time.Local = original })

	zone, err := time.LoadLocation("Pacific/Kiritimati")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	time.Local = zone

	d := NewDate(2026, time.March, 28)
	assert.Equal(t, NewDate(2026, time.March, 29), d.AddDays(1))
	assert.Equal(t, "20260328", d.Compact())
}

func TestDate_NewDateNormalises(t *testing.T) {
	assert.Equal(t, NewDate(2026, time.February, 1), NewDate(2026, time.January, 32))
	assert.Equal(t, NewDate(2025, time.December, 31), NewDate(2026, time.January, 0))
}

func TestDate_CompactRoundTrip(t *testing.T) {
	d := NewDate(2027, time.March, 31)

	back, err := ParseCompact(d.Compact())

	require.NoError(t, err)
	assert.Equal(t, d, back)
	assert.Equal(t, "2027-03-31", d.ISO())
}

func TestParseCompact_Invalid(t *testing.T) {
	_, err := ParseCompact("2026-01-01")
	require.Error(t, err)
}

func TestDate_IsZero(t *testing.T) {
	assert.True(t, Date{}.IsZero())
	assert.False(t, NewDate(2026, time.January, 1).IsZero())
}
