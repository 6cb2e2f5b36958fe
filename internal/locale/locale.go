// Package locale picks the reader's locale from Accept-Language and formats
// dates for it.
package locale

import (
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/en_GB"
	"github.com/go-playground/locales/th"
	"golang.org/x/text/language"
)

// supported is ordered; the first entry is the fallback.
var supported = []struct {
	tag        language.Tag
	translator func() locales.Translator
}{
	{language.AmericanEnglish, en.New},
	{language.BritishEnglish, en_GB.New},
	{language.Thai, th.New},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(supported))
	for i, s := range supported {
		tags[i] = s.tag
	}
	return language.NewMatcher(tags)
}()

// Formatter renders dates in one locale.
type Formatter struct {
	tag        language.Tag
	translator locales.Translator
}

// Default is the en-US formatter.
func Default() Formatter {
	return Formatter{tag: supported[0].tag, translator: supported[0].translator()}
}

// FromAcceptLanguage negotiates a formatter from an Accept-Language header.
// Malformed or empty headers fall back to Default.
func FromAcceptLanguage(header string) Formatter {
	if header == "" {
		return Default()
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default()
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default()
	}
	return Formatter{tag: supported[index].tag, translator: supported[index].translator()}
}

// Tag is the negotiated BCP 47 tag.
func (f Formatter) Tag() string {
	return f.tag.String()
}

// FormatLong returns e.g. "April 1, 2026" for en-US or "1 April 2026" for en-GB.
// The date is read in UTC so a calendar date never moves.
func (f Formatter) FormatLong(t time.Time) string {
	if f.translator == nil {
		f = Default()
	}
	return f.translator.FmtDateLong(t.UTC())
}
