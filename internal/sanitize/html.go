// Package sanitize cleans authored HTML fragments before they are rendered.
package sanitize

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

// ContentPolicy allows the formatting used in guide and news copy:
// paragraphs, emphasis, lists, line breaks and links. External links open in
// a new tab with noopener.
var ContentPolicy = newContentPolicy()

func newContentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.RequireNoReferrerOnFullyQualifiedLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// HTML sanitizes an authored fragment, keeping safe formatting.
func HTML(input string) string {
	return ContentPolicy.Sanitize(input)
}

// Fragment sanitizes input and marks it safe for html/template.
func Fragment(input string) template.HTML {
	return template.HTML(HTML(input)) // #nosec G203 -- sanitized above
}
