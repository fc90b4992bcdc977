// Package htmlsanitize cleans user-supplied HTML before it reaches the
// stores or the community API.
//
// Post bodies may carry rich formatting and go through the UGC policy.
// Comments and titles are plain text and go through the strict policy.
package htmlsanitize

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = newUGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// maxPasses bounds how many entity layers PlainText decodes.
const maxPasses = 8

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
	p.AllowStyles("width", "text-align").OnElements("table", "th", "td")
	p.AllowElements("u", "s", "mark")
	return p
}

// Sanitize keeps safe formatting and removes scripts, event handlers,
// iframes, forms and unsafe URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc.Sanitize(s)
}

// PlainText strips every tag and returns the unescaped text.
//
// Unescaping can surface markup that was entity-encoded in the input, so
// the strict policy is reapplied until the text no longer changes.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	out := s
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(out))
		if next == out {
			return out
		}
		out = next
	}
	// Still changing: hand back the escaped form rather than live markup.
	return strict.Sanitize(out)
}
