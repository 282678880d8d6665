// Package sanitizer strips HTML from attacker-controlled submission values
// before they reach an email template.
package sanitizer

import (
	"html"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

// StripHTML removes all HTML elements and attributes, returning plain text.
// Submission fields are free text, never markup, so nothing is allowed through.
//
// The policy entity-encodes the text it keeps; that encoding is undone here
// so "P&G" survives as "P&G". Callers receive plain text and any escaping
// happens exactly once, at the output boundary that needs it.
func StripHTML(s string) string {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(strictPolicy.Sanitize(s))
}
