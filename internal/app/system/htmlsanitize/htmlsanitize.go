// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strict removes every tag; used only to decide whether text is blank.
	strict = bluemonday.StrictPolicy()
	// ugc is applied to HTML built from stored text before it reaches a template.
	ugc = bluemonday.UGCPolicy()
)

// StripTags removes all markup from s and returns plain text. Entities that
// bluemonday escapes are decoded again. The result is for checks only;
// item text is stored as typed.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsBlank reports whether s has no visible text once markup is removed.
func IsBlank(s string) bool {
	return StripTags(s) == ""
}

// PlainTextToHTML escapes s and turns newlines into <br> inside one <p>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay renders stored plain text as safe HTML for templates.
// The text is escaped, never stripped, so "a<b" displays as typed.
func PrepareForDisplay(s string) template.HTML {
	return template.HTML(ugc.Sanitize(PlainTextToHTML(s)))
}
