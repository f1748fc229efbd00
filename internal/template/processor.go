// Package template implements the note-template mini-language: a fixed
// vocabulary of {{...}} tags for the target date and the current moment.
// Tags are interpreted against a closed token table; there is no dynamic
// evaluation, and anything unrecognized is left verbatim so unknown tags in
// a user's template are never destroyed.
package template

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// formattedTag matches the parameterized tags, e.g. {{date:YYYY-MM-DD}}.
// date/time take the target date; tdate/ttime take the current moment.
var formattedTag = regexp.MustCompile(`\{\{(date|time|tdate|ttime):([^}]+)\}\}`)

// titleFormat is the fixed layout for the {{title}} tag, matching the
// default journal note name.
const titleFormat = "YYYY-MM-DD_ddd"

// Render expands all recognized tags in templateContent. targetDate drives
// the date/time family, now drives the tdate/ttime family. Render never
// fails; malformed or unknown tags pass through unchanged.
func Render(templateContent string, targetDate, now time.Time) string {
	content := formattedTag.ReplaceAllStringFunc(templateContent, func(tag string) string {
		m := formattedTag.FindStringSubmatch(tag)
		base := targetDate
		if m[1] == "tdate" || m[1] == "ttime" {
			base = now
		}
		if m[2] == "Z" {
			return timezoneOffset(base)
		}
		return formatMoment(base, m[2])
	})

	replacements := []struct {
		tag   string
		value string
	}{
		{"{{title}}", formatMoment(targetDate, titleFormat)},
		{"{{date}}", formatMoment(targetDate, "MMMM D, YYYY")},
		{"{{time}}", formatMoment(targetDate, "h:mm A")},
		{"{{tdate}}", formatMoment(now, "MMMM D, YYYY")},
		{"{{ttime}}", formatMoment(now, "h:mm A")},
	}
	for _, r := range replacements {
		content = strings.ReplaceAll(content, r.tag, r.value)
	}

	for strings.Contains(content, "{{uuid}}") {
		content = strings.Replace(content, "{{uuid}}", uuid.NewString(), 1)
	}

	return content
}
