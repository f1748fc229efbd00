package note

import (
	"path"
	"strings"
	"time"
)

// Extension is the note file extension appended when a name format does not
// already produce one.
const Extension = ".md"

// Naming describes how journal note paths are derived from a date.
type Naming struct {
	RootFolder   string
	SubFolder    string // date-token format, e.g. "YYYY/YYYY-MM"
	NameFormat   string // date-token format, e.g. "YYYY-MM-DD_DDD"
	TemplatePath string // optional template note
}

// ResolvePath derives the note path and file name for a date. It is a pure
// function: the same date and naming always yield the same path, which is
// what lets the fetch pipeline and any duplicate-run guard agree on note
// identity.
func ResolvePath(date time.Time, naming Naming) (notePath, noteName string) {
	noteName = ExpandTokens(naming.NameFormat, date)
	if !strings.HasSuffix(noteName, Extension) {
		noteName += Extension
	}
	subFolder := ExpandTokens(naming.SubFolder, date)

	segments := make([]string, 0, 3)
	for _, segment := range []string{naming.RootFolder, subFolder, noteName} {
		segment = strings.Trim(segment, "/")
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return path.Join(segments...), noteName
}
