// Package note models a journal note: a markdown document with an optional
// YAML front-matter block, date-token expansion, and the merge rules for
// writing weather properties into the front matter.
package note

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallagher/wxjournal/internal/wxerrors"
)

// marker is the front-matter boundary. A line containing exactly this string
// opens the block; the next such line closes it.
const marker = "---"

// Document is a parsed note: an optional front-matter mapping plus the body.
type Document struct {
	Path        string
	Frontmatter map[string]interface{}
	Body        string

	fieldOrder []string // original key order, preserved on serialize
	bodyGap    bool     // blank line between header and body on serialize
}

// NewDocument creates a document with no front matter yet. A header added
// later is separated from the body by a blank line.
func NewDocument(notePath, body string) *Document {
	return &Document{
		Path:        notePath,
		Frontmatter: make(map[string]interface{}),
		Body:        body,
		bodyGap:     true,
	}
}

// Parse splits content into front matter and body. A document with zero or
// one marker lines has no front-matter block; the whole content is body.
// Malformed YAML between two markers is a ParseError so the caller aborts
// rather than corrupting the note.
func Parse(notePath string, content []byte) (*Document, error) {
	doc := &Document{
		Path:        notePath,
		Frontmatter: make(map[string]interface{}),
	}

	lines := strings.Split(string(content), "\n")
	opening, closing := markerIndexes(lines)
	if opening == -1 || closing == -1 {
		doc.Body = string(content)
		doc.bodyGap = true
		return doc, nil
	}

	headerText := strings.Join(lines[opening+1:closing], "\n")
	if strings.TrimSpace(headerText) != "" {
		if err := yaml.Unmarshal([]byte(headerText), &doc.Frontmatter); err != nil {
			return nil, &wxerrors.ParseError{Path: notePath, Err: err}
		}
		doc.fieldOrder = extractFieldOrder(headerText)
	}

	if closing+1 < len(lines) {
		bodyLines := lines[closing+1:]
		// One blank line right after the header is the gap, not body
		// content; everything else is kept byte-for-byte.
		if len(bodyLines) > 0 && bodyLines[0] == "" {
			bodyLines = bodyLines[1:]
			doc.bodyGap = true
		}
		doc.Body = strings.Join(bodyLines, "\n")
	}
	return doc, nil
}

// markerIndexes returns the line indexes of the first two marker lines, or
// -1 where absent.
func markerIndexes(lines []string) (int, int) {
	first := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != marker {
			continue
		}
		if first == -1 {
			first = i
			continue
		}
		return first, i
	}
	return first, -1
}

// HasFrontmatter reports whether the document carries any front-matter keys.
func (d *Document) HasFrontmatter() bool {
	return len(d.Frontmatter) > 0
}

// Field returns a front-matter value.
func (d *Document) Field(key string) (interface{}, bool) {
	v, ok := d.Frontmatter[key]
	return v, ok
}

// SetField sets a front-matter value. New keys are appended after the
// original ones on serialize.
func (d *Document) SetField(key string, value interface{}) {
	if d.Frontmatter == nil {
		d.Frontmatter = make(map[string]interface{})
	}
	d.Frontmatter[key] = value
}

// Serialize renders the document back to markdown. A front-matter block is
// emitted whenever the mapping is non-empty, which also covers synthesizing
// a header for documents that had none.
func (d *Document) Serialize() ([]byte, error) {
	var buf bytes.Buffer

	if len(d.Frontmatter) > 0 {
		buf.WriteString(marker + "\n")
		header, err := d.serializeFrontmatter()
		if err != nil {
			return nil, err
		}
		buf.WriteString(header)
		buf.WriteString(marker + "\n")
		if d.bodyGap && d.Body != "" {
			buf.WriteString("\n")
		}
	}
	buf.WriteString(d.Body)
	return buf.Bytes(), nil
}

// serializeFrontmatter emits fields in their original order first, then any
// new fields sorted for stable output.
func (d *Document) serializeFrontmatter() (string, error) {
	var lines []string
	written := make(map[string]bool)

	for _, key := range d.fieldOrder {
		value, ok := d.Frontmatter[key]
		if !ok {
			continue
		}
		line, err := formatYAMLField(key, value)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
		written[key] = true
	}

	var newKeys []string
	for key := range d.Frontmatter {
		if !written[key] {
			newKeys = append(newKeys, key)
		}
	}
	sort.Strings(newKeys)
	for _, key := range newKeys {
		line, err := formatYAMLField(key, d.Frontmatter[key])
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n") + "\n", nil
}

func formatYAMLField(key string, value interface{}) (string, error) {
	out, err := yaml.Marshal(map[string]interface{}{key: value})
	if err != nil {
		return "", fmt.Errorf("formatting field %s: %w", key, err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// keyPattern matches a top-level YAML key, quoted or bare.
var keyPattern = regexp.MustCompile(`^(?:"([^"]+)"|'([^']+)'|([A-Za-z_][A-Za-z0-9_ -]*?))\s*:`)

// extractFieldOrder records the order of top-level keys in the original
// header so a rewrite does not shuffle the user's fields.
func extractFieldOrder(headerText string) []string {
	var order []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(headerText, "\n") {
		m := keyPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := m[1]
		if key == "" {
			key = m[2]
		}
		if key == "" {
			key = strings.TrimSpace(m[3])
		}
		if key != "" && !seen[key] {
			order = append(order, key)
			seen[key] = true
		}
	}
	return order
}
