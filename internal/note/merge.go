package note

import "fmt"

// Merger applies a bag of properties to a document's front matter. A marker
// key guards against repeat application: once the note carries a non-empty
// value under that key, further merges are skipped, so a note is populated
// with weather data at most once no matter how often the fetch runs.
type Merger struct {
	markerKey string
}

// NewMerger creates a merge engine guarded by the given marker key.
func NewMerger(markerKey string) *Merger {
	return &Merger{markerKey: markerKey}
}

// Apply merges props into the document's front matter. Incoming values
// overwrite same-named keys; every other existing key is preserved
// untouched. Returns false when the marker key is already present and
// non-empty, in which case the document is not modified.
func (m *Merger) Apply(doc *Document, props map[string]interface{}) bool {
	if m.Applied(doc) {
		return false
	}
	for key, value := range props {
		doc.SetField(key, value)
	}
	return true
}

// Applied reports whether the document already carries weather data.
func (m *Merger) Applied(doc *Document) bool {
	value, ok := doc.Field(m.markerKey)
	if !ok || value == nil {
		return false
	}
	return fmt.Sprintf("%v", value) != ""
}
