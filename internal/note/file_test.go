package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallagher/wxjournal/internal/wxerrors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name            string
		content         string
		wantFrontmatter map[string]interface{}
		wantBody        string
	}{
		{
			name:            "header and body",
			content:         "---\ntitle: Test\nwtrtemp: 41.5\n---\n\n# Heading\n\nBody text",
			wantFrontmatter: map[string]interface{}{"title": "Test", "wtrtemp": 41.5},
			wantBody:        "# Heading\n\nBody text",
		},
		{
			name:            "no markers",
			content:         "# Just a note\n\nNo front matter here",
			wantFrontmatter: map[string]interface{}{},
			wantBody:        "# Just a note\n\nNo front matter here",
		},
		{
			name:            "single marker only",
			content:         "---\ntitle: unclosed",
			wantFrontmatter: map[string]interface{}{},
			wantBody:        "---\ntitle: unclosed",
		},
		{
			name:            "empty header block",
			content:         "---\n---\nBody",
			wantFrontmatter: map[string]interface{}{},
			wantBody:        "Body",
		},
		{
			name:            "empty content",
			content:         "",
			wantFrontmatter: map[string]interface{}{},
			wantBody:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("test.md", []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrontmatter, doc.Frontmatter)
			assert.Equal(t, tt.wantBody, doc.Body)
		})
	}
}

func TestParse_MalformedHeader(t *testing.T) {
	content := "---\ntitle: [unclosed\n---\nBody"

	doc, err := Parse("bad.md", []byte(content))
	require.Error(t, err)
	assert.Nil(t, doc)

	var parseErr *wxerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "bad.md", parseErr.Path)
}

func TestSerialize_RoundTrip(t *testing.T) {
	content := "---\ntitle: Test Note\nwtrtemp: 41.5\ntags:\n    - journal\n    - weather\n---\n\n# Heading\n\nBody text"

	doc, err := Parse("note.md", []byte(content))
	require.NoError(t, err)

	out, err := doc.Serialize()
	require.NoError(t, err)

	again, err := Parse("note.md", out)
	require.NoError(t, err)
	assert.Equal(t, doc.Frontmatter, again.Frontmatter)
	assert.Equal(t, doc.Body, again.Body)
}

func TestSerialize_PreservesFieldOrder(t *testing.T) {
	content := "---\nzebra: 1\nalpha: 2\nmiddle: 3\n---\nBody"

	doc, err := Parse("note.md", []byte(content))
	require.NoError(t, err)

	doc.SetField("added", 4)
	out, err := doc.Serialize()
	require.NoError(t, err)

	// Original keys keep their order; the new key comes after.
	assert.Equal(t, "---\nzebra: 1\nalpha: 2\nmiddle: 3\nadded: 4\n---\nBody", string(out))
}

func TestSerialize_KeepsBodySpacingVerbatim(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "no blank after header",
			content: "---\na: 1\n---\nBody",
		},
		{
			name:    "one blank after header",
			content: "---\na: 1\n---\n\nBody",
		},
		{
			name:    "several blanks after header",
			content: "---\na: 1\n---\n\n\n\nBody",
		},
		{
			name:    "trailing newline only",
			content: "---\na: 1\n---\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("note.md", []byte(tt.content))
			require.NoError(t, err)

			out, err := doc.Serialize()
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(out))
		})
	}
}

func TestSerialize_SynthesizesHeader(t *testing.T) {
	doc, err := Parse("note.md", []byte("# Title only"))
	require.NoError(t, err)
	require.False(t, doc.HasFrontmatter())

	doc.SetField("wtrtemp", 41.5)
	out, err := doc.Serialize()
	require.NoError(t, err)

	assert.Equal(t, "---\nwtrtemp: 41.5\n---\n\n# Title only", string(out))
}

func TestSerialize_NoHeaderWhenEmpty(t *testing.T) {
	doc, err := Parse("note.md", []byte("plain body"))
	require.NoError(t, err)

	out, err := doc.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "plain body", string(out))
}
