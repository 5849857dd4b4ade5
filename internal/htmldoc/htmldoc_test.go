package htmldoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WellFormed(t *testing.T) {
	doc := Load(`<html><body><form id="login"><input type="password"></form></body></html>`)

	require.NotNil(t, doc)
	assert.Equal(t, 1, doc.Find("form#login").Length())
	assert.Equal(t, 1, doc.Find(`input[type="password"]`).Length())
}

// TestLoad_Malformed verifies best-effort tree construction: unclosed tags
// and stray characters must not lose the elements that are present.
func TestLoad_Malformed(t *testing.T) {
	doc := Load(`<div><form><input type="text" name="user"<input type="password" name="p"></div>`)

	require.NotNil(t, doc)
	// The parser recovers something query-able; the password input survives.
	assert.GreaterOrEqual(t, doc.Find("input").Length(), 1)
}

func TestLoad_EmptyAndGarbage(t *testing.T) {
	for _, input := range []string{"", "not html at all", "\x00\x01\x02", "<<<>>>"} {
		doc := Load(input)
		require.NotNil(t, doc, "input %q", input)
		assert.Equal(t, 0, doc.Find("input").Length(), "input %q", input)
	}
}

func TestOuterHTML(t *testing.T) {
	doc := Load(`<body><div id="box"><input name="e"></div></body>`)

	markup := OuterHTML(doc.Find("#box"))
	assert.True(t, strings.HasPrefix(markup, `<div id="box">`), "got %q", markup)
	assert.Contains(t, markup, `<input name="e"`)

	assert.Empty(t, OuterHTML(doc.Find("#missing")))
	assert.Empty(t, OuterHTML(nil))
}
