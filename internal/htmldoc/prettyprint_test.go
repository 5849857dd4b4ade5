package htmldoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndent_NestedForm(t *testing.T) {
	in := `<form><div><input type="email"><input type="password"></div><button>Sign in</button></form>`

	got := Indent(in)
	want := strings.Join([]string{
		`<form>`,
		`  <div>`,
		`    <input type="email">`,
		`    <input type="password">`,
		`  </div>`,
		`  <button>`,
		`    Sign in`,
		`  </button>`,
		`</form>`,
	}, "\n")

	assert.Equal(t, want, got)
}

// TestIndent_VoidElements verifies that the void-element set never opens an
// indentation level, with or without a self-closing slash.
func TestIndent_VoidElements(t *testing.T) {
	got := Indent(`<div><br><img src="x"/><input name="a"><span>t</span></div>`)
	want := strings.Join([]string{
		`<div>`,
		`  <br>`,
		`  <img src="x"/>`,
		`  <input name="a">`,
		`  <span>`,
		`    t`,
		`  </span>`,
		`</div>`,
	}, "\n")

	assert.Equal(t, want, got)
}

func TestIndent_CommentsAndDoctype(t *testing.T) {
	got := Indent(`<!DOCTYPE html><!-- note --><div>x</div>`)
	want := strings.Join([]string{
		`<!DOCTYPE html>`,
		`<!-- note -->`,
		`<div>`,
		`  x`,
		`</div>`,
	}, "\n")

	assert.Equal(t, want, got)
}

// TestIndent_Malformed asserts the best-effort contract: unbalanced close
// tags must not panic or drive the depth negative.
func TestIndent_Malformed(t *testing.T) {
	got := Indent(`</div></div><span>a`)
	want := strings.Join([]string{
		`</div>`,
		`</div>`,
		`<span>`,
		`  a`,
	}, "\n")

	assert.Equal(t, want, got)
}

func TestIndent_Empty(t *testing.T) {
	assert.Equal(t, "", Indent(""))
	assert.Equal(t, "", Indent("   \n\t "))
}

func TestTagName(t *testing.T) {
	assert.Equal(t, "div", tagName("<div class=\"a\">"))
	assert.Equal(t, "div", tagName("</div>"))
	assert.Equal(t, "input", tagName("<INPUT/>"))
	assert.Equal(t, "br", tagName("<br>"))
}
