package htmldoc

import "strings"

// voidElements is the standard HTML set of elements that never take a
// closing tag and therefore never open an indentation level.
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "param": {},
	"source": {}, "track": {}, "wbr": {},
}

const indentUnit = "  "

// Indent reformats a fragment of markup with one line per tag or text run
// and two-space indentation. It is a bracket-matching reformatter, not a
// validating parser: malformed input produces best-effort indentation.
func Indent(markup string) string {
	var (
		out   []string
		depth int
	)

	emit := func(line string) {
		if depth < 0 {
			depth = 0
		}
		out = append(out, strings.Repeat(indentUnit, depth)+line)
	}

	for _, tok := range tokenize(markup) {
		switch {
		case strings.HasPrefix(tok, "</"):
			depth--
			emit(tok)
		case strings.HasPrefix(tok, "<"):
			emit(tok)
			if opensLevel(tok) {
				depth++
			}
		default:
			emit(tok)
		}
	}

	return strings.Join(out, "\n")
}

// tokenize splits markup at tag boundaries, preserving tags and trimmed,
// non-empty text runs in document order.
func tokenize(markup string) []string {
	var (
		tokens []string
		buf    strings.Builder
		inTag  bool
	)

	flushText := func() {
		if text := strings.TrimSpace(buf.String()); text != "" {
			tokens = append(tokens, text)
		}
		buf.Reset()
	}

	for _, r := range markup {
		switch {
		case r == '<':
			flushText()
			inTag = true
			buf.WriteRune(r)
		case r == '>' && inTag:
			buf.WriteRune(r)
			tokens = append(tokens, buf.String())
			buf.Reset()
			inTag = false
		default:
			buf.WriteRune(r)
		}
	}
	// A dangling unterminated tag or trailing text still gets emitted.
	flushText()

	return tokens
}

// opensLevel reports whether an opening tag increases the indentation depth.
// Void elements, self-closed tags, comments, and declarations do not.
func opensLevel(tag string) bool {
	if strings.HasPrefix(tag, "<!") || strings.HasPrefix(tag, "<?") {
		return false
	}
	if strings.HasSuffix(tag, "/>") {
		return false
	}
	_, void := voidElements[tagName(tag)]
	return !void
}

// tagName extracts the lower-cased element name from a raw tag token.
func tagName(tag string) string {
	name := strings.TrimPrefix(tag, "</")
	name = strings.TrimPrefix(name, "<")
	for i, r := range name {
		if r == ' ' || r == '>' || r == '/' || r == '\t' || r == '\n' {
			name = name[:i]
			break
		}
	}
	return strings.ToLower(name)
}
