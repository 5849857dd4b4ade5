package detect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// interactiveControls selects the controls whose text counts as button
// evidence near a candidate input.
const interactiveControls = `button, input[type="submit"], input[type="button"], a`

// hasAuthContext reports whether the markup immediately around an input reads
// like an authentication flow. Scope is deliberately bounded to the element's
// parent and its closest enclosing form; scanning the whole page would light
// up on every footer "Login" link.
//
// Two independent kinds of evidence are gathered:
//   - text evidence: the lower-cased text content of the parent or the
//     closest form contains an auth phrase
//   - button evidence: an interactive control within the same scope carries
//     an auth phrase in its text or value
//
// Strict mode requires both; permissive mode accepts either.
func hasAuthContext(s *goquery.Selection, mode modePolicy) bool {
	phrases := authPhrases
	if mode.strict {
		phrases = strongAuthPhrases
	}

	scopes := []*goquery.Selection{s.Parent()}
	if form := s.Closest("form"); form.Length() > 0 {
		scopes = append(scopes, form)
	}

	var textEvidence, buttonEvidence bool
	for _, scope := range scopes {
		if scope.Length() == 0 {
			continue
		}
		if !textEvidence && containsAny(strings.ToLower(scope.Text()), phrases) {
			textEvidence = true
		}
		if !buttonEvidence && controlEvidence(scope, phrases) {
			buttonEvidence = true
		}
		if textEvidence && buttonEvidence {
			break
		}
	}

	if mode.strict {
		return textEvidence && buttonEvidence
	}
	return textEvidence || buttonEvidence
}

// controlEvidence scans the interactive controls under scope for an auth
// phrase in their visible text or value attribute.
func controlEvidence(scope *goquery.Selection, phrases []string) bool {
	found := false
	scope.Find(interactiveControls).EachWithBreak(func(_ int, ctrl *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(ctrl.Text()))
		if text == "" {
			// Submit inputs carry their label in the value attribute.
			value, _ := ctrl.Attr("value")
			text = strings.ToLower(strings.TrimSpace(value))
		}
		if containsAny(text, phrases) {
			found = true
			return false
		}
		return true
	})
	return found
}
