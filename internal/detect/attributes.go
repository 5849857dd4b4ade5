package detect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// InputAttributes is a normalized, case-folded view of one input-like
// element's relevant attributes. It is derived once per element and read-only
// afterwards. The attribute set is fixed and enumerated here; there is no
// dynamic attribute lookup anywhere in the pipeline.
type InputAttributes struct {
	Name           string
	ID             string
	Placeholder    string
	Type           string
	Class          string
	AriaLabel      string
	AriaLabelledBy string
	Autocomplete   string
	// TestID is the first present of data-testid, data-test, data-qa.
	TestID string

	// joined is every present value, space-separated, for substring search.
	joined string
}

// testIDAttributes lists the test-hook attributes sites commonly carry; they
// often leak semantic names ("login-email-input") that the visible attributes
// obfuscate.
var testIDAttributes = []string{"data-testid", "data-test", "data-qa"}

// extractAttributes reads the enumerated attribute set off one element,
// folding to lower case and treating the literal string "undefined" (a
// common artifact of serialized client-side templating) as absent.
func extractAttributes(s *goquery.Selection) InputAttributes {
	get := func(name string) string {
		v, ok := s.Attr(name)
		if !ok {
			return ""
		}
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "undefined" {
			return ""
		}
		return v
	}

	a := InputAttributes{
		Name:           get("name"),
		ID:             get("id"),
		Placeholder:    get("placeholder"),
		Type:           get("type"),
		Class:          get("class"),
		AriaLabel:      get("aria-label"),
		AriaLabelledBy: get("aria-labelledby"),
		Autocomplete:   get("autocomplete"),
	}
	for _, name := range testIDAttributes {
		if v := get(name); v != "" {
			a.TestID = v
			break
		}
	}

	parts := make([]string, 0, 9)
	for _, v := range []string{
		a.Name, a.ID, a.Placeholder, a.Type, a.Class,
		a.AriaLabel, a.AriaLabelledBy, a.Autocomplete, a.TestID,
	} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	a.joined = strings.Join(parts, " ")

	return a
}

// Joined returns the space-separated attribute bag used for keyword search.
func (a InputAttributes) Joined() string { return a.joined }

// IsPassword reports whether the element is literally a password field.
func (a InputAttributes) IsPassword() bool { return a.Type == "password" }

// matchesKeyword applies the keyword signal under the given mode. Strict mode
// only accepts the strong flow-name list; permissive mode accepts the full
// password, identity, and generic families.
func matchesKeyword(a InputAttributes, mode modePolicy) bool {
	if mode.strict {
		return containsAny(a.joined, strongKeywords)
	}
	return containsAny(a.joined, passwordKeywords) ||
		containsAny(a.joined, identityKeywords) ||
		containsAny(a.joined, genericAuthKeywords)
}
