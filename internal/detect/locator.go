package detect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ContainerCandidate scores one ancestor element as the bounding box for a
// credential-entry surface. Candidates are ephemeral; only the best-scoring
// one survives the walk.
type ContainerCandidate struct {
	Selection *goquery.Selection
	// HasEmailUsername: at least one descendant input is email/username
	// shaped (type="email", or a text input whose name/id/placeholder/class
	// carries an identity keyword).
	HasEmailUsername bool
	// HasPassword: at least one descendant input has type="password".
	HasPassword bool
	// VisibleInputs counts non-hidden descendant <input> elements.
	VisibleInputs int
	// Score is VisibleInputs, plus the traditional bonus when the candidate
	// bounds a complete email+password pair.
	Score int
	// IsForm records whether the element is literally a <form> tag.
	IsForm bool
}

// containerStopTags are never candidates; reaching one ends the walk.
var containerStopTags = map[string]struct{}{
	"body": {}, "html": {}, "head": {}, "#document": {},
}

// containerIdentityKeywords is the identity vocabulary used when deciding
// whether a text input is email/username shaped.
var containerIdentityKeywords = []string{"email", "username", "user"}

// locateContainer walks strictly upward from the first candidate's parent,
// element by element, up to the configured depth cap, scoring each eligible
// ancestor. Ties keep the first (innermost) candidate: only strictly greater
// scores replace the best. When no ancestor qualifies the immediate parent
// is the container, so a page with any candidate input always yields one.
func (d *Detector) locateContainer(first Candidate) *ContainerCandidate {
	var best *ContainerCandidate

	depth := 0
	for cur := first.Selection.Parent(); cur.Length() > 0 && depth < d.maxDepth; cur = cur.Parent() {
		if _, stop := containerStopTags[goquery.NodeName(cur)]; stop {
			break
		}
		if cand := d.evaluateAncestor(cur); cand != nil {
			if best == nil || cand.Score > best.Score {
				best = cand
			}
		}
		depth++
	}

	if best == nil {
		best = d.describeContainer(first.Selection.Parent())
	}
	return best
}

// evaluateAncestor checks one ancestor's eligibility and scores it. Returns
// nil when the ancestor does not bound a plausible surface:
//
//   - traditional auth needs an identity input AND a password input
//   - permissive mode also accepts an identity input alone, covering
//     multipart flows where the password lives on the next step
func (d *Detector) evaluateAncestor(s *goquery.Selection) *ContainerCandidate {
	cand := d.describeContainer(s)

	if !cand.HasEmailUsername {
		return nil
	}
	if !cand.HasPassword && d.mode.strict {
		return nil
	}
	return cand
}

// describeContainer computes the candidate facts for an arbitrary element.
func (d *Detector) describeContainer(s *goquery.Selection) *ContainerCandidate {
	if s == nil || s.Length() == 0 {
		return nil
	}

	cand := &ContainerCandidate{
		Selection: s,
		IsForm:    goquery.NodeName(s) == "form",
	}

	s.Find("input").Each(func(_ int, in *goquery.Selection) {
		typ, _ := in.Attr("type")
		typ = strings.ToLower(strings.TrimSpace(typ))
		if typ == "" {
			// Missing type defaults to text per the HTML spec.
			typ = "text"
		}

		if typ != "hidden" {
			cand.VisibleInputs++
		}

		switch typ {
		case "password":
			cand.HasPassword = true
		case "email":
			cand.HasEmailUsername = true
		case "text":
			if !cand.HasEmailUsername && identityShaped(in) {
				cand.HasEmailUsername = true
			}
		}
	})

	cand.Score = cand.VisibleInputs
	if cand.HasEmailUsername && cand.HasPassword {
		cand.Score += d.traditionalBonus
	}
	return cand
}

// identityShaped reports whether a text input's name, id, placeholder, or
// class contains an identity keyword.
func identityShaped(in *goquery.Selection) bool {
	for _, attr := range []string{"name", "id", "placeholder", "class"} {
		v, ok := in.Attr(attr)
		if !ok {
			continue
		}
		if containsAny(strings.ToLower(v), containerIdentityKeywords) {
			return true
		}
	}
	return false
}
