package detect

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/authscope/authscope-cli/internal/htmldoc"
)

// candidateSelector enumerates every input-capable element: native inputs
// plus ARIA textbox equivalents used by component frameworks that render
// divs instead of inputs.
const candidateSelector = `input, [role="textbox"]`

// Candidate pairs one input-like element with its normalized attributes and
// every signal it matched. All matched reasons are retained for
// debuggability; Primary() picks the bucket.
type Candidate struct {
	Selection *goquery.Selection
	Attrs     InputAttributes
	Signals   []Signal
}

// Primary returns the highest-priority matched signal
// (password > keyword > context).
func (c Candidate) Primary() Signal {
	best := SignalNone
	for _, s := range c.Signals {
		if s > best {
			best = s
		}
	}
	return best
}

// scan walks all input-capable elements in document order, classifies each,
// and returns the ones that qualify as candidates under the configured mode.
//
//   - type="password" is definitive and short-circuits the other checks
//   - otherwise, permissive mode admits a keyword OR context match, strict
//     mode requires keyword AND context (both against narrowed lists)
func (d *Detector) scan(doc *htmldoc.Document) []Candidate {
	var out []Candidate

	doc.Find(candidateSelector).Each(func(_ int, s *goquery.Selection) {
		attrs := extractAttributes(s)

		if attrs.IsPassword() {
			out = append(out, Candidate{
				Selection: s,
				Attrs:     attrs,
				Signals:   []Signal{SignalPassword},
			})
			return
		}

		var signals []Signal
		if matchesKeyword(attrs, d.mode) {
			signals = append(signals, SignalKeyword)
		}
		if hasAuthContext(s, d.mode) {
			signals = append(signals, SignalContext)
		}

		if d.mode.accepts(signals) {
			out = append(out, Candidate{Selection: s, Attrs: attrs, Signals: signals})
		}
	})

	return out
}

// accepts applies the mode's evidence requirement to a non-password input's
// matched signals.
func (m modePolicy) accepts(signals []Signal) bool {
	var keyword, context bool
	for _, s := range signals {
		switch s {
		case SignalKeyword:
			keyword = true
		case SignalContext:
			context = true
		}
	}
	if m.strict {
		return keyword && context
	}
	return keyword || context
}
