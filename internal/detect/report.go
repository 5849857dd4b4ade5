package detect

import (
	"fmt"
	"strings"

	"github.com/authscope/authscope-cli/api/schemas"
	"github.com/authscope/authscope-cli/internal/htmldoc"
)

// buildReport partitions the classified inputs, deduplicates them, applies
// the final acceptance gate, and attaches the container markup. A failed
// gate yields the zero AuthForm: a terminal, fully-drained negative result.
func (d *Detector) buildReport(cands []Candidate, container *ContainerCandidate) schemas.AuthForm {
	var (
		passwords, others []schemas.InputDescriptor
		seen              = make(map[string]struct{})
	)

	for _, c := range cands {
		if !c.Attrs.IsPassword() {
			continue
		}
		desc := describeInput(c)
		if _, dup := seen[desc.Key()]; dup {
			continue
		}
		seen[desc.Key()] = struct{}{}
		passwords = append(passwords, desc)
	}

	for _, c := range cands {
		if c.Attrs.IsPassword() {
			// Password-classified elements never appear in OtherInputs.
			continue
		}
		desc := describeInput(c)
		if _, dup := seen[desc.Key()]; dup {
			continue
		}
		seen[desc.Key()] = struct{}{}
		others = append(others, desc)
	}

	// Final acceptance gate. Permissive candidate selection can admit
	// inputs that do not survive an identity re-check (e.g. a context-only
	// match on a search box near a "Sign in" nav link), so the report is
	// positive only when a password field exists or at least one other
	// input is identity shaped.
	if len(passwords) == 0 && !anyIdentityDescriptor(others) {
		return schemas.AuthForm{}
	}

	form := schemas.AuthForm{
		HasPasswordInput: true,
		PasswordInputs:   passwords,
		OtherInputs:      others,
	}

	if container != nil {
		markup := htmldoc.OuterHTML(container.Selection)
		form.ParentElement = markup
		if container.IsForm {
			form.FormElement = markup
		}
		form.InputCount = container.VisibleInputs
	}

	return form
}

// describeInput projects a candidate into its serializable descriptor.
func describeInput(c Candidate) schemas.InputDescriptor {
	return schemas.InputDescriptor{
		Markup:      htmldoc.OuterHTML(c.Selection),
		Name:        c.Attrs.Name,
		ID:          c.Attrs.ID,
		Placeholder: c.Attrs.Placeholder,
		Type:        c.Attrs.Type,
	}
}

// anyIdentityDescriptor reports whether at least one descriptor matches the
// identity criteria: type email, or name/id/placeholder containing an
// identity keyword.
func anyIdentityDescriptor(descs []schemas.InputDescriptor) bool {
	for _, d := range descs {
		if d.Type == "email" {
			return true
		}
		joined := d.Name + " " + d.ID + " " + d.Placeholder
		if containsAny(joined, containerIdentityKeywords) {
			return true
		}
	}
	return false
}

// summarySampleSize caps how many other-input identifiers the summary line
// enumerates.
const summarySampleSize = 3

// Summary renders a single human-readable line for a report. Purely
// presentational.
func Summary(form schemas.AuthForm) string {
	if !form.Detected() {
		return "no credential-entry surface detected"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "credential-entry surface detected: %d password input(s), %d other input(s)",
		len(form.PasswordInputs), len(form.OtherInputs))

	if sample := sampleIdentifiers(form.OtherInputs); len(sample) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(sample, ", "))
	}
	fmt.Fprintf(&b, "; container holds %d visible input(s)", form.InputCount)
	if form.FormElement != "" {
		b.WriteString("; container is a <form>")
	}
	return b.String()
}

// sampleIdentifiers picks the most descriptive identifier of each other
// input, up to summarySampleSize.
func sampleIdentifiers(descs []schemas.InputDescriptor) []string {
	var sample []string
	for _, d := range descs {
		if len(sample) == summarySampleSize {
			break
		}
		switch {
		case d.Name != "":
			sample = append(sample, d.Name)
		case d.ID != "":
			sample = append(sample, d.ID)
		case d.Placeholder != "":
			sample = append(sample, d.Placeholder)
		case d.Type != "":
			sample = append(sample, d.Type)
		}
	}
	return sample
}
