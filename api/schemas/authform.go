package schemas

import "time"

// -- Detection Schemas --

// Strictness controls how much corroborating evidence the detector requires
// before classifying an input or container as auth-related. The values are
// lowercase to align with config file and CLI flag spellings.
type Strictness string

// Constants defining the supported strictness modes.
const (
	// StrictnessPermissive accepts a keyword OR context signal for
	// non-password inputs, and admits multipart (email-first) flows with no
	// visible password field. Tuned for recall.
	StrictnessPermissive Strictness = "permissive"
	// StrictnessStrict requires a keyword AND context signal, restricted to
	// the strong auth phrase list. Tuned to suppress incidental email fields
	// (newsletter signups and the like).
	StrictnessStrict Strictness = "strict"
)

// Valid reports whether s is one of the supported strictness modes.
func (s Strictness) Valid() bool {
	return s == StrictnessPermissive || s == StrictnessStrict
}

// InputDescriptor is a lightweight, serializable projection of one input-like
// element, kept for display and report purposes only. Attribute values are
// lower-cased by the scanner before they reach this struct.
type InputDescriptor struct {
	// Markup is the element's outer markup as it appeared in the document.
	Markup      string `json:"markup"`
	Name        string `json:"name,omitempty"`
	ID          string `json:"id,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Key returns the deduplication identity of the descriptor. Two descriptors
// with the same (id, name, type) triple are the same logical input and must
// collapse to one.
func (d InputDescriptor) Key() string {
	return d.ID + "\x00" + d.Name + "\x00" + d.Type
}

// AuthForm is the externally visible result of one detection run over a
// single HTML document. The zero value is the canonical negative result: when
// HasPasswordInput is false every other field is at its empty default.
type AuthForm struct {
	// HasPasswordInput is true when the page was judged to contain a
	// credential-entry surface. The name is historical and kept for report
	// compatibility; under permissive matching it really means "surface
	// detected" and can be true with zero literal password fields
	// (multipart email-first flows).
	HasPasswordInput bool `json:"has_password_input"`

	// FormElement is the outer markup of the chosen container if, and only
	// if, that container is literally a <form> element.
	FormElement string `json:"form_element,omitempty"`

	// ParentElement is the outer markup of the chosen container regardless
	// of its tag.
	ParentElement string `json:"parent_element,omitempty"`

	// InputCount is the number of non-hidden <input> elements inside the
	// chosen container.
	InputCount int `json:"input_count"`

	// PasswordInputs holds only elements whose type attribute is literally
	// "password", deduplicated, in document order.
	PasswordInputs []InputDescriptor `json:"password_inputs,omitempty"`

	// OtherInputs holds the remaining classified inputs, deduplicated, in
	// document order. It never shares an entry with PasswordInputs.
	OtherInputs []InputDescriptor `json:"other_inputs,omitempty"`
}

// Detected reports whether the run produced a positive result.
func (f AuthForm) Detected() bool { return f.HasPasswordInput }

// DetectionEnvelope wraps one detection run with its provenance for the
// reporting layer. It is the unit the reporters consume.
type DetectionEnvelope struct {
	// DetectionID uniquely identifies this run.
	DetectionID string `json:"detection_id"`
	// Target is the URL or file path the analyzed markup came from.
	Target string `json:"target"`
	// Mode is the strictness the detector ran with.
	Mode Strictness `json:"mode"`
	// FetchStatus is the HTTP status of the fetch that produced the markup,
	// or zero when the markup came from a local file or the fetch failed.
	FetchStatus int `json:"fetch_status,omitempty"`
	// FetchError carries the fetch failure message when no markup could be
	// retrieved. The form is then the negative default.
	FetchError string `json:"fetch_error,omitempty"`
	// DetectedAt is when the detection completed.
	DetectedAt time.Time `json:"detected_at"`

	Form AuthForm `json:"form"`

	// Summary is a single human-readable line describing the result.
	Summary string `json:"summary"`
	// Excerpt is the pretty-printed outer markup of the chosen container,
	// empty for negative results.
	Excerpt string `json:"excerpt,omitempty"`
}
