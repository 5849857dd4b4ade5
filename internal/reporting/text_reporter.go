package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/authscope/authscope-cli/api/schemas"
)

// TextReporter writes a human-readable block per envelope as results arrive.
// It takes ownership of the writer.
type TextReporter struct {
	writer io.WriteCloser
}

// NewTextReporter creates a TextReporter writing to w.
func NewTextReporter(w io.WriteCloser) *TextReporter {
	return &TextReporter{writer: w}
}

// Write renders one envelope.
func (r *TextReporter) Write(env *schemas.DetectionEnvelope) error {
	if env == nil {
		return fmt.Errorf("nil detection envelope")
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Target:    %s\n", env.Target)
	fmt.Fprintf(&b, "Detection: %s (mode: %s)\n", env.DetectionID, env.Mode)
	if env.FetchStatus != 0 {
		fmt.Fprintf(&b, "HTTP:      %d\n", env.FetchStatus)
	}
	if env.FetchError != "" {
		fmt.Fprintf(&b, "Fetch:     %s\n", env.FetchError)
	}

	if env.Form.Detected() {
		b.WriteString("Result:    Form Detected\n")
	} else {
		b.WriteString("Result:    No Form Detected\n")
	}
	fmt.Fprintf(&b, "Summary:   %s\n", env.Summary)

	if env.Excerpt != "" {
		b.WriteString("Container:\n")
		for _, line := range strings.Split(env.Excerpt, "\n") {
			b.WriteString("    " + line + "\n")
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(r.writer, b.String())
	return err
}

// Close closes the underlying writer.
func (r *TextReporter) Close() error {
	return r.writer.Close()
}
