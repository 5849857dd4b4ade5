package reporting

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/authscope/authscope-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonReport is the top-level document the JSON reporter emits on Close.
type jsonReport struct {
	Detections []*schemas.DetectionEnvelope `json:"detections"`
}

// JSONReporter buffers envelopes and writes one indented JSON document on
// Close. It takes ownership of the writer.
type JSONReporter struct {
	writer     io.WriteCloser
	detections []*schemas.DetectionEnvelope
}

// NewJSONReporter creates a JSONReporter writing to w.
func NewJSONReporter(w io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Write buffers one envelope.
func (r *JSONReporter) Write(env *schemas.DetectionEnvelope) error {
	if env == nil {
		return fmt.Errorf("nil detection envelope")
	}
	r.detections = append(r.detections, env)
	return nil
}

// Close serializes the buffered envelopes and closes the writer.
func (r *JSONReporter) Close() error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonReport{Detections: r.detections}); err != nil {
		_ = r.writer.Close()
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return r.writer.Close()
}
