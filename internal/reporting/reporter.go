// Package reporting writes detection envelopes to an output in a chosen
// format. Reporters own their writer: Close finalizes the report and
// releases any file handle.
package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/authscope/authscope-cli/api/schemas"
)

// Reporter is the interface for writing detection results to an output.
type Reporter interface {
	// Write processes a single detection envelope.
	Write(env *schemas.DetectionEnvelope) error
	// Close finalizes the report and closes any underlying resources.
	Close() error
}

// nopWriteCloser wraps an io.Writer with a no-op Close, so stdout is never
// closed out from under the process.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error { return nil }

// New creates a reporter for the given format writing to outputPath.
// An empty path or "stdout" targets standard output.
func New(format, outputPath string) (Reporter, error) {
	var writer io.WriteCloser
	isStdout := outputPath == "" || outputPath == "stdout"

	if isStdout {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	switch format {
	case "json":
		return NewJSONReporter(writer), nil
	case "text":
		return NewTextReporter(writer), nil
	default:
		if !isStdout {
			_ = writer.Close()
		}
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
