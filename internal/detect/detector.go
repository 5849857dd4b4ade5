// Package detect implements heuristic detection and structural extraction of
// authentication forms from arbitrary, often malformed, HTML documents.
//
// The pipeline has four pure stages over one document: load the tree, scan
// and classify input-capable elements, locate the best bounding container by
// a scored ancestor walk, and build a deduplicated report. Data flows
// strictly forward; there is no I/O and no shared mutable state, so one
// Detector may be used concurrently across documents.
//
// The core contract is failure-free: for any input string, including empty
// and non-HTML garbage, Detect returns a well-formed AuthForm and never
// panics. "Failure" is always expressed as the negative result. Pages that
// need client-side rendering to materialize their forms come back as "not
// detected".
package detect

import (
	"go.uber.org/zap"

	"github.com/authscope/authscope-cli/api/schemas"
	"github.com/authscope/authscope-cli/internal/config"
	"github.com/authscope/authscope-cli/internal/htmldoc"
)

// modePolicy is the internal, resolved form of a Strictness: one flag driving
// every permissive/strict branch. The looser and stricter heuristic variants
// are the same code parameterized by this policy.
type modePolicy struct {
	strict bool
}

// Detector runs the detection pipeline. The zero-value defaults match the
// historical heuristic: permissive mode, ancestor depth 10, bonus 100.
type Detector struct {
	mode             modePolicy
	maxDepth         int
	traditionalBonus int
	log              *zap.Logger
}

// New builds a Detector from configuration. A nil logger is replaced with a
// no-op; unset numeric knobs fall back to the historical defaults.
func New(cfg config.DetectorConfig, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Detector{
		mode:             modePolicy{strict: schemas.Strictness(cfg.Mode) == schemas.StrictnessStrict},
		maxDepth:         cfg.MaxAncestorDepth,
		traditionalBonus: cfg.TraditionalBonus,
		log:              logger.Named("detect"),
	}
	if d.maxDepth <= 0 {
		d.maxDepth = 10
	}
	if d.traditionalBonus <= 0 {
		d.traditionalBonus = 100
	}
	return d
}

// Mode returns the strictness the detector runs with.
func (d *Detector) Mode() schemas.Strictness {
	if d.mode.strict {
		return schemas.StrictnessStrict
	}
	return schemas.StrictnessPermissive
}

// Detect analyzes one HTML document and returns its report. Runs are
// independent and stateless; calling Detect twice on the same string yields
// identical output.
func (d *Detector) Detect(markup string) schemas.AuthForm {
	doc := htmldoc.Load(markup)

	cands := d.scan(doc)
	if len(cands) == 0 {
		return schemas.AuthForm{}
	}

	container := d.locateContainer(cands[0])

	form := d.buildReport(cands, container)
	if form.Detected() {
		d.log.Debug("credential surface detected",
			zap.Int("candidates", len(cands)),
			zap.Int("password_inputs", len(form.PasswordInputs)),
			zap.Int("other_inputs", len(form.OtherInputs)),
			zap.Bool("container_is_form", form.FormElement != ""),
		)
	}
	return form
}
