package agent

import "strings"

// Default evaluator policy. The confidence model is deliberately coarse: a
// fixed uncertainty lexicon maps an answer to one of two levels. It is a
// routing heuristic carried over from the original policy, not a calibrated
// probability.
const (
	DefaultLowConfidence     = 0.60
	DefaultHighConfidence    = 0.95
	DefaultHandoverThreshold = 0.80
)

// DefaultUncertainPhrases is the uncertainty lexicon checked against
// lower-cased answer text.
var DefaultUncertainPhrases = []string{
	"i'm not sure",
	"i don't know",
	"please contact",
	"unusual request",
}

// EvaluatorConfig holds the named, overridable routing policy parameters.
type EvaluatorConfig struct {
	UncertainPhrases  []string
	LowConfidence     float64
	HighConfidence    float64
	HandoverThreshold float64
}

// DefaultEvaluatorConfig returns the standard policy.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		UncertainPhrases:  DefaultUncertainPhrases,
		LowConfidence:     DefaultLowConfidence,
		HighConfidence:    DefaultHighConfidence,
		HandoverThreshold: DefaultHandoverThreshold,
	}
}

// Evaluator classifies a finished answer into a routing confidence.
type Evaluator struct {
	cfg EvaluatorConfig
}

// NewEvaluator creates an evaluator with the given policy. Zero-valued
// fields fall back to the defaults.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	def := DefaultEvaluatorConfig()
	if cfg.UncertainPhrases == nil {
		cfg.UncertainPhrases = def.UncertainPhrases
	}
	if cfg.LowConfidence == 0 {
		cfg.LowConfidence = def.LowConfidence
	}
	if cfg.HighConfidence == 0 {
		cfg.HighConfidence = def.HighConfidence
	}
	if cfg.HandoverThreshold == 0 {
		cfg.HandoverThreshold = def.HandoverThreshold
	}
	return &Evaluator{cfg: cfg}
}

// Score classifies an answer: any uncertainty phrase yields the low level,
// otherwise the high level.
func (e *Evaluator) Score(answer string) float64 {
	lowered := strings.ToLower(answer)
	for _, phrase := range e.cfg.UncertainPhrases {
		if strings.Contains(lowered, phrase) {
			return e.cfg.LowConfidence
		}
	}
	return e.cfg.HighConfidence
}

// NeedsHandover reports whether a confidence routes to a human. The
// threshold itself routes to end: handover requires strictly less.
func (e *Evaluator) NeedsHandover(confidence float64) bool {
	return confidence < e.cfg.HandoverThreshold
}
