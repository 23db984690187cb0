package agent

import "testing"

func TestEvaluator_Score(t *testing.T) {
	e := NewEvaluator(EvaluatorConfig{})

	tests := []struct {
		name   string
		answer string
		want   float64
	}{
		{"clean answer", "Royalties are paid quarterly via bank transfer.", DefaultHighConfidence},
		{"not sure", "I'm not sure about that particular policy.", DefaultLowConfidence},
		{"dont know", "I don't know the exact date.", DefaultLowConfidence},
		{"contact phrase", "Please contact our support team for this.", DefaultLowConfidence},
		{"unusual request", "This is an unusual request that I cannot handle.", DefaultLowConfidence},
		{"case insensitive", "PLEASE CONTACT the team.", DefaultLowConfidence},
		{"phrase mid sentence", "For refunds, I don't know the current policy offhand.", DefaultLowConfidence},
		{"empty answer", "", DefaultHighConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Score(tt.answer); got != tt.want {
				t.Errorf("Score(%q) = %f, want %f", tt.answer, got, tt.want)
			}
		})
	}
}

func TestEvaluator_NeedsHandover(t *testing.T) {
	e := NewEvaluator(EvaluatorConfig{})

	// The threshold itself routes to end, not handover.
	if e.NeedsHandover(DefaultHandoverThreshold) {
		t.Errorf("confidence %f at threshold should not hand over", DefaultHandoverThreshold)
	}
	if !e.NeedsHandover(0.79) {
		t.Error("confidence 0.79 should hand over")
	}
	if e.NeedsHandover(DefaultHighConfidence) {
		t.Error("high confidence should not hand over")
	}
	if !e.NeedsHandover(DefaultLowConfidence) {
		t.Error("low confidence should hand over")
	}
}

func TestEvaluator_CustomPolicy(t *testing.T) {
	e := NewEvaluator(EvaluatorConfig{
		UncertainPhrases:  []string{"escalating"},
		LowConfidence:     0.2,
		HighConfidence:    0.99,
		HandoverThreshold: 0.5,
	})

	if got := e.Score("Escalating this to a specialist."); got != 0.2 {
		t.Errorf("expected custom low confidence, got %f", got)
	}
	if got := e.Score("I'm not sure."); got != 0.99 {
		t.Errorf("default phrases should not apply with a custom lexicon, got %f", got)
	}
	if !e.NeedsHandover(0.2) {
		t.Error("0.2 should hand over under a 0.5 threshold")
	}
}
