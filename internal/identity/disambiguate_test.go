package identity

import (
	"strings"
	"testing"
)

func TestParseVerdict_PlainJSON(t *testing.T) {
	v, err := parseVerdict(`{"matched_email": "sara.johnson@xyz.com", "confidence_score": 92, "justification": "Handle contains first name"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.MatchedEmail != "sara.johnson@xyz.com" {
		t.Errorf("matched email = %q", v.MatchedEmail)
	}
	if v.ConfidenceScore != 92 {
		t.Errorf("confidence = %f", v.ConfidenceScore)
	}
}

func TestParseVerdict_FencedBlock(t *testing.T) {
	raw := "Here's my analysis:\n```json\n{\"matched_email\": \"raj.patel@abc.in\", \"confidence_score\": 88, \"justification\": \"Surname match\"}\n```\nLet me know if you need more."
	v, err := parseVerdict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.MatchedEmail != "raj.patel@abc.in" {
		t.Errorf("matched email = %q", v.MatchedEmail)
	}
	if v.ConfidenceScore != 88 {
		t.Errorf("confidence = %f", v.ConfidenceScore)
	}
}

func TestParseVerdict_BareFence(t *testing.T) {
	raw := "```\n{\"matched_email\": null, \"confidence_score\": 10, \"justification\": \"No plausible match\"}\n```"
	v, err := parseVerdict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.MatchedEmail != "" {
		t.Errorf("null email should decode to empty, got %q", v.MatchedEmail)
	}
}

func TestParseVerdict_EmbeddedObjectFallback(t *testing.T) {
	raw := `Sure! Based on the candidates, {"matched_email": "emily.chen@mail.com", "confidence_score": 90, "justification": "Handle references Paper Cranes"} is my conclusion.`
	v, err := parseVerdict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.MatchedEmail != "emily.chen@mail.com" {
		t.Errorf("matched email = %q", v.MatchedEmail)
	}
}

func TestParseVerdict_BracesInsideStrings(t *testing.T) {
	raw := `Analysis: {"matched_email": "d.okafor@books.ng", "confidence_score": 87, "justification": "Bio says {poet} and handle matches"}`
	v, err := parseVerdict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(v.Justification, "{poet}") {
		t.Errorf("justification mangled: %q", v.Justification)
	}
}

func TestParseVerdict_LiteralNullString(t *testing.T) {
	v, err := parseVerdict(`{"matched_email": "null", "confidence_score": 5, "justification": "nothing fits"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.MatchedEmail != "" {
		t.Errorf("literal null string should normalize to empty, got %q", v.MatchedEmail)
	}
}

func TestParseVerdict_NoObject(t *testing.T) {
	if _, err := parseVerdict("I cannot produce structured output today."); err == nil {
		t.Fatal("expected error for prose with no object")
	}
}

func TestParseVerdict_UnterminatedObject(t *testing.T) {
	if _, err := parseVerdict(`{"matched_email": "x@y.com", "confidence_score":`); err == nil {
		t.Fatal("expected error for unterminated object")
	}
}
