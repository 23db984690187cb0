package agent

import (
	"strings"
	"testing"
)

func TestSystemPrompt_NoVerifiedEmail(t *testing.T) {
	prompt := SystemPrompt("")

	if !strings.Contains(prompt, "BookLeaf Publishing AI Automation Specialist") {
		t.Error("base prompt missing specialist role")
	}
	if !strings.Contains(prompt, "ASK for it") {
		t.Error("base prompt should instruct asking for the email")
	}
	if strings.Contains(prompt, "Identity Unification") {
		t.Error("addendum must not appear without a verified email")
	}
}

func TestSystemPrompt_VerifiedEmail(t *testing.T) {
	prompt := SystemPrompt("sara.johnson@xyz.com")

	if !strings.Contains(prompt, "sara.johnson@xyz.com") {
		t.Error("verified email missing from prompt")
	}
	if !strings.Contains(prompt, "do NOT ask them for it again") {
		t.Error("addendum should forbid re-asking for the email")
	}
	if !strings.HasPrefix(prompt, SystemPrompt("")) {
		t.Error("addendum should extend the base prompt, not replace it")
	}
}
