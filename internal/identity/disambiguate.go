package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bookleaf/support-platform/internal/llm"
	"github.com/bookleaf/support-platform/internal/model"
)

// verdict is the structured disambiguation contract. Any deviation from it
// in the oracle output is a parse failure, which scores zero confidence.
type verdict struct {
	MatchedEmail    string  `json:"matched_email"`
	ConfidenceScore float64 `json:"confidence_score"`
	Justification   string  `json:"justification"`
}

const disambiguationPrompt = `You are an Identity Unification Specialist at BookLeaf Publishing.
Task: Link a user handle from %s to an existing author profile.

Input Handle/ID: %s
Platform: %s

Potential Database Candidates:
%s

Analyze the handle and the candidates. Is there a high probability that this handle belongs to one of the authors?
A handle like '@sarapoetry23' likely belongs to 'sara.johnson@xyz.com'.

Return your response in JSON format:
{
    "matched_email": "email or null",
    "confidence_score": 0-100,
    "justification": "Short reason why"
}`

// disambiguate asks the oracle to judge whether the handle belongs to one of
// the candidate emails. Oracle and parse failures both yield a zero-confidence
// verdict; they never propagate.
func (r *Resolver) disambiguate(ctx context.Context, platform model.Platform, handle string, candidates []model.Candidate) verdict {
	lines := make([]string, len(candidates))
	for i, c := range candidates {
		lines[i] = fmt.Sprintf("- %s (Fuzzy Score: %d, Match Logic: %s)", c.Email, c.Score, c.Reason)
	}

	prompt := fmt.Sprintf(disambiguationPrompt, platform, handle, platform, strings.Join(lines, "\n"))

	resp, err := r.oracle.Complete(ctx, &llm.CompletionRequest{
		Model:    r.oracleModel,
		Messages: []llm.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return verdict{Justification: fmt.Sprintf("oracle error: %v", err)}
	}

	v, err := parseVerdict(resp.Content)
	if err != nil {
		return verdict{Justification: fmt.Sprintf("parse error: %v", err)}
	}
	return v
}

// parseVerdict decodes the oracle's answer. It tolerates fenced code blocks
// and falls back to the first balanced object in the raw text when strict
// decoding fails.
func parseVerdict(raw string) (verdict, error) {
	content := stripFences(raw)

	var v verdict
	if err := json.Unmarshal([]byte(content), &v); err == nil {
		return normalize(v), nil
	}

	obj, ok := firstBalancedObject(content)
	if !ok {
		return verdict{}, fmt.Errorf("no JSON object in oracle response")
	}
	if err := json.Unmarshal([]byte(obj), &v); err != nil {
		return verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	return normalize(v), nil
}

func normalize(v verdict) verdict {
	// Models sometimes emit the literal string "null" instead of JSON null.
	if strings.EqualFold(strings.TrimSpace(v.MatchedEmail), "null") {
		v.MatchedEmail = ""
	}
	return v
}

func stripFences(content string) string {
	if idx := strings.Index(content, "```json"); idx >= 0 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+len("```"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(content)
}

// firstBalancedObject scans for the first brace-balanced object-like span,
// ignoring braces inside string literals.
func firstBalancedObject(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], true
			}
		}
	}
	return "", false
}
