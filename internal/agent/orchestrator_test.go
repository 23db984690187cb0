package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bookleaf/support-platform/internal/llm"
	"github.com/bookleaf/support-platform/internal/model"
	"github.com/bookleaf/support-platform/internal/tools"
	"github.com/bookleaf/support-platform/pkg/logger"
)

// scriptedOracle replays a fixed sequence of completions and records every
// request it receives.
type scriptedOracle struct {
	responses []*llm.CompletionResponse
	err       error
	requests  []*llm.CompletionRequest
}

func (s *scriptedOracle) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	i := len(s.requests) - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func (s *scriptedOracle) Name() string { return "scripted" }

type stubEmbedder struct{}

func (stubEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

type stubSearcher struct {
	chunks []model.KnowledgeChunk
}

func (s stubSearcher) MatchDocuments(context.Context, []float32, int) ([]model.KnowledgeChunk, error) {
	return s.chunks, nil
}

type stubDirectory struct{}

func (stubDirectory) GetAuthorStatus(context.Context, string) (*model.AuthorStatusRecord, error) {
	return &model.AuthorStatusRecord{Email: "sara.johnson@xyz.com", BookTitle: "Monsoon Verses"}, nil
}

type captureAudit struct {
	entries []model.InteractionLog
}

func (c *captureAudit) InsertInteractionLog(_ context.Context, entry model.InteractionLog) error {
	c.entries = append(c.entries, entry)
	return nil
}

func newTestRegistry(audit *captureAudit, chunks []model.KnowledgeChunk) *tools.Registry {
	return tools.NewRegistry(stubSearcher{chunks: chunks}, stubEmbedder{}, stubDirectory{}, audit, logger.NewNop())
}

func answer(content string) *llm.CompletionResponse {
	return &llm.CompletionResponse{Content: content}
}

func toolRequest(id, name, args string) *llm.CompletionResponse {
	return &llm.CompletionResponse{ToolCalls: []llm.ToolCall{{ID: id, Name: name, Arguments: args}}}
}

func TestRun_DirectAnswer(t *testing.T) {
	oracle := &scriptedOracle{responses: []*llm.CompletionResponse{
		answer("Royalties are paid quarterly via bank transfer."),
	}}
	audit := &captureAudit{}
	o := NewOrchestrator(oracle, newTestRegistry(audit, nil), NewEvaluator(EvaluatorConfig{}), logger.NewNop())

	state := model.NewConversationState("When are royalties paid?", model.PlatformWeb, "user1", "web_user1", "")
	result, err := o.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Response != "Royalties are paid quarterly via bank transfer." {
		t.Errorf("unexpected response: %q", result.Response)
	}
	if result.Handover {
		t.Error("clean answer should not hand over")
	}
	if result.Confidence != DefaultHighConfidence {
		t.Errorf("expected confidence %f, got %f", DefaultHighConfidence, result.Confidence)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.Query != "When are royalties paid?" {
		t.Errorf("audit query = %q", entry.Query)
	}
	if entry.Platform != model.PlatformWeb {
		t.Errorf("audit platform = %q", entry.Platform)
	}
	if entry.Confidence != DefaultHighConfidence {
		t.Errorf("audit confidence = %f", entry.Confidence)
	}
}

func TestRun_HandoverOnUncertainAnswer(t *testing.T) {
	oracle := &scriptedOracle{responses: []*llm.CompletionResponse{
		answer("I'm not sure, please contact our support team."),
	}}
	audit := &captureAudit{}
	o := NewOrchestrator(oracle, newTestRegistry(audit, nil), NewEvaluator(EvaluatorConfig{}), logger.NewNop())

	state := model.NewConversationState("Can I get a refund in gold bars?", model.PlatformWhatsApp, "u2", "", "")
	result, err := o.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Handover {
		t.Error("uncertain answer should hand over")
	}
	if result.Confidence != DefaultLowConfidence {
		t.Errorf("expected confidence %f, got %f", DefaultLowConfidence, result.Confidence)
	}
	// The drafted answer is kept verbatim even on handover.
	if result.Response != "I'm not sure, please contact our support team." {
		t.Errorf("unexpected response: %q", result.Response)
	}
	if len(audit.entries) != 1 {
		t.Errorf("handover runs still write exactly one audit entry, got %d", len(audit.entries))
	}
	if !state.HandoverRequired {
		t.Error("state should carry the handover flag")
	}
}

func TestRun_FallbackApologyOnEmptyHandoverAnswer(t *testing.T) {
	oracle := &scriptedOracle{responses: []*llm.CompletionResponse{answer("")}}
	audit := &captureAudit{}
	// Every score routes to handover under a threshold above the high level.
	evaluator := NewEvaluator(EvaluatorConfig{HandoverThreshold: 0.99})
	o := NewOrchestrator(oracle, newTestRegistry(audit, nil), evaluator, logger.NewNop())

	state := model.NewConversationState("hello?", model.PlatformWeb, "u3", "", "")
	result, err := o.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Handover {
		t.Fatal("expected handover")
	}
	if !strings.Contains(result.Response, "flagged your query") {
		t.Errorf("expected fallback apology, got %q", result.Response)
	}
}

func TestRun_ToolLoop(t *testing.T) {
	oracle := &scriptedOracle{responses: []*llm.CompletionResponse{
		toolRequest("call_1", tools.ToolSearchKnowledgeBase, `{"query": "royalty schedule"}`),
		answer("Per our FAQ, royalties are paid quarterly."),
	}}
	audit := &captureAudit{}
	chunks := []model.KnowledgeChunk{{Content: "Royalties are paid quarterly.", SourceFile: "faq.md"}}
	o := NewOrchestrator(oracle, newTestRegistry(audit, chunks), NewEvaluator(EvaluatorConfig{}), logger.NewNop())

	state := model.NewConversationState("When are royalties paid?", model.PlatformWeb, "u4", "", "")
	result, err := o.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Response != "Per our FAQ, royalties are paid quarterly." {
		t.Errorf("unexpected response: %q", result.Response)
	}
	if len(oracle.requests) != 2 {
		t.Fatalf("expected 2 oracle calls, got %d", len(oracle.requests))
	}

	// The second oracle call must see the tool result in the transcript.
	second := oracle.requests[1].Messages
	last := second[len(second)-1]
	if last.Role != "tool" || last.ToolCallID != "call_1" {
		t.Errorf("expected trailing tool message for call_1, got role=%q id=%q", last.Role, last.ToolCallID)
	}
	if !strings.Contains(last.Content, "[Source: faq.md]") {
		t.Errorf("tool result missing source attribution: %q", last.Content)
	}

	// Turn order: user, assistant(tool call), tool result, assistant answer.
	kinds := make([]model.TurnKind, len(state.Turns))
	for i, turn := range state.Turns {
		kinds[i] = turn.Kind
	}
	want := []model.TurnKind{model.TurnUser, model.TurnAssistant, model.TurnToolResult, model.TurnAssistant}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(kinds))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("turn %d kind = %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestRun_AdvertisedToolsExcludeAuditLog(t *testing.T) {
	oracle := &scriptedOracle{responses: []*llm.CompletionResponse{answer("ok")}}
	o := NewOrchestrator(oracle, newTestRegistry(&captureAudit{}, nil), NewEvaluator(EvaluatorConfig{}), logger.NewNop())

	state := model.NewConversationState("hi", model.PlatformWeb, "u5", "", "")
	if _, err := o.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	advertised := oracle.requests[0].Tools
	if len(advertised) != 2 {
		t.Fatalf("expected 2 advertised tools, got %d", len(advertised))
	}
	for _, tool := range advertised {
		if tool.Name == tools.ToolLogInteraction {
			t.Error("audit log tool must not be advertised to the oracle")
		}
	}
}

func TestRun_CycleLimitAbortsWithoutAudit(t *testing.T) {
	oracle := &scriptedOracle{responses: []*llm.CompletionResponse{
		toolRequest("call_n", tools.ToolSearchKnowledgeBase, `{"query": "again"}`),
	}}
	audit := &captureAudit{}
	o := NewOrchestrator(oracle, newTestRegistry(audit, nil), NewEvaluator(EvaluatorConfig{}), logger.NewNop(),
		WithMaxCycles(2))

	state := model.NewConversationState("loop forever", model.PlatformWeb, "u6", "", "")
	_, err := o.Run(context.Background(), state)
	if !errors.Is(err, ErrToolCycleLimit) {
		t.Fatalf("expected ErrToolCycleLimit, got %v", err)
	}
	if len(oracle.requests) != 2 {
		t.Errorf("expected the cap to stop at 2 oracle calls, got %d", len(oracle.requests))
	}
	if len(audit.entries) != 0 {
		t.Errorf("aborted runs must not write audit entries, got %d", len(audit.entries))
	}
}

func TestRun_UnknownToolIsFatal(t *testing.T) {
	oracle := &scriptedOracle{responses: []*llm.CompletionResponse{
		toolRequest("call_x", "drop_tables", `{}`),
	}}
	audit := &captureAudit{}
	o := NewOrchestrator(oracle, newTestRegistry(audit, nil), NewEvaluator(EvaluatorConfig{}), logger.NewNop())

	state := model.NewConversationState("hi", model.PlatformWeb, "u7", "", "")
	_, err := o.Run(context.Background(), state)
	if !errors.Is(err, tools.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	if len(audit.entries) != 0 {
		t.Errorf("failed runs must not write audit entries, got %d", len(audit.entries))
	}
}

func TestRun_OracleErrorPropagates(t *testing.T) {
	oracleErr := errors.New("rate limited")
	oracle := &scriptedOracle{err: oracleErr}
	audit := &captureAudit{}
	o := NewOrchestrator(oracle, newTestRegistry(audit, nil), NewEvaluator(EvaluatorConfig{}), logger.NewNop())

	state := model.NewConversationState("hi", model.PlatformWeb, "u8", "", "")
	_, err := o.Run(context.Background(), state)
	if !errors.Is(err, oracleErr) {
		t.Fatalf("expected wrapped oracle error, got %v", err)
	}
	if len(audit.entries) != 0 {
		t.Errorf("oracle failures must not write audit entries, got %d", len(audit.entries))
	}
}

func TestRun_VerifiedEmailInSystemPrompt(t *testing.T) {
	oracle := &scriptedOracle{responses: []*llm.CompletionResponse{answer("Your book is live.")}}
	o := NewOrchestrator(oracle, newTestRegistry(&captureAudit{}, nil), NewEvaluator(EvaluatorConfig{}), logger.NewNop())

	state := model.NewConversationState("status?", model.PlatformInstagram, "@sarapoetry23", "", "sara.johnson@xyz.com")
	if _, err := o.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(oracle.requests[0].System, "sara.johnson@xyz.com") {
		t.Error("system prompt missing verified email")
	}
}
