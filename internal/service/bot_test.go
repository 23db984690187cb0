package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bookleaf/support-platform/internal/agent"
	"github.com/bookleaf/support-platform/internal/identity"
	"github.com/bookleaf/support-platform/internal/llm"
	"github.com/bookleaf/support-platform/internal/model"
	"github.com/bookleaf/support-platform/internal/store"
	"github.com/bookleaf/support-platform/internal/tools"
	"github.com/bookleaf/support-platform/pkg/logger"
)

type fixedOracle struct {
	content string
	err     error
}

func (f fixedOracle) Complete(context.Context, *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}

func (f fixedOracle) Name() string { return "fixed" }

type noopEmbedder struct{}

func (noopEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{0}, nil
}

type noopSearcher struct{}

func (noopSearcher) MatchDocuments(context.Context, []float32, int) ([]model.KnowledgeChunk, error) {
	return nil, nil
}

type noopDirectory struct{}

func (noopDirectory) GetAuthorStatus(context.Context, string) (*model.AuthorStatusRecord, error) {
	return nil, store.ErrNotFound
}

type noopAudit struct{}

func (noopAudit) InsertInteractionLog(context.Context, model.InteractionLog) error { return nil }

type cachedLinks struct {
	email string
}

func (c cachedLinks) GetIdentityLink(context.Context, model.Platform, string) (*model.IdentityLink, error) {
	if c.email == "" {
		return nil, store.ErrNotFound
	}
	return &model.IdentityLink{PrimaryEmail: c.email}, nil
}

func (c cachedLinks) UpsertIdentityLink(context.Context, model.Platform, string, string) error {
	return nil
}

type emptyPool struct{}

func (emptyPool) ListAuthors(context.Context) ([]model.AuthorRef, error) { return nil, nil }

type capturePublisher struct {
	events []*model.RunEvent
	err    error
}

func (p *capturePublisher) PublishRun(_ context.Context, event *model.RunEvent) (uint64, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.events = append(p.events, event)
	return uint64(len(p.events)), nil
}

func newBotService(oracle llm.Client, linkedEmail string, publisher RunPublisher) *BotService {
	log := logger.NewNop()
	registry := tools.NewRegistry(noopSearcher{}, noopEmbedder{}, noopDirectory{}, noopAudit{}, log)
	orchestrator := agent.NewOrchestrator(oracle, registry, agent.NewEvaluator(agent.EvaluatorConfig{}), log)
	resolver := identity.NewResolver(cachedLinks{email: linkedEmail}, emptyPool{}, oracle, log)
	return NewBotService(resolver, orchestrator, publisher, log)
}

func TestRunCustomerBot_Answered(t *testing.T) {
	publisher := &capturePublisher{}
	svc := newBotService(fixedOracle{content: "Royalties are paid quarterly."}, "sara.johnson@xyz.com", publisher)

	outcome, err := svc.RunCustomerBot(context.Background(), "When are royalties paid?", model.PlatformWeb, "user1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Response != "Royalties are paid quarterly." {
		t.Errorf("response = %q", outcome.Response)
	}
	if outcome.Handover {
		t.Error("clean answer should not hand over")
	}
	if outcome.VerifiedEmail != "sara.johnson@xyz.com" {
		t.Errorf("verified email = %q", outcome.VerifiedEmail)
	}
	if outcome.RunID == "" {
		t.Error("run id must be assigned")
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.Type != model.RunEventAnswered {
		t.Errorf("event type = %q", event.Type)
	}
	if event.ThreadID != "web_user1" {
		t.Errorf("empty thread id should default to platform_sender, got %q", event.ThreadID)
	}
	if event.AuthorEmail != "sara.johnson@xyz.com" {
		t.Errorf("event author email = %q", event.AuthorEmail)
	}
}

func TestRunCustomerBot_Handover(t *testing.T) {
	publisher := &capturePublisher{}
	svc := newBotService(fixedOracle{content: "I'm not sure, please contact the team."}, "", publisher)

	outcome, err := svc.RunCustomerBot(context.Background(), "Odd question", model.PlatformWhatsApp, "+15551234", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !outcome.Handover {
		t.Error("uncertain answer should hand over")
	}
	if outcome.VerifiedEmail != "" {
		t.Errorf("no identity expected, got %q", outcome.VerifiedEmail)
	}
	if len(publisher.events) != 1 || publisher.events[0].Type != model.RunEventHandover {
		t.Errorf("expected one handover event, got %+v", publisher.events)
	}
}

func TestRunCustomerBot_ExplicitThreadID(t *testing.T) {
	publisher := &capturePublisher{}
	svc := newBotService(fixedOracle{content: "ok"}, "", publisher)

	_, err := svc.RunCustomerBot(context.Background(), "hi", model.PlatformWeb, "u1", "session-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if publisher.events[0].ThreadID != "session-42" {
		t.Errorf("explicit thread id must be kept, got %q", publisher.events[0].ThreadID)
	}
}

func TestRunCustomerBot_OrchestrationFailure(t *testing.T) {
	publisher := &capturePublisher{}
	svc := newBotService(fixedOracle{err: errors.New("model overloaded")}, "", publisher)

	_, err := svc.RunCustomerBot(context.Background(), "hi", model.PlatformWeb, "u1", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(publisher.events) != 0 {
		t.Errorf("failed runs must not publish events, got %d", len(publisher.events))
	}
}

func TestRunCustomerBot_PublishFailureSwallowed(t *testing.T) {
	publisher := &capturePublisher{err: errors.New("nats down")}
	svc := newBotService(fixedOracle{content: "ok"}, "", publisher)

	outcome, err := svc.RunCustomerBot(context.Background(), "hi", model.PlatformWeb, "u1", "")
	if err != nil {
		t.Fatalf("publish failure must not fail the run: %v", err)
	}
	if outcome.Response != "ok" {
		t.Errorf("response = %q", outcome.Response)
	}
}

func TestRunCustomerBot_NilPublisher(t *testing.T) {
	svc := newBotService(fixedOracle{content: "ok"}, "", nil)

	if _, err := svc.RunCustomerBot(context.Background(), "hi", model.PlatformWeb, "u1", ""); err != nil {
		t.Fatalf("nil publisher must be tolerated: %v", err)
	}
}
