// Package service provides the customer bot run pipeline.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookleaf/support-platform/internal/agent"
	"github.com/bookleaf/support-platform/internal/identity"
	"github.com/bookleaf/support-platform/internal/model"
	"github.com/bookleaf/support-platform/pkg/logger"
	"github.com/bookleaf/support-platform/pkg/metrics"
)

// RunPublisher publishes completed run events. May be nil when no event bus
// is configured.
type RunPublisher interface {
	PublishRun(ctx context.Context, event *model.RunEvent) (uint64, error)
}

// BotService runs the full pipeline for one inbound message: identity
// resolution, dialogue orchestration, and outcome publishing.
type BotService struct {
	resolver     *identity.Resolver
	orchestrator *agent.Orchestrator
	publisher    RunPublisher
	logger       *logger.Logger
}

// NewBotService creates a new bot service.
func NewBotService(resolver *identity.Resolver, orchestrator *agent.Orchestrator, publisher RunPublisher, log *logger.Logger) *BotService {
	return &BotService{
		resolver:     resolver,
		orchestrator: orchestrator,
		publisher:    publisher,
		logger:       log,
	}
}

// RunOutcome is the terminal result of one customer bot run.
type RunOutcome struct {
	RunID         string
	Response      string
	Handover      bool
	Confidence    float64
	VerifiedEmail string
}

// RunCustomerBot resolves the sender's identity and drives one conversational
// run to a terminal outcome. Orchestration failures (cycle-limit aborts,
// oracle outages) surface as errors; a handover is a normal outcome.
func (s *BotService) RunCustomerBot(ctx context.Context, userInput string, platform model.Platform, senderID, threadID string) (*RunOutcome, error) {
	start := time.Now()
	runID := uuid.Must(uuid.NewV7()).String()
	if threadID == "" {
		threadID = fmt.Sprintf("%s_%s", platform, senderID)
	}

	log := s.logger.WithRun(runID, platform.String(), senderID)

	email := s.resolver.Resolve(ctx, platform, senderID)
	if email != "" {
		log.Info("sender identity verified", zap.String("email", email))
	}

	state := model.NewConversationState(userInput, platform, senderID, threadID, email)

	result, err := s.orchestrator.Run(ctx, state)
	if err != nil {
		metrics.RecordRun(platform.String(), "error", 0, time.Since(start).Seconds())
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	outcome := "answered"
	eventType := model.RunEventAnswered
	if result.Handover {
		outcome = "handover"
		eventType = model.RunEventHandover
	}
	metrics.RecordRun(platform.String(), outcome, result.Confidence, time.Since(start).Seconds())

	log.Info("run completed",
		zap.String("outcome", outcome),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("duration", time.Since(start)),
	)

	s.publish(ctx, &model.RunEvent{
		RunID:       runID,
		ThreadID:    threadID,
		Type:        eventType,
		Platform:    platform,
		SenderID:    senderID,
		Query:       userInput,
		Response:    result.Response,
		Confidence:  result.Confidence,
		AuthorEmail: email,
		CreatedAt:   time.Now(),
	})

	return &RunOutcome{
		RunID:         runID,
		Response:      result.Response,
		Handover:      result.Handover,
		Confidence:    result.Confidence,
		VerifiedEmail: email,
	}, nil
}

// publish is fire-and-forget: event bus failures never affect the response.
func (s *BotService) publish(ctx context.Context, event *model.RunEvent) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.PublishRun(ctx, event); err != nil {
		s.logger.Warn("run event publish failed",
			zap.String("run_id", event.RunID),
			zap.Error(err),
		)
	}
}
