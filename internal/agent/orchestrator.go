// Package agent implements the dialogue orchestration state machine.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookleaf/support-platform/internal/llm"
	"github.com/bookleaf/support-platform/internal/model"
	"github.com/bookleaf/support-platform/internal/tools"
	"github.com/bookleaf/support-platform/pkg/logger"
)

// DefaultMaxToolCycles bounds the think-act-observe loop.
const DefaultMaxToolCycles = 6

// ErrToolCycleLimit is returned when a run exceeds the tool cycle cap
// without reaching a terminal answer. It is an orchestration failure,
// distinct from a handover: no audit entry is written for aborted runs.
var ErrToolCycleLimit = errors.New("tool cycle limit exceeded")

const fallbackApology = "I'm sorry, I wasn't able to resolve this myself. " +
	"I've flagged your query for one of our team members, who will get back to you shortly."

// Orchestrator drives one conversational run to a terminal outcome by
// sequencing oracle calls, tool dispatches, and the confidence evaluator.
type Orchestrator struct {
	oracle      llm.Client
	oracleModel string
	registry    *tools.Registry
	evaluator   *Evaluator
	maxCycles   int
	logger      *logger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithModel overrides the oracle model name.
func WithModel(m string) Option {
	return func(o *Orchestrator) { o.oracleModel = m }
}

// WithMaxCycles overrides the tool cycle cap.
func WithMaxCycles(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxCycles = n
		}
	}
}

// NewOrchestrator creates an orchestrator with injected collaborators.
func NewOrchestrator(oracle llm.Client, registry *tools.Registry, evaluator *Evaluator, log *logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		oracle:    oracle,
		registry:  registry,
		evaluator: evaluator,
		maxCycles: DefaultMaxToolCycles,
		logger:    log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result is the terminal outcome of one run.
type Result struct {
	Response   string
	Handover   bool
	Confidence float64
}

// Run drives the state machine over a freshly constructed conversation
// state: oracle, then either tool execution looping back to the oracle, or
// evaluation into a terminal outcome. Exactly one audit-log write happens at
// the evaluate transition; aborted runs write nothing.
func (o *Orchestrator) Run(ctx context.Context, state *model.ConversationState) (*Result, error) {
	descriptors := o.registry.Descriptors()
	system := SystemPrompt(state.AuthorEmail)

	for cycle := 0; cycle < o.maxCycles; cycle++ {
		// ORACLE: draft an answer or request tools.
		resp, err := o.oracle.Complete(ctx, &llm.CompletionRequest{
			Model:    o.oracleModel,
			System:   system,
			Messages: turnsToMessages(state.Turns),
			Tools:    descriptors,
		})
		if err != nil {
			return nil, fmt.Errorf("oracle call: %w", err)
		}

		calls := make([]model.ToolCall, len(resp.ToolCalls))
		for i, call := range resp.ToolCalls {
			calls[i] = model.ToolCall{ID: call.ID, Name: call.Name, Arguments: json.RawMessage(call.Arguments)}
		}
		state.Append(model.AssistantTurn(resp.Content, calls))

		last := state.Last()
		if !last.RequestsTools() {
			return o.evaluate(ctx, state, last.Content)
		}

		// TOOL_EXEC: dispatch every requested call, append one result
		// turn per call, then loop back to the oracle.
		for _, call := range last.ToolCalls {
			result, err := o.registry.Dispatch(ctx, call.Name, call.Arguments)
			if err != nil {
				return nil, fmt.Errorf("tool dispatch: %w", err)
			}
			state.Append(model.ToolResultTurn(call.ID, call.Name, result))
			o.logger.Debug("tool executed",
				zap.String("tool", call.Name),
				zap.Int("cycle", cycle),
			)
		}
	}

	return nil, fmt.Errorf("%w after %d cycles", ErrToolCycleLimit, o.maxCycles)
}

// evaluate runs the confidence evaluator against a plain answer and settles
// the run. The audit write happens here for both outcomes.
func (o *Orchestrator) evaluate(ctx context.Context, state *model.ConversationState, answer string) (*Result, error) {
	confidence := o.evaluator.Score(answer)
	state.Confidence = confidence
	state.HandoverRequired = o.evaluator.NeedsHandover(confidence)

	o.registry.LogInteraction(ctx, model.InteractionLog{
		Query:       state.UserQuery(),
		Response:    answer,
		Confidence:  confidence,
		AuthorEmail: state.AuthorEmail,
		Platform:    state.Platform,
	})

	response := answer
	if state.HandoverRequired && response == "" {
		response = fallbackApology
	}

	return &Result{
		Response:   response,
		Handover:   state.HandoverRequired,
		Confidence: confidence,
	}, nil
}

// turnsToMessages converts the tagged turn sequence into provider-neutral
// chat messages.
func turnsToMessages(turns []model.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Kind {
		case model.TurnUser:
			messages = append(messages, llm.Message{Role: "user", Content: turn.Content})
		case model.TurnAssistant:
			msg := llm.Message{Role: "assistant", Content: turn.Content}
			for _, call := range turn.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
					ID:        call.ID,
					Name:      call.Name,
					Arguments: string(call.Arguments),
				})
			}
			messages = append(messages, msg)
		case model.TurnToolResult:
			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    turn.Content,
				ToolCallID: turn.ToolCallID,
				Name:       turn.ToolName,
			})
		}
	}
	return messages
}
