// Package tools implements the closed tool registry consumed by the
// dialogue oracle.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookleaf/support-platform/internal/knowledge"
	"github.com/bookleaf/support-platform/internal/llm"
	"github.com/bookleaf/support-platform/internal/model"
	"github.com/bookleaf/support-platform/pkg/logger"
	"github.com/bookleaf/support-platform/pkg/metrics"
)

// Tool names.
const (
	ToolSearchKnowledgeBase = "search_knowledge_base"
	ToolCheckAuthorStatus   = "check_author_status"
	ToolLogInteraction      = "log_interaction"
)

// ErrUnknownTool is returned when the oracle requests a tool that is not in
// the registry. This is a protocol violation, not a recoverable tool error.
var ErrUnknownTool = fmt.Errorf("unknown tool")

// KnowledgeSearcher retrieves knowledge chunks by embedding similarity.
type KnowledgeSearcher interface {
	MatchDocuments(ctx context.Context, embedding []float32, matchCount int) ([]model.KnowledgeChunk, error)
}

// AuthorDirectory looks up author status records.
type AuthorDirectory interface {
	GetAuthorStatus(ctx context.Context, email string) (*model.AuthorStatusRecord, error)
}

// AuditLog persists interaction log entries.
type AuditLog interface {
	InsertInteractionLog(ctx context.Context, entry model.InteractionLog) error
}

// handler is one registry entry: a named tool with a typed argument schema
// and a run function. Run functions convert collaborator failures into
// descriptive result strings; they never surface errors to the oracle loop.
type handler struct {
	name        string
	description string
	parameters  json.RawMessage

	// exposed tools are advertised to the oracle; the rest are
	// dispatchable write contracts invoked by the orchestrator itself.
	exposed bool

	run func(ctx context.Context, args json.RawMessage) string
}

// Registry is the closed mapping from tool name to handler.
type Registry struct {
	handlers map[string]*handler
	order    []string
	logger   *logger.Logger
}

// NewRegistry builds the registry over its backing collaborators.
func NewRegistry(
	searcher KnowledgeSearcher,
	embedder knowledge.Embedder,
	directory AuthorDirectory,
	audit AuditLog,
	log *logger.Logger,
) *Registry {
	r := &Registry{
		handlers: make(map[string]*handler),
		logger:   log,
	}
	r.register(searchKnowledgeBaseHandler(searcher, embedder))
	r.register(checkAuthorStatusHandler(directory))
	r.register(logInteractionHandler(audit, log))
	return r
}

func (r *Registry) register(h *handler) {
	r.handlers[h.name] = h
	r.order = append(r.order, h.name)
}

// Descriptors returns the tool descriptors advertised to the oracle.
func (r *Registry) Descriptors() []llm.Tool {
	var descriptors []llm.Tool
	for _, name := range r.order {
		h := r.handlers[name]
		if !h.exposed {
			continue
		}
		descriptors = append(descriptors, llm.Tool{
			Name:        h.name,
			Description: h.description,
			Parameters:  h.parameters,
		})
	}
	return descriptors
}

// Dispatch runs a named tool with raw JSON arguments. Unknown names are a
// protocol violation; every other failure is reported inside the returned
// result string.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (string, error) {
	h, ok := r.handlers[name]
	if !ok {
		metrics.RecordToolCall(name, "unknown")
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	result := h.run(ctx, args)
	metrics.RecordToolCall(name, "ok")
	r.logger.Debug("tool dispatched",
		zap.String("tool", name),
		zap.Int("result_len", len(result)),
	)
	return result, nil
}

// LogInteraction writes the audit log entry for a completed run. It is
// fire-and-forget: failures are reported in the returned string and logged,
// never raised.
func (r *Registry) LogInteraction(ctx context.Context, entry model.InteractionLog) string {
	return r.handlers[ToolLogInteraction].run(ctx, mustMarshalLogArgs(entry))
}
