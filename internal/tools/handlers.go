package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bookleaf/support-platform/internal/knowledge"
	"github.com/bookleaf/support-platform/internal/model"
	"github.com/bookleaf/support-platform/internal/store"
	"github.com/bookleaf/support-platform/pkg/logger"
)

const matchCount = 3

// NoResultsSentinel is returned when knowledge search finds nothing.
const NoResultsSentinel = "No specific information found in the Knowledge Base for this query."

func searchKnowledgeBaseHandler(searcher KnowledgeSearcher, embedder knowledge.Embedder) *handler {
	return &handler{
		name: ToolSearchKnowledgeBase,
		description: "Searches the BookLeaf Publishing FAQ Knowledge Base for answers to general " +
			"publishing questions, writing challenge rules, royalties, publishing timelines, and other policies.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "The question to search for"}
			},
			"required": ["query"]
		}`),
		exposed: true,
		run: func(ctx context.Context, args json.RawMessage) string {
			var params struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &params); err != nil || strings.TrimSpace(params.Query) == "" {
				return "Error searching Knowledge Base: a non-empty 'query' argument is required."
			}

			embedding, err := embedder.EmbedQuery(ctx, params.Query)
			if err != nil {
				return fmt.Sprintf("Error searching Knowledge Base: %v", err)
			}

			chunks, err := searcher.MatchDocuments(ctx, embedding, matchCount)
			if err != nil {
				return fmt.Sprintf("Error searching Knowledge Base: %v", err)
			}
			if len(chunks) == 0 {
				return NoResultsSentinel
			}

			formatted := make([]string, len(chunks))
			for i, chunk := range chunks {
				entry := fmt.Sprintf("[Source: %s]\n%s", chunk.SourceFile, chunk.Content)
				if len(chunk.Links) > 0 {
					entry += fmt.Sprintf("\nRelevant Links: %s", strings.Join(chunk.Links, ", "))
				}
				formatted[i] = entry
			}
			return strings.Join(formatted, "\n\n---\n\n")
		},
	}
}

func checkAuthorStatusHandler(directory AuthorDirectory) *handler {
	return &handler{
		name: ToolCheckAuthorStatus,
		description: "Queries the internal database for specific author status, book titles, ISBNs, " +
			"royalty status, and key dates using their email address.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"email": {"type": "string", "description": "The author's verified email address"}
			},
			"required": ["email"]
		}`),
		exposed: true,
		run: func(ctx context.Context, args json.RawMessage) string {
			var params struct {
				Email string `json:"email"`
			}
			if err := json.Unmarshal(args, &params); err != nil || strings.TrimSpace(params.Email) == "" {
				return "Error querying author status: a non-empty 'email' argument is required."
			}

			email := strings.ToLower(strings.TrimSpace(params.Email))
			rec, err := directory.GetAuthorStatus(ctx, email)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Sprintf("No author record found for email: %s. Please verify the email or ask for a different one.", params.Email)
			}
			if err != nil {
				return fmt.Sprintf("Error querying author status: %v", err)
			}

			isbn := rec.ISBN
			if isbn == "" {
				isbn = "Pending"
			}
			goLive := rec.GoLiveDate
			if goLive == "" {
				goLive = "TBD"
			}

			return fmt.Sprintf(
				"Author Status Report for %s:\n"+
					"- Book Title: %s\n"+
					"- ISBN: %s\n"+
					"- Publishing Status: %s\n"+
					"- Royalty Status: %s\n"+
					"- Submission Date: %s\n"+
					"- Go-Live Date: %s",
				email, rec.BookTitle, isbn, rec.PublishingStatus, rec.RoyaltyStatus,
				rec.SubmissionDate, goLive,
			)
		},
	}
}

type logInteractionArgs struct {
	Query      string  `json:"query"`
	Response   string  `json:"response"`
	Confidence float64 `json:"confidence"`
	Email      string  `json:"email,omitempty"`
	Platform   string  `json:"platform"`
}

func logInteractionHandler(audit AuditLog, log *logger.Logger) *handler {
	return &handler{
		name: ToolLogInteraction,
		description: "Logs the user query, bot response, confidence score, and platform to the " +
			"database for audit and human escalation tracking.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string"},
				"response": {"type": "string"},
				"confidence": {"type": "number"},
				"email": {"type": "string"},
				"platform": {"type": "string"}
			},
			"required": ["query", "response", "confidence", "platform"]
		}`),
		// Invoked directly by the orchestrator at the evaluate transition,
		// never advertised to the oracle.
		exposed: false,
		run: func(ctx context.Context, args json.RawMessage) string {
			var params logInteractionArgs
			if err := json.Unmarshal(args, &params); err != nil {
				return fmt.Sprintf("Error logging interaction: %v", err)
			}

			err := audit.InsertInteractionLog(ctx, model.InteractionLog{
				Query:       params.Query,
				Response:    params.Response,
				Confidence:  params.Confidence,
				AuthorEmail: params.Email,
				Platform:    model.Platform(params.Platform),
			})
			if err != nil {
				log.Warn("interaction log write failed", zap.Error(err))
				return fmt.Sprintf("Error logging interaction: %v", err)
			}
			return "Interaction logged successfully."
		},
	}
}

func mustMarshalLogArgs(entry model.InteractionLog) json.RawMessage {
	args, _ := json.Marshal(logInteractionArgs{
		Query:      entry.Query,
		Response:   entry.Response,
		Confidence: entry.Confidence,
		Email:      entry.AuthorEmail,
		Platform:   entry.Platform.String(),
	})
	return args
}
