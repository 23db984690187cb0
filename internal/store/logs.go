package store

import (
	"context"
	"fmt"

	"github.com/bookleaf/support-platform/internal/model"
)

// InsertInteractionLog writes one audit-log row.
func (s *Store) InsertInteractionLog(ctx context.Context, entry model.InteractionLog) error {
	var email any
	if entry.AuthorEmail != "" {
		email = entry.AuthorEmail
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO bot_logs (query, response, confidence_score, author_email, platform_used, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		entry.Query, entry.Response, entry.Confidence, email, entry.Platform,
	)
	if err != nil {
		return fmt.Errorf("insert interaction log: %w", err)
	}
	return nil
}
