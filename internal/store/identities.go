package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bookleaf/support-platform/internal/model"
)

// GetIdentityLink fetches the persisted link for a (platform, handle) pair.
// Returns ErrNotFound when no link exists.
func (s *Store) GetIdentityLink(ctx context.Context, platform model.Platform, handleOrID string) (*model.IdentityLink, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT platform, handle_or_id, primary_email, created_at
		FROM author_identities
		WHERE platform = $1 AND handle_or_id = $2`, platform, handleOrID)

	var link model.IdentityLink
	err := row.Scan(&link.Platform, &link.HandleOrID, &link.PrimaryEmail, &link.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query identity link: %w", err)
	}
	return &link, nil
}

// UpsertIdentityLink persists a confirmed link. The (platform, handle_or_id)
// key is unique; concurrent writers race last-writer-wins, which is safe
// because both would have computed the same winning email.
func (s *Store) UpsertIdentityLink(ctx context.Context, platform model.Platform, handleOrID, primaryEmail string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO author_identities (platform, handle_or_id, primary_email, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (platform, handle_or_id)
		DO UPDATE SET primary_email = EXCLUDED.primary_email`,
		platform, handleOrID, primaryEmail,
	)
	if err != nil {
		return fmt.Errorf("upsert identity link: %w", err)
	}
	return nil
}
