package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bookleaf/support-platform/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// GetAuthorStatus fetches the author status record for an email. The email
// must already be normalized (trimmed, lower-cased) by the caller.
func (s *Store) GetAuthorStatus(ctx context.Context, email string) (*model.AuthorStatusRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT email, book_title, COALESCE(isbn, ''), publishing_status, royalty_status,
		       COALESCE(final_submission_date::text, ''), COALESCE(book_live_date::text, '')
		FROM author_status WHERE email = $1`, email)

	var rec model.AuthorStatusRecord
	err := row.Scan(&rec.Email, &rec.BookTitle, &rec.ISBN, &rec.PublishingStatus,
		&rec.RoyaltyStatus, &rec.SubmissionDate, &rec.GoLiveDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query author status: %w", err)
	}
	return &rec, nil
}

// ListAuthors returns the full author pool used for fuzzy candidate
// generation.
func (s *Store) ListAuthors(ctx context.Context) ([]model.AuthorRef, error) {
	rows, err := s.pool.Query(ctx, `SELECT email, book_title FROM author_status`)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	var pool []model.AuthorRef
	for rows.Next() {
		var ref model.AuthorRef
		if err := rows.Scan(&ref.Email, &ref.BookTitle); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		pool = append(pool, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authors: %w", err)
	}
	return pool, nil
}
