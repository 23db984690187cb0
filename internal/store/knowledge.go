package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bookleaf/support-platform/internal/model"
)

// MatchDocuments returns the top matchCount knowledge chunks ranked by
// cosine distance to the query embedding.
func (s *Store) MatchDocuments(ctx context.Context, embedding []float32, matchCount int) ([]model.KnowledgeChunk, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT content,
		       COALESCE(metadata->>'source_file', 'Unknown'),
		       COALESCE(metadata->'all_links', '[]'::jsonb)
		FROM documents
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgVector(embedding), matchCount,
	)
	if err != nil {
		return nil, fmt.Errorf("match documents: %w", err)
	}
	defer rows.Close()

	var chunks []model.KnowledgeChunk
	for rows.Next() {
		var chunk model.KnowledgeChunk
		var rawLinks []byte
		if err := rows.Scan(&chunk.Content, &chunk.SourceFile, &rawLinks); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if err := json.Unmarshal(rawLinks, &chunk.Links); err != nil {
			return nil, fmt.Errorf("decode document links: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return chunks, nil
}
