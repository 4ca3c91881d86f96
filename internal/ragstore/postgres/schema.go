package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ddlExamples returns the examples DDL with the embedding dimension
// substituted. The vector dimension is baked into the column type at schema
// creation time.
func ddlExamples(embeddingDimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS intent_examples (
    id         TEXT         PRIMARY KEY,
    text       TEXT         NOT NULL,
    intent     TEXT         NOT NULL,
    language   TEXT         NOT NULL DEFAULT '',
    embedding  vector(%d),
    created_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_intent_examples_intent
    ON intent_examples (intent);

CREATE INDEX IF NOT EXISTS idx_intent_examples_language
    ON intent_examples (language);

CREATE INDEX IF NOT EXISTS idx_intent_examples_embedding
    ON intent_examples USING hnsw (embedding vector_cosine_ops);
`, embeddingDimensions)
}

// Migrate creates or ensures the examples table, its indexes, and the pgvector
// extension exist. It is idempotent and safe to call on every start.
//
// embeddingDimensions must match the embedding model configured for the
// deployment. Changing this value after the first migration requires a manual
// schema update.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	if _, err := pool.Exec(ctx, ddlExamples(embeddingDimensions)); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}
