// Package postgres provides a PostgreSQL-backed implementation of
// [ragstore.Store] using the pgvector extension for approximate
// nearest-neighbour search over example embeddings.
//
// The pgvector extension must be available in the target database; [Migrate]
// installs it automatically via CREATE EXTENSION IF NOT EXISTS.
//
// Usage:
//
//	store, err := postgres.NewStore(ctx, dsn, 768)
//	if err != nil { … }
//	defer store.Close()
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/vaanilabs/vaani/internal/ragstore"
)

// Compile-time interface check.
var _ ragstore.Store = (*Store)(nil)

// Store is the PostgreSQL/pgvector retrieval store. All operations are safe
// for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore establishes a connection pool to the PostgreSQL database at dsn,
// registers pgvector types on every connection, and runs [Migrate] to ensure
// the examples table and extension exist.
//
// embeddingDimensions must match the output dimension of the embedding model
// used to produce [ragstore.Example.Embedding] values (e.g., 768 for
// nomic-embed-text, 1536 for OpenAI text-embedding-3-small). Changing this
// value after the first migration requires a manual schema change.
func NewStore(ctx context.Context, dsn string, embeddingDimensions int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres ragstore: parse dsn: %w", err)
	}

	// Register pgvector types on every new connection so that vector columns
	// can be scanned into and inserted from pgvector.Vector values.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres ragstore: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ragstore: ping: %w", err)
	}

	if err := Migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ragstore: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Index implements [ragstore.Store]. It upserts a pre-embedded example; an
// example with the same ID is completely replaced.
func (s *Store) Index(ctx context.Context, ex ragstore.Example) error {
	const q = `
		INSERT INTO intent_examples (id, text, intent, language, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
		    text      = EXCLUDED.text,
		    intent    = EXCLUDED.intent,
		    language  = EXCLUDED.language,
		    embedding = EXCLUDED.embedding`

	_, err := s.pool.Exec(ctx, q, ex.ID, ex.Text, ex.Intent, ex.Language, pgvector.NewVector(ex.Embedding))
	if err != nil {
		return fmt.Errorf("postgres ragstore: index example: %w", err)
	}
	return nil
}

// Search implements [ragstore.Store]. It finds the topK examples whose
// embeddings are closest (cosine distance) to the supplied query embedding,
// optionally filtered. Results are ordered by ascending distance.
func (s *Store) Search(ctx context.Context, embedding []float32, topK int, filter ragstore.Filter) ([]ragstore.Match, error) {
	args := []any{pgvector.NewVector(embedding)} // $1 = query vector
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var conditions []string
	if filter.Intent != "" {
		conditions = append(conditions, "intent = "+next(filter.Intent))
	}
	if filter.Language != "" {
		conditions = append(conditions, "language = "+next(filter.Language))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, topK)
	limitArg := fmt.Sprintf("$%d", len(args))

	q := fmt.Sprintf(`
		SELECT id, text, intent, language, embedding,
		       embedding <=> $1 AS distance
		FROM   intent_examples
		%s
		ORDER  BY distance
		LIMIT  %s`, whereClause, limitArg)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres ragstore: search: %w", err)
	}

	matches, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ragstore.Match, error) {
		var (
			m   ragstore.Match
			vec pgvector.Vector
		)
		if err := row.Scan(
			&m.Example.ID,
			&m.Example.Text,
			&m.Example.Intent,
			&m.Example.Language,
			&vec,
			&m.Distance,
		); err != nil {
			return ragstore.Match{}, err
		}
		m.Example.Embedding = vec.Slice()
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres ragstore: scan rows: %w", err)
	}
	if matches == nil {
		matches = []ragstore.Match{}
	}
	return matches, nil
}

// Count implements [ragstore.Store].
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM intent_examples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres ragstore: count: %w", err)
	}
	return n, nil
}

// Close implements [ragstore.Store] by releasing all pooled connections.
func (s *Store) Close() {
	s.pool.Close()
}
