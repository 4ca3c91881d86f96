// Package ragstore defines the retrieval store for labelled example
// utterances. Each stored example carries an intent label, a language tag,
// and a pre-computed embedding vector. The LLM intent classifier searches
// the store for the nearest examples to an incoming utterance and includes
// them as few-shot context in its prompt.
//
// Two backends exist: an in-memory store ([NewMemoryStore]) for development
// and tests, and a PostgreSQL/pgvector store (package
// [github.com/vaanilabs/vaani/internal/ragstore/postgres]) for deployments
// where the example corpus is curated at runtime.
//
// Every implementation must be safe for concurrent use.
package ragstore

import "context"

// Example is one labelled utterance prepared for retrieval. It carries its
// pre-computed embedding so the store does not need to re-embed on insertion.
type Example struct {
	// ID uniquely identifies the example (e.g., a UUID or corpus key).
	ID string

	// Text is the utterance in its original script.
	Text string

	// Intent is the label assigned to this utterance (e.g., "book_ticket").
	Intent string

	// Language is the ISO 639-1 code of the utterance ("hi", "ta", ...).
	Language string

	// Embedding is the vector representation of Text. Dimension must match
	// the store configuration.
	Embedding []float32
}

// Match is a single search hit.
type Match struct {
	Example Example

	// Distance is the cosine distance between the query embedding and the
	// example's embedding. Lower means more similar; 0 is identical.
	Distance float64
}

// Filter restricts a search. Zero-valued fields are ignored.
type Filter struct {
	// Intent restricts matches to a single intent label.
	Intent string

	// Language restricts matches to a single language code.
	Language string
}

// Store is the abstraction over any example-retrieval backend.
type Store interface {
	// Index upserts an example. An example with an existing ID is replaced.
	Index(ctx context.Context, ex Example) error

	// Search returns up to topK examples closest to embedding by cosine
	// distance, most similar first, optionally restricted by filter.
	// An empty result is a non-nil empty slice, not an error.
	Search(ctx context.Context, embedding []float32, topK int, filter Filter) ([]Match, error)

	// Count returns the number of indexed examples.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close()
}
