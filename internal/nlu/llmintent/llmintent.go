// Package llmintent is the retrieval-augmented LLM fallback for intent
// classification. It is consulted only when the rule cascade returns unknown:
// the utterance is embedded, the nearest labelled examples are pulled from the
// retrieval store, and an LLM picks a label with those examples as few-shot
// context. Entity extraction stays with the rule engine; this package only
// recovers the intent.
//
// Every failure mode (embedding, store, LLM, unparseable completion) is
// reported as an error so the caller can keep the rule-based result. The
// classifier never makes the pipeline worse than rules alone.
package llmintent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vaanilabs/vaani/internal/nlu"
	"github.com/vaanilabs/vaani/internal/ragstore"
	"github.com/vaanilabs/vaani/pkg/provider/embeddings"
	"github.com/vaanilabs/vaani/pkg/provider/llm"
)

// Confidence assigned to intents recovered by the LLM path. Deliberately
// below every rule-cascade confidence so downstream consumers can tell the
// two apart, and above the unknown floor.
const Confidence = 0.75

const (
	defaultTopK        = 5
	defaultTemperature = 0.1
	defaultMaxTokens   = 32
)

// labelByIntent maps nlu intents to the labels the LLM is asked to emit.
// OTHER is the explicit "none of these" escape so the model is never forced
// to pick a booking intent for off-topic input.
var labelByIntent = map[nlu.Intent]string{
	nlu.IntentBookTicket:     "INTENT_BOOK_TICKET",
	nlu.IntentFareInquiry:    "INTENT_FARE_INQUIRY",
	nlu.IntentCancelTicket:   "INTENT_CANCEL_TICKET",
	nlu.IntentBookingStatus:  "INTENT_BOOKING_STATUS",
	nlu.IntentRouteInquiry:   "INTENT_ROUTE_INQUIRY",
	nlu.IntentGeneralInquiry: "INTENT_GENERAL_INQUIRY",
}

var intentByLabel = func() map[string]nlu.Intent {
	m := make(map[string]nlu.Intent, len(labelByIntent))
	for intent, label := range labelByIntent {
		m[label] = intent
	}
	return m
}()

const systemPrompt = `You classify metro ticket booking requests. ` +
	`Requests may be in English, Hindi, Marathi, Kannada, Tamil or Telugu, in native or Latin script. ` +
	`Reply with exactly one label and nothing else: ` +
	`INTENT_BOOK_TICKET, INTENT_FARE_INQUIRY, INTENT_CANCEL_TICKET, INTENT_BOOKING_STATUS, ` +
	`INTENT_ROUTE_INQUIRY, INTENT_GENERAL_INQUIRY, or INTENT_OTHER if none apply.`

// Classifier recovers intents for utterances the rule cascade could not
// classify. Safe for concurrent use once constructed.
type Classifier struct {
	llm      llm.Provider
	embedder embeddings.Provider
	store    ragstore.Store
	topK     int
	log      *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTopK sets how many retrieved examples are included in the prompt.
func WithTopK(k int) Option {
	return func(c *Classifier) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(c *Classifier) { c.log = log }
}

// New constructs a Classifier over the given providers and store. All three
// are required.
func New(provider llm.Provider, embedder embeddings.Provider, store ragstore.Store, opts ...Option) (*Classifier, error) {
	if provider == nil {
		return nil, fmt.Errorf("llmintent: llm provider must not be nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("llmintent: embeddings provider must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("llmintent: store must not be nil")
	}
	c := &Classifier{
		llm:      provider,
		embedder: embedder,
		store:    store,
		topK:     defaultTopK,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Seed embeds the built-in example corpus and indexes it into the store.
// Call once at startup. Seeding is idempotent: example IDs are derived from
// their corpus position, so a re-run upserts rather than duplicates.
func (c *Classifier) Seed(ctx context.Context) error {
	groups := defaultCorpus()

	var texts []string
	var examples []ragstore.Example
	for gi, g := range groups {
		for ti, text := range g.Texts {
			texts = append(texts, text)
			examples = append(examples, ragstore.Example{
				ID:       fmt.Sprintf("corpus-%d-%d", gi, ti),
				Text:     text,
				Intent:   g.Intent,
				Language: g.Language,
			})
		}
	}

	vecs, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("llmintent: seed: embed corpus: %w", err)
	}
	if len(vecs) != len(examples) {
		return fmt.Errorf("llmintent: seed: expected %d embeddings, got %d", len(examples), len(vecs))
	}
	for i := range examples {
		examples[i].Embedding = vecs[i]
		if err := c.store.Index(ctx, examples[i]); err != nil {
			return fmt.Errorf("llmintent: seed: index %q: %w", examples[i].ID, err)
		}
	}
	c.log.Info("intent example corpus seeded",
		"examples", len(examples),
		"model", c.embedder.ModelID(),
	)
	return nil
}

// Classify returns the recovered intent for text, or an error when the
// utterance cannot be confidently labelled. Callers should treat any error as
// "keep the rule-based result".
func (c *Classifier) Classify(ctx context.Context, text string) (nlu.Intent, error) {
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("llmintent: embed utterance: %w", err)
	}

	matches, err := c.store.Search(ctx, vec, c.topK, ragstore.Filter{})
	if err != nil {
		return "", fmt.Errorf("llmintent: search examples: %w", err)
	}

	temp := defaultTemperature
	maxTok := defaultMaxTokens
	completion, err := c.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildPrompt(text, matches)},
		},
		Temperature: temp,
		MaxTokens:   maxTok,
	})
	if err != nil {
		return "", fmt.Errorf("llmintent: completion: %w", err)
	}

	intent, ok := parseLabel(completion)
	if !ok {
		return "", fmt.Errorf("llmintent: no intent label in completion %q", truncate(completion, 80))
	}
	c.log.Debug("llm intent recovered",
		"intent", intent,
		"provider", c.llm.Name(),
		"retrieved", len(matches),
	)
	return intent, nil
}

// buildPrompt renders the retrieved examples and the utterance into the user
// message. Examples come first so the model reads the labels before the task.
func buildPrompt(text string, matches []ragstore.Match) string {
	var b strings.Builder
	if len(matches) > 0 {
		b.WriteString("Labelled examples of similar requests:\n")
		for _, m := range matches {
			label, ok := labelByIntent[nlu.Intent(m.Example.Intent)]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "- %q -> %s\n", m.Example.Text, label)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Request: %q\nLabel:", text)
	return b.String()
}

// parseLabel scans a completion for the first known INTENT_* label. Models
// occasionally wrap the label in prose or markdown despite instructions, so
// a substring scan is used instead of an exact match. INTENT_OTHER parses
// successfully but maps to no intent.
func parseLabel(completion string) (nlu.Intent, bool) {
	upper := strings.ToUpper(completion)

	// Pick the label that appears earliest in the completion.
	best := nlu.Intent("")
	bestPos := -1
	for label, intent := range intentByLabel {
		if pos := strings.Index(upper, label); pos >= 0 && (bestPos == -1 || pos < bestPos) {
			best = intent
			bestPos = pos
		}
	}
	if otherPos := strings.Index(upper, "INTENT_OTHER"); otherPos >= 0 && (bestPos == -1 || otherPos < bestPos) {
		return "", false
	}
	if bestPos == -1 {
		return "", false
	}
	return best, true
}

// truncate shortens s for log and error output.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
