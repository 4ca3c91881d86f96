package llmintent_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vaanilabs/vaani/internal/nlu"
	"github.com/vaanilabs/vaani/internal/nlu/llmintent"
	"github.com/vaanilabs/vaani/internal/ragstore"
	embmock "github.com/vaanilabs/vaani/pkg/provider/embeddings/mock"
	llmmock "github.com/vaanilabs/vaani/pkg/provider/llm/mock"
)

// hashVec derives a deterministic 4-dim vector from the text so that equal
// texts embed identically and distinct texts (almost always) differ.
func hashVec(text string) []float32 {
	var h uint32 = 2166136261
	for _, b := range []byte(text) {
		h ^= uint32(b)
		h *= 16777619
	}
	return []float32{
		float32(h & 0xff),
		float32(h >> 8 & 0xff),
		float32(h >> 16 & 0xff),
		float32(h >> 24 & 0xff),
	}
}

func newClassifier(t *testing.T, l *llmmock.Provider) (*llmintent.Classifier, *ragstore.MemoryStore) {
	t.Helper()
	store := ragstore.NewMemoryStore()
	emb := &embmock.Provider{EmbedFunc: hashVec, DimensionsValue: 4, ModelIDValue: "test-embed"}
	c, err := llmintent.New(l, emb, store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, store
}

func TestSeedIndexesCorpus(t *testing.T) {
	t.Parallel()
	c, store := newClassifier(t, &llmmock.Provider{Response: "INTENT_OTHER"})

	if err := c.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n < 20 {
		t.Errorf("seeded examples: got %d, want at least 20", n)
	}

	// Seeding again must upsert, not duplicate.
	if err := c.Seed(context.Background()); err != nil {
		t.Fatalf("Seed (second): %v", err)
	}
	n2, _ := store.Count(context.Background())
	if n2 != n {
		t.Errorf("re-seed changed count: %d -> %d", n, n2)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	l := &llmmock.Provider{Response: "INTENT_BOOK_TICKET"}
	c, _ := newClassifier(t, l)
	if err := c.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	intent, err := c.Classify(context.Background(), "need passage to majestic right away")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if intent != nlu.IntentBookTicket {
		t.Errorf("intent: got %q, want book_ticket", intent)
	}

	reqs := l.Requests()
	if len(reqs) != 1 {
		t.Fatalf("llm requests: got %d, want 1", len(reqs))
	}
	user := reqs[0].Messages[len(reqs[0].Messages)-1].Content
	if !strings.Contains(user, "majestic right away") {
		t.Errorf("prompt missing utterance: %q", user)
	}
	if !strings.Contains(user, "INTENT_") {
		t.Errorf("prompt missing retrieved example labels: %q", user)
	}
}

func TestClassifyLabelInProse(t *testing.T) {
	t.Parallel()
	l := &llmmock.Provider{Response: "The correct label is INTENT_FARE_INQUIRY."}
	c, _ := newClassifier(t, l)

	intent, err := c.Classify(context.Background(), "kitna paisa lagega")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if intent != nlu.IntentFareInquiry {
		t.Errorf("intent: got %q, want fare_inquiry", intent)
	}
}

func TestClassifyOtherIsError(t *testing.T) {
	t.Parallel()
	c, _ := newClassifier(t, &llmmock.Provider{Response: "INTENT_OTHER"})

	if _, err := c.Classify(context.Background(), "sing me a song"); err == nil {
		t.Fatal("expected error for INTENT_OTHER, got nil")
	}
}

func TestClassifyGarbageCompletionIsError(t *testing.T) {
	t.Parallel()
	c, _ := newClassifier(t, &llmmock.Provider{Response: "I am not sure."})

	if _, err := c.Classify(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for unlabelled completion, got nil")
	}
}

func TestClassifyLLMFailure(t *testing.T) {
	t.Parallel()
	c, _ := newClassifier(t, &llmmock.Provider{Err: errors.New("connection refused")})

	if _, err := c.Classify(context.Background(), "book a ticket"); err == nil {
		t.Fatal("expected error when llm fails, got nil")
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()
	store := ragstore.NewMemoryStore()
	emb := &embmock.Provider{}
	if _, err := llmintent.New(nil, emb, store); err == nil {
		t.Error("expected error for nil llm provider")
	}
	if _, err := llmintent.New(&llmmock.Provider{}, nil, store); err == nil {
		t.Error("expected error for nil embeddings provider")
	}
	if _, err := llmintent.New(&llmmock.Provider{}, emb, nil); err == nil {
		t.Error("expected error for nil store")
	}
}
