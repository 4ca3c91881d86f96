package config_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/vaanilabs/vaani/internal/config"
	"github.com/vaanilabs/vaani/pkg/provider/stt"
	sttmock "github.com/vaanilabs/vaani/pkg/provider/stt/mock"
)

const validYAML = `
server:
  listen_addr: ":8080"
  log_level: info
providers:
  stt:
    name: sarvam
    api_key: test-key
  stt_fallback:
    name: whisper
    base_url: http://localhost:8081
  llm:
    name: ollama
    model: llama3.2
  embeddings:
    name: ollama
    model: nomic-embed-text
nlu:
  default_language: en
retrieval:
  postgres_dsn: postgres://vaani@localhost:5432/vaani
  embedding_dimensions: 768
  top_k: 5
`

func TestLoadFromReaderValid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen_addr: got %q", cfg.Server.ListenAddr)
	}
	if cfg.Providers.STT.Name != "sarvam" || cfg.Providers.STT.APIKey != "test-key" {
		t.Errorf("stt entry: got %+v", cfg.Providers.STT)
	}
	if cfg.Retrieval.EmbeddingDimensions != 768 {
		t.Errorf("embedding_dimensions: got %d", cfg.Retrieval.EmbeddingDimensions)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("server:\n  listen_address: ':8080'\n"))
	if err == nil {
		t.Fatal("expected error for misspelled key, got nil")
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
	}{
		{"bad log level", "server:\n  log_level: verbose\n"},
		{"fallback without primary", "providers:\n  stt_fallback:\n    name: whisper\n"},
		{"llm without embeddings", "providers:\n  llm:\n    name: ollama\n"},
		{"dsn without dimensions", "retrieval:\n  postgres_dsn: postgres://x\n"},
		{"negative top_k", "retrieval:\n  top_k: -1\n"},
		{"bad default language", "nlu:\n  default_language: fr\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := config.LoadFromReader(strings.NewReader(tt.yaml)); err == nil {
				t.Errorf("expected validation error for %q", tt.name)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	reg.RegisterSTT("mock", func(entry config.ProviderEntry) (stt.Provider, error) {
		return &sttmock.Provider{Text: entry.Model}, nil
	})

	p, err := reg.CreateSTT(config.ProviderEntry{Name: "mock", Model: "canned"})
	if err != nil {
		t.Fatalf("CreateSTT: %v", err)
	}
	if p.Name() != "mock" {
		t.Errorf("provider name: got %q", p.Name())
	}

	if _, err := reg.CreateSTT(config.ProviderEntry{Name: "deepgram"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("expected ErrProviderNotRegistered, got %v", err)
	}
	if _, err := reg.CreateLLM(config.ProviderEntry{Name: "ollama"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("expected ErrProviderNotRegistered for llm, got %v", err)
	}
}
