// Package translit renders romanized utterances in the native script of
// their language, for display and for downstream systems that expect native
// text. An external transliteration service is used when configured; without
// one (or when it fails) a fixed per-language replacement table covers the
// metro-domain vocabulary. The table path is deliberately lossy: words it
// does not know pass through unchanged.
package translit

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vaanilabs/vaani/internal/nlu"
)

// Service is an external transliteration backend, typically a remote API.
type Service interface {
	// Transliterate renders text in lang's native script.
	Transliterate(ctx context.Context, text string, lang nlu.Language) (string, error)
}

// Transliterator converts romanized text to native script.
// Safe for concurrent use.
type Transliterator struct {
	service   Service
	log       *slog.Logger
	replacers map[nlu.Language]*strings.Replacer
}

// Option customises a [Transliterator].
type Option func(*Transliterator)

// WithService wires an external transliteration backend. The fixed tables
// remain as the failure fallback.
func WithService(s Service) Option {
	return func(t *Transliterator) { t.service = s }
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(t *Transliterator) { t.log = l }
}

// New builds a Transliterator with the compiled-in replacement tables.
func New(opts ...Option) *Transliterator {
	t := &Transliterator{
		log:       slog.Default(),
		replacers: make(map[nlu.Language]*strings.Replacer, len(fallbackTables)),
	}
	for lang, pairs := range fallbackTables {
		flat := make([]string, 0, 2*len(pairs))
		for _, p := range pairs {
			flat = append(flat, p[0], p[1])
		}
		t.replacers[lang] = strings.NewReplacer(flat...)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ToNativeScript returns text rendered in lang's native script.
//
// Text that already carries native script characters is returned unchanged,
// as is English or any language without a table. The external service is
// best-effort: its errors are logged and the fixed table takes over.
func (t *Transliterator) ToNativeScript(ctx context.Context, text string, lang nlu.Language) string {
	if lang == nlu.LangEnglish || nlu.HasNativeScript(text, lang) {
		return text
	}
	rep, ok := t.replacers[lang]
	if !ok {
		return text
	}

	if t.service != nil {
		out, err := t.service.Transliterate(ctx, text, lang)
		if err == nil && out != "" {
			return out
		}
		if err != nil {
			t.log.Warn("translit: service failed, using fallback table",
				"language", lang, "error", err)
		}
	}
	return rep.Replace(strings.ToLower(text))
}
