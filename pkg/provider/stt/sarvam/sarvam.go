// Package sarvam provides an STT provider backed by the hosted Sarvam AI
// speech API, which specialises in Indian languages. The same client also
// exposes Sarvam's text transliteration endpoint so romanized utterances can
// be rendered in native script.
//
// Usage:
//
//	p, err := sarvam.New(apiKey, sarvam.WithModel("saarika:v2"))
//	res, err := p.Transcribe(ctx, stt.Request{Audio: wav, Language: "hi"})
package sarvam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/vaanilabs/vaani/pkg/provider/stt"
)

const (
	defaultBaseURL = "https://api.sarvam.ai"
	defaultModel   = "saarika:v2"

	// autoLanguage is the wire value Sarvam expects when the caller wants
	// language auto-detection.
	autoLanguage = "unknown"
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithBaseURL overrides the API base URL, e.g. for a test server.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithModel sets the speech model identifier. Defaults to "saarika:v2".
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithHTTPClient replaces the HTTP client. The default has a 30 s timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements [stt.Provider] against the Sarvam speech-to-text API.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a Provider. apiKey must be non-empty; it is sent as the
// api-subscription-key header on every request.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("sarvam: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Name implements [stt.Provider].
func (p *Provider) Name() string { return "sarvam" }

// Transcribe implements [stt.Provider]. The request language, if set, is
// widened to Sarvam's regional form ("hi" becomes "hi-IN").
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (*stt.Result, error) {
	if len(req.Audio) == 0 {
		return nil, errors.New("sarvam: empty audio")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("sarvam: create form file: %w", err)
	}
	if _, err := fw.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("sarvam: write wav data: %w", err)
	}
	if err := mw.WriteField("model", p.model); err != nil {
		return nil, fmt.Errorf("sarvam: write model field: %w", err)
	}
	if err := mw.WriteField("language_code", wireLanguage(req.Language)); err != nil {
		return nil, fmt.Errorf("sarvam: write language field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("sarvam: close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/speech-to-text", &body)
	if err != nil {
		return nil, fmt.Errorf("sarvam: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("api-subscription-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sarvam: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sarvam: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sarvam: read response body: %w", err)
	}
	var result struct {
		Transcript   string `json:"transcript"`
		LanguageCode string `json:"language_code"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("sarvam: parse JSON response: %w", err)
	}

	lang := shortLanguage(result.LanguageCode)
	if lang == "" {
		lang = req.Language
	}
	return &stt.Result{Text: result.Transcript, Language: lang}, nil
}

// Transliterate renders latin-script text in the native script of lang via
// Sarvam's transliteration endpoint. lang accepts either the short form
// ("hi") or the regional form ("hi-IN").
func (p *Provider) Transliterate(ctx context.Context, text string, lang string) (string, error) {
	if text == "" {
		return "", errors.New("sarvam: empty input text")
	}

	payload, err := json.Marshal(map[string]string{
		"input":                text,
		"source_language_code": "auto",
		"target_language_code": wireLanguage(lang),
	})
	if err != nil {
		return "", fmt.Errorf("sarvam: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/transliterate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("sarvam: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-subscription-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sarvam: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sarvam: server returned HTTP %d", resp.StatusCode)
	}

	var result struct {
		TransliteratedText string `json:"transliterated_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("sarvam: parse JSON response: %w", err)
	}
	return result.TransliteratedText, nil
}

// wireLanguage maps a short ISO code to Sarvam's regional form. Empty input
// requests auto-detection.
func wireLanguage(code string) string {
	if code == "" {
		return autoLanguage
	}
	if strings.Contains(code, "-") {
		return code
	}
	return code + "-IN"
}

// shortLanguage strips the regional suffix from a Sarvam language code.
func shortLanguage(code string) string {
	short, _, _ := strings.Cut(code, "-")
	return short
}
