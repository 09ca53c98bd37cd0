// Package ai wraps the external AI services consulted for categorization and
// spending insights: a generative text model (Gemini or Anthropic) and a
// zero-shot classifier (HuggingFace inference API).
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"spendlens/internal/config"
)

// ErrNotConfigured is returned when a provider has no API key. Callers treat
// it the same as a failed call and move on to their fallback.
var ErrNotConfigured = errors.New("ai provider not configured")

// ErrEmptyResponse is returned when a provider answers with no usable text.
var ErrEmptyResponse = errors.New("ai provider returned an empty response")

// TextGenerator turns a prompt into free text.
type TextGenerator interface {
	// Name returns the provider's display name (e.g. "gemini").
	Name() string

	// Generate sends a single prompt and returns the model's text answer.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Label is one ranked candidate from a zero-shot classifier.
type Label struct {
	Name  string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier ranks candidate labels for a piece of text, best first.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string, labels []string) ([]Label, error)
}

// TextGeneratorFunc adapts a plain function into a TextGenerator. Mostly
// useful for tests and for wiring stub providers.
type TextGeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Name implements TextGenerator.
func (f TextGeneratorFunc) Name() string { return "func" }

// Generate implements TextGenerator.
func (f TextGeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// NewTextGenerator builds the configured primary text provider. It returns
// (nil, nil) when no key is set for the selected provider, which downstream
// code reads as "not configured".
func NewTextGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch cfg.AIProvider {
	case "", "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, nil
		}
		return NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q (use gemini or anthropic)", cfg.AIProvider)
	}
}

// NewClassifier builds the zero-shot classifier, or nil when HF_API_KEY is unset.
func NewClassifier(cfg *config.Config) Classifier {
	if cfg.HFAPIKey == "" {
		return nil
	}
	return NewHuggingFaceClassifier(nil, cfg.HFBaseURL, cfg.HFModel, cfg.HFAPIKey)
}

// CleanJSON strips Markdown code fences and any chatter around the outermost
// JSON object or array in a model response.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}

	open := strings.IndexAny(s, "{[")
	if open == -1 {
		return s
	}
	closer := "}"
	if s[open] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(s, closer); end > open {
		s = s[open : end+1]
	}
	return strings.TrimSpace(s)
}

// DecodeJSON unmarshals a model response into v after CleanJSON.
func DecodeJSON(raw string, v any) error {
	clean := CleanJSON(raw)
	if clean == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return fmt.Errorf("decode model JSON: %w", err)
	}
	return nil
}
