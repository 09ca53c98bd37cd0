package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlens/internal/config"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"chatter around object", "Sure! Here you go: {\"a\":{\"b\":2}} Hope it helps.", `{"a":{"b":2}}`},
		{"no json", "nothing here", "nothing here"},
		{"whitespace", "  \n {\"x\":true}\n ", `{"x":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Total float64 `json:"total"`
	}
	require.NoError(t, DecodeJSON("```json\n{\"total\": 12.5}\n```", &out))
	assert.Equal(t, 12.5, out.Total)

	assert.ErrorIs(t, DecodeJSON("   ", &out), ErrEmptyResponse)
	assert.Error(t, DecodeJSON("not json", &out))
}

func TestNewTextGenerator_Unconfigured(t *testing.T) {
	ctx := context.Background()

	gen, err := NewTextGenerator(ctx, &config.Config{AIProvider: "gemini"})
	require.NoError(t, err)
	assert.Nil(t, gen)

	gen, err = NewTextGenerator(ctx, &config.Config{AIProvider: "anthropic"})
	require.NoError(t, err)
	assert.Nil(t, gen)

	_, err = NewTextGenerator(ctx, &config.Config{AIProvider: "openai", GeminiAPIKey: "k"})
	assert.Error(t, err)
}

func TestNewTextGenerator_Anthropic(t *testing.T) {
	gen, err := NewTextGenerator(context.Background(), &config.Config{
		AIProvider:      "anthropic",
		AnthropicAPIKey: "test-key",
		AnthropicModel:  "claude-3-5-haiku-latest",
	})
	require.NoError(t, err)
	require.NotNil(t, gen)
	assert.Equal(t, "anthropic", gen.Name())
}

func TestNewClassifier(t *testing.T) {
	assert.Nil(t, NewClassifier(&config.Config{}))

	c := NewClassifier(&config.Config{HFAPIKey: "k", HFBaseURL: "http://localhost", HFModel: "m"})
	require.NotNil(t, c)
	assert.Equal(t, "huggingface", c.Name())
}
