package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGenerator_ProviderSelection(t *testing.T) {
	gen, err := NewGenerator("gemini", "key", "", "", "")
	assert.NoError(t, err)
	assert.IsType(t, &GeminiGenerator{}, gen)

	gen, err = NewGenerator("", "key", "", "", "")
	assert.NoError(t, err, "empty provider defaults to gemini")
	assert.IsType(t, &GeminiGenerator{}, gen)

	gen, err = NewGenerator("openai", "", "", "key", "")
	assert.NoError(t, err)
	assert.IsType(t, &OpenAIGenerator{}, gen)

	_, err = NewGenerator("gemini", "", "", "", "")
	assert.Error(t, err, "missing key must fail fast")

	_, err = NewGenerator("anthropic", "k", "", "k", "")
	assert.Error(t, err, "unknown provider")
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                      `{"a":1}`,
		"```json\n{\"a\":1}\n```":      `{"a":1}`,
		"```\n{\"a\":1}\n```":          `{"a":1}`,
		"  {\"a\":1}  ":                `{"a":1}`,
		"```json\n{\"a\":1}\n```\n":    `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, stripCodeFences(in))
	}
}
