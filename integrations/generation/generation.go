package generation

import (
	"context"
	"fmt"
	"strings"
)

// PromptAnalysis is the model's judgement of a generation prompt before any
// content is produced. An invalid analysis carries the rejection reason; the
// executor treats it as a retryable attempt failure.
type PromptAnalysis struct {
	IsValid         bool   `json:"is_valid"`
	Topic           string `json:"topic"`
	Domain          string `json:"domain"`
	Audience        string `json:"audience"`
	Purpose         string `json:"purpose"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// GeneratedContent is a fully produced article body.
type GeneratedContent struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Excerpt string `json:"excerpt"`
}

// Generator produces article content from free-text prompts. Calls may be
// slow; callers wrap them with their own timeout.
type Generator interface {
	AnalyzePrompt(ctx context.Context, prompt string) (PromptAnalysis, error)
	GenerateContent(ctx context.Context, prompt string, analysis PromptAnalysis) (GeneratedContent, error)
}

// NewGenerator selects a provider by name ("gemini" or "openai").
func NewGenerator(provider, geminiKey, geminiModel, openaiKey, openaiModel string) (Generator, error) {
	switch strings.ToLower(provider) {
	case "gemini", "":
		if geminiKey == "" {
			return nil, fmt.Errorf("gemini provider selected but GEMINI_API_KEY is empty")
		}
		return NewGeminiGenerator(geminiKey, geminiModel), nil
	case "openai":
		if openaiKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY is empty")
		}
		return NewOpenAIGenerator(openaiKey, openaiModel), nil
	default:
		return nil, fmt.Errorf("unknown generation provider: %s", provider)
	}
}

// stripCodeFences removes markdown code fences some models wrap around JSON
// even when told not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
