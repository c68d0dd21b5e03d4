package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiGenerator produces articles through the Gemini API with structured
// JSON responses.
type GeminiGenerator struct {
	apiKey string
	model  string
}

func NewGeminiGenerator(apiKey, model string) *GeminiGenerator {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiGenerator{apiKey: apiKey, model: model}
}

func (g *GeminiGenerator) client(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func (g *GeminiGenerator) AnalyzePrompt(ctx context.Context, prompt string) (PromptAnalysis, error) {
	client, err := g.client(ctx)
	if err != nil {
		return PromptAnalysis{}, err
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{{Text: fmt.Sprintf(`Evaluate the following article request. Decide whether it is a coherent, safe request for a publishable article.

Request: %q

If it is not suitable, set is_valid to false and explain why in rejection_reason.`, prompt)}},
	}}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseJsonSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"is_valid":         {Type: "boolean"},
				"topic":            {Type: "string", Description: "Main topic of the requested article."},
				"domain":           {Type: "string", Description: "Subject domain, e.g. technology, health."},
				"audience":         {Type: "string", Description: "Intended audience."},
				"purpose":          {Type: "string", Description: "Purpose: inform, persuade, entertain."},
				"rejection_reason": {Type: "string"},
			},
			Required: []string{"is_valid", "topic", "domain", "audience", "purpose"},
		},
	}

	result, err := client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return PromptAnalysis{}, fmt.Errorf("gemini prompt analysis failed: %w", err)
	}

	var analysis PromptAnalysis
	if err := json.Unmarshal([]byte(stripCodeFences(result.Text())), &analysis); err != nil {
		return PromptAnalysis{}, fmt.Errorf("gemini analysis returned malformed JSON: %w", err)
	}

	logrus.Debugf("[GENERATION] Gemini analysis: valid=%v topic=%q", analysis.IsValid, analysis.Topic)
	return analysis, nil
}

func (g *GeminiGenerator) GenerateContent(ctx context.Context, prompt string, analysis PromptAnalysis) (GeneratedContent, error) {
	client, err := g.client(ctx)
	if err != nil {
		return GeneratedContent{}, err
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{{Text: fmt.Sprintf(`Write a complete article for the following request.

Request: %q
Topic: %s
Domain: %s
Audience: %s
Purpose: %s

The body must be well-structured HTML-free prose with paragraphs separated by blank lines. The excerpt is a 1-2 sentence summary.`,
			prompt, analysis.Topic, analysis.Domain, analysis.Audience, analysis.Purpose)}},
	}}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseJsonSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"title":   {Type: "string"},
				"body":    {Type: "string"},
				"excerpt": {Type: "string"},
			},
			Required: []string{"title", "body", "excerpt"},
		},
	}

	result, err := client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return GeneratedContent{}, fmt.Errorf("gemini content generation failed: %w", err)
	}

	var generated GeneratedContent
	if err := json.Unmarshal([]byte(stripCodeFences(result.Text())), &generated); err != nil {
		return GeneratedContent{}, fmt.Errorf("gemini generation returned malformed JSON: %w", err)
	}
	if generated.Title == "" || generated.Body == "" {
		return GeneratedContent{}, fmt.Errorf("gemini generation returned empty title or body")
	}

	return generated, nil
}
