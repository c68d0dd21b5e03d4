package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIGenerator produces articles through the OpenAI chat completions API.
type OpenAIGenerator struct {
	apiKey string
	model  string
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIGenerator{apiKey: apiKey, model: model}
}

func (g *OpenAIGenerator) complete(ctx context.Context, system, user string) (string, error) {
	client := openai.NewClient(
		option.WithAPIKey(g.apiKey),
	)

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) AnalyzePrompt(ctx context.Context, prompt string) (PromptAnalysis, error) {
	system := `You evaluate article requests. Respond with ONLY a JSON object, no markdown, with keys: is_valid (boolean), topic, domain, audience, purpose, rejection_reason (all strings). Set is_valid to false and fill rejection_reason when the request is incoherent or unsafe to publish.`

	raw, err := g.complete(ctx, system, fmt.Sprintf("Evaluate this article request: %q", prompt))
	if err != nil {
		return PromptAnalysis{}, fmt.Errorf("openai prompt analysis failed: %w", err)
	}

	var analysis PromptAnalysis
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &analysis); err != nil {
		return PromptAnalysis{}, fmt.Errorf("openai analysis returned malformed JSON: %w", err)
	}

	logrus.Debugf("[GENERATION] OpenAI analysis: valid=%v topic=%q", analysis.IsValid, analysis.Topic)
	return analysis, nil
}

func (g *OpenAIGenerator) GenerateContent(ctx context.Context, prompt string, analysis PromptAnalysis) (GeneratedContent, error) {
	system := `You write complete articles. Respond with ONLY a JSON object, no markdown, with keys: title, body, excerpt. The body is plain prose with paragraphs separated by blank lines; the excerpt is a 1-2 sentence summary.`

	user := fmt.Sprintf(`Write an article for this request: %q
Topic: %s | Domain: %s | Audience: %s | Purpose: %s`,
		prompt, analysis.Topic, analysis.Domain, analysis.Audience, analysis.Purpose)

	raw, err := g.complete(ctx, system, user)
	if err != nil {
		return GeneratedContent{}, fmt.Errorf("openai content generation failed: %w", err)
	}

	var generated GeneratedContent
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &generated); err != nil {
		return GeneratedContent{}, fmt.Errorf("openai generation returned malformed JSON: %w", err)
	}
	if generated.Title == "" || generated.Body == "" {
		return GeneratedContent{}, fmt.Errorf("openai generation returned empty title or body")
	}

	return generated, nil
}
