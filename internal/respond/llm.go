package respond

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/andrii-d/autoapply/internal/config"
	"github.com/andrii-d/autoapply/internal/types"
)

// DefaultModel is used when the config does not name one.
const DefaultModel = "gemini-2.5-flash"

// systemPrompt frames every reply request. Replies must read like a freelancer
// addressing the client directly, in the posting's language.
const systemPrompt = "You are a professional freelancer writing a response to a potential client. " +
	"Write a confident, concise response (5-6 lines maximum) that shows your expertise. " +
	"Be direct and ready to start work. Use a professional but friendly tone. " +
	"Don't introduce yourself or use closing phrases - just focus on the client's specific needs. " +
	"Your response should be in Russian unless the order is clearly in another language."

// LLMGenerator produces replies with the Gemini API. The category-keyed
// templates from the config become the user prompt; the posting fields are
// substituted before the call.
type LLMGenerator struct {
	client *genai.Client
	model  string
	cfg    config.LLMConfig
}

// NewLLMGenerator creates a Gemini-backed generator.
func NewLLMGenerator(ctx context.Context, cfg config.LLMConfig) (*LLMGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &LLMGenerator{client: client, model: model, cfg: cfg}, nil
}

// Generate renders the matching category template into a prompt and asks the
// model for a reply.
func (g *LLMGenerator) Generate(ctx context.Context, posting *types.Posting) (string, error) {
	category := SelectCategory(posting, g.cfg.Categories)
	templateText, ok := g.cfg.Templates[category]
	if !ok {
		templateText, ok = g.cfg.Templates[DefaultCategory]
	}
	if !ok || templateText == "" {
		return "", fmt.Errorf("no reply template configured for category %q", category)
	}

	prompt, err := renderTemplate(category, templateText, posting)
	if err != nil {
		return "", err
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(500)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	return extractTextFromResponse(resp)
}

// Close releases the underlying API client.
func (g *LLMGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// extractTextFromResponse pulls the text parts out of a Gemini response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.TrimSpace(strings.Join(parts, "")), nil
}
