package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiProvider issues requests through the Google Gemini SDK.
type geminiProvider struct {
	client *genai.Client
	apiKey string
}

func newGeminiProvider(ctx context.Context, apiKey string) (*geminiProvider, error) {
	p := &geminiProvider{apiKey: apiKey}
	if apiKey == "" {
		// Construction succeeds without credentials; complete() reports
		// the missing key so the other backends remain usable.
		return p, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	return p, nil
}

func (p *geminiProvider) complete(ctx context.Context, modelName string, messages []Message) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("GEMINI_API_KEY is not configured")
	}

	model := p.client.GenerativeModel(modelName)
	temp := float32(Temperature)
	model.Temperature = &temp

	// Gemini separates the system instruction and wants strict
	// user/model alternation; assistant turns map to the "model" role.
	var system []string
	var history []*genai.Content
	var last string
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			history = append(history, &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(m.Content)},
			})
		default:
			history = append(history, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(m.Content)},
			})
		}
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))},
		}
	}
	if len(history) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	// The final user turn is sent as the message; everything before it
	// is chat history.
	lastContent := history[len(history)-1]
	history = history[:len(history)-1]
	if text, ok := lastContent.Parts[0].(genai.Text); ok {
		last = string(text)
	}

	cs := model.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

func (p *geminiProvider) close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response
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

	return strings.Join(parts, ""), nil
}
