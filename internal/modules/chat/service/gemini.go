package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const systemInstruction = `You are CampusSync AI, a helpful and friendly academic assistant for Indian university students.

Your main responsibilities:
- Help students manage their class schedules and timetables
- Track assignments, deadlines, and project submissions
- Provide study tips and exam preparation strategies
- Summarize academic announcements and notices
- Suggest study materials and resources
- Offer course recommendations and academic guidance

Personality traits:
- Be concise but informative (keep responses under 150 words when possible)
- Use emojis sparingly to make responses engaging
- Be encouraging and supportive
- Understand Indian education system context (semesters, university structure)
- Be respectful and professional

Response style:
- Start with a brief acknowledgment
- Provide actionable advice
- Ask follow-up questions when appropriate
- Use bullet points for lists
- Keep language simple and clear`

// GeminiClient is the Gemini-backed Completer. The digest agent also uses it for structured prompts.
type GeminiClient struct {
	client     *genai.Client
	chat       *genai.GenerativeModel
	oneShot    *genai.GenerativeModel
	structured *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	chat := client.GenerativeModel(modelName)
	chat.SetTemperature(0.7)
	chat.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}

	oneShot := client.GenerativeModel(modelName)
	oneShot.SetTemperature(0.7)

	// Separate model so JSON output never leaks into chat replies.
	structured := client.GenerativeModel(modelName)
	structured.SetTemperature(0.7)
	structured.ResponseMIMEType = "application/json"

	return &GeminiClient{
		client:     client,
		chat:       chat,
		oneShot:    oneShot,
		structured: structured,
	}, nil
}

// Complete implements Completer
func (g *GeminiClient) Complete(ctx context.Context, history []Turn, message string) (string, error) {
	cs := g.chat.StartChat()
	cs.History = toContents(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}
	return firstText(resp)
}

// GenerateText sends a single prompt without the assistant persona.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.oneShot.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return firstText(resp)
}

// GenerateStructured decodes a JSON reply into output.
func (g *GeminiClient) GenerateStructured(ctx context.Context, prompt string, output any) error {
	resp, err := g.structured.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return err
	}

	txt, err := firstText(resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(txt), output); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

func (g *GeminiClient) Close() {
	g.client.Close()
}

func toContents(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := t.Role
		if role != "model" {
			role = "user"
		}
		parts := make([]genai.Part, 0, len(t.Parts))
		for _, p := range t.Parts {
			parts = append(parts, genai.Text(p.Text))
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from LLM")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt), nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}
