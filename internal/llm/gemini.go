package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GeminiProvider calls Google Gemini through langchaingo.
type GeminiProvider struct {
	model       llms.Model
	temperature float64
	tools       []llms.Tool
}

func NewGeminiProvider(ctx context.Context, apiKey, model string, temperature float64) (*GeminiProvider, error) {
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return NewModelProvider(client, temperature), nil
}

// NewModelProvider wraps any langchaingo model.
func NewModelProvider(model llms.Model, temperature float64) *GeminiProvider {
	return &GeminiProvider{
		model:       model,
		temperature: temperature,
		tools:       Tools(),
	}
}

func (g *GeminiProvider) Generate(ctx context.Context, messages []Message) (*Reply, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(chatRole(m.Role), m.Content))
	}

	resp, err := g.model.GenerateContent(ctx, content,
		llms.WithTemperature(g.temperature),
		llms.WithTools(g.tools),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoResponse
	}

	choice := resp.Choices[0]
	call := choice.FuncCall
	if call == nil && len(choice.ToolCalls) > 0 {
		call = choice.ToolCalls[0].FunctionCall
	}
	if call != nil {
		args := map[string]interface{}{}
		if call.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
				return nil, fmt.Errorf("failed to parse function arguments: %w", err)
			}
		}
		return &Reply{FunctionCall: &FunctionCall{Name: call.Name, Arguments: args}}, nil
	}

	if choice.Content == "" {
		return nil, ErrNoResponse
	}
	return &Reply{Text: choice.Content}, nil
}

func chatRole(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// Tools declares the functions the model may call.
func Tools() []llms.Tool {
	return []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        FuncSearchHotels,
				Description: "Search hotels of a destination offer, optionally filtered by stars, price and meal plan",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"destination": map[string]any{"type": "string", "description": "Destination code such as hurghada or sharm_el_sheikh"},
						"stars":       map[string]any{"type": "integer", "description": "Exact star rating"},
						"max_price":   map[string]any{"type": "number", "description": "Maximum price per person"},
						"meal_plan":   map[string]any{"type": "string", "description": "AI, FB, HB or BB"},
					},
					"required": []string{"destination"},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        FuncGetDestinationInfo,
				Description: "Get offer details for a destination: validity, hotels, includes, excludes, visa, tours or notes",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"destination": map[string]any{"type": "string"},
						"info_type":   map[string]any{"type": "string", "description": "One of all, validity, hotels, includes, excludes, visa, tours, notes"},
					},
					"required": []string{"destination"},
				},
			},
		},
	}
}
