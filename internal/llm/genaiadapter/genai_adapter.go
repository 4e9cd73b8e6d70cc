package genaiadapter

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Vallehtelia/StupidHack25/internal/llmtypes"
	"github.com/Vallehtelia/StupidHack25/internal/utils"
)

// GenAIAdapter implements llmtypes.Model on the Gemini API.
type GenAIAdapter struct {
	client  *genai.Client
	modelID string
	logger  utils.ExtendedLogger
}

// NewClient creates a Gemini API client for the given key.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// NewGenAIAdapter creates a new adapter instance
func NewGenAIAdapter(client *genai.Client, modelID string, logger utils.ExtendedLogger) *GenAIAdapter {
	return &GenAIAdapter{
		client:  client,
		modelID: modelID,
		logger:  logger,
	}
}

// GenerateContent implements the llmtypes.Model interface
func (g *GenAIAdapter) GenerateContent(ctx context.Context, messages []llmtypes.MessageContent, options ...llmtypes.CallOption) (*llmtypes.ContentResponse, error) {
	opts := llmtypes.ApplyOptions(options...)

	modelID := g.modelID
	if opts.Model != "" {
		modelID = opts.Model
	}

	contents, config := convertMessages(messages)
	if opts.Temperature > 0 {
		temp := float32(opts.Temperature)
		config.Temperature = &temp
	}

	if g.logger != nil {
		g.logger.Debugf("GenAI GenerateContent INPUT - model_id: %s, message_count: %d, contents: %d", modelID, len(messages), len(contents))
	}

	res, err := g.client.Models.GenerateContent(ctx, modelID, contents, config)
	if err != nil {
		if g.logger != nil {
			g.logger.Errorf("GenAI GenerateContent ERROR - model_id: %s, error: %v", modelID, err)
		}
		return nil, err
	}

	return convertResponse(res)
}

// convertMessages splits system messages into the SystemInstruction and maps
// the rest onto user/model contents in order.
func convertMessages(messages []llmtypes.MessageContent) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	contents := make([]*genai.Content, 0, len(messages))
	var system []string

	for _, msg := range messages {
		text := msg.Text()
		switch msg.Role {
		case llmtypes.ChatMessageTypeSystem:
			system = append(system, text)
		case llmtypes.ChatMessageTypeAI:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
	}

	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser)
	}

	return contents, config
}

// convertResponse returns the text of every candidate's parts.
func convertResponse(res *genai.GenerateContentResponse) (*llmtypes.ContentResponse, error) {
	// Blocked prompts come back with no candidates or empty content.
	if res == nil || len(res.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	choices := make([]*llmtypes.ContentChoice, 0, len(res.Candidates))
	for _, candidate := range res.Candidates {
		if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			continue
		}
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
		choices = append(choices, &llmtypes.ContentChoice{
			Content:    sb.String(),
			StopReason: string(candidate.FinishReason),
		})
	}

	if len(choices) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	return &llmtypes.ContentResponse{Choices: choices}, nil
}
