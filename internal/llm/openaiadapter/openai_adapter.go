package openaiadapter

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"

	"github.com/Vallehtelia/StupidHack25/internal/llmtypes"
	"github.com/Vallehtelia/StupidHack25/internal/utils"
)

// OpenAIAdapter implements llmtypes.Model using the OpenAI Go SDK
// Chat Completions endpoint.
type OpenAIAdapter struct {
	client  *openai.Client
	modelID string
	logger  utils.ExtendedLogger
}

// NewClient builds an SDK client that performs exactly one attempt per call.
// Extra options (base URL, HTTP client) are appended after the defaults.
func NewClient(apiKey string, opts ...option.RequestOption) *openai.Client {
	all := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := openai.NewClient(all...)
	return &client
}

// NewOpenAIAdapter creates a new adapter instance
func NewOpenAIAdapter(client *openai.Client, modelID string, logger utils.ExtendedLogger) *OpenAIAdapter {
	return &OpenAIAdapter{
		client:  client,
		modelID: modelID,
		logger:  logger,
	}
}

// GenerateContent implements the llmtypes.Model interface
func (o *OpenAIAdapter) GenerateContent(ctx context.Context, messages []llmtypes.MessageContent, options ...llmtypes.CallOption) (*llmtypes.ContentResponse, error) {
	opts := llmtypes.ApplyOptions(options...)

	modelID := o.modelID
	if opts.Model != "" {
		modelID = opts.Model
	}

	params := buildParams(modelID, messages, opts)

	if o.logger != nil {
		o.logger.Debugf("OpenAI GenerateContent INPUT - model_id: %s, message_count: %d, reasoning_effort: %q, verbosity: %q, store: %t",
			modelID, len(messages), opts.ReasoningEffort, opts.Verbosity, opts.Store)
	}

	result, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if o.logger != nil {
			o.logger.Errorf("OpenAI GenerateContent ERROR - model_id: %s, message_count: %d, error: %v", modelID, len(messages), err)
		}
		return nil, err
	}

	return convertResponse(result), nil
}

// buildParams maps the provider-neutral request onto ChatCompletionNewParams.
func buildParams(modelID string, messages []llmtypes.MessageContent, opts *llmtypes.CallOptions) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(modelID),
		Messages: convertMessages(messages),
	}

	if opts.Temperature > 0 {
		params.Temperature = param.NewOpt(opts.Temperature)
	}
	if opts.ReasoningEffort != "" {
		params.ReasoningEffort = shared.ReasoningEffort(opts.ReasoningEffort)
	}
	if opts.Verbosity != "" {
		params.Verbosity = openai.ChatCompletionNewParamsVerbosity(opts.Verbosity)
	}
	if opts.Store {
		params.Store = param.NewOpt(true)
	}

	return params
}

// convertMessages converts llmtypes messages to the OpenAI message format.
// Unknown roles are sent as user messages.
func convertMessages(messages []llmtypes.MessageContent) []openai.ChatCompletionMessageParamUnion {
	openaiMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		content := msg.Text()
		switch msg.Role {
		case llmtypes.ChatMessageTypeSystem:
			openaiMessages = append(openaiMessages, openai.SystemMessage(content))
		case llmtypes.ChatMessageTypeAI:
			openaiMessages = append(openaiMessages, openai.AssistantMessage(content))
		default:
			openaiMessages = append(openaiMessages, openai.UserMessage(content))
		}
	}

	return openaiMessages
}

// convertResponse converts an OpenAI completion into a ContentResponse
func convertResponse(result *openai.ChatCompletion) *llmtypes.ContentResponse {
	if result == nil {
		return &llmtypes.ContentResponse{
			Choices: []*llmtypes.ContentChoice{},
		}
	}

	choices := make([]*llmtypes.ContentChoice, 0, len(result.Choices))
	for _, choice := range result.Choices {
		choices = append(choices, &llmtypes.ContentChoice{
			Content:    choice.Message.Content,
			StopReason: choice.FinishReason,
			GenerationInfo: map[string]interface{}{
				"input_tokens":     int(result.Usage.PromptTokens),
				"output_tokens":    int(result.Usage.CompletionTokens),
				"total_tokens":     int(result.Usage.TotalTokens),
				"reasoning_tokens": int(result.Usage.CompletionTokensDetails.ReasoningTokens),
			},
		})
	}

	return &llmtypes.ContentResponse{
		Choices: choices,
	}
}
