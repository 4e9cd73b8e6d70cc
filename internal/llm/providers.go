package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vallehtelia/StupidHack25/internal/llm/genaiadapter"
	"github.com/Vallehtelia/StupidHack25/internal/llm/openaiadapter"
	"github.com/Vallehtelia/StupidHack25/internal/llmtypes"
	"github.com/Vallehtelia/StupidHack25/internal/utils"
)

// Provider represents the available LLM providers
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Label is the human-facing provider name used in error documents.
func (p Provider) Label() string {
	switch p {
	case ProviderGemini:
		return "Gemini"
	default:
		return "OpenAI"
	}
}

// Profile is the fixed request configuration for a provider. Callers cannot
// change it; it is part of the persona contract.
type Profile struct {
	ModelID         string
	ReasoningEffort string
	Verbosity       string
	Store           bool
}

// CallOptions converts the profile into per-call options.
func (p Profile) CallOptions() []llmtypes.CallOption {
	opts := []llmtypes.CallOption{llmtypes.WithModel(p.ModelID)}
	if p.ReasoningEffort != "" {
		opts = append(opts, llmtypes.WithReasoningEffort(p.ReasoningEffort))
	}
	if p.Verbosity != "" {
		opts = append(opts, llmtypes.WithVerbosity(p.Verbosity))
	}
	if p.Store {
		opts = append(opts, llmtypes.WithStore(true))
	}
	return opts
}

// GetProfile returns the fixed profile for a provider.
func GetProfile(provider Provider) Profile {
	switch provider {
	case ProviderGemini:
		return Profile{ModelID: "gemini-2.5-flash"}
	default:
		return Profile{
			ModelID:         "gpt-5-nano",
			ReasoningEffort: "medium",
			Verbosity:       "medium",
			Store:           true,
		}
	}
}

// Config holds configuration for LLM initialization
type Config struct {
	Provider    Provider
	APIKey      string
	CountTokens bool
	Logger      utils.ExtendedLogger
	// Context for client construction; defaults to context.Background()
	Context context.Context
}

// ValidateProvider normalizes and checks a provider name.
func ValidateProvider(provider string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(provider))) {
	case "", ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderGemini:
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// InitializeLLM creates the provider model and wraps it with logging.
// No network traffic happens here; the first request is the first call.
func InitializeLLM(config Config) (*ProviderAwareLLM, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("api key is required for provider %s", config.Provider)
	}

	ctx := config.Context
	if ctx == nil {
		ctx = context.Background()
	}

	profile := GetProfile(config.Provider)

	var model llmtypes.Model
	switch config.Provider {
	case ProviderOpenAI:
		client := openaiadapter.NewClient(config.APIKey)
		model = openaiadapter.NewOpenAIAdapter(client, profile.ModelID, config.Logger)
	case ProviderGemini:
		client, err := genaiadapter.NewClient(ctx, config.APIKey)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		model = genaiadapter.NewGenAIAdapter(client, profile.ModelID, config.Logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}

	if config.Logger != nil {
		config.Logger.Infof("Initialized %s LLM - model_id: %s", config.Provider.Label(), profile.ModelID)
	}

	var counter TokenCounter
	if config.CountTokens {
		counter = NewTiktokenCounter()
	}

	return NewProviderAwareLLM(model, config.Provider, profile.ModelID, counter, config.Logger), nil
}
