package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Vallehtelia/StupidHack25/internal/llmtypes"
	"github.com/Vallehtelia/StupidHack25/internal/utils"
)

type requestIDKey struct{}

// WithRequestID tags ctx with a request ID that ProviderAwareLLM logs instead of
// minting a new one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID stored in ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ProviderAwareLLM wraps a provider model with its identity and call logging.
type ProviderAwareLLM struct {
	model    llmtypes.Model
	provider Provider
	modelID  string
	counter  TokenCounter
	logger   utils.ExtendedLogger
}

// NewProviderAwareLLM wraps model. counter and logger may be nil.
func NewProviderAwareLLM(model llmtypes.Model, provider Provider, modelID string, counter TokenCounter, logger utils.ExtendedLogger) *ProviderAwareLLM {
	return &ProviderAwareLLM{
		model:    model,
		provider: provider,
		modelID:  modelID,
		counter:  counter,
		logger:   logger,
	}
}

// GetProvider returns the provider of the wrapped model
func (p *ProviderAwareLLM) GetProvider() Provider {
	return p.provider
}

// GetModelID returns the model ID of the wrapped model
func (p *ProviderAwareLLM) GetModelID() string {
	return p.modelID
}

// GenerateContent implements llmtypes.Model. It makes exactly one call to the
// wrapped model.
func (p *ProviderAwareLLM) GenerateContent(ctx context.Context, messages []llmtypes.MessageContent, options ...llmtypes.CallOption) (*llmtypes.ContentResponse, error) {
	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	fields := logrus.Fields{
		"request_id":    requestID,
		"provider":      string(p.provider),
		"model_id":      p.modelID,
		"message_count": len(messages),
	}
	if p.counter != nil {
		if n, err := p.counter.Count(messages); err == nil {
			fields["prompt_tokens_estimate"] = n
		} else if p.logger != nil {
			p.logger.Debugf("token estimate unavailable: %v", err)
		}
	}

	if p.logger != nil {
		p.logger.WithFields(fields).Info("LLM generation start")
	}

	start := time.Now()
	resp, err := p.model.GenerateContent(ctx, messages, options...)
	fields["duration"] = time.Since(start).String()

	if err != nil {
		if p.logger != nil {
			p.logger.WithFields(fields).WithError(err).Error("LLM generation failed")
		}
		return nil, err
	}

	if resp == nil || len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices in response")
		if p.logger != nil {
			p.logger.WithFields(fields).WithError(err).Error("LLM generation failed")
		}
		return nil, err
	}

	if p.logger != nil {
		fields["stop_reason"] = resp.Choices[0].StopReason
		p.logger.WithFields(fields).Info("LLM generation end")
	}
	return resp, nil
}
