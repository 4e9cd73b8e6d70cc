// Package verdict turns a visitor's message into a persona verdict: it frames
// the conversation for the model, calls it once, and reads a structured
// answer out of whatever text comes back.
package verdict

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vallehtelia/StupidHack25/internal/llmtypes"
	"github.com/Vallehtelia/StupidHack25/internal/utils"
)

// ErrMissingInstructions is returned by Shape when no persona text is given.
// Callers treat it as fatal.
var ErrMissingInstructions = errors.New("persona instructions are required")

// Shaper owns one request/response cycle against a completion model.
// It holds no per-request state and is safe for concurrent use.
type Shaper struct {
	model       llmtypes.Model
	callOptions []llmtypes.CallOption
	errorLabel  string
	logger      utils.ExtendedLogger
}

// Option configures a Shaper.
type Option func(*Shaper)

// WithCallOptions sets the fixed call options sent with every request.
func WithCallOptions(opts ...llmtypes.CallOption) Option {
	return func(s *Shaper) {
		s.callOptions = append([]llmtypes.CallOption(nil), opts...)
	}
}

// WithErrorLabel sets the provider name used in upstream error messages.
func WithErrorLabel(label string) Option {
	return func(s *Shaper) {
		s.errorLabel = label
	}
}

// WithLogger sets the logger.
func WithLogger(logger utils.ExtendedLogger) Option {
	return func(s *Shaper) {
		s.logger = logger
	}
}

// NewShaper creates a Shaper around model.
func NewShaper(model llmtypes.Model, opts ...Option) *Shaper {
	s := &Shaper{
		model:      model,
		errorLabel: "OpenAI",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildMessages frames a request: the instructions as the only system-level
// lead, then history in order, then the current input. history is not modified.
func BuildMessages(instructions string, history []Turn, userInput string) []llmtypes.MessageContent {
	messages := make([]llmtypes.MessageContent, 0, len(history)+2)
	messages = append(messages, llmtypes.TextPart(llmtypes.ChatMessageTypeSystem, instructions))
	for _, turn := range history {
		messages = append(messages, llmtypes.TextPart(turn.Role.MessageType(), turn.Content))
	}
	messages = append(messages, llmtypes.TextPart(llmtypes.ChatMessageTypeHuman, userInput))
	return messages
}

// Shape runs one structured request. Upstream failures become a failed
// Verdict; the only error returned is ErrMissingInstructions.
func (s *Shaper) Shape(ctx context.Context, userInput string, history []Turn, instructions string) (Verdict, error) {
	if strings.TrimSpace(instructions) == "" {
		return Verdict{}, ErrMissingInstructions
	}

	messages := BuildMessages(instructions, history, userInput)

	text, err := s.generate(ctx, messages)
	if err != nil {
		return Failure(s.upstreamError(err)), nil
	}

	v := ExtractVerdict(text)
	if s.logger != nil {
		s.logger.Debugf("Shaped verdict - approved: %t, reason: %q, history_turns: %d", v.Approved, v.Reason, len(history))
	}
	return v, nil
}

// Ask sends prompt on its own, without persona or history, and returns the
// reply text trimmed.
func (s *Shaper) Ask(ctx context.Context, prompt string) (string, error) {
	messages := []llmtypes.MessageContent{
		llmtypes.TextPart(llmtypes.ChatMessageTypeHuman, prompt),
	}

	text, err := s.generate(ctx, messages)
	if err != nil {
		return "", errors.New(s.upstreamError(err))
	}
	return strings.TrimSpace(text), nil
}

// generate makes the single model call. A panic inside the model is reported
// as an error like any other upstream failure.
func (s *Shaper) generate(ctx context.Context, messages []llmtypes.MessageContent) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	resp, err := s.model.GenerateContent(ctx, messages, s.callOptions...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Content, nil
}

func (s *Shaper) upstreamError(err error) string {
	if s.logger != nil {
		s.logger.Errorf("%s API call failed: %v", s.errorLabel, err)
	}
	return fmt.Sprintf("%s API error: %s", s.errorLabel, err.Error())
}
