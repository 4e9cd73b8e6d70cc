package llmtypes

import (
	"context"
	"strings"
)

// Model is the core interface for LLM implementations
type Model interface {
	GenerateContent(ctx context.Context, messages []MessageContent, options ...CallOption) (*ContentResponse, error)
}

// ChatMessageType represents the role of a chat message
type ChatMessageType string

const (
	ChatMessageTypeSystem ChatMessageType = "system"
	ChatMessageTypeHuman  ChatMessageType = "human"
	ChatMessageTypeAI     ChatMessageType = "ai"
)

// ContentPart is an interface for different types of message parts
type ContentPart interface{}

// TextContent represents a text content part
type TextContent struct {
	Text string
}

// MessageContent represents a message in the conversation
type MessageContent struct {
	Role  ChatMessageType
	Parts []ContentPart
}

// Text joins all text parts of the message with newlines.
func (m MessageContent) Text() string {
	texts := make([]string, 0, len(m.Parts))
	for _, part := range m.Parts {
		if tc, ok := part.(TextContent); ok {
			texts = append(texts, tc.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ContentResponse represents the response from an LLM
type ContentResponse struct {
	Choices []*ContentChoice
}

// ContentChoice represents a single choice in the response
type ContentChoice struct {
	Content        string
	StopReason     string
	GenerationInfo map[string]interface{}
}

// CallOptions holds all call options for LLM generation
type CallOptions struct {
	Model           string
	Temperature     float64
	ReasoningEffort string // "minimal", "low", "medium", "high"
	Verbosity       string // "low", "medium", "high"
	Store           bool
}

// CallOption is a function type for setting call options
type CallOption func(*CallOptions)
