package openaiadapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vallehtelia/StupidHack25/internal/llmtypes"
	"github.com/Vallehtelia/StupidHack25/pkg/logger"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-5-nano",
  "choices": [
    {
      "index": 0,
      "finish_reason": "stop",
      "message": {"role": "assistant", "content": "{\"response\":\"Get out of my swamp\",\"approved\":false,\"reason\":\"rude\"}"}
    }
  ],
  "usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
}`

type capturedRequest struct {
	Model           string `json:"model"`
	ReasoningEffort string `json:"reasoning_effort"`
	Verbosity       string `json:"verbosity"`
	Store           *bool  `json:"store"`
	Messages        []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *OpenAIAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient("test-key", option.WithBaseURL(srv.URL+"/"))
	return NewOpenAIAdapter(client, "gpt-5-nano", logger.CreateDiscardLogger())
}

func TestGenerateContentSendsProfileAndMessages(t *testing.T) {
	var got capturedRequest
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	})

	messages := []llmtypes.MessageContent{
		llmtypes.TextPart(llmtypes.ChatMessageTypeSystem, "You are an ogre."),
		llmtypes.TextPart(llmtypes.ChatMessageTypeHuman, "hi"),
		llmtypes.TextPart(llmtypes.ChatMessageTypeAI, "what?"),
		llmtypes.TextPart(llmtypes.ChatMessageTypeHuman, "let me in"),
	}

	resp, err := adapter.GenerateContent(context.Background(), messages,
		llmtypes.WithReasoningEffort("medium"),
		llmtypes.WithVerbosity("medium"),
		llmtypes.WithStore(true),
	)
	require.NoError(t, err)

	assert.Equal(t, "gpt-5-nano", got.Model)
	assert.Equal(t, "medium", got.ReasoningEffort)
	assert.Equal(t, "medium", got.Verbosity)
	require.NotNil(t, got.Store)
	assert.True(t, *got.Store)

	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are an ogre.", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "user", got.Messages[3].Role)
	assert.Equal(t, "let me in", got.Messages[3].Content)

	require.Len(t, resp.Choices, 1)
	assert.Contains(t, resp.Choices[0].Content, "Get out of my swamp")
	assert.Equal(t, "stop", resp.Choices[0].StopReason)
	assert.Equal(t, 19, resp.Choices[0].GenerationInfo["total_tokens"])
}

func TestGenerateContentModelOverride(t *testing.T) {
	var got capturedRequest
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	})

	_, err := adapter.GenerateContent(context.Background(),
		[]llmtypes.MessageContent{llmtypes.TextPart(llmtypes.ChatMessageTypeHuman, "joke please")},
		llmtypes.WithModel("gpt-4.1"),
	)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", got.Model)
	assert.Empty(t, got.ReasoningEffort)
	assert.Nil(t, got.Store)
}

func TestGenerateContentMakesSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"swamp flooded","type":"server_error"}}`)
	})

	_, err := adapter.GenerateContent(context.Background(),
		[]llmtypes.MessageContent{llmtypes.TextPart(llmtypes.ChatMessageTypeHuman, "hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "swamp flooded")
	assert.Equal(t, int32(1), calls.Load())
}

func TestConvertResponseNil(t *testing.T) {
	resp := convertResponse(nil)
	require.NotNil(t, resp)
	assert.Empty(t, resp.Choices)
}
