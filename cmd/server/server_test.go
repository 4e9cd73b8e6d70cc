package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vallehtelia/StupidHack25/internal/config"
	"github.com/Vallehtelia/StupidHack25/internal/llm"
	"github.com/Vallehtelia/StupidHack25/internal/llmtypes"
	"github.com/Vallehtelia/StupidHack25/pkg/logger"
	"github.com/Vallehtelia/StupidHack25/pkg/verdict"
)

type cannedModel struct {
	reply     string
	err       error
	calls     int
	messages  []llmtypes.MessageContent
	requestID string
}

func (m *cannedModel) GenerateContent(ctx context.Context, messages []llmtypes.MessageContent, options ...llmtypes.CallOption) (*llmtypes.ContentResponse, error) {
	m.calls++
	m.messages = messages
	m.requestID = llm.RequestIDFrom(ctx)
	if m.err != nil {
		return nil, m.err
	}
	return &llmtypes.ContentResponse{Choices: []*llmtypes.ContentChoice{{Content: m.reply}}}, nil
}

func newTestAPI(t *testing.T, model *cannedModel, mutate func(*config.Config)) http.Handler {
	t.Helper()

	dir := t.TempDir()
	instructions := filepath.Join(dir, "ShrekInstructions.txt")
	require.NoError(t, os.WriteFile(instructions, []byte("You are Shrek."), 0644))

	cfg := config.Config{
		Provider:         "openai",
		InstructionsPath: instructions,
		Server:           config.ServerConfig{CORSOrigins: []string{"*"}},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	log := logger.CreateDiscardLogger()
	shaper := verdict.NewShaper(model, verdict.WithLogger(log))
	return NewShrekAPI(cfg, shaper, llm.ProviderOpenAI, log).Router()
}

func postShrek(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/shrek", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc), "body: %q", rec.Body.String())
	return rec, doc
}

func TestHandleShrekSuccess(t *testing.T) {
	model := &cannedModel{reply: `{"response":"Fine, come in.","approved":true,"reason":"Onions"}`}
	h := newTestAPI(t, model, nil)

	rec, doc := postShrek(t, h, `{"message":"I brought onions","conversationHistory":[{"role":"user","content":"hi"},{"role":"assistant","content":"Go away"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{
		"success":  true,
		"response": "Fine, come in.",
		"approved": true,
		"reason":   "Onions",
	}, doc)

	require.Len(t, model.messages, 4)
	assert.Equal(t, "You are Shrek.", model.messages[0].Text())
	assert.Equal(t, "I brought onions", model.messages[3].Text())

	requestID := rec.Header().Get(requestIDHeader)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, requestID, model.requestID)
}

func TestHandleShrekEchoesRequestID(t *testing.T) {
	model := &cannedModel{reply: `{"response":"no"}`}
	h := newTestAPI(t, model, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/shrek", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
	assert.Equal(t, "req-42", model.requestID)
}

func TestHandleShrekRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mutate     func(*config.Config)
		wantStatus int
		wantErr    string
	}{
		{name: "missing message", body: `{}`, wantStatus: http.StatusBadRequest, wantErr: "Message is required"},
		{name: "blank message", body: `{"message":"   "}`, wantStatus: http.StatusBadRequest, wantErr: "Message is required"},
		{name: "not json", body: `message=hi`, wantStatus: http.StatusBadRequest, wantErr: "Invalid request body"},
		{
			name:       "bad history",
			body:       `{"message":"hi","conversationHistory":[{"role":"donkey","content":"x"}]}`,
			wantStatus: http.StatusBadRequest,
			wantErr:    "Invalid conversation history format",
		},
		{
			name: "persona missing",
			body: `{"message":"hi"}`,
			mutate: func(c *config.Config) {
				c.InstructionsPath = filepath.Join(filepath.Dir(c.InstructionsPath), "missing", "ShrekInstructions.txt")
			},
			wantStatus: http.StatusInternalServerError,
			wantErr:    "ShrekInstructions.txt not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &cannedModel{reply: "{}"}
			h := newTestAPI(t, model, tt.mutate)

			rec, doc := postShrek(t, h, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, map[string]any{"success": false, "error": tt.wantErr}, doc)
			assert.Zero(t, model.calls)
		})
	}
}

func TestHandleShrekNullHistory(t *testing.T) {
	model := &cannedModel{reply: "Get out of my swamp!"}
	h := newTestAPI(t, model, nil)

	rec, doc := postShrek(t, h, `{"message":"hi","conversationHistory":null}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, verdict.ReasonFormatUnclear, doc["reason"])
	assert.Len(t, model.messages, 2)
}

func TestHandleShrekUpstreamFailure(t *testing.T) {
	model := &cannedModel{err: errors.New("503 Service Unavailable")}
	h := newTestAPI(t, model, nil)

	rec, doc := postShrek(t, h, `{"message":"hi"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, map[string]any{"success": false, "error": "OpenAI API error: 503 Service Unavailable"}, doc)
}

func TestHandleHealth(t *testing.T) {
	h := newTestAPI(t, &cannedModel{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, HealthResponse{Status: "healthy", Service: "swampgate", Provider: "openai", Model: "gpt-5-nano"}, health)
}

func TestCORS(t *testing.T) {
	t.Run("preflight", func(t *testing.T) {
		h := newTestAPI(t, &cannedModel{}, nil)

		req := httptest.NewRequest(http.MethodOptions, "/api/shrek", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("origin not allowed", func(t *testing.T) {
		h := newTestAPI(t, &cannedModel{}, func(c *config.Config) {
			c.Server.CORSOrigins = []string{"https://swamp.example"}
		})

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestStaticDir(t *testing.T) {
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>swamp</html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "app.js"), []byte("console.log('ogre')"), 0644))

	h := newTestAPI(t, &cannedModel{}, func(c *config.Config) { c.Server.StaticDir = dist })

	tests := []struct {
		path string
		want string
	}{
		{path: "/", want: "<html>swamp</html>"},
		{path: "/app.js", want: "console.log('ogre')"},
		{path: "/chat/123", want: "<html>swamp</html>"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}
