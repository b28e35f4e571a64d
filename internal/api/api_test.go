package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrapforge/internal/ai"
	"github.com/wrapforge/internal/chat"
	"github.com/wrapforge/internal/storage"
)

// echoProvider answers every generation request with a fixed reply.
type echoProvider struct {
	reply string
}

func (p *echoProvider) Generate(ctx context.Context, req ai.Request) (string, error) {
	return p.reply, nil
}

func (p *echoProvider) Name() string { return "echo" }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.Open(context.Background(), "sqlite", ":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	chatSvc := chat.NewService(store, &echoProvider{reply: "canned reply"})
	return NewServer(0, store, chatSvc, 1)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	// A first request registers and increments the request counter.
	doRequest(t, s, http.MethodGet, "/health", "")

	rec := doRequest(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wrapforge_")
}

func TestWrapperLifecycle(t *testing.T) {
	s := newTestServer(t)

	// Create with defaults.
	rec := doRequest(t, s, http.MethodPost, "/api/wrappers",
		`{"name":"Bot","baseModel":"gemini-1.5-flash"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody(t, rec)
	assert.Equal(t, "Bot", created["name"])
	assert.Equal(t, float64(70), created["temperature"])
	assert.Equal(t, float64(2048), created["maxTokens"])
	assert.Equal(t, float64(90), created["topP"])
	assert.Equal(t, true, created["enableMemory"])
	assert.Equal(t, float64(1), created["userId"])
	id := int64(created["id"].(float64))

	// Read.
	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/wrappers/%d", id), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// List.
	rec = doRequest(t, s, http.MethodGet, "/api/wrappers", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	// Partial update.
	rec = doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/wrappers/%d", id),
		`{"temperature":25}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody(t, rec)
	assert.Equal(t, float64(25), updated["temperature"])
	assert.Equal(t, "Bot", updated["name"])

	// Delete, then delete again.
	rec = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/wrappers/%d", id), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/wrappers/%d", id), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWrapperValidationErrors(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/wrappers", `{"description":"missing name"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "validation failed", body["error"])
	assert.NotEmpty(t, body["fields"])

	// Client-supplied ids are rejected, not ignored.
	rec = doRequest(t, s, http.MethodPost, "/api/wrappers",
		`{"name":"Bot","baseModel":"m","id":7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/wrappers/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/wrappers/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPromptRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/wrappers",
		`{"name":"Bot","baseModel":"gemini-1.5-flash"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	wrapperID := int64(decodeBody(t, rec)["id"].(float64))

	// Creating against a missing wrapper fails and persists nothing.
	rec = doRequest(t, s, http.MethodPost, "/api/wrappers/999/prompts",
		`{"name":"Greet","content":"Hello"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/wrappers/%d/prompts", wrapperID),
		`{"name":"Greet","content":"Hello","tags":["a"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	prompt := decodeBody(t, rec)
	promptID := int64(prompt["id"].(float64))
	assert.Equal(t, float64(wrapperID), prompt["wrapperId"])

	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/wrappers/%d/prompts", wrapperID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var prompts []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prompts))
	assert.Len(t, prompts, 1)

	rec = doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/prompts/%d", promptID),
		`{"content":"Hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hi", decodeBody(t, rec)["content"])

	rec = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/prompts/%d", promptID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/prompts/%d", promptID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIntegrationRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/wrappers",
		`{"name":"Bot","baseModel":"gemini-1.5-flash"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	wrapperID := int64(decodeBody(t, rec)["id"].(float64))

	rec = doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/wrappers/%d/integrations", wrapperID),
		`{"name":"KB","type":"knowledge_base","config":{"url":"https://kb"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	integration := decodeBody(t, rec)
	integrationID := int64(integration["id"].(float64))
	cfg := integration["config"].(map[string]any)
	assert.Equal(t, "https://kb", cfg["url"])

	rec = doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/integrations/%d", integrationID),
		`{"type":"web_search"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "web_search", decodeBody(t, rec)["type"])

	rec = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/integrations/%d", integrationID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestConversationRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/wrappers",
		`{"name":"Bot","baseModel":"gemini-1.5-flash"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	wrapperID := int64(decodeBody(t, rec)["id"].(float64))

	rec = doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/wrappers/%d/conversations", wrapperID),
		`{"messages":[{"role":"user","content":"Hello"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	convID := int64(decodeBody(t, rec)["id"].(float64))

	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/conversations/%d", convID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	conv := decodeBody(t, rec)
	msgs := conv["messages"].([]any)
	require.Len(t, msgs, 1)

	// Unknown roles are rejected.
	rec = doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/wrappers/%d/conversations", wrapperID),
		`{"messages":[{"role":"robot","content":"x"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/users",
		`{"username":"alice","password":"supersecret"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decodeBody(t, rec)
	assert.Equal(t, "alice", user["username"])
	// The password hash never leaves the server.
	_, leaked := user["passwordHash"]
	assert.False(t, leaked)

	rec = doRequest(t, s, http.MethodPost, "/api/users",
		`{"username":"alice","password":"supersecret"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/users/%d", int64(user["id"].(float64))), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/users",
		`{"username":"bob","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/wrappers",
		`{"name":"Bot","baseModel":"gemini-1.5-flash","systemPrompt":"Be concise."}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	wrapperID := int64(decodeBody(t, rec)["id"].(float64))

	rec = doRequest(t, s, http.MethodPost, "/api/chat",
		fmt.Sprintf(`{"wrapperId":%d,"message":"Hello"}`, wrapperID))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "canned reply", body["message"])
	assert.Equal(t, "gemini-1.5-flash", body["model"])
	convID := int64(body["conversationId"].(float64))
	assert.Positive(t, convID)
	usage := body["usage"].(map[string]any)
	assert.Equal(t, usage["total_tokens"],
		usage["prompt_tokens"].(float64)+usage["completion_tokens"].(float64))

	// A second turn lands in the same conversation.
	rec = doRequest(t, s, http.MethodPost, "/api/chat",
		fmt.Sprintf(`{"wrapperId":%d,"message":"Again","conversationId":%d}`, wrapperID, convID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(convID), decodeBody(t, rec)["conversationId"])

	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/conversations/%d", convID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decodeBody(t, rec)["messages"].([]any)
	assert.Len(t, msgs, 5)
}

func TestChatEndpointErrors(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/chat", `{"message":"Hello"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/chat", `{"wrapperId":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/chat", `{"wrapperId":999,"message":"Hello"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
