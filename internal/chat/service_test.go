package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrapforge/internal/ai"
	"github.com/wrapforge/internal/storage"
)

// stubProvider records the last request and returns a canned reply.
type stubProvider struct {
	reply string
	err   error
	last  *ai.Request
}

func (p *stubProvider) Generate(ctx context.Context, req ai.Request) (string, error) {
	p.last = &req
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *stubProvider) Name() string { return "stub" }

func newTestService(t *testing.T, provider ai.Provider) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.Open(context.Background(), "sqlite", ":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(store, provider), store
}

func createWrapper(t *testing.T, store *storage.Store, nw storage.NewWrapper) *storage.Wrapper {
	t.Helper()
	if nw.UserID == 0 {
		nw.UserID = 1
	}
	w, err := store.CreateWrapper(context.Background(), nw)
	require.NoError(t, err)
	return w
}

func TestSendStartsFreshConversation(t *testing.T) {
	provider := &stubProvider{reply: "Hi there"}
	svc, store := newTestService(t, provider)
	ctx := context.Background()

	w := createWrapper(t, store, storage.NewWrapper{
		Name:         "Bot",
		BaseModel:    "gemini-1.5-flash",
		SystemPrompt: "Be concise.",
		Temperature:  70,
		MaxTokens:    2048,
		TopP:         90,
	})

	resp, err := svc.Send(ctx, Request{WrapperID: w.ID, Message: "Hello"})
	require.NoError(t, err)

	assert.Equal(t, "Hi there", resp.Message)
	assert.Equal(t, "gemini-1.5-flash", resp.Model)
	assert.Positive(t, resp.ConversationID)

	// Persisted transcript is system, user, assistant in order.
	conv, err := store.GetConversation(ctx, resp.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, storage.Message{Role: storage.RoleSystem, Content: "Be concise."}, conv.Messages[0])
	assert.Equal(t, storage.Message{Role: storage.RoleUser, Content: "Hello"}, conv.Messages[1])
	assert.Equal(t, storage.Message{Role: storage.RoleAssistant, Content: "Hi there"}, conv.Messages[2])

	// The provider saw the translated system prompt as history and the user
	// message as the live turn.
	require.NotNil(t, provider.last)
	require.Len(t, provider.last.History, 1)
	assert.Equal(t, ai.Message{Role: ai.RoleUser, Content: "System instruction: Be concise."}, provider.last.History[0])
	assert.Equal(t, ai.Message{Role: ai.RoleUser, Content: "Hello"}, provider.last.Turn)
}

func TestSendContinuesConversation(t *testing.T) {
	provider := &stubProvider{reply: "Second reply"}
	svc, store := newTestService(t, provider)
	ctx := context.Background()

	w := createWrapper(t, store, storage.NewWrapper{
		Name: "Bot", BaseModel: "gemini-1.5-flash", MaxTokens: 100,
	})
	conv, err := store.CreateConversation(ctx, storage.NewConversation{
		WrapperID: w.ID,
		Messages: []storage.Message{
			{Role: storage.RoleUser, Content: "First"},
			{Role: storage.RoleAssistant, Content: "First reply"},
		},
	})
	require.NoError(t, err)

	resp, err := svc.Send(ctx, Request{WrapperID: w.ID, Message: "Second", ConversationID: conv.ID})
	require.NoError(t, err)
	assert.Equal(t, conv.ID, resp.ConversationID)

	got, err := store.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 4)
	// Prior entries are untouched; the new turn is appended.
	assert.Equal(t, "First", got.Messages[0].Content)
	assert.Equal(t, "First reply", got.Messages[1].Content)
	assert.Equal(t, storage.Message{Role: storage.RoleUser, Content: "Second"}, got.Messages[2])
	assert.Equal(t, storage.Message{Role: storage.RoleAssistant, Content: "Second reply"}, got.Messages[3])

	require.Len(t, provider.last.History, 3)
	assert.Equal(t, ai.RoleModel, provider.last.History[2].Role)
}

func TestSendUnknownConversationStartsFresh(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	svc, store := newTestService(t, provider)
	ctx := context.Background()

	w := createWrapper(t, store, storage.NewWrapper{
		Name: "Bot", BaseModel: "gemini-1.5-flash", MaxTokens: 100,
	})

	resp, err := svc.Send(ctx, Request{WrapperID: w.ID, Message: "Hello", ConversationID: 9999})
	require.NoError(t, err)
	// A fresh conversation is created under a new id.
	assert.NotEqual(t, int64(9999), resp.ConversationID)

	conv, err := store.GetConversation(ctx, resp.ConversationID)
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 2)
}

func TestSendWrapperNotFound(t *testing.T) {
	svc, _ := newTestService(t, &stubProvider{reply: "ok"})

	_, err := svc.Send(context.Background(), Request{WrapperID: 42, Message: "Hello"})
	assert.ErrorIs(t, err, ErrWrapperNotFound)
}

func TestSendProviderFailureLeavesNoConversation(t *testing.T) {
	provider := &stubProvider{err: errors.New("model invocation failed")}
	svc, store := newTestService(t, provider)
	ctx := context.Background()

	w := createWrapper(t, store, storage.NewWrapper{
		Name: "Bot", BaseModel: "gemini-1.5-flash", MaxTokens: 100,
	})

	_, err := svc.Send(ctx, Request{WrapperID: w.ID, Message: "Hello"})
	require.Error(t, err)

	convs, err := store.ListConversationsByWrapper(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestSendScalesSettings(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	svc, store := newTestService(t, provider)

	w := createWrapper(t, store, storage.NewWrapper{
		Name:        "Bot",
		BaseModel:   "gemini-1.5-flash",
		Temperature: 70,
		TopP:        90,
		MaxTokens:   512,
	})

	_, err := svc.Send(context.Background(), Request{WrapperID: w.ID, Message: "Hello"})
	require.NoError(t, err)

	require.NotNil(t, provider.last)
	assert.InDelta(t, 0.7, provider.last.Settings.Temperature, 1e-9)
	assert.InDelta(t, 0.9, provider.last.Settings.TopP, 1e-9)
	assert.Equal(t, 512, provider.last.Settings.MaxTokens)
}

func TestSendResolvesModelAlias(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	svc, store := newTestService(t, provider)

	w := createWrapper(t, store, storage.NewWrapper{
		Name: "Bot", BaseModel: "gpt-4", MaxTokens: 100,
	})

	resp, err := svc.Send(context.Background(), Request{WrapperID: w.ID, Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", resp.Model)
	assert.Equal(t, "gemini-1.5-pro", provider.last.Model)
}

func TestSendUsageEstimate(t *testing.T) {
	// 24 characters of reply against a 12 character prompt.
	provider := &stubProvider{reply: strings.Repeat("b", 24)}
	svc, store := newTestService(t, provider)

	w := createWrapper(t, store, storage.NewWrapper{
		Name: "Bot", BaseModel: "gemini-1.5-flash", MaxTokens: 100,
	})

	resp, err := svc.Send(context.Background(), Request{
		WrapperID: w.ID,
		Message:   strings.Repeat("a", 12),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Usage.PromptTokens)
	assert.Equal(t, 6, resp.Usage.CompletionTokens)
	assert.Equal(t, 9, resp.Usage.TotalTokens)
}
