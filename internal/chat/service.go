package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wrapforge/internal/ai"
	"github.com/wrapforge/internal/metrics"
	"github.com/wrapforge/internal/storage"
)

// ErrWrapperNotFound is returned when the requested wrapper does not exist.
var ErrWrapperNotFound = errors.New("wrapper not found")

// Service orchestrates one chat turn: load wrapper and transcript, call the
// provider, persist the extended transcript.
type Service struct {
	store    *storage.Store
	provider ai.Provider
}

func NewService(store *storage.Store, provider ai.Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
	}
}

// Request is one incoming chat turn. ConversationID zero means no prior
// conversation.
type Request struct {
	WrapperID      int64
	Message        string
	ConversationID int64
}

// Response is the completed turn.
type Response struct {
	Message        string   `json:"message"`
	ConversationID int64    `json:"conversationId"`
	Usage          ai.Usage `json:"usage"`
	Model          string   `json:"model"`
}

// Send runs one turn against the wrapper's configured model. The transcript
// is only written after a successful model response; a failed invocation
// leaves no conversation record behind.
func (s *Service) Send(ctx context.Context, req Request) (*Response, error) {
	wrapper, err := s.store.GetWrapper(ctx, req.WrapperID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrWrapperNotFound
		}
		return nil, fmt.Errorf("load wrapper: %w", err)
	}

	// An unresolvable conversation id starts a fresh transcript rather than
	// failing the request; the id in the response tells the caller where the
	// turn actually landed.
	var conversation *storage.Conversation
	if req.ConversationID != 0 {
		conversation, err = s.store.GetConversation(ctx, req.ConversationID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("load conversation: %w", err)
			}
			log.Debug().
				Int64("conversation_id", req.ConversationID).
				Msg("conversation not found, starting fresh")
			conversation = nil
		}
	}

	var existing []storage.Message
	if conversation != nil {
		existing = conversation.Messages
	}

	transcript := BuildTranscript(existing, wrapper.SystemPrompt, req.Message)
	translated := Translate(transcript)

	invocation := ai.Request{
		Model: ai.ResolveModel(wrapper.BaseModel),
		Settings: ai.Settings{
			Temperature: float64(wrapper.Temperature) / 100,
			TopP:        float64(wrapper.TopP) / 100,
			MaxTokens:   wrapper.MaxTokens,
		},
		History: translated[:len(translated)-1],
		Turn:    translated[len(translated)-1],
	}

	invocationID := uuid.NewString()
	log.Info().
		Str("invocation_id", invocationID).
		Int64("wrapper_id", wrapper.ID).
		Str("model", invocation.Model).
		Int("history_len", len(invocation.History)).
		Msg("invoking model")

	metrics.Global().ChatInvocations.Inc()
	reply, err := s.provider.Generate(ctx, invocation)
	if err != nil {
		metrics.Global().ChatFailures.Inc()
		log.Error().Err(err).Str("invocation_id", invocationID).Msg("chat turn failed")
		return nil, err
	}

	transcript = append(transcript, storage.Message{
		Role:    storage.RoleAssistant,
		Content: reply,
	})

	if conversation != nil {
		conversation, err = s.store.UpdateConversation(ctx, conversation.ID, storage.ConversationPatch{
			Messages: &transcript,
		})
	} else {
		conversation, err = s.store.CreateConversation(ctx, storage.NewConversation{
			WrapperID: wrapper.ID,
			Messages:  transcript,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("persist conversation: %w", err)
	}

	return &Response{
		Message:        reply,
		ConversationID: conversation.ID,
		Usage:          ai.EstimateUsage(promptText(translated), reply),
		Model:          invocation.Model,
	}, nil
}
