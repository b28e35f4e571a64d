package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GoogleAIConfig contains configuration for the Google AI provider.
type GoogleAIConfig struct {
	APIKey  string
	Timeout time.Duration
}

// GoogleAI implements Provider on top of langchain's googleai client.
// A medium-and-above harm threshold is applied to every request; there is no
// per-wrapper override. Every call is bounded by Timeout.
type GoogleAI struct {
	llm     *googleai.GoogleAI
	timeout time.Duration
}

// NewGoogleAI initializes the googleai client.
func NewGoogleAI(ctx context.Context, config GoogleAIConfig) (*GoogleAI, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google AI API key is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(config.APIKey),
		googleai.WithDefaultModel(DefaultModel),
		googleai.WithHarmThreshold(googleai.HarmBlockMediumAndAbove),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google AI client: %w", err)
	}

	return &GoogleAI{
		llm:     llm,
		timeout: config.Timeout,
	}, nil
}

func (p *GoogleAI) Name() string {
	return "googleai"
}

// Generate submits the request's history as prior context and its final turn
// as the live message, and returns the generated text.
func (p *GoogleAI) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msgs := make([]llms.MessageContent, 0, len(req.History)+1)
	for _, m := range req.History {
		msgs = append(msgs, llms.TextParts(chatMessageType(m.Role), m.Content))
	}
	msgs = append(msgs, llms.TextParts(chatMessageType(req.Turn.Role), req.Turn.Content))

	resp, err := p.llm.GenerateContent(ctx, msgs,
		llms.WithModel(req.Model),
		llms.WithTemperature(req.Settings.Temperature),
		llms.WithTopP(req.Settings.TopP),
		llms.WithMaxTokens(req.Settings.MaxTokens),
	)
	if err != nil {
		log.Error().Err(err).Str("model", req.Model).Msg("model invocation failed")
		return "", fmt.Errorf("model invocation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model invocation failed: empty response")
	}
	return resp.Choices[0].Content, nil
}

func chatMessageType(role Role) llms.ChatMessageType {
	if role == RoleModel {
		return llms.ChatMessageTypeAI
	}
	return llms.ChatMessageTypeHuman
}
