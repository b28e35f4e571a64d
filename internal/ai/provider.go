// Package ai wraps the external generative-model client. The provider glue
// here (role translation targets, model aliasing, safety policy) is specific
// to the Gemini family; alternate providers with native system-role support
// would implement Provider without any of it.
package ai

import "context"

// Provider-facing message roles. The target provider has no system role;
// the conversation assembler translates system entries before they get here.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one translated entry bound for the provider.
type Message struct {
	Role    Role
	Content string
}

// Settings are the sampling parameters for one invocation, already scaled to
// provider units (temperature and topP in [0,1]).
type Settings struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Request is a single model invocation: prior history plus the live turn.
type Request struct {
	Model    string // resolved provider model id
	Settings Settings
	History  []Message
	Turn     Message
}

// Provider issues one generation request and returns the response text.
// Failures are opaque; there is no retry or partial-result handling.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Usage is an estimated token count. The target provider does not report
// usage, so both sides are approximated as ceil(characters/4); treat these
// numbers as estimates, never as metered values.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// EstimateUsage approximates token usage for a prompt/completion pair.
func EstimateUsage(prompt, completion string) Usage {
	u := Usage{
		PromptTokens:     estimateTokens(prompt),
		CompletionTokens: estimateTokens(completion),
	}
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
	return u
}

func estimateTokens(s string) int {
	return (len(s) + 3) / 4
}
