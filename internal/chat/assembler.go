// Package chat builds conversation transcripts, translates them into the
// provider's shape and orchestrates the model call plus persistence.
package chat

import (
	"fmt"

	"github.com/wrapforge/internal/ai"
	"github.com/wrapforge/internal/storage"
)

// systemAnnotation wraps a system prompt for a provider without a native
// system role.
const systemAnnotation = "System instruction: %s"

// BuildTranscript extends a role-tagged transcript with the incoming user
// message. An empty transcript is seeded with the wrapper's system prompt
// when one is configured.
func BuildTranscript(existing []storage.Message, systemPrompt, userMessage string) []storage.Message {
	out := make([]storage.Message, 0, len(existing)+2)
	out = append(out, existing...)
	if len(out) == 0 && systemPrompt != "" {
		out = append(out, storage.Message{Role: storage.RoleSystem, Content: systemPrompt})
	}
	out = append(out, storage.Message{Role: storage.RoleUser, Content: userMessage})
	return out
}

// Translate converts a role-tagged transcript into provider messages:
// system entries become user-role entries wrapped in an explicit
// system-instruction annotation, user entries map directly, and everything
// else maps to the provider's model-output role.
func Translate(transcript []storage.Message) []ai.Message {
	out := make([]ai.Message, 0, len(transcript))
	for _, m := range transcript {
		switch m.Role {
		case storage.RoleSystem:
			out = append(out, ai.Message{
				Role:    ai.RoleUser,
				Content: fmt.Sprintf(systemAnnotation, m.Content),
			})
		case storage.RoleUser:
			out = append(out, ai.Message{Role: ai.RoleUser, Content: m.Content})
		default:
			out = append(out, ai.Message{Role: ai.RoleModel, Content: m.Content})
		}
	}
	return out
}

// promptText is the full text sent to the provider, used for token
// estimation only.
func promptText(msgs []ai.Message) string {
	var n int
	for _, m := range msgs {
		n += len(m.Content)
	}
	buf := make([]byte, 0, n)
	for _, m := range msgs {
		buf = append(buf, m.Content...)
	}
	return string(buf)
}
