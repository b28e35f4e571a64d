package ai

import "strings"

// DefaultModel is used when a wrapper's baseModel is not in the alias table.
const DefaultModel = "gemini-1.5-flash"

// modelAliases maps the baseModel names offered by the wrapper UI to concrete
// provider model ids. Every request is served by the Gemini family; foreign
// names pick the closest tier.
var modelAliases = map[string]string{
	"gemini-pro":       "gemini-1.5-pro",
	"gemini-flash":     "gemini-1.5-flash",
	"gemini-1.5-pro":   "gemini-1.5-pro",
	"gemini-1.5-flash": "gemini-1.5-flash",
	"gpt-3.5-turbo":    "gemini-1.5-flash",
	"gpt-4":            "gemini-1.5-pro",
	"gpt-4o":           "gemini-1.5-pro",
	"claude-3-haiku":   "gemini-1.5-flash",
	"claude-3-sonnet":  "gemini-1.5-pro",
}

// ResolveModel returns the provider model id for a stored baseModel name,
// falling back to DefaultModel for unrecognized names.
func ResolveModel(baseModel string) string {
	if id, ok := modelAliases[strings.ToLower(strings.TrimSpace(baseModel))]; ok {
		return id
	}
	return DefaultModel
}
