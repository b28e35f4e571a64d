package storage

import "time"

// Message roles as stored in a conversation transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged entry in a conversation transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// User owns wrappers. The password hash is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Wrapper is a named configuration bundle describing how to invoke a model:
// model choice, system prompt, sampling parameters, and feature toggles.
// Temperature and TopP are stored as 0-100 integers and divided by 100
// before they reach a provider call.
type Wrapper struct {
	ID                       int64     `json:"id"`
	Name                     string    `json:"name"`
	Description              string    `json:"description"`
	BaseModel                string    `json:"baseModel"`
	SystemPrompt             string    `json:"systemPrompt"`
	Temperature              int       `json:"temperature"`
	MaxTokens                int       `json:"maxTokens"`
	TopP                     int       `json:"topP"`
	EnableMemory             bool      `json:"enableMemory"`
	KnowledgeBaseIntegration bool      `json:"knowledgeBaseIntegration"`
	WebSearchAccess          bool      `json:"webSearchAccess"`
	UserID                   int64     `json:"userId"`
	CreatedAt                time.Time `json:"createdAt"`
}

// Prompt is a reusable prompt attached to a wrapper.
type Prompt struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	WrapperID   int64     `json:"wrapperId"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Integration is a wrapper-owned external hookup. Config is an open-ended
// document whose schema is provider-specific.
type Integration struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Config    map[string]any `json:"config"`
	WrapperID int64          `json:"wrapperId"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Conversation is a wrapper-owned transcript. Messages are append-only from
// the application's perspective.
type Conversation struct {
	ID        int64     `json:"id"`
	WrapperID int64     `json:"wrapperId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// Patch structs carry partial updates; nil fields are left untouched.
// ID and CreatedAt are store-owned and never patchable.

type WrapperPatch struct {
	Name                     *string
	Description              *string
	BaseModel                *string
	SystemPrompt             *string
	Temperature              *int
	MaxTokens                *int
	TopP                     *int
	EnableMemory             *bool
	KnowledgeBaseIntegration *bool
	WebSearchAccess          *bool
}

type PromptPatch struct {
	Name        *string
	Content     *string
	Description *string
	Tags        *[]string
}

type IntegrationPatch struct {
	Name   *string
	Type   *string
	Config *map[string]any
}

type ConversationPatch struct {
	Messages *[]Message
}
