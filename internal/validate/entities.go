package validate

import (
	"io"
	"strconv"

	"github.com/wrapforge/internal/storage"
)

// Wrapper defaults applied on create when the field is absent.
const (
	DefaultTemperature = 70
	DefaultMaxTokens   = 2048
	DefaultTopP        = 90
)

type wrapperPayload struct {
	Name                     *string `json:"name"`
	Description              *string `json:"description"`
	BaseModel                *string `json:"baseModel"`
	SystemPrompt             *string `json:"systemPrompt"`
	Temperature              *int    `json:"temperature"`
	MaxTokens                *int    `json:"maxTokens"`
	TopP                     *int    `json:"topP"`
	EnableMemory             *bool   `json:"enableMemory"`
	KnowledgeBaseIntegration *bool   `json:"knowledgeBaseIntegration"`
	WebSearchAccess          *bool   `json:"webSearchAccess"`
}

// checkWrapperRanges enforces the stored 0-100 scale on the server side
// instead of trusting a UI slider.
func checkWrapperRanges(p wrapperPayload, verr *Error) {
	if p.Temperature != nil && (*p.Temperature < 0 || *p.Temperature > 100) {
		verr.add("temperature", "must be between 0 and 100")
	}
	if p.TopP != nil && (*p.TopP < 0 || *p.TopP > 100) {
		verr.add("topP", "must be between 0 and 100")
	}
	if p.MaxTokens != nil && *p.MaxTokens < 1 {
		verr.add("maxTokens", "must be at least 1")
	}
}

// WrapperCreate validates a wrapper creation body. Ownership (userId) is
// forced by the caller, never read from input.
func WrapperCreate(r io.Reader, userID int64) (storage.NewWrapper, *Error) {
	var p wrapperPayload
	if verr := decodeStrict(r, &p); verr != nil {
		return storage.NewWrapper{}, verr
	}

	verr := &Error{}
	if blank(p.Name) {
		verr.add("name", "is required")
	}
	if blank(p.BaseModel) {
		verr.add("baseModel", "is required")
	}
	checkWrapperRanges(p, verr)
	if v := verr.orNil(); v != nil {
		return storage.NewWrapper{}, v
	}

	nw := storage.NewWrapper{
		Name:         strValue(p.Name),
		Description:  strValue(p.Description),
		BaseModel:    strValue(p.BaseModel),
		SystemPrompt: strValue(p.SystemPrompt),
		Temperature:  DefaultTemperature,
		MaxTokens:    DefaultMaxTokens,
		TopP:         DefaultTopP,
		EnableMemory: true,
		UserID:       userID,
	}
	if p.Temperature != nil {
		nw.Temperature = *p.Temperature
	}
	if p.MaxTokens != nil {
		nw.MaxTokens = *p.MaxTokens
	}
	if p.TopP != nil {
		nw.TopP = *p.TopP
	}
	if p.EnableMemory != nil {
		nw.EnableMemory = *p.EnableMemory
	}
	if p.KnowledgeBaseIntegration != nil {
		nw.KnowledgeBaseIntegration = *p.KnowledgeBaseIntegration
	}
	if p.WebSearchAccess != nil {
		nw.WebSearchAccess = *p.WebSearchAccess
	}
	return nw, nil
}

// WrapperUpdate validates a partial wrapper update body.
func WrapperUpdate(r io.Reader) (storage.WrapperPatch, *Error) {
	var p wrapperPayload
	if verr := decodeStrict(r, &p); verr != nil {
		return storage.WrapperPatch{}, verr
	}

	verr := &Error{}
	checkWrapperRanges(p, verr)
	if v := verr.orNil(); v != nil {
		return storage.WrapperPatch{}, v
	}

	return storage.WrapperPatch{
		Name:                     p.Name,
		Description:              p.Description,
		BaseModel:                p.BaseModel,
		SystemPrompt:             p.SystemPrompt,
		Temperature:              p.Temperature,
		MaxTokens:                p.MaxTokens,
		TopP:                     p.TopP,
		EnableMemory:             p.EnableMemory,
		KnowledgeBaseIntegration: p.KnowledgeBaseIntegration,
		WebSearchAccess:          p.WebSearchAccess,
	}, nil
}

type promptPayload struct {
	Name        *string   `json:"name"`
	Content     *string   `json:"content"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

// PromptCreate validates a prompt creation body. The owning wrapper comes
// from the route, never from input.
func PromptCreate(r io.Reader, wrapperID int64) (storage.NewPrompt, *Error) {
	var p promptPayload
	if verr := decodeStrict(r, &p); verr != nil {
		return storage.NewPrompt{}, verr
	}

	verr := &Error{}
	if blank(p.Name) {
		verr.add("name", "is required")
	}
	if p.Content == nil || *p.Content == "" {
		verr.add("content", "is required")
	}
	if v := verr.orNil(); v != nil {
		return storage.NewPrompt{}, v
	}

	np := storage.NewPrompt{
		Name:        strValue(p.Name),
		Content:     strValue(p.Content),
		Description: strValue(p.Description),
		WrapperID:   wrapperID,
	}
	if p.Tags != nil {
		np.Tags = *p.Tags
	}
	return np, nil
}

// PromptUpdate validates a partial prompt update body.
func PromptUpdate(r io.Reader) (storage.PromptPatch, *Error) {
	var p promptPayload
	if verr := decodeStrict(r, &p); verr != nil {
		return storage.PromptPatch{}, verr
	}
	return storage.PromptPatch{
		Name:        p.Name,
		Content:     p.Content,
		Description: p.Description,
		Tags:        p.Tags,
	}, nil
}

type integrationPayload struct {
	Name   *string         `json:"name"`
	Type   *string         `json:"type"`
	Config *map[string]any `json:"config"`
}

// IntegrationCreate validates an integration creation body. Config is an
// open-ended document; only its JSON shape (an object) is checked.
func IntegrationCreate(r io.Reader, wrapperID int64) (storage.NewIntegration, *Error) {
	var p integrationPayload
	if verr := decodeStrict(r, &p); verr != nil {
		return storage.NewIntegration{}, verr
	}

	verr := &Error{}
	if blank(p.Name) {
		verr.add("name", "is required")
	}
	if blank(p.Type) {
		verr.add("type", "is required")
	}
	if v := verr.orNil(); v != nil {
		return storage.NewIntegration{}, v
	}

	ni := storage.NewIntegration{
		Name:      strValue(p.Name),
		Type:      strValue(p.Type),
		WrapperID: wrapperID,
	}
	if p.Config != nil {
		ni.Config = *p.Config
	}
	return ni, nil
}

// IntegrationUpdate validates a partial integration update body.
func IntegrationUpdate(r io.Reader) (storage.IntegrationPatch, *Error) {
	var p integrationPayload
	if verr := decodeStrict(r, &p); verr != nil {
		return storage.IntegrationPatch{}, verr
	}
	return storage.IntegrationPatch{
		Name:   p.Name,
		Type:   p.Type,
		Config: p.Config,
	}, nil
}

type conversationPayload struct {
	Messages *[]storage.Message `json:"messages"`
}

func checkMessages(msgs []storage.Message, verr *Error) {
	for i, m := range msgs {
		switch m.Role {
		case storage.RoleSystem, storage.RoleUser, storage.RoleAssistant:
		default:
			verr.add(messageField(i), "role must be system, user or assistant")
		}
	}
}

func messageField(i int) string {
	return "messages[" + strconv.Itoa(i) + "].role"
}

// ConversationCreate validates a conversation creation body. Messages are
// optional; when present each entry needs a known role.
func ConversationCreate(r io.Reader, wrapperID int64) (storage.NewConversation, *Error) {
	var p conversationPayload
	if verr := decodeStrict(r, &p); verr != nil {
		return storage.NewConversation{}, verr
	}

	nc := storage.NewConversation{WrapperID: wrapperID}
	if p.Messages != nil {
		verr := &Error{}
		checkMessages(*p.Messages, verr)
		if v := verr.orNil(); v != nil {
			return storage.NewConversation{}, v
		}
		nc.Messages = *p.Messages
	}
	return nc, nil
}

// ConversationUpdate validates a partial conversation update body.
func ConversationUpdate(r io.Reader) (storage.ConversationPatch, *Error) {
	var p conversationPayload
	if verr := decodeStrict(r, &p); verr != nil {
		return storage.ConversationPatch{}, verr
	}
	if p.Messages != nil {
		verr := &Error{}
		checkMessages(*p.Messages, verr)
		if v := verr.orNil(); v != nil {
			return storage.ConversationPatch{}, v
		}
	}
	return storage.ConversationPatch{Messages: p.Messages}, nil
}

type userPayload struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// UserCreateInput is a validated registration request. The password is still
// plaintext here; hashing happens in the handler before the store sees it.
type UserCreateInput struct {
	Username string
	Password string
}

// UserCreate validates a user registration body.
func UserCreate(r io.Reader) (UserCreateInput, *Error) {
	var p userPayload
	if verr := decodeStrict(r, &p); verr != nil {
		return UserCreateInput{}, verr
	}

	verr := &Error{}
	if blank(p.Username) {
		verr.add("username", "is required")
	}
	if p.Password == nil || len(*p.Password) < 8 {
		verr.add("password", "must be at least 8 characters")
	}
	if v := verr.orNil(); v != nil {
		return UserCreateInput{}, v
	}

	return UserCreateInput{
		Username: strValue(p.Username),
		Password: strValue(p.Password),
	}, nil
}
