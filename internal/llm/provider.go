package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for LLM interaction.
type Provider interface {
	// Generate sends a prompt to the LLM and returns a structured response.
	// When req.Schema is set the response Content is validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Attachments are binary documents sent with the first user message.
	// Only providers reporting AcceptsAttachments receive them.
	Attachments []Attachment

	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment is an inline document, e.g. a source PDF for a topic.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema; also the cache key for compiled schemas.
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string
	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type attachmentAccepter interface {
	AcceptsAttachments() bool
}

// AcceptsAttachments reports whether p forwards Request.Attachments to the
// model. Decorators delegate to the provider they wrap.
func AcceptsAttachments(p Provider) bool {
	if a, ok := p.(attachmentAccepter); ok {
		return a.AcceptsAttachments()
	}
	return false
}
