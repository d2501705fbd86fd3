package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for LLM interaction.
type Provider interface {
	// Generate sends a prompt to the LLM. When the request carries a Schema
	// the provider asks for JSON conforming to it and validates the result;
	// otherwise Content holds the raw model text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation history. Quiz and grading prompts send a
	// single user message; tutor chat sends the rolling window.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. Nil means
	// free text.
	Schema *Schema

	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (schema name for OpenAI, cache key for
	// the validator). Kebab-case, e.g. "quiz-questions".
	Name string

	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any

	// Advisory schemas are sent to the provider to shape the output but
	// the response is not validated against them. The caller parses it.
	Advisory bool
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output: validated JSON when the request
	// had a Schema, raw model text otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string

	// Cached is set when the response came from the response cache.
	Cached bool
}

// Text returns the content as a plain string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// finishResponse applies the checks every provider shares and builds the
// Response. Structured output must be complete and, unless the schema is
// advisory, match it; free text is returned as-is even when truncated.
func finishResponse(req Request, content json.RawMessage, model, stop string, usage Usage) (*Response, error) {
	if req.Schema != nil {
		if stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if !req.Schema.Advisory {
			if err := validateResponse(req.Schema, content); err != nil {
				return nil, err
			}
		}
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so direct model IDs work.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
