package core

import "context"

// Message represents a single chat turn. Role is one of system, user,
// assistant.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Options controls model behavior; zero fields fall back to provider defaults.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int
	SystemPrompt        string
}

// Client is a provider-agnostic interface for LLM completions.
type Client interface {
	// Complete produces one text completion from an ordered list of
	// role-tagged messages.
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Merge overlays non-zero fields of opts onto defaults.
func (defaults Options) Merge(opts Options) Options {
	out := defaults
	if opts.Model != "" {
		out.Model = opts.Model
	}
	if opts.Temperature != 0 {
		out.Temperature = opts.Temperature
	}
	if opts.MaxCompletionTokens != 0 {
		out.MaxCompletionTokens = opts.MaxCompletionTokens
	}
	if opts.SystemPrompt != "" {
		out.SystemPrompt = opts.SystemPrompt
	}
	return out
}
