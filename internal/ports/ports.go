package ports

import "context"

// Message is one chat turn sent to the generation capability.
type Message struct {
	Role    string
	Content string
}

// Generator is the opaque request/response contract with the language model.
// Implementations own transport, auth and provider quirks; the pipeline owns
// timeout and retry policy.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)
