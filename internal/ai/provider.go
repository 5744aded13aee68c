package ai

import (
	"context"
	"fmt"
)

type Message struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

// Provider is the synchronous chat interface used by the async worker path.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// StreamProvider yields incremental content fragments. Both channels are
// closed when the stream ends; an error, if any, is sent before close.
type StreamProvider interface {
	StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error)
}

// APIError is an explicit failure reported by the model service itself, as
// opposed to transport or decoding errors.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ai: api error (status %d): %s", e.StatusCode, e.Message)
	}
	return "ai: api error: " + e.Message
}
