package domain

import "context"

// LLMClient defines the capability to send a prompt to an LLM and receive
// the raw textual response.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Version() string
}
