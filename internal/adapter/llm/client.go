// Package llm provides Gemini-backed implementations of the language
// model and embedding interfaces used by the RAG pipeline.
package llm

import (
	"context"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"news-rag/internal/domain"
)

// clientSource lazily constructs a single shared genai client.
// Construction is deferred so the server can start without an API key
// and surface a configuration error on first use instead.
type clientSource struct {
	apiKey string

	mu     sync.Mutex
	client *genai.Client
}

func newClientSource(apiKey string) *clientSource {
	return &clientSource{apiKey: apiKey}
}

func (s *clientSource) get(ctx context.Context) (*genai.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	if s.apiKey == "" {
		return nil, &domain.ConfigurationError{Name: "GOOGLE_API_KEY"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, &domain.ProviderCallError{Op: "client_init", Err: err}
	}
	s.client = client
	return s.client, nil
}
