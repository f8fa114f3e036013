package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"news-rag/internal/domain"
)

// GeminiGenerator implements domain.LLMClient on top of the Gemini
// generateContent API.
type GeminiGenerator struct {
	src   *clientSource
	model string
}

func NewGeminiGenerator(apiKey, model string) *GeminiGenerator {
	return &GeminiGenerator{
		src:   newClientSource(apiKey),
		model: model,
	}
}

var _ domain.LLMClient = (*GeminiGenerator)(nil)

func (g *GeminiGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	client, err := g.src.get(ctx)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := client.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &domain.ProviderCallError{Op: "generate", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &domain.ProviderCallError{Op: "generate", Err: fmt.Errorf("model %s returned no candidates", g.model)}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	slog.Debug("llm_generate_completed",
		"model", g.model,
		"prompt_chars", len(prompt),
		"response_chars", sb.Len(),
		"duration_ms", time.Since(start).Milliseconds())

	return sb.String(), nil
}

func (g *GeminiGenerator) Version() string {
	return g.model
}
