package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"

	"news-rag/internal/domain"
)

// GeminiEmbedder implements domain.VectorEncoder via the Gemini
// embedContent API. Document and query texts share the same model.
type GeminiEmbedder struct {
	src   *clientSource
	model string
}

func NewGeminiEmbedder(apiKey, model string) *GeminiEmbedder {
	return &GeminiEmbedder{
		src:   newClientSource(apiKey),
		model: model,
	}
}

var _ domain.VectorEncoder = (*GeminiEmbedder)(nil)

func (e *GeminiEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	client, err := e.src.get(ctx)
	if err != nil {
		return nil, err
	}

	em := client.EmbeddingModel(e.model)
	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	start := time.Now()
	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, &domain.ProviderCallError{Op: "embed_batch", Err: err}
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, &domain.ProviderCallError{
			Op:  "embed_batch",
			Err: fmt.Errorf("requested %d embeddings, got %d", len(texts), len(resp.Embeddings)),
		}
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}

	slog.Debug("embeddings_generated",
		"model", e.model,
		"count", len(vectors),
		"duration_ms", time.Since(start).Milliseconds())

	return vectors, nil
}

func (e *GeminiEmbedder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	client, err := e.src.get(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.EmbeddingModel(e.model).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, &domain.ProviderCallError{Op: "embed_query", Err: err}
	}
	return resp.Embedding.Values, nil
}

func (e *GeminiEmbedder) Version() string {
	return e.model
}
