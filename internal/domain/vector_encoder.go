package domain

import "context"

// VectorEncoder defines the interface for generating embeddings.
// Encode is used for document batches, EncodeQuery for a single search
// query (some providers distinguish the two task types).
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	EncodeQuery(ctx context.Context, text string) ([]float32, error)
	Version() string
}
