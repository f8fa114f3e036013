package domain

import "context"

// StoreStats describes the chunk store for the stats endpoint.
type StoreStats struct {
	Name     string `json:"name"`
	Count    int64  `json:"count"`
	Location string `json:"persist_dir"`
}

// ChunkStore wraps the vector index. It owns embedding generation and
// similarity search; all reads and writes are partitioned by conversation id.
type ChunkStore interface {
	// Upsert embeds the chunk contents as one batch and stores them keyed
	// by chunk id. Embedding failures surface as ProviderCallError, write
	// failures as StorageError; neither is retried here.
	Upsert(ctx context.Context, chunks []ArticleChunk) (int, error)

	// Query embeds the query text and returns the nearest chunks,
	// restricted to conversationID when non-empty, with similarity scores
	// normalized to [0,1], filtered by threshold and sorted descending.
	Query(ctx context.Context, query, conversationID string, limit int, threshold float64) ([]RetrievedChunk, error)

	// AllByConversation returns every chunk in the partition. Similarity
	// is fixed at 1.0 since there is no query to score against.
	AllByConversation(ctx context.Context, conversationID string) ([]RetrievedChunk, error)

	// DeleteByConversation removes the partition and reports how many
	// chunks were deleted. Failures degrade to zero deleted.
	DeleteByConversation(ctx context.Context, conversationID string) (int, error)

	Stats(ctx context.Context) (StoreStats, error)
}
