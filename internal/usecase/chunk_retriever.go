package usecase

import (
	"context"
	"log/slog"
	"sort"

	"news-rag/internal/domain"
)

// ChunkRetriever serves similarity queries against the chunk store, with an
// optional context expansion pass that pulls in neighbouring chunks from the
// same article.
type ChunkRetriever struct {
	store domain.ChunkStore
}

func NewChunkRetriever(store domain.ChunkStore) *ChunkRetriever {
	return &ChunkRetriever{store: store}
}

func (r *ChunkRetriever) Relevant(ctx context.Context, query, conversationID string, maxChunks int, threshold float64) ([]domain.RetrievedChunk, error) {
	chunks, err := r.store.Query(ctx, query, conversationID, maxChunks, threshold)
	if err != nil {
		return nil, err
	}

	slog.Info("chunks_retrieved",
		"conversation_id", conversationID,
		"results", len(chunks),
		"threshold", threshold)
	return chunks, nil
}

// WithContextExpansion retrieves the most relevant chunks and, for each hit,
// also includes the chunks immediately before and after it in the same
// article. Neighbours inherit 0.9 of the primary chunk's similarity so they
// sort just below it.
func (r *ChunkRetriever) WithContextExpansion(ctx context.Context, query, conversationID string, maxChunks int, threshold float64) ([]domain.RetrievedChunk, error) {
	primary, err := r.Relevant(ctx, query, conversationID, maxChunks, threshold)
	if err != nil {
		return nil, err
	}
	if len(primary) == 0 {
		return primary, nil
	}

	all, err := r.store.AllByConversation(ctx, conversationID)
	if err != nil {
		return primary, nil
	}

	byArticle := make(map[string]map[int]domain.RetrievedChunk)
	for _, chunk := range all {
		if byArticle[chunk.ArticleID] == nil {
			byArticle[chunk.ArticleID] = make(map[int]domain.RetrievedChunk)
		}
		byArticle[chunk.ArticleID][chunk.ChunkIndex] = chunk
	}

	seen := make(map[string]struct{})
	expanded := make([]domain.RetrievedChunk, 0, len(primary)*3)

	appendChunk := func(chunk domain.RetrievedChunk) {
		if _, ok := seen[chunk.ChunkID]; ok {
			return
		}
		seen[chunk.ChunkID] = struct{}{}
		expanded = append(expanded, chunk)
	}

	for _, chunk := range primary {
		neighbours := byArticle[chunk.ArticleID]

		if prev, ok := neighbours[chunk.ChunkIndex-1]; ok {
			prev.SimilarityScore = chunk.SimilarityScore * 0.9
			appendChunk(prev)
		}
		appendChunk(chunk)
		if next, ok := neighbours[chunk.ChunkIndex+1]; ok {
			next.SimilarityScore = chunk.SimilarityScore * 0.9
			appendChunk(next)
		}
	}

	sort.SliceStable(expanded, func(i, j int) bool {
		return expanded[i].SimilarityScore > expanded[j].SimilarityScore
	})

	slog.Info("context_expanded",
		"primary_chunks", len(primary),
		"expanded_chunks", len(expanded))
	return expanded, nil
}
