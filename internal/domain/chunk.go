package domain

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ArticleChunk is a bounded piece of an article's cleaned text, the unit of
// embedding and retrieval. Chunks are created by the ingestor, persisted by
// the chunk store, and never mutated afterwards (only deleted).
type ArticleChunk struct {
	ChunkID        string
	ArticleID      string
	ConversationID string
	Content        string
	ChunkIndex     int
	URL            string
	Title          string
	Source         string
	PublishedAt    *time.Time
}

// RetrievedChunk is an ArticleChunk plus its similarity to a query.
// Ephemeral: produced by chunk store reads, never persisted.
type RetrievedChunk struct {
	ArticleChunk
	SimilarityScore float64
}

// SourceReference is a deduplicated citation surfaced to the user.
type SourceReference struct {
	ArticleID   string     `json:"article_id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// SourceReferenceFromChunk projects a retrieved chunk onto its citation.
func SourceReferenceFromChunk(chunk RetrievedChunk) SourceReference {
	return SourceReference{
		ArticleID:   chunk.ArticleID,
		URL:         chunk.URL,
		Title:       chunk.Title,
		Source:      chunk.Source,
		PublishedAt: chunk.PublishedAt,
	}
}

// ChunksToSourceReferences converts chunks to unique source references,
// deduplicating by article id and preserving first-seen order.
func ChunksToSourceReferences(chunks []RetrievedChunk) []SourceReference {
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]SourceReference, 0, len(chunks))
	for _, chunk := range chunks {
		if _, ok := seen[chunk.ArticleID]; ok {
			continue
		}
		seen[chunk.ArticleID] = struct{}{}
		sources = append(sources, SourceReferenceFromChunk(chunk))
	}
	return sources
}

// NewConversationID generates a short conversation identifier.
func NewConversationID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:6])
}

// NewChunkID derives a globally unique chunk id. The random suffix keeps
// re-ingestion of the same article from colliding on the primary key.
func NewChunkID(articleID, conversationID string, index int) string {
	u := uuid.New()
	return fmt.Sprintf("%s_%s_%d_%s", articleID, conversationID, index, hex.EncodeToString(u[:3]))
}
