package domain_test

import (
	"strings"
	"testing"

	"news-rag/internal/domain"

	"github.com/stretchr/testify/assert"
)

func chunkFor(articleID, chunkID string) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		ArticleChunk: domain.ArticleChunk{
			ChunkID:   chunkID,
			ArticleID: articleID,
			URL:       "https://example.com/" + articleID,
			Title:     "Title " + articleID,
			Source:    "example.com",
		},
		SimilarityScore: 0.5,
	}
}

func TestChunksToSourceReferences(t *testing.T) {
	t.Run("Deduplicates by article id", func(t *testing.T) {
		chunks := []domain.RetrievedChunk{
			chunkFor("a1", "c1"),
			chunkFor("a2", "c2"),
			chunkFor("a1", "c3"),
			chunkFor("a2", "c4"),
			chunkFor("a3", "c5"),
		}
		refs := domain.ChunksToSourceReferences(chunks)
		assert.Len(t, refs, 3)
	})

	t.Run("Preserves first-seen order", func(t *testing.T) {
		chunks := []domain.RetrievedChunk{
			chunkFor("b", "c1"),
			chunkFor("a", "c2"),
			chunkFor("b", "c3"),
		}
		refs := domain.ChunksToSourceReferences(chunks)
		assert.Equal(t, "b", refs[0].ArticleID)
		assert.Equal(t, "a", refs[1].ArticleID)
	})

	t.Run("Empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, domain.ChunksToSourceReferences(nil))
	})
}

func TestNewChunkID(t *testing.T) {
	t.Run("Carries article, conversation and index", func(t *testing.T) {
		id := domain.NewChunkID("art1", "conv1", 3)
		assert.True(t, strings.HasPrefix(id, "art1_conv1_3_"))
	})

	t.Run("Unique across calls for the same chunk", func(t *testing.T) {
		a := domain.NewChunkID("art1", "conv1", 0)
		b := domain.NewChunkID("art1", "conv1", 0)
		assert.NotEqual(t, a, b)
	})
}

func TestNewConversationID(t *testing.T) {
	id := domain.NewConversationID()
	assert.Len(t, id, 12)
	assert.NotEqual(t, id, domain.NewConversationID())
}
