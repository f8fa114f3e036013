package usecase

import (
	"context"
	"log/slog"

	"news-rag/internal/domain"
)

// ArticleIngestor turns raw articles into cleaned, chunked, embedded rows
// in the chunk store, all tagged with a conversation id.
type ArticleIngestor struct {
	store    domain.ChunkStore
	splitter domain.Splitter
}

func NewArticleIngestor(store domain.ChunkStore, splitter domain.Splitter) *ArticleIngestor {
	return &ArticleIngestor{store: store, splitter: splitter}
}

// ChunkArticle cleans and splits one article. Articles whose content is
// empty after cleaning produce no chunks.
func (i *ArticleIngestor) ChunkArticle(article domain.Article, conversationID string) []domain.ArticleChunk {
	cleaned := domain.CleanText(article.Content)
	if cleaned == "" {
		slog.Warn("empty_article_content",
			"article_id", article.ID,
			"title", article.Title)
		return nil
	}

	pieces := i.splitter.Split(cleaned)
	chunks := make([]domain.ArticleChunk, 0, len(pieces))
	for idx, text := range pieces {
		chunks = append(chunks, domain.ArticleChunk{
			ChunkID:        domain.NewChunkID(article.ID, conversationID, idx),
			ArticleID:      article.ID,
			ConversationID: conversationID,
			Content:        text,
			ChunkIndex:     idx,
			URL:            article.URL,
			Title:          article.Title,
			Source:         article.Source,
			PublishedAt:    article.PublishedAt,
		})
	}

	slog.Info("article_chunked",
		"article_id", article.ID,
		"chunks", len(chunks))
	return chunks
}

// Ingest chunks and stores all articles as a single batch. It returns the
// number of articles processed and chunks stored. A storage or embedding
// failure fails the whole batch.
func (i *ArticleIngestor) Ingest(ctx context.Context, articles []domain.Article, conversationID string) (int, int, error) {
	if len(articles) == 0 {
		return 0, 0, nil
	}

	var allChunks []domain.ArticleChunk
	for _, article := range articles {
		allChunks = append(allChunks, i.ChunkArticle(article, conversationID)...)
	}

	if len(allChunks) == 0 {
		slog.Warn("no_chunks_generated",
			"articles", len(articles),
			"conversation_id", conversationID)
		return len(articles), 0, nil
	}

	stored, err := i.store.Upsert(ctx, allChunks)
	if err != nil {
		slog.Error("ingest_failed",
			"articles", len(articles),
			"chunks", len(allChunks),
			"error", err)
		return len(articles), 0, &domain.IngestionError{Err: err}
	}

	slog.Info("articles_ingested",
		"articles", len(articles),
		"chunks", stored,
		"conversation_id", conversationID)
	return len(articles), stored, nil
}
