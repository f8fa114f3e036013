package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"news-rag/internal/domain"
)

const (
	retrieverCacheSize = 128
	retrieverCacheTTL  = 30 * time.Minute
)

type retrieverCacheKey struct {
	topic     string
	timeRange string
}

// ArticleRetriever fetches news articles with an in-memory TTL cache and a
// hard fallback from the primary backend to the secondary one. Results are
// cached even when empty so repeated queries for a quiet topic do not hammer
// the search APIs.
type ArticleRetriever struct {
	primary  domain.NewsSearchClient
	fallback domain.NewsSearchClient
	cache    *expirable.LRU[retrieverCacheKey, []domain.Article]
}

func NewArticleRetriever(primary, fallback domain.NewsSearchClient) *ArticleRetriever {
	return &ArticleRetriever{
		primary:  primary,
		fallback: fallback,
		cache:    expirable.NewLRU[retrieverCacheKey, []domain.Article](retrieverCacheSize, nil, retrieverCacheTTL),
	}
}

func (r *ArticleRetriever) Retrieve(ctx context.Context, topic, timeRange string, maxResults int) ([]domain.Article, error) {
	key := retrieverCacheKey{topic: topic, timeRange: timeRange}
	if cached, ok := r.cache.Get(key); ok {
		slog.Info("retrieve_articles_cache_hit",
			"topic", topic,
			"time_range", timeRange,
			"results", len(cached))
		return cached, nil
	}

	backend := r.primary.Name()
	articles, err := r.primary.FetchNews(ctx, topic, timeRange, maxResults)
	if err != nil {
		slog.Warn("primary_backend_failed",
			"backend", backend,
			"topic", topic,
			"error", err)
		backend = r.fallback.Name()
		articles, err = r.fallback.FetchNews(ctx, topic, timeRange, maxResults)
		if err != nil {
			return nil, err
		}
	}

	r.cache.Add(key, articles)
	slog.Info("retrieve_articles_fetched",
		"topic", topic,
		"time_range", timeRange,
		"backend", backend,
		"results", len(articles))
	return articles, nil
}
