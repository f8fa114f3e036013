package domain

import "context"

// NewsSearchClient defines the interface for fetching recent news articles
// from an external search backend.
type NewsSearchClient interface {
	FetchNews(ctx context.Context, topic, timeRange string, maxResults int) ([]Article, error)
	Name() string
}
