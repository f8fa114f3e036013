package newsapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"news-rag/internal/domain"
)

const defaultGNewsBaseURL = "https://gnews.io/api/v4"

// GNewsClient is the fallback news backend. It degrades to an empty
// result set instead of failing so retrieval can proceed on whatever
// the primary backend returned.
type GNewsClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGNewsClient(apiKey string) *GNewsClient {
	return NewGNewsClientWithBaseURL(apiKey, defaultGNewsBaseURL)
}

func NewGNewsClientWithBaseURL(apiKey, baseURL string) *GNewsClient {
	return &GNewsClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ domain.NewsSearchClient = (*GNewsClient)(nil)

func (c *GNewsClient) Name() string {
	return "gnews"
}

type gnewsSearchResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (c *GNewsClient) FetchNews(ctx context.Context, topic, timeRange string, maxResults int) ([]domain.Article, error) {
	if c.apiKey == "" {
		slog.Warn("gnews_key_missing", "topic", topic)
		return []domain.Article{}, nil
	}

	params := url.Values{}
	params.Set("q", topic)
	params.Set("lang", "en")
	params.Set("max", strconv.Itoa(maxResults))
	params.Set("from", fromTimestamp(timeRange))
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return []domain.Article{}, nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("gnews_request_failed", "topic", topic, "error", err)
		return []domain.Article{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("gnews_unexpected_status", "topic", topic, "status", resp.StatusCode)
		return []domain.Article{}, nil
	}

	var payload gnewsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Warn("gnews_decode_failed", "topic", topic, "error", err)
		return []domain.Article{}, nil
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		content := a.Content
		if content == "" {
			content = a.Description
		}
		if content == "" {
			continue
		}

		article := domain.Article{
			ID:      domain.NewArticleID(a.URL),
			Title:   a.Title,
			URL:     a.URL,
			Source:  a.Source.Name,
			Content: content,
		}
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			article.PublishedAt = &t
		}
		articles = append(articles, article)
	}

	slog.Info("news_fetched",
		"backend", c.Name(),
		"topic", topic,
		"time_range", timeRange,
		"count", len(articles))

	return articles, nil
}

func fromTimestamp(timeRange string) string {
	from := time.Now().AddDate(0, 0, -timeRangeDays(timeRange))
	return from.UTC().Format(time.RFC3339)
}
