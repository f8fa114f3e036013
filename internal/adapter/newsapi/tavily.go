// Package newsapi contains HTTP clients for the external news search
// providers backing article retrieval.
package newsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"news-rag/internal/domain"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// TavilyClient fetches news articles through the Tavily search API.
// Requests are rate limited client side so burst traffic from concurrent
// conversations stays inside the plan quota.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewTavilyClient(apiKey string) *TavilyClient {
	return NewTavilyClientWithBaseURL(apiKey, defaultTavilyBaseURL)
}

func NewTavilyClientWithBaseURL(apiKey, baseURL string) *TavilyClient {
	return &TavilyClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

var _ domain.NewsSearchClient = (*TavilyClient)(nil)

func (c *TavilyClient) Name() string {
	return "tavily"
}

type tavilySearchRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	Topic             string `json:"topic"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	Days              int    `json:"days"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilySearchResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		RawContent    string  `json:"raw_content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

func (c *TavilyClient) FetchNews(ctx context.Context, topic, timeRange string, maxResults int) ([]domain.Article, error) {
	if c.apiKey == "" {
		return nil, &domain.ConfigurationError{Name: "TAVILY_API_KEY"}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.RetrievalError{Backend: c.Name(), Err: err}
	}

	body, err := json.Marshal(tavilySearchRequest{
		APIKey:            c.apiKey,
		Query:             topic,
		Topic:             "news",
		SearchDepth:       "basic",
		MaxResults:        maxResults,
		Days:              timeRangeDays(timeRange),
		IncludeRawContent: true,
	})
	if err != nil {
		return nil, &domain.RetrievalError{Backend: c.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, &domain.RetrievalError{Backend: c.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.RetrievalError{Backend: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.RetrievalError{
			Backend: c.Name(),
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var payload tavilySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &domain.RetrievalError{Backend: c.Name(), Err: err}
	}

	articles := make([]domain.Article, 0, len(payload.Results))
	for _, r := range payload.Results {
		content := r.RawContent
		if content == "" {
			content = r.Content
		}
		if content == "" {
			continue
		}

		score := r.Score
		article := domain.Article{
			ID:      domain.NewArticleID(r.URL),
			Title:   r.Title,
			URL:     r.URL,
			Source:  hostOf(r.URL),
			Content: content,
			Score:   &score,
		}
		if t, err := time.Parse(time.RFC3339, r.PublishedDate); err == nil {
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

// timeRangeDays maps a time range token ("1d", "7d", "30d") onto the
// day window Tavily expects. Unknown tokens fall back to a week.
func timeRangeDays(timeRange string) int {
	switch timeRange {
	case "1d":
		return 1
	case "7d":
		return 7
	case "30d":
		return 30
	default:
		return 7
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
