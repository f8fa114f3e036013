package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"news-rag/internal/domain"
)

type summarizerArticle struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type summarizerInput struct {
	Topic    string              `json:"topic"`
	Articles []summarizerArticle `json:"articles"`
}

// Summarizer produces a cited NewsSummary from raw articles. Unlike the
// answer generator, it parses strictly: a response missing the required
// keys is an error, not a degraded result.
type Summarizer struct {
	llm domain.LLMClient
}

func NewSummarizer(llm domain.LLMClient) *Summarizer {
	return &Summarizer{llm: llm}
}

func buildSummarizerInput(topic string, articles []domain.Article) summarizerInput {
	input := summarizerInput{Topic: topic, Articles: make([]summarizerArticle, len(articles))}
	for i, a := range articles {
		input.Articles[i] = summarizerArticle{
			ID:      a.ID,
			Title:   a.Title,
			Source:  a.Source,
			URL:     a.URL,
			Content: a.Content,
		}
	}
	return input
}

func (s *Summarizer) Summarize(ctx context.Context, topic string, articles []domain.Article) (*domain.NewsSummary, error) {
	if len(articles) == 0 {
		slog.Info("summarize_no_articles", "topic", topic)
		return &domain.NewsSummary{
			Topic:       topic,
			SummaryText: "No relevant articles were retrieved for this topic.",
			Sentences:   []domain.SummarySentence{},
			Sources:     []domain.Article{},
			Meta:        map[string]any{"warning": "no_articles"},
		}, nil
	}

	payload, err := json.Marshal(buildSummarizerInput(topic, articles))
	if err != nil {
		return nil, err
	}

	slog.Info("summarize_articles_call",
		"topic", topic,
		"articles", len(articles),
		"model", s.llm.Version())

	content, err := s.llm.Complete(ctx, "SYSTEM: "+summarizerSystemPrompt+"\n\nUSER: "+string(payload))
	if err != nil {
		return nil, err
	}

	var data struct {
		SummaryText *string                  `json:"summary_text"`
		Sentences   []domain.SummarySentence `json:"sentences"`
	}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		slog.Warn("summarize_articles_non_json", "error", err)
		return nil, errors.New("summarizer returned non-JSON content")
	}
	if data.SummaryText == nil || data.Sentences == nil {
		slog.Warn("summarize_articles_missing_keys")
		return nil, errors.New("summarizer response missing required keys")
	}

	summary := &domain.NewsSummary{
		Topic:       topic,
		SummaryText: *data.SummaryText,
		Sentences:   data.Sentences,
		Sources:     articles,
		Meta:        map[string]any{"model": s.llm.Version()},
	}
	slog.Info("summarize_articles_success",
		"topic", topic,
		"sentences", len(summary.Sentences))
	return summary, nil
}
