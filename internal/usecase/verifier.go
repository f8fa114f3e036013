package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"news-rag/internal/domain"
)

type verifierInput struct {
	SummaryText string                   `json:"summary_text"`
	Sentences   []domain.SummarySentence `json:"sentences"`
	Articles    []summarizerArticle      `json:"articles"`
}

// Verifier runs the optional critic pass over a summary and returns the
// parsed verdict. The verdict shape is defined by criticSystemPrompt; only
// overall_verdict is required.
type Verifier struct {
	llm domain.LLMClient
}

func NewVerifier(llm domain.LLMClient) *Verifier {
	return &Verifier{llm: llm}
}

func (v *Verifier) Verify(ctx context.Context, summary *domain.NewsSummary, articles []domain.Article) (map[string]any, error) {
	input := verifierInput{
		SummaryText: summary.SummaryText,
		Sentences:   summary.Sentences,
		Articles:    buildSummarizerInput(summary.Topic, articles).Articles,
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	slog.Info("verify_summary_call",
		"topic", summary.Topic,
		"articles", len(articles),
		"model", v.llm.Version())

	content, err := v.llm.Complete(ctx, "SYSTEM: "+criticSystemPrompt+"\n\nUSER: "+string(payload))
	if err != nil {
		return nil, err
	}

	var verdict map[string]any
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		slog.Warn("verify_summary_non_json", "error", err)
		return nil, errors.New("critic returned non-JSON content")
	}
	if _, ok := verdict["overall_verdict"]; !ok {
		slog.Warn("verify_summary_missing_keys")
		return nil, errors.New("critic response missing overall_verdict")
	}

	slog.Info("verify_summary_success", "topic", summary.Topic)
	return verdict, nil
}
