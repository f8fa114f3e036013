package domain

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Article is a single news article as returned by a search backend.
// Immutable once created; the ingestor consumes it but never modifies it.
type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Content     string     `json:"content"`
	Score       *float64   `json:"score,omitempty"`
}

// NewArticleID derives a stable identifier from the article URL so the
// same article fetched twice maps to the same id.
func NewArticleID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:8]
}

// SummarySentence is one cited sentence of a legacy-pipeline summary.
type SummarySentence struct {
	Text      string   `json:"text"`
	SourceIDs []string `json:"source_ids"`
}

// NewsSummary is the output of the legacy summarize-then-verify pipeline.
type NewsSummary struct {
	Topic       string            `json:"topic"`
	SummaryText string            `json:"summary_text"`
	Sentences   []SummarySentence `json:"sentences"`
	Sources     []Article         `json:"sources"`
	Meta        map[string]any    `json:"meta"`
}
