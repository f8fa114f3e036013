package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"news-rag/internal/domain"
)

// Heuristic thresholds for deciding whether retrieved chunks can answer a
// question without a web search.
const (
	minChunksThreshold        = 2
	minAvgSimilarityThreshold = 0.35
	minTopSimilarityThreshold = 0.45
	minContentLength          = 200
)

var (
	quotedPhrasePattern = regexp.MustCompile(`"([^"]+)"`)
	nonWordPattern      = regexp.MustCompile(`[^\w]`)

	entityStopwords = map[string]struct{}{
		"The": {}, "What": {}, "How": {}, "Why": {}, "When": {}, "Where": {},
	}

	temporalMarkers = []string{
		"today", "yesterday", "this week", "this month",
		"latest", "recent", "just", "breaking", "now",
		"current", "new", "update",
	}
)

// SufficiencyChecker decides whether retrieved chunks are enough to answer
// a question. The default path is a fast heuristic; the LLM path is more
// accurate but falls back to the heuristic on any provider or parse failure.
type SufficiencyChecker struct {
	llm    domain.LLMClient
	useLLM bool
}

func NewSufficiencyChecker(llm domain.LLMClient, useLLM bool) *SufficiencyChecker {
	return &SufficiencyChecker{llm: llm, useLLM: useLLM}
}

func (c *SufficiencyChecker) Check(ctx context.Context, query string, chunks []domain.RetrievedChunk) (bool, string) {
	if c.useLLM {
		return c.checkLLM(ctx, query, chunks)
	}
	return c.CheckHeuristic(query, chunks)
}

// CheckHeuristic applies the non-LLM gates in order: chunk count, top and
// average similarity, total content length, entity coverage, and temporal
// relevance. The first failing gate determines the reason.
func (c *SufficiencyChecker) CheckHeuristic(query string, chunks []domain.RetrievedChunk) (bool, string) {
	if len(chunks) < minChunksThreshold {
		return false, fmt.Sprintf("Only %d chunks retrieved (need at least %d)", len(chunks), minChunksThreshold)
	}

	var sum, top float64
	for _, chunk := range chunks {
		sum += chunk.SimilarityScore
		if chunk.SimilarityScore > top {
			top = chunk.SimilarityScore
		}
	}
	avg := sum / float64(len(chunks))

	if top < minTopSimilarityThreshold {
		return false, fmt.Sprintf("Top similarity %.2f below threshold %.2f", top, minTopSimilarityThreshold)
	}
	if avg < minAvgSimilarityThreshold {
		return false, fmt.Sprintf("Average similarity %.2f below threshold %.2f", avg, minAvgSimilarityThreshold)
	}

	totalContent := 0
	for _, chunk := range chunks {
		totalContent += len(chunk.Content)
	}
	if totalContent < minContentLength {
		return false, fmt.Sprintf("Total content length %d below threshold %d", totalContent, minContentLength)
	}

	if missing := missingEntities(query, chunks); len(missing) > 0 {
		limit := len(missing)
		if limit > 3 {
			limit = 3
		}
		return false, "Missing key entities: " + strings.Join(missing[:limit], ", ")
	}

	if !temporallyRelevant(query, chunks) {
		return false, "Query requires recent information but chunks may be outdated"
	}

	return true, "Sufficient chunks with good similarity and coverage"
}

func (c *SufficiencyChecker) checkLLM(ctx context.Context, query string, chunks []domain.RetrievedChunk) (bool, string) {
	if len(chunks) == 0 {
		return false, "No chunks retrieved"
	}

	contextParts := make([]string, 0, 5)
	for i, chunk := range chunks {
		if i == 5 {
			break
		}
		contextParts = append(contextParts, fmt.Sprintf("[%d] %s", i+1, truncateRunes(chunk.Content, 500)))
	}

	userPrompt := fmt.Sprintf("Question: %s\n\nContext:\n%s\n\nCan this context sufficiently answer the question?",
		query, strings.Join(contextParts, "\n\n"))
	prompt := "SYSTEM: " + sufficiencySystemPrompt + "\nUSER: " + userPrompt

	content, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		slog.Error("llm_sufficiency_check_failed", "error", err)
		return c.CheckHeuristic(query, chunks)
	}

	var verdict struct {
		Sufficient bool   `json:"sufficient"`
		Reason     string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		slog.Warn("llm_sufficiency_parse_failed", "content", truncateRunes(content, 100))
		return c.CheckHeuristic(query, chunks)
	}
	if verdict.Reason == "" {
		verdict.Reason = "No reason provided"
	}
	return verdict.Sufficient, verdict.Reason
}

// extractKeyEntities pulls quoted phrases and capitalized words out of the
// query. The first word is skipped since sentence case says nothing about
// whether it is a proper noun.
func extractKeyEntities(query string) []string {
	var entities []string

	for _, match := range quotedPhrasePattern.FindAllStringSubmatch(query, -1) {
		entities = append(entities, match[1])
	}

	words := strings.Fields(query)
	for i, word := range words {
		if i == 0 || len(word) <= 2 {
			continue
		}
		first := rune(word[0])
		if first < 'A' || first > 'Z' {
			continue
		}
		clean := nonWordPattern.ReplaceAllString(word, "")
		if clean == "" {
			continue
		}
		if _, stop := entityStopwords[clean]; stop {
			continue
		}
		entities = append(entities, clean)
	}

	return entities
}

func missingEntities(query string, chunks []domain.RetrievedChunk) []string {
	entities := extractKeyEntities(query)
	if len(entities) == 0 {
		return nil
	}

	var combined strings.Builder
	for _, chunk := range chunks {
		combined.WriteString(strings.ToLower(chunk.Content))
		combined.WriteString(" ")
	}
	content := combined.String()

	var missing []string
	for _, entity := range entities {
		if !strings.Contains(content, strings.ToLower(entity)) {
			missing = append(missing, entity)
		}
	}
	return missing
}

// temporallyRelevant reports false when the query asks for recent events
// but none of the chunks carry a publication date.
func temporallyRelevant(query string, chunks []domain.RetrievedChunk) bool {
	lowered := strings.ToLower(query)
	hasMarker := false
	for _, marker := range temporalMarkers {
		if strings.Contains(lowered, marker) {
			hasMarker = true
			break
		}
	}
	if !hasMarker {
		return true
	}

	for _, chunk := range chunks {
		if chunk.PublishedAt != nil {
			return true
		}
	}
	return false
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
