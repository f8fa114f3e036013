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

// AnswerResult is the parsed output of an answer generation call. Degraded
// marks results assembled from an unparseable or failed LLM response.
type AnswerResult struct {
	Answer      string `json:"answer"`
	SourcesUsed []int  `json:"sources_used"`
	Confidence  string `json:"confidence"`
	MissingInfo string `json:"missing_info"`
	Degraded    bool   `json:"-"`
}

// ChatMessage is one turn of conversation history passed to follow-up
// answer generation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var embeddedJSONPattern = regexp.MustCompile(`\{[^{}]*\}`)

// AnswerGenerator produces grounded answers from retrieved chunks. It never
// returns an error: provider failures and unparseable responses degrade to
// a low-confidence result so the graph always reaches a terminal answer.
type AnswerGenerator struct {
	llm domain.LLMClient
}

func NewAnswerGenerator(llm domain.LLMClient) *AnswerGenerator {
	return &AnswerGenerator{llm: llm}
}

// Generate answers a question from the given chunks. For follow-ups the
// last four turns of history are included for context.
func (g *AnswerGenerator) Generate(ctx context.Context, query string, chunks []domain.RetrievedChunk, isFollowup bool, history []ChatMessage) AnswerResult {
	if len(chunks) == 0 {
		return AnswerResult{
			Answer:      "I don't have any relevant sources to answer this question. Would you like me to search for more information?",
			Confidence:  "low",
			MissingInfo: "No sources available",
			Degraded:    true,
		}
	}

	systemPrompt := answerSystemPrompt
	if isFollowup {
		systemPrompt = followupSystemPrompt
	}

	messages := []ChatMessage{{Role: "system", Content: systemPrompt}}
	if isFollowup && len(history) > 0 {
		start := len(history) - 4
		if start < 0 {
			start = 0
		}
		messages = append(messages, history[start:]...)
	}
	messages = append(messages, ChatMessage{
		Role: "user",
		Content: fmt.Sprintf("Question: %s\n\nSources:\n%s\n\nPlease answer the question using only the provided sources.",
			query, formatSourcesForPrompt(chunks)),
	})

	promptLines := make([]string, len(messages))
	for i, msg := range messages {
		promptLines[i] = strings.ToUpper(msg.Role) + ": " + msg.Content
	}
	prompt := strings.Join(promptLines, "\n\n")

	slog.Info("generating_answer",
		"query_preview", truncateRunes(query, 50),
		"chunks", len(chunks),
		"is_followup", isFollowup)

	content, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		slog.Error("answer_generation_failed", "error", err)
		return AnswerResult{
			Answer:      fmt.Sprintf("I encountered an error while generating the answer: %v", err),
			Confidence:  "low",
			MissingInfo: err.Error(),
			Degraded:    true,
		}
	}

	result := parseAnswerResponse(content)
	slog.Info("answer_generated",
		"confidence", result.Confidence,
		"sources_used", len(result.SourcesUsed))
	return result
}

// GenerateSummary produces a bullet-point summary answer for an initial
// query, structured rather than conversational.
func (g *AnswerGenerator) GenerateSummary(ctx context.Context, query string, chunks []domain.RetrievedChunk) AnswerResult {
	if len(chunks) == 0 {
		return AnswerResult{
			Answer:      "No relevant news articles were found for this topic.",
			Confidence:  "low",
			MissingInfo: "No sources available",
			Degraded:    true,
		}
	}

	prompt := strings.Join([]string{
		"SYSTEM: " + summaryAnswerSystemPrompt,
		fmt.Sprintf("USER: Topic: %s\n\nSources:\n%s\n\nCreate a bullet-point summary of the key facts about this topic.",
			query, formatSourcesForPrompt(chunks)),
	}, "\n")

	content, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		slog.Error("summary_generation_failed", "error", err)
		return AnswerResult{
			Answer:      fmt.Sprintf("Error generating summary: %v", err),
			Confidence:  "low",
			MissingInfo: err.Error(),
			Degraded:    true,
		}
	}
	return parseAnswerResponse(content)
}

// parseAnswerResponse parses the expected JSON shape, then tries to extract
// an embedded JSON object from surrounding prose, then gives up and wraps
// the raw text in a degraded result.
func parseAnswerResponse(content string) AnswerResult {
	var result AnswerResult
	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result
	}

	if match := embeddedJSONPattern.FindString(content); match != "" {
		if err := json.Unmarshal([]byte(match), &result); err == nil {
			return result
		}
	}

	return AnswerResult{
		Answer:      content,
		Confidence:  "low",
		MissingInfo: "Response parsing failed",
		Degraded:    true,
	}
}

// formatSourcesForPrompt renders chunks as numbered sources. Source numbers
// are 1-indexed and must line up with MapSourcesUsedToReferences.
func formatSourcesForPrompt(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "No sources available."
	}

	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = fmt.Sprintf("[Source %d]\nTitle: %s\nPublisher: %s\nURL: %s\nContent:\n%s",
			i+1, chunk.Title, chunk.Source, chunk.URL, chunk.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// MapSourcesUsedToReferences resolves the 1-indexed source numbers cited by
// the model back to unique source references. Out-of-range indices are
// ignored.
func MapSourcesUsedToReferences(sourcesUsed []int, chunks []domain.RetrievedChunk) []domain.SourceReference {
	seen := make(map[string]struct{})
	references := make([]domain.SourceReference, 0, len(sourcesUsed))

	for _, idx := range sourcesUsed {
		pos := idx - 1
		if pos < 0 || pos >= len(chunks) {
			continue
		}
		chunk := chunks[pos]
		if _, ok := seen[chunk.ArticleID]; ok {
			continue
		}
		seen[chunk.ArticleID] = struct{}{}
		references = append(references, domain.SourceReferenceFromChunk(chunk))
	}
	return references
}
