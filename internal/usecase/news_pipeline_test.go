package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"news-rag/internal/domain"
	"news-rag/internal/usecase"
)

func newPipeline(primary, fallback *mockSearchClient, llm *mockLLM) *usecase.NewsPipeline {
	retriever := usecase.NewArticleRetriever(primary, fallback)
	return usecase.NewNewsPipeline(retriever, usecase.NewSummarizer(llm), usecase.NewVerifier(llm))
}

func pipelineArticles(n int) []domain.Article {
	articles := make([]domain.Article, n)
	for i := range articles {
		articles[i] = domain.Article{
			ID:      domain.NewArticleID(string(rune('a' + i))),
			Title:   "Article",
			Content: "Some content about the latest developments.",
		}
	}
	return articles
}

const summarizerResponse = `{"summary_text": "Key facts.[1]", "sentences": [{"text": "Key facts.", "source_ids": ["1"]}]}`

func TestNewsPipeline_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("summarizes and verifies on the happy path", func(t *testing.T) {
		primary := &mockSearchClient{name: "tavily"}
		llm := &mockLLM{}
		primary.On("FetchNews", ctx, "latest tech", "7d", 10).Return(pipelineArticles(3), nil).Once()
		llm.On("Complete", ctx, mock.AnythingOfType("string")).Return(summarizerResponse, nil).Once()
		llm.On("Complete", ctx, mock.AnythingOfType("string")).Return(`{"overall_verdict": "accept", "issues": []}`, nil).Once()

		pipeline := newPipeline(primary, &mockSearchClient{name: "gnews"}, llm)

		state := pipeline.Run(ctx, "latest tech", usecase.PipelineOptions{Verification: true})

		assert.Equal(t, domain.PipelineDone, state.Status)
		assert.Equal(t, domain.QueryNews, state.QueryType)
		require.NotNil(t, state.Summary)
		assert.Equal(t, "Key facts.[1]", state.Summary.SummaryText)
		assert.Equal(t, "accept", state.VerificationResult["overall_verdict"])
		assert.Equal(t, 1, state.SearchAttempts)
		llm.AssertExpectations(t)
	})

	t.Run("skips verification when disabled", func(t *testing.T) {
		primary := &mockSearchClient{name: "tavily"}
		llm := &mockLLM{}
		primary.On("FetchNews", ctx, "latest tech", "7d", 10).Return(pipelineArticles(3), nil).Once()
		llm.On("Complete", ctx, mock.AnythingOfType("string")).Return(summarizerResponse, nil).Once()

		pipeline := newPipeline(primary, &mockSearchClient{name: "gnews"}, llm)

		state := pipeline.Run(ctx, "latest tech", usecase.PipelineOptions{})

		assert.Equal(t, domain.PipelineDone, state.Status)
		assert.Nil(t, state.VerificationResult)
		llm.AssertNumberOfCalls(t, "Complete", 1)
	})

	t.Run("fails after exhausting search attempts with no articles", func(t *testing.T) {
		primary := &mockSearchClient{name: "tavily"}
		fallback := &mockSearchClient{name: "gnews"}
		// Both backends error on every attempt; the retriever cache never
		// stores a result so each retry is a real fetch.
		primary.On("FetchNews", ctx, "nothing here", "7d", 10).Return(nil, errors.New("down")).Times(3)
		fallback.On("FetchNews", ctx, "nothing here", "7d", 10).Return(nil, errors.New("down")).Times(3)

		pipeline := newPipeline(primary, fallback, &mockLLM{})

		state := pipeline.Run(ctx, "nothing here", usecase.PipelineOptions{MaxSearchAttempts: 3})

		assert.Equal(t, domain.PipelineFailed, state.Status)
		assert.Equal(t, "no_articles", state.Err)
		assert.Equal(t, 3, state.SearchAttempts)
	})

	t.Run("summarizer failure fails the run", func(t *testing.T) {
		primary := &mockSearchClient{name: "tavily"}
		llm := &mockLLM{}
		primary.On("FetchNews", ctx, "latest tech", "7d", 10).Return(pipelineArticles(3), nil).Once()
		llm.On("Complete", ctx, mock.AnythingOfType("string")).Return("not json at all", nil).Once()

		pipeline := newPipeline(primary, &mockSearchClient{name: "gnews"}, llm)

		state := pipeline.Run(ctx, "latest tech", usecase.PipelineOptions{Verification: true})

		assert.Equal(t, domain.PipelineFailed, state.Status)
		assert.Contains(t, state.Err, "non-JSON")
	})

	t.Run("critic failure still returns the summary", func(t *testing.T) {
		primary := &mockSearchClient{name: "tavily"}
		llm := &mockLLM{}
		primary.On("FetchNews", ctx, "latest tech", "7d", 10).Return(pipelineArticles(3), nil).Once()
		llm.On("Complete", ctx, mock.AnythingOfType("string")).Return(summarizerResponse, nil).Once()
		llm.On("Complete", ctx, mock.AnythingOfType("string")).Return("", errors.New("critic down")).Once()

		pipeline := newPipeline(primary, &mockSearchClient{name: "gnews"}, llm)

		state := pipeline.Run(ctx, "latest tech", usecase.PipelineOptions{Verification: true})

		assert.Equal(t, domain.PipelineDone, state.Status)
		require.NotNil(t, state.Summary)
		assert.NotEmpty(t, state.Err)
	})
}

func TestSummarizer_NoArticles(t *testing.T) {
	llm := &mockLLM{}
	summarizer := usecase.NewSummarizer(llm)

	summary, err := summarizer.Summarize(context.Background(), "quiet topic", nil)
	require.NoError(t, err)
	assert.Equal(t, "No relevant articles were retrieved for this topic.", summary.SummaryText)
	assert.Equal(t, "no_articles", summary.Meta["warning"])
	llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestVerifier_RequiresVerdict(t *testing.T) {
	ctx := context.Background()
	llm := &mockLLM{}
	llm.On("Complete", ctx, mock.AnythingOfType("string")).Return(`{"issues": []}`, nil).Once()

	verifier := usecase.NewVerifier(llm)
	summary := &domain.NewsSummary{Topic: "t", SummaryText: "s"}

	_, err := verifier.Verify(ctx, summary, nil)
	assert.ErrorContains(t, err, "overall_verdict")
}
