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

func TestArticleRetriever_Retrieve(t *testing.T) {
	ctx := context.Background()

	articles := []domain.Article{
		{ID: "a1", Title: "First", URL: "https://example.com/1", Content: "body"},
	}

	t.Run("uses primary backend and caches the result", func(t *testing.T) {
		primary := &mockSearchClient{name: "tavily"}
		fallback := &mockSearchClient{name: "gnews"}
		primary.On("FetchNews", ctx, "ai news", "7d", 10).Return(articles, nil).Once()

		retriever := usecase.NewArticleRetriever(primary, fallback)

		got, err := retriever.Retrieve(ctx, "ai news", "7d", 10)
		require.NoError(t, err)
		assert.Equal(t, articles, got)

		// Second call must come from the cache.
		got, err = retriever.Retrieve(ctx, "ai news", "7d", 10)
		require.NoError(t, err)
		assert.Equal(t, articles, got)

		primary.AssertExpectations(t)
		fallback.AssertNotCalled(t, "FetchNews", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falls back to secondary backend when primary fails", func(t *testing.T) {
		primary := &mockSearchClient{name: "tavily"}
		fallback := &mockSearchClient{name: "gnews"}
		primary.On("FetchNews", ctx, "ai news", "7d", 10).Return(nil, errors.New("quota exceeded")).Once()
		fallback.On("FetchNews", ctx, "ai news", "7d", 10).Return(articles, nil).Once()

		retriever := usecase.NewArticleRetriever(primary, fallback)

		got, err := retriever.Retrieve(ctx, "ai news", "7d", 10)
		require.NoError(t, err)
		assert.Equal(t, articles, got)

		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("propagates error when both backends fail", func(t *testing.T) {
		primary := &mockSearchClient{name: "tavily"}
		fallback := &mockSearchClient{name: "gnews"}
		primary.On("FetchNews", ctx, "ai news", "7d", 10).Return(nil, errors.New("down")).Once()
		fallback.On("FetchNews", ctx, "ai news", "7d", 10).Return(nil, errors.New("also down")).Once()

		retriever := usecase.NewArticleRetriever(primary, fallback)

		_, err := retriever.Retrieve(ctx, "ai news", "7d", 10)
		assert.Error(t, err)
	})

	t.Run("caches empty results", func(t *testing.T) {
		primary := &mockSearchClient{name: "tavily"}
		fallback := &mockSearchClient{name: "gnews"}
		primary.On("FetchNews", ctx, "quiet topic", "30d", 5).Return([]domain.Article{}, nil).Once()

		retriever := usecase.NewArticleRetriever(primary, fallback)

		got, err := retriever.Retrieve(ctx, "quiet topic", "30d", 5)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = retriever.Retrieve(ctx, "quiet topic", "30d", 5)
		require.NoError(t, err)
		assert.Empty(t, got)

		primary.AssertExpectations(t)
	})

	t.Run("different time ranges are cached separately", func(t *testing.T) {
		primary := &mockSearchClient{name: "tavily"}
		fallback := &mockSearchClient{name: "gnews"}
		primary.On("FetchNews", ctx, "topic", "1d", 10).Return(articles, nil).Once()
		primary.On("FetchNews", ctx, "topic", "30d", 10).Return([]domain.Article{}, nil).Once()

		retriever := usecase.NewArticleRetriever(primary, fallback)

		got, err := retriever.Retrieve(ctx, "topic", "1d", 10)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		got, err = retriever.Retrieve(ctx, "topic", "30d", 10)
		require.NoError(t, err)
		assert.Empty(t, got)

		primary.AssertExpectations(t)
	})
}
