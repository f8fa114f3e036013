package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"news-rag/internal/domain"
	"news-rag/internal/usecase"
)

type graphFixture struct {
	llm      *mockLLM
	primary  *mockSearchClient
	fallback *mockSearchClient
	store    *mockChunkStore
	graph    *usecase.Graph
}

func newGraphFixture() *graphFixture {
	f := &graphFixture{
		llm:      &mockLLM{},
		primary:  &mockSearchClient{name: "tavily"},
		fallback: &mockSearchClient{name: "gnews"},
		store:    &mockChunkStore{},
	}

	retriever := usecase.NewArticleRetriever(f.primary, f.fallback)
	ingestor := usecase.NewArticleIngestor(f.store, domain.NewSplitter(domain.DefaultChunkSize, domain.DefaultChunkOverlap))
	chunks := usecase.NewChunkRetriever(f.store)
	sufficiency := usecase.NewSufficiencyChecker(f.llm, false)
	answers := usecase.NewAnswerGenerator(f.llm)

	f.graph = usecase.NewGraph(retriever, ingestor, chunks, sufficiency, answers, f.store, 0.3)
	return f
}

func graphChunk(articleID string, index int, content string, score float64) domain.RetrievedChunk {
	now := time.Now()
	return domain.RetrievedChunk{
		ArticleChunk: domain.ArticleChunk{
			ChunkID:        domain.NewChunkID(articleID, "conv1", index),
			ArticleID:      articleID,
			ConversationID: "conv1",
			ChunkIndex:     index,
			Title:          "Title " + articleID,
			URL:            "https://example.com/" + articleID,
			Source:         "example.com",
			Content:        content,
			PublishedAt:    &now,
		},
		SimilarityScore: score,
	}
}

func TestGraph_InitialQuery(t *testing.T) {
	ctx := context.Background()
	f := newGraphFixture()

	articles := []domain.Article{
		{ID: "a1", Title: "Rates held", URL: "https://example.com/a1", Source: "example.com",
			Content: strings.Repeat("The central bank held rates steady. ", 10)},
	}
	storedChunks := []domain.RetrievedChunk{
		graphChunk("a1", 0, "The central bank held rates steady.", 0.9),
		graphChunk("a1", 1, "Markets expected the decision.", 0.8),
	}

	// Empty conversation routes to the initial flow.
	f.store.On("AllByConversation", ctx, mock.AnythingOfType("string")).
		Return([]domain.RetrievedChunk{}, nil).Once()
	f.primary.On("FetchNews", ctx, "bank rates news", "7d", 10).Return(articles, nil).Once()
	f.store.On("Upsert", ctx, mock.AnythingOfType("[]domain.ArticleChunk")).Return(2, nil).Once()
	f.store.On("Query", ctx, "bank rates news", mock.AnythingOfType("string"), 10, 0.3).
		Return(storedChunks, nil).Once()
	f.llm.On("Complete", ctx, mock.AnythingOfType("string")).
		Return(`{"answer": "Rates were held [Source 1]", "sources_used": [1], "confidence": "high", "missing_info": ""}`, nil).Once()

	resp := f.graph.RunQuery(ctx, usecase.QueryInput{
		Message:      "bank rates news",
		IncludeDebug: true,
	})

	assert.Equal(t, "Rates were held [Source 1]", resp.AnswerText)
	assert.Equal(t, domain.AnswerSummary, resp.AnswerType)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "a1", resp.Sources[0].ArticleID)
	assert.NotEmpty(t, resp.ConversationID)
	assert.Equal(t, 1, resp.Debug["articles_ingested"])
	assert.Equal(t, 2, resp.Debug["chunks_stored"])

	f.store.AssertExpectations(t)
	f.primary.AssertExpectations(t)
	f.llm.AssertExpectations(t)
}

func TestGraph_FollowupSufficient(t *testing.T) {
	ctx := context.Background()
	f := newGraphFixture()

	longContent := strings.Repeat("detailed coverage of the decision ", 10)
	existing := []domain.RetrievedChunk{
		graphChunk("a1", 0, longContent, 1.0),
	}
	retrieved := []domain.RetrievedChunk{
		graphChunk("a1", 0, longContent, 0.9),
		graphChunk("a1", 1, longContent, 0.8),
	}

	// The follow-up retrieve step queries at the stricter state threshold,
	// not the retrieval default the graph was built with.
	f.store.On("AllByConversation", ctx, "conv1").Return(existing, nil).Once()
	f.store.On("Query", ctx, "why did they decide that", "conv1", 10, domain.DefaultFollowupThreshold).
		Return(retrieved, nil).Once()
	f.llm.On("Complete", ctx, mock.AnythingOfType("string")).
		Return(`{"answer": "Because of inflation [Source 1]", "sources_used": [1], "confidence": "high", "missing_info": ""}`, nil).Once()

	resp := f.graph.RunQuery(ctx, usecase.QueryInput{
		ConversationID: "conv1",
		Message:        "why did they decide that",
	})

	assert.Equal(t, "Because of inflation [Source 1]", resp.AnswerText)
	assert.Equal(t, domain.AnswerFollowup, resp.AnswerType)
	assert.Equal(t, "conv1", resp.ConversationID)

	// No web search: FetchNews must never run on the sufficient path.
	f.primary.AssertNotCalled(t, "FetchNews", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.store.AssertExpectations(t)
}

func TestGraph_FollowupInsufficientTriggersWebSearch(t *testing.T) {
	ctx := context.Background()
	f := newGraphFixture()

	longContent := strings.Repeat("older coverage of the topic ", 10)
	existing := []domain.RetrievedChunk{graphChunk("a1", 0, longContent, 1.0)}

	// Single weak chunk fails the minimum chunk gate.
	weakRetrieval := []domain.RetrievedChunk{graphChunk("a1", 0, longContent, 0.5)}

	freshArticles := []domain.Article{
		{ID: "a2", Title: "Fresh update", URL: "https://example.com/a2", Source: "example.com",
			Content: strings.Repeat("A new development was announced. ", 10)},
	}
	refreshedRetrieval := []domain.RetrievedChunk{
		graphChunk("a2", 0, "A new development was announced.", 0.9),
		graphChunk("a1", 0, longContent, 0.5),
	}

	f.store.On("AllByConversation", ctx, "conv1").Return(existing, nil).Once()
	f.store.On("Query", ctx, "any updates", "conv1", 10, domain.DefaultFollowupThreshold).
		Return(weakRetrieval, nil).Once()
	f.primary.On("FetchNews", ctx, "any updates", "7d", 10).Return(freshArticles, nil).Once()
	f.store.On("Upsert", ctx, mock.AnythingOfType("[]domain.ArticleChunk")).Return(2, nil).Once()
	// The post-ingest re-query drops back to the retrieval default so the
	// freshly stored chunks are not filtered away.
	f.store.On("Query", ctx, "any updates", "conv1", 10, 0.3).
		Return(refreshedRetrieval, nil).Once()
	f.llm.On("Complete", ctx, mock.AnythingOfType("string")).
		Return(`{"answer": "A new development [Source 1]", "sources_used": [1], "confidence": "medium", "missing_info": ""}`, nil).Once()

	resp := f.graph.RunQuery(ctx, usecase.QueryInput{
		ConversationID: "conv1",
		Message:        "any updates",
		IncludeDebug:   true,
	})

	assert.Equal(t, "A new development [Source 1]", resp.AnswerText)
	assert.Equal(t, domain.AnswerWebAugmented, resp.AnswerType)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "a2", resp.Sources[0].ArticleID)
	assert.Equal(t, 1, resp.Debug["new_articles_ingested"])

	f.store.AssertExpectations(t)
	f.primary.AssertExpectations(t)
	f.llm.AssertExpectations(t)
}

func TestGraph_FetchFailureEndsFailed(t *testing.T) {
	ctx := context.Background()
	f := newGraphFixture()

	f.store.On("AllByConversation", ctx, mock.AnythingOfType("string")).
		Return([]domain.RetrievedChunk{}, nil).Once()
	f.primary.On("FetchNews", ctx, "doomed query", "7d", 10).
		Return(nil, errors.New("primary down")).Once()
	f.fallback.On("FetchNews", ctx, "doomed query", "7d", 10).
		Return(nil, errors.New("fallback down")).Once()

	resp := f.graph.RunQuery(ctx, usecase.QueryInput{Message: "doomed query"})

	assert.Contains(t, resp.AnswerText, "I ran into a problem")
	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)
}

func TestGraph_InitialQueryNoArticles(t *testing.T) {
	ctx := context.Background()
	f := newGraphFixture()

	f.store.On("AllByConversation", ctx, mock.AnythingOfType("string")).
		Return([]domain.RetrievedChunk{}, nil).Once()
	f.primary.On("FetchNews", ctx, "obscure topic", "7d", 10).
		Return([]domain.Article{}, nil).Once()
	f.store.On("Query", ctx, "obscure topic", mock.AnythingOfType("string"), 10, 0.3).
		Return([]domain.RetrievedChunk{}, nil).Once()

	resp := f.graph.RunQuery(ctx, usecase.QueryInput{Message: "obscure topic"})

	assert.Equal(t, "No relevant news articles were found for this topic.", resp.AnswerText)
	assert.Equal(t, domain.AnswerSummary, resp.AnswerType)
	assert.Empty(t, resp.Sources)
	f.llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestGraph_ConversationHelpers(t *testing.T) {
	ctx := context.Background()
	f := newGraphFixture()

	chunks := []domain.RetrievedChunk{
		graphChunk("a1", 0, "text", 1.0),
		graphChunk("a1", 1, "text", 1.0),
		graphChunk("a2", 0, "text", 1.0),
	}

	f.store.On("AllByConversation", ctx, "conv1").Return(chunks, nil).Once()
	f.store.On("DeleteByConversation", ctx, "conv1").Return(3, nil).Once()

	sources, err := f.graph.ConversationSources(ctx, "conv1")
	require.NoError(t, err)
	require.Len(t, sources, 2)

	deleted, err := f.graph.ClearConversation(ctx, "conv1")
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	f.store.AssertExpectations(t)
}
