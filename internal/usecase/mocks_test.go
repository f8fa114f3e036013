package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"news-rag/internal/domain"
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *mockLLM) Version() string {
	return "test-model"
}

type mockSearchClient struct {
	mock.Mock
	name string
}

func (m *mockSearchClient) FetchNews(ctx context.Context, topic, timeRange string, maxResults int) ([]domain.Article, error) {
	args := m.Called(ctx, topic, timeRange, maxResults)
	if articles, ok := args.Get(0).([]domain.Article); ok {
		return articles, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSearchClient) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

type mockChunkStore struct {
	mock.Mock
}

func (m *mockChunkStore) Upsert(ctx context.Context, chunks []domain.ArticleChunk) (int, error) {
	args := m.Called(ctx, chunks)
	return args.Int(0), args.Error(1)
}

func (m *mockChunkStore) Query(ctx context.Context, query, conversationID string, limit int, threshold float64) ([]domain.RetrievedChunk, error) {
	args := m.Called(ctx, query, conversationID, limit, threshold)
	if chunks, ok := args.Get(0).([]domain.RetrievedChunk); ok {
		return chunks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockChunkStore) AllByConversation(ctx context.Context, conversationID string) ([]domain.RetrievedChunk, error) {
	args := m.Called(ctx, conversationID)
	if chunks, ok := args.Get(0).([]domain.RetrievedChunk); ok {
		return chunks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockChunkStore) DeleteByConversation(ctx context.Context, conversationID string) (int, error) {
	args := m.Called(ctx, conversationID)
	return args.Int(0), args.Error(1)
}

func (m *mockChunkStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.StoreStats), args.Error(1)
}
