// Package vectorstore persists article chunks and their embeddings in
// PostgreSQL with pgvector, and serves similarity queries over them.
package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"news-rag/internal/domain"
)

const tableName = "news_chunks"

// PgxPool is the subset of pgxpool.Pool the store uses. Tests substitute
// a mock pool through NewWithPool.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Store implements domain.ChunkStore on a pgx pool with pgvector types
// registered. Embeddings are computed through the injected encoder so
// callers only ever hand over raw text.
type Store struct {
	db       PgxPool
	database string
	encoder  domain.VectorEncoder
}

func New(pool *pgxpool.Pool, encoder domain.VectorEncoder) *Store {
	return NewWithPool(pool, pool.Config().ConnConfig.Database, encoder)
}

// NewWithPool builds a store over any pool implementation. The database
// name is only reported in stats.
func NewWithPool(db PgxPool, database string, encoder domain.VectorEncoder) *Store {
	return &Store{db: db, database: database, encoder: encoder}
}

var _ domain.ChunkStore = (*Store)(nil)

// EnsureSchema creates the extension, table and index if they do not
// exist. The embedding dimension is baked into the column type, so
// changing models with a different dimension requires a migration.
func (s *Store) EnsureSchema(ctx context.Context, dim int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			chunk_id        TEXT PRIMARY KEY,
			article_id      TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			chunk_index     INTEGER NOT NULL,
			title           TEXT NOT NULL DEFAULT '',
			url             TEXT NOT NULL DEFAULT '',
			source          TEXT NOT NULL DEFAULT '',
			published_at    TIMESTAMPTZ,
			content         TEXT NOT NULL,
			embedding       vector(%d) NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, tableName, dim),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_conversation_idx ON %s (conversation_id)`, tableName, tableName),
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return &domain.StorageError{Op: "ensure_schema", Err: err}
		}
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, chunks []domain.ArticleChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	embeddings, err := s.encoder.Encode(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(embeddings) != len(chunks) {
		return 0, &domain.StorageError{
			Op:  "upsert",
			Err: fmt.Errorf("embedding count %d does not match chunk count %d", len(embeddings), len(chunks)),
		}
	}

	now := time.Now()
	rows := make([][]any, len(chunks))
	for i, chunk := range chunks {
		rows[i] = []any{
			chunk.ChunkID,
			chunk.ArticleID,
			chunk.ConversationID,
			chunk.ChunkIndex,
			chunk.Title,
			chunk.URL,
			chunk.Source,
			chunk.PublishedAt,
			chunk.Content,
			pgvector.NewVector(embeddings[i]),
			now,
		}
	}

	copied, err := s.db.CopyFrom(ctx,
		pgx.Identifier{tableName},
		[]string{"chunk_id", "article_id", "conversation_id", "chunk_index", "title", "url", "source", "published_at", "content", "embedding", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, &domain.StorageError{Op: "upsert", Err: err}
	}

	slog.Info("chunks_added",
		"count", copied,
		"conversation_id", chunks[0].ConversationID)

	return int(copied), nil
}

func (s *Store) Query(ctx context.Context, query, conversationID string, limit int, threshold float64) ([]domain.RetrievedChunk, error) {
	if limit <= 0 {
		limit = 10
	}

	embedding, err := s.encoder.EncodeQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`SELECT chunk_id, article_id, conversation_id, chunk_index, title, url, source, published_at, content,
		embedding <-> $1 AS distance
		FROM %s`, tableName)
	args := []any{pgvector.NewVector(embedding)}
	if conversationID != "" {
		sql += ` WHERE conversation_id = $2 ORDER BY embedding <-> $1 LIMIT $3`
		args = append(args, conversationID, limit)
	} else {
		sql += ` ORDER BY embedding <-> $1 LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		slog.Error("vector_query_failed", "conversation_id", conversationID, "error", err)
		return []domain.RetrievedChunk{}, nil
	}
	defer rows.Close()

	chunks := make([]domain.RetrievedChunk, 0, limit)
	for rows.Next() {
		var chunk domain.RetrievedChunk
		var distance float64
		if err := rows.Scan(
			&chunk.ChunkID, &chunk.ArticleID, &chunk.ConversationID, &chunk.ChunkIndex,
			&chunk.Title, &chunk.URL, &chunk.Source, &chunk.PublishedAt, &chunk.Content,
			&distance,
		); err != nil {
			slog.Error("vector_row_scan_failed", "error", err)
			return []domain.RetrievedChunk{}, nil
		}

		chunk.SimilarityScore = 1.0 / (1.0 + distance)
		if chunk.SimilarityScore < threshold {
			continue
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		slog.Error("vector_query_failed", "conversation_id", conversationID, "error", err)
		return []domain.RetrievedChunk{}, nil
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].SimilarityScore > chunks[j].SimilarityScore
	})
	return chunks, nil
}

func (s *Store) AllByConversation(ctx context.Context, conversationID string) ([]domain.RetrievedChunk, error) {
	sql := fmt.Sprintf(`SELECT chunk_id, article_id, conversation_id, chunk_index, title, url, source, published_at, content
		FROM %s WHERE conversation_id = $1 ORDER BY article_id, chunk_index`, tableName)

	rows, err := s.db.Query(ctx, sql, conversationID)
	if err != nil {
		slog.Error("conversation_chunks_query_failed", "conversation_id", conversationID, "error", err)
		return []domain.RetrievedChunk{}, nil
	}
	defer rows.Close()

	var chunks []domain.RetrievedChunk
	for rows.Next() {
		var chunk domain.RetrievedChunk
		if err := rows.Scan(
			&chunk.ChunkID, &chunk.ArticleID, &chunk.ConversationID, &chunk.ChunkIndex,
			&chunk.Title, &chunk.URL, &chunk.Source, &chunk.PublishedAt, &chunk.Content,
		); err != nil {
			slog.Error("conversation_chunks_scan_failed", "error", err)
			return []domain.RetrievedChunk{}, nil
		}
		chunk.SimilarityScore = 1.0
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		slog.Error("conversation_chunks_query_failed", "conversation_id", conversationID, "error", err)
		return []domain.RetrievedChunk{}, nil
	}
	return chunks, nil
}

func (s *Store) DeleteByConversation(ctx context.Context, conversationID string) (int, error) {
	tag, err := s.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE conversation_id = $1`, tableName), conversationID)
	if err != nil {
		slog.Error("conversation_delete_failed", "conversation_id", conversationID, "error", err)
		return 0, nil
	}

	deleted := int(tag.RowsAffected())
	slog.Info("conversation_cleared", "conversation_id", conversationID, "chunks_deleted", deleted)
	return deleted, nil
}

func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var count int64
	if err := s.db.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, tableName)).Scan(&count); err != nil {
		return domain.StoreStats{}, &domain.StorageError{Op: "stats", Err: err}
	}
	return domain.StoreStats{
		Name:     tableName,
		Count:    count,
		Location: s.database,
	}, nil
}
