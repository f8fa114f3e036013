// newsragctl is an operator CLI for inspecting and maintaining the chunk
// store without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"news-rag/internal/adapter/llm"
	"news-rag/internal/adapter/vectorstore"
	"news-rag/internal/domain"
	"news-rag/internal/infra"
	"news-rag/internal/infra/config"
)

func main() {
	root := &cobra.Command{
		Use:           "newsragctl",
		Short:         "Inspect and maintain the news RAG chunk store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(statsCmd(), sourcesCmd(), clearCmd(), searchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (*vectorstore.Store, func(), error) {
	cfg := config.Load()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := infra.NewPostgresDB(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	embedder := llm.NewGeminiEmbedder(cfg.GoogleAPIKey, cfg.EmbeddingModel)
	return vectorstore.New(pool, embedder), pool.Close, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show chunk store statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, closeFn, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			stats, err := store.Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
}

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources <conversation-id>",
		Short: "List the unique sources ingested for a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeFn, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			chunks, err := store.AllByConversation(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(domain.ChunksToSourceReferences(chunks))
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <conversation-id>",
		Short: "Delete all chunks stored for a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeFn, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			deleted, err := store.DeleteByConversation(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d chunks from conversation %s\n", deleted, args[0])
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var (
		conversationID string
		limit          int
		threshold      float64
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a similarity search against stored chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeFn, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			chunks, err := store.Query(ctx, args[0], conversationID, limit, threshold)
			if err != nil {
				return err
			}
			for _, chunk := range chunks {
				fmt.Printf("%.3f  %s  [%s #%d]  %s\n",
					chunk.SimilarityScore, chunk.ChunkID, chunk.ArticleID, chunk.ChunkIndex, chunk.Title)
			}
			fmt.Printf("%d chunks\n", len(chunks))
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "restrict to one conversation")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum chunks to return")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.3, "minimum similarity score")
	return cmd
}
