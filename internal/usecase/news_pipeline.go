package usecase

import (
	"context"
	"log/slog"

	"news-rag/internal/domain"
)

// PipelineOptions configure one run of the legacy news pipeline.
type PipelineOptions struct {
	TimeRange         string
	Verification      bool
	MaxArticles       int
	MaxSearchAttempts int
}

// NewsPipeline is the linear classify-search-summarize-verify flow. It has
// no conversation memory; each run is independent. It exists alongside the
// conversation graph for one-shot summaries and debugging.
type NewsPipeline struct {
	retriever  *ArticleRetriever
	summarizer *Summarizer
	verifier   *Verifier
}

func NewNewsPipeline(retriever *ArticleRetriever, summarizer *Summarizer, verifier *Verifier) *NewsPipeline {
	return &NewsPipeline{
		retriever:  retriever,
		summarizer: summarizer,
		verifier:   verifier,
	}
}

// Run executes the pipeline to completion and returns the final state.
// Search is retried while fewer than three articles were found and attempts
// remain; no articles after the final attempt fails the run.
func (p *NewsPipeline) Run(ctx context.Context, query string, opts PipelineOptions) domain.NewsState {
	if opts.TimeRange == "" {
		opts.TimeRange = "7d"
	}
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = 10
	}
	if opts.MaxSearchAttempts <= 0 {
		opts.MaxSearchAttempts = 3
	}

	state := domain.NewsState{
		Query:               query,
		QueryType:           ClassifyQuery(query),
		TimeRange:           opts.TimeRange,
		VerificationEnabled: opts.Verification,
		MaxArticles:         opts.MaxArticles,
		MaxSearchAttempts:   opts.MaxSearchAttempts,
		Status:              domain.PipelineSearching,
	}

	for {
		articles, err := p.retriever.Retrieve(ctx, state.Query, state.TimeRange, state.MaxArticles)
		if err != nil {
			slog.Error("pipeline_search_failed", "query", query, "error", err)
			articles = nil
		}
		state.Articles = articles
		state.SearchAttempts++

		if len(state.Articles) == 0 && state.SearchAttempts >= state.MaxSearchAttempts {
			state.Status = domain.PipelineFailed
			state.Err = "no_articles"
			return state
		}
		if len(state.Articles) < 3 && state.SearchAttempts < state.MaxSearchAttempts {
			continue
		}
		break
	}

	state.Status = domain.PipelineSummarizing
	summary, err := p.summarizer.Summarize(ctx, state.Query, state.Articles)
	if err != nil {
		state.Status = domain.PipelineFailed
		state.Err = err.Error()
		return state
	}
	state.Summary = summary

	if !state.VerificationEnabled {
		state.Status = domain.PipelineDone
		return state
	}

	state.Status = domain.PipelineVerifying
	verdict, err := p.verifier.Verify(ctx, summary, state.Articles)
	if err != nil {
		// A broken critic still returns a usable summary.
		state.Status = domain.PipelineDone
		state.Err = err.Error()
		return state
	}
	state.VerificationResult = verdict
	state.Status = domain.PipelineDone
	return state
}
