package usecase

import (
	"context"
	"log/slog"

	"news-rag/internal/domain"
)

// maxGraphSteps bounds a single run. The longest legitimate path is seven
// steps; anything past this means a transition bug, not real work.
const maxGraphSteps = 20

type stepFunc func(ctx context.Context, state domain.ConversationState) domain.ConversationState

// Graph is the conversation state machine behind the RAG agent. Each status
// maps to exactly one transition; transitions take a state value and return
// a new one, so a run is a plain loop with no shared mutable state.
//
// Initial queries flow fetch -> ingest -> summary. Follow-ups flow
// retrieve -> sufficiency -> answer, detouring through web search and
// re-ingestion when the stored chunks cannot answer the question.
type Graph struct {
	retriever   *ArticleRetriever
	ingestor    *ArticleIngestor
	chunks      *ChunkRetriever
	sufficiency *SufficiencyChecker
	answers     *AnswerGenerator
	store       domain.ChunkStore

	defaultThreshold float64

	steps map[domain.Status]stepFunc
}

func NewGraph(
	retriever *ArticleRetriever,
	ingestor *ArticleIngestor,
	chunks *ChunkRetriever,
	sufficiency *SufficiencyChecker,
	answers *AnswerGenerator,
	store domain.ChunkStore,
	defaultThreshold float64,
) *Graph {
	g := &Graph{
		retriever:        retriever,
		ingestor:         ingestor,
		chunks:           chunks,
		sufficiency:      sufficiency,
		answers:          answers,
		store:            store,
		defaultThreshold: defaultThreshold,
	}
	g.steps = map[domain.Status]stepFunc{
		domain.StatusInit:                g.classifyMessage,
		domain.StatusFetchingNews:        g.fetchNews,
		domain.StatusIngesting:           g.ingest,
		domain.StatusGeneratingSummary:   g.generateSummary,
		domain.StatusRetrieving:          g.retrieveChunks,
		domain.StatusCheckingSufficiency: g.checkSufficiency,
		domain.StatusWebSearching:        g.webSearch,
		domain.StatusGeneratingAnswer:    g.generateAnswer,
	}
	return g
}

// Run advances the state until it reaches a terminal status.
func (g *Graph) Run(ctx context.Context, state domain.ConversationState) domain.ConversationState {
	for i := 0; !state.Status.Terminal(); i++ {
		if i >= maxGraphSteps {
			return state.Failed("graph exceeded maximum steps")
		}
		step, ok := g.steps[state.Status]
		if !ok {
			return state.Failed("no transition for status " + string(state.Status))
		}
		state = step(ctx, state)
	}
	return state
}

// classifyMessage routes to the initial or follow-up flow based on whether
// the conversation already has ingested chunks.
func (g *Graph) classifyMessage(ctx context.Context, state domain.ConversationState) domain.ConversationState {
	existing, err := g.store.AllByConversation(ctx, state.ConversationID)
	if err != nil {
		existing = nil
	}

	messageType := domain.MessageInitial
	next := domain.StatusFetchingNews
	if len(existing) > 0 {
		messageType = domain.MessageFollowup
		next = domain.StatusRetrieving
	}

	slog.Info("message_classified",
		"conversation_id", state.ConversationID,
		"message_type", messageType,
		"existing_chunks", len(existing))

	state.MessageType = messageType
	return state.WithStatus(next)
}

func (g *Graph) fetchNews(ctx context.Context, state domain.ConversationState) domain.ConversationState {
	slog.Info("fetching_news",
		"query", state.Query,
		"time_range", state.TimeRange,
		"max_articles", state.MaxArticles)

	articles, err := g.retriever.Retrieve(ctx, state.Query, state.TimeRange, state.MaxArticles)
	if err != nil {
		slog.Error("fetch_news_failed", "error", err)
		return state.Failed("Failed to fetch news: " + err.Error())
	}
	if len(articles) == 0 {
		slog.Warn("no_articles_found", "query", state.Query)
	}

	state.Articles = articles
	return state.WithStatus(domain.StatusIngesting)
}

// ingest handles both flows. For an initial query it stores the fetched
// articles and moves on to summary generation. For a follow-up it stores
// the web search results and re-queries the expanded index before the
// answer step. Ingestion failures are logged and the flow continues with
// whatever is already stored.
func (g *Graph) ingest(ctx context.Context, state domain.ConversationState) domain.ConversationState {
	if state.MessageType == domain.MessageFollowup {
		return g.ingestNewArticles(ctx, state)
	}

	if len(state.Articles) == 0 {
		return state.WithStatus(domain.StatusGeneratingSummary)
	}

	slog.Info("ingesting_articles",
		"conversation_id", state.ConversationID,
		"articles", len(state.Articles))

	_, chunksStored, err := g.ingestor.Ingest(ctx, state.Articles, state.ConversationID)
	if err != nil {
		slog.Error("ingest_failed", "error", err)
		chunksStored = 0
	}

	return state.WithDebug(map[string]any{
		"articles_ingested": len(state.Articles),
		"chunks_stored":     chunksStored,
	}).WithStatus(domain.StatusGeneratingSummary)
}

func (g *Graph) ingestNewArticles(ctx context.Context, state domain.ConversationState) domain.ConversationState {
	if len(state.NewArticles) == 0 {
		return state.WithStatus(domain.StatusGeneratingAnswer)
	}

	slog.Info("ingesting_new_articles",
		"conversation_id", state.ConversationID,
		"articles", len(state.NewArticles))

	_, chunksStored, err := g.ingestor.Ingest(ctx, state.NewArticles, state.ConversationID)
	if err != nil {
		slog.Error("ingest_new_failed", "error", err)
		chunksStored = 0
	}

	updated, err := g.chunks.Relevant(ctx, state.Query, state.ConversationID, state.MaxChunks, g.defaultThreshold)
	if err != nil {
		updated = state.RetrievedChunks
	}
	state.RetrievedChunks = updated

	return state.WithDebug(map[string]any{
		"new_articles_ingested": len(state.NewArticles),
		"new_chunks_stored":     chunksStored,
	}).WithStatus(domain.StatusGeneratingAnswer)
}

func (g *Graph) generateSummary(ctx context.Context, state domain.ConversationState) domain.ConversationState {
	slog.Info("generating_summary",
		"query", state.Query,
		"articles", len(state.Articles))

	chunks, err := g.chunks.Relevant(ctx, state.Query, state.ConversationID, state.MaxChunks, g.defaultThreshold)
	if err != nil {
		chunks = nil
	}

	if len(chunks) == 0 && len(state.Articles) == 0 {
		state.AnswerText = "No relevant news articles were found for this topic."
		state.AnswerType = domain.AnswerSummary
		state.SourcesUsed = []domain.SourceReference{}
		return state.WithStatus(domain.StatusDone)
	}

	result := g.answers.GenerateSummary(ctx, state.Query, chunks)

	sourcesUsed := MapSourcesUsedToReferences(result.SourcesUsed, chunks)
	if len(sourcesUsed) == 0 {
		sourcesUsed = domain.ChunksToSourceReferences(chunks)
	}

	state.Summary = &domain.NewsSummary{
		Topic:       state.Query,
		SummaryText: result.Answer,
		Sentences:   []domain.SummarySentence{},
		Sources:     state.Articles,
		Meta: map[string]any{
			"confidence":   result.Confidence,
			"missing_info": result.MissingInfo,
		},
	}
	state.AnswerText = result.Answer
	state.AnswerType = domain.AnswerSummary
	state.SourcesUsed = sourcesUsed

	return state.WithDebug(map[string]any{
		"chunks_used": len(chunks),
		"confidence":  result.Confidence,
	}).WithStatus(domain.StatusDone)
}

// retrieveChunks queries at the state threshold, which is stricter than the
// retrieval default used by the summary and re-query steps.
func (g *Graph) retrieveChunks(ctx context.Context, state domain.ConversationState) domain.ConversationState {
	slog.Info("retrieving_chunks",
		"query", state.Query,
		"conversation_id", state.ConversationID)

	chunks, err := g.chunks.Relevant(ctx, state.Query, state.ConversationID, state.MaxChunks, state.SimilarityThreshold)
	if err != nil {
		chunks = nil
	}
	state.RetrievedChunks = chunks

	topSimilarity := 0.0
	if len(chunks) > 0 {
		topSimilarity = chunks[0].SimilarityScore
	}
	return state.WithDebug(map[string]any{
		"chunks_retrieved": len(chunks),
		"top_similarity":   topSimilarity,
	}).WithStatus(domain.StatusCheckingSufficiency)
}

func (g *Graph) checkSufficiency(ctx context.Context, state domain.ConversationState) domain.ConversationState {
	sufficient, reason := g.sufficiency.Check(ctx, state.Query, state.RetrievedChunks)

	slog.Info("sufficiency_checked",
		"sufficient", sufficient,
		"reason", reason,
		"chunks", len(state.RetrievedChunks))

	state.RetrievalSufficient = sufficient
	state.SufficiencyReason = reason
	if sufficient {
		return state.WithStatus(domain.StatusGeneratingAnswer)
	}
	return state.WithStatus(domain.StatusWebSearching)
}

// webSearch fetches fresh articles when stored sources cannot answer the
// question. A failed search is not fatal; the answer step runs on whatever
// chunks were already retrieved.
func (g *Graph) webSearch(ctx context.Context, state domain.ConversationState) domain.ConversationState {
	slog.Info("web_search_fallback",
		"query", state.Query,
		"reason", state.SufficiencyReason)

	state.WebSearchTriggered = true

	newArticles, err := g.retriever.Retrieve(ctx, state.Query, state.TimeRange, state.MaxArticles)
	if err != nil {
		slog.Error("web_search_failed", "error", err)
		return state.WithStatus(domain.StatusGeneratingAnswer)
	}

	state.NewArticles = newArticles
	return state.WithStatus(domain.StatusIngesting)
}

func (g *Graph) generateAnswer(ctx context.Context, state domain.ConversationState) domain.ConversationState {
	slog.Info("generating_followup_answer",
		"query", state.Query,
		"chunks", len(state.RetrievedChunks),
		"web_augmented", state.WebSearchTriggered)

	result := g.answers.Generate(ctx, state.Query, state.RetrievedChunks, true, nil)

	sourcesUsed := MapSourcesUsedToReferences(result.SourcesUsed, state.RetrievedChunks)
	if len(sourcesUsed) == 0 {
		sourcesUsed = domain.ChunksToSourceReferences(state.RetrievedChunks)
	}

	state.AnswerText = result.Answer
	state.AnswerType = domain.AnswerFollowup
	if state.WebSearchTriggered {
		state.AnswerType = domain.AnswerWebAugmented
	}
	state.SourcesUsed = sourcesUsed

	return state.WithDebug(map[string]any{
		"confidence":   result.Confidence,
		"missing_info": result.MissingInfo,
	}).WithStatus(domain.StatusDone)
}

// QueryInput is a request to run the agent for one message.
type QueryInput struct {
	UserID         string
	ConversationID string
	Message        string
	TimeRange      string
	MaxArticles    int
	MaxChunks      int
	IncludeDebug   bool
}

// RunQuery is the main entry point for the agent. A missing conversation id
// starts a new conversation.
func (g *Graph) RunQuery(ctx context.Context, input QueryInput) *domain.AgentResponse {
	conversationID := input.ConversationID
	if conversationID == "" {
		conversationID = domain.NewConversationID()
	}
	if input.TimeRange == "" {
		input.TimeRange = "7d"
	}
	if input.MaxArticles <= 0 {
		input.MaxArticles = 10
	}
	if input.MaxChunks <= 0 {
		input.MaxChunks = 10
	}

	state := domain.ConversationState{
		Query:               input.Message,
		ConversationID:      conversationID,
		UserID:              input.UserID,
		TimeRange:           input.TimeRange,
		MaxArticles:         input.MaxArticles,
		MaxChunks:           input.MaxChunks,
		SimilarityThreshold: domain.DefaultFollowupThreshold,
		Status:              domain.StatusInit,
		DebugInfo:           map[string]any{},
	}

	slog.Info("running_news_query",
		"user_id", input.UserID,
		"conversation_id", conversationID,
		"query_preview", truncateRunes(input.Message, 50))

	final := g.Run(ctx, state)

	resp := domain.AgentResponseFromState(final, input.IncludeDebug)
	if final.Status == domain.StatusFailed && resp.AnswerText == "" {
		resp.AnswerText = "I ran into a problem while processing this question: " + final.Err
	}
	return resp
}

// ConversationSources returns the unique sources ingested for a
// conversation.
func (g *Graph) ConversationSources(ctx context.Context, conversationID string) ([]domain.SourceReference, error) {
	chunks, err := g.store.AllByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return domain.ChunksToSourceReferences(chunks), nil
}

// ClearConversation removes everything stored for a conversation and
// reports how many chunks were deleted.
func (g *Graph) ClearConversation(ctx context.Context, conversationID string) (int, error) {
	return g.store.DeleteByConversation(ctx, conversationID)
}
