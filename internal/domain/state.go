package domain

// Status identifies the current step of a conversation graph run.
type Status string

const (
	StatusInit                Status = "init"
	StatusFetchingNews        Status = "fetching_news"
	StatusRetrieving          Status = "retrieving"
	StatusIngesting           Status = "ingesting"
	StatusCheckingSufficiency Status = "checking_sufficiency"
	StatusWebSearching        Status = "web_searching"
	StatusGeneratingSummary   Status = "generating_summary"
	StatusGeneratingAnswer    Status = "generating_answer"
	StatusDone                Status = "done"
	StatusFailed              Status = "failed"
)

// Terminal reports whether the graph has finished.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// MessageType classifies an incoming message.
type MessageType string

const (
	MessageInitial  MessageType = "initial"
	MessageFollowup MessageType = "followup"
)

// AnswerType labels how the final answer was produced.
type AnswerType string

const (
	AnswerSummary      AnswerType = "summary"
	AnswerFollowup     AnswerType = "followup_answer"
	AnswerWebAugmented AnswerType = "web_augmented_answer"
)

// DefaultFollowupThreshold is the minimum similarity for chunks feeding a
// follow-up answer. It is stricter than the retrieval default; chunks that
// clear retrieval but not this bar send the graph to web search.
const DefaultFollowupThreshold = 0.7

// ConversationState is the working state threaded through every graph step.
// It is treated as an immutable value: each transition receives a copy and
// returns a new value, never mutating shared data. The only reference field
// that transitions write to is DebugInfo, which must go through WithDebug so
// the underlying map is copied first.
type ConversationState struct {
	Query       string
	MessageType MessageType

	ConversationID string
	UserID         string

	TimeRange           string
	MaxArticles         int
	MaxChunks           int
	SimilarityThreshold float64

	Articles        []Article
	RetrievedChunks []RetrievedChunk

	RetrievalSufficient bool
	SufficiencyReason   string

	WebSearchTriggered bool
	NewArticles        []Article

	Summary    *NewsSummary
	AnswerText string
	AnswerType AnswerType

	SourcesUsed []SourceReference

	Status Status
	Err    string

	DebugInfo map[string]any
}

// WithDebug returns a copy of the state with the given debug entries added.
// The debug map is cloned so earlier state values stay untouched.
func (s ConversationState) WithDebug(entries map[string]any) ConversationState {
	next := s
	merged := make(map[string]any, len(s.DebugInfo)+len(entries))
	for k, v := range s.DebugInfo {
		merged[k] = v
	}
	for k, v := range entries {
		merged[k] = v
	}
	next.DebugInfo = merged
	return next
}

// WithStatus returns a copy of the state advanced to the given status.
func (s ConversationState) WithStatus(status Status) ConversationState {
	next := s
	next.Status = status
	return next
}

// Failed returns a copy of the state marked terminally failed.
func (s ConversationState) Failed(errMsg string) ConversationState {
	next := s
	next.Status = StatusFailed
	next.Err = errMsg
	return next
}

// AgentResponse is what the RAG agent returns to API callers.
type AgentResponse struct {
	AnswerText     string            `json:"answer_text"`
	AnswerType     AnswerType        `json:"answer_type"`
	Sources        []SourceReference `json:"sources"`
	ConversationID string            `json:"conversation_id"`
	Debug          map[string]any    `json:"debug,omitempty"`
}

// AgentResponseFromState assembles the API response from a terminal state.
func AgentResponseFromState(state ConversationState, includeDebug bool) *AgentResponse {
	answer := state.AnswerText
	if answer == "" && state.Summary != nil {
		answer = state.Summary.SummaryText
	}

	sources := state.SourcesUsed
	if sources == nil {
		sources = []SourceReference{}
	}

	resp := &AgentResponse{
		AnswerText:     answer,
		AnswerType:     state.AnswerType,
		Sources:        sources,
		ConversationID: state.ConversationID,
	}
	if includeDebug {
		resp.Debug = state.DebugInfo
	}
	return resp
}

// QueryType classifies a legacy-pipeline query.
type QueryType string

const (
	QueryNews    QueryType = "news"
	QueryGeneral QueryType = "general"
)

// PipelineStatus tracks the legacy summarize pipeline.
type PipelineStatus string

const (
	PipelineInit        PipelineStatus = "init"
	PipelineSearching   PipelineStatus = "searching"
	PipelineSummarizing PipelineStatus = "summarizing"
	PipelineVerifying   PipelineStatus = "verifying"
	PipelineDone        PipelineStatus = "done"
	PipelineFailed      PipelineStatus = "failed"
)

// NewsState is the state of the legacy classify-retrieve-summarize-verify
// pipeline. It has no persistence and no conversation tracking.
type NewsState struct {
	Query               string         `json:"query"`
	QueryType           QueryType      `json:"query_type"`
	Articles            []Article      `json:"articles"`
	Summary             *NewsSummary   `json:"summary,omitempty"`
	SearchAttempts      int            `json:"search_attempts"`
	MaxSearchAttempts   int            `json:"max_search_attempts"`
	MaxArticles         int            `json:"max_articles"`
	TimeRange           string         `json:"time_range"`
	VerificationEnabled bool           `json:"verification_enabled"`
	VerificationResult  map[string]any `json:"verification_result,omitempty"`
	Status              PipelineStatus `json:"status"`
	Err                 string         `json:"error,omitempty"`
}
