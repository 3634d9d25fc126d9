// Package models defines data structures for the Sophie sales assistant.
package models

import "time"

// Intent is the classified topical category of a user message.
// It drives specialist routing in the conversation pipeline.
type Intent string

const (
	IntentPricing        Intent = "pricing"
	IntentTourScheduling Intent = "tour_scheduling"
	IntentAmenities      Intent = "amenities"
	IntentFinancing      Intent = "financing"
	IntentGeneralInfo    Intent = "general_info"
)

// Turn is one entry in a session's conversation history.
// Assistant turns additionally carry the intent they were answered under,
// which the classifier's lookback rule depends on.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Intent    Intent    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// KnowledgeSnippet is one ranked knowledge-base hit used to ground a response.
type KnowledgeSnippet struct {
	ID              string         `json:"id"`
	Category        string         `json:"category"`
	Content         string         `json:"content"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	SimilarityScore float64        `json:"similarity_score"`
}

// ConversationState carries everything one turn of the pipeline reads and
// writes. The caller supplies SessionID, UserMessage, History and
// Understanding; the pipeline fills Intent, AgentResponse, RAGContext and
// Events. The state is owned by the pipeline for the duration of the turn
// and never persisted by it.
type ConversationState struct {
	SessionID     string             `json:"session_id"`
	UserMessage   string             `json:"user_message"`
	History       []Turn             `json:"conversation_history"`
	Intent        Intent             `json:"intent"`
	AgentResponse string             `json:"agent_response"`
	RAGContext    []KnowledgeSnippet `json:"rag_context"`
	Events        []EnrichmentEvent  `json:"enrichment_events"`
	Understanding *Understanding     `json:"current_understanding"`
}

// LastAssistantTurn scans history in reverse for the most recent assistant
// entry. Returns nil when the history has none.
func LastAssistantTurn(history []Turn) *Turn {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleAssistant {
			return &history[i]
		}
	}
	return nil
}
