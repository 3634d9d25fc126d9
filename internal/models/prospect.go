package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Prospect is a person inquiring about the community. Kept minimal on
// purpose: enrichment lives in events, not flattened attributes. Contact
// fields are fill-in only — once set they are never overwritten by later
// turns.
type Prospect struct {
	ID            surrealmodels.RecordID `json:"id"`
	FirstName     string                 `json:"first_name,omitempty"`
	LastName      string                 `json:"last_name,omitempty"`
	Email         string                 `json:"email,omitempty"`
	Phone         string                 `json:"phone,omitempty"`
	TourScheduled bool                   `json:"tour_scheduled"`
	TourDatetime  *time.Time             `json:"tour_datetime,omitempty"`
	CreatedAt     time.Time              `json:"created_at,omitempty"`
	UpdatedAt     time.Time              `json:"updated_at,omitempty"`
}

// Session is one continuous conversation thread tied to a prospect. A
// prospect can have multiple sessions over time.
type Session struct {
	ID            surrealmodels.RecordID  `json:"id"`
	Prospect      *surrealmodels.RecordID `json:"prospect,omitempty"`
	History       []Turn                  `json:"conversation_history"`
	Understanding *Understanding          `json:"current_understanding"`
	StartedAt     time.Time               `json:"started_at,omitempty"`
	UpdatedAt     time.Time               `json:"updated_at,omitempty"`
	IsActive      bool                    `json:"is_active"`
}

// StoredEvent is a persisted enrichment event with extraction metadata.
type StoredEvent struct {
	ID               surrealmodels.RecordID `json:"id"`
	Session          surrealmodels.RecordID `json:"session"`
	Type             EventType              `json:"event_type"`
	Data             EventData              `json:"event_data"`
	ExtractedByAgent string                 `json:"extracted_by_agent"`
	SourceMessage    string                 `json:"source_message"`
	Confidence       float64                `json:"confidence"`
	CreatedAt        time.Time              `json:"created_at,omitempty"`
}

// Knowledge is one fact in the community knowledge base used for retrieval.
type Knowledge struct {
	ID        surrealmodels.RecordID `json:"id"`
	Category  string                 `json:"category"`
	Content   string                 `json:"content"`
	Metadata  map[string]any         `json:"metadata,omitempty"`
	Embedding []float32              `json:"embedding,omitempty"`
	CreatedAt time.Time              `json:"created_at,omitempty"`
}
