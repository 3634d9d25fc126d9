package models

// EventType identifies the kind of enrichment fact extracted from a turn.
type EventType string

// The closed set of enrichment event kinds. The extraction prompt enumerates
// exactly these; the merger ignores anything else.
const (
	EventBudgetInquiry     EventType = "budget_inquiry"
	EventBudgetMentioned   EventType = "budget_mentioned"
	EventCareNeedExpressed EventType = "care_need_expressed"
	EventTimelineShared    EventType = "timeline_shared"
	EventPreferenceStated  EventType = "preference_stated"
	EventTourRequested     EventType = "tour_requested"
	EventTourScheduled     EventType = "tour_scheduled"
	EventContactShared     EventType = "contact_shared"
	EventFinancingInquiry  EventType = "financing_inquiry"
	EventRoomTypeInterest  EventType = "room_type_interest"
)

var knownEventTypes = map[EventType]struct{}{
	EventBudgetInquiry:     {},
	EventBudgetMentioned:   {},
	EventCareNeedExpressed: {},
	EventTimelineShared:    {},
	EventPreferenceStated:  {},
	EventTourRequested:     {},
	EventTourScheduled:     {},
	EventContactShared:     {},
	EventFinancingInquiry:  {},
	EventRoomTypeInterest:  {},
}

// Known reports whether t is one of the declared event kinds.
func (t EventType) Known() bool {
	_, ok := knownEventTypes[t]
	return ok
}

// EventData is the optional-field bag carried by an enrichment event. Each
// event kind populates only the subset that applies to it; every field is
// optional and the merger tolerates absence by skipping that field's effect.
// The extraction capability returns one JSON shape for all kinds, so this is
// a single struct rather than one variant type per kind.
type EventData struct {
	Condition     string `json:"condition,omitempty"`
	CareLevel     string `json:"care_level,omitempty"`
	Range         string `json:"range,omitempty"`
	Max           int    `json:"max,omitempty"`
	Urgency       string `json:"urgency,omitempty"`
	Category      string `json:"category,omitempty"`
	Detail        string `json:"detail,omitempty"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	FinancingType string `json:"financing_type,omitempty"`
	PetType       string `json:"pet_type,omitempty"`
	CarInterest   bool   `json:"car_interest,omitempty"`
}

// EnrichmentEvent is a discrete structured fact inferred from one turn.
type EnrichmentEvent struct {
	Type          EventType `json:"event_type"`
	Data          EventData `json:"event_data"`
	SourceMessage string    `json:"source_message"`
	Confidence    float64   `json:"confidence"`
}

// EventList is the schema the structured-extraction capability is asked to
// produce.
type EventList struct {
	Events []EnrichmentEvent `json:"events"`
}
