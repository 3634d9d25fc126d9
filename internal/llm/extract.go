package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/acmeliving/sophie-go/internal/models"
)

// ExtractionError indicates the model's structured output could not be
// obtained or decoded. Callers decide whether to degrade or propagate.
type ExtractionError struct {
	Stage string // "generate" or "decode"
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction %s: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// EventExtractor produces typed enrichment events from a conversational
// exchange using JSON-mode generation.
type EventExtractor struct {
	model *Model
}

// NewEventExtractor creates an extractor backed by the given model.
func NewEventExtractor(model *Model) *EventExtractor {
	return &EventExtractor{model: model}
}

// ExtractEvents asks the model for the enrichment events present in one
// exchange. Returns an *ExtractionError when the output is missing or
// malformed; it never invents events on failure.
func (x *EventExtractor) ExtractEvents(ctx context.Context, userMessage, agentResponse string, intent models.Intent) ([]models.EnrichmentEvent, error) {
	prompt := buildExtractionPrompt(userMessage, agentResponse, intent)

	raw, err := x.model.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, &ExtractionError{Stage: "generate", Err: err}
	}

	list, err := decodeEventList(raw)
	if err != nil {
		return nil, &ExtractionError{Stage: "decode", Err: err}
	}
	return list.Events, nil
}

// decodeEventList parses the model's JSON output into an EventList. Accepts
// either the {"events": [...]} wrapper the prompt asks for or a bare array,
// and tolerates markdown code fences around the payload. Events with a type
// outside the declared set are dropped; one invented kind must not discard
// the valid events next to it.
func decodeEventList(raw string) (models.EventList, error) {
	var list models.EventList

	cleaned := stripCodeFence(strings.TrimSpace(raw))
	if cleaned == "" {
		return list, fmt.Errorf("empty output")
	}

	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &list.Events); err != nil {
			return list, fmt.Errorf("decode event array: %w", err)
		}
		return dropUnknownTypes(list), nil
	}

	if err := json.Unmarshal([]byte(cleaned), &list); err != nil {
		return list, fmt.Errorf("decode event list: %w", err)
	}
	return dropUnknownTypes(list), nil
}

func dropUnknownTypes(list models.EventList) models.EventList {
	kept := list.Events[:0]
	for _, ev := range list.Events {
		if !ev.Type.Known() {
			slog.Warn("dropping event with unknown type", "event_type", ev.Type)
			continue
		}
		kept = append(kept, ev)
	}
	list.Events = kept
	return list
}

// stripCodeFence removes a surrounding ```json ... ``` fence if present.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func buildExtractionPrompt(userMessage, agentResponse string, intent models.Intent) string {
	agentName := string(intent) + "_agent"
	if intent == "" {
		agentName = "unknown_agent"
	}

	return fmt.Sprintf(`Analyze the user's message and identify any enrichment events.

User message: %q
Agent response: %q
Agent type: %q

Event types to extract:
- budget_inquiry: User asked about pricing
- budget_mentioned: User stated specific budget (extract amount/range in event_data)
- care_need_expressed: User mentioned care needs, conditions, or assistance required
- timeline_shared: User indicated urgency or move timeline
- preference_stated: User mentioned preferences - IMPORTANT: Extract specific details:
  * Pets: If asking about pets or mentioning bringing a pet, extract pet type and any details (e.g., "golden retriever")
  * Cars/Parking: If asking about bringing a car or parking
  * Dietary needs, couples living together, smoking, etc.
- tour_requested: User expressed interest in visiting
- tour_scheduled: Tour confirmed with date/time (extract date and time in event_data)
- contact_shared: User provided name, email, or phone number (extract to event_data)
- financing_inquiry: User asked about payment/financial assistance (Medicaid, Medicare, insurance, VA benefits, bridge loans, etc.) - ALWAYS extract this when user mentions any payment help
- room_type_interest: User asked about specific room types

For each event, extract:
- event_type: One of the types above
- event_data: Relevant structured data, including:
  - For financing_inquiry: {"financing_type": "Medicaid"} or "Medicare", "insurance", "VA benefits", etc.
  - For care needs: {"condition": "dementia"}
  - For budget: {"max": 4000}
  - For contact: {"name": "Eric"}, {"email": "eric@example.com"}, {"phone": "555-1234"}
  - For pets preference: {"category": "pets", "detail": "golden retriever", "pet_type": "golden retriever"}
  - For car preference: {"category": "parking", "detail": "wants to bring car", "car_interest": true}
- source_message: The exact user message
- confidence: How confident you are (0.0-1.0)

Respond with a JSON object: {"events": [...]}. Return an empty events array when nothing applies.`,
		userMessage, agentResponse, agentName)
}
