package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/acmeliving/sophie-go/internal/models"
)

// historyWindow is how many recent turns the classifier sees.
const historyWindow = 30

// contactKeywords mark an assistant message as a contact-info request. If
// the previous assistant turn was tour scheduling and contained one of
// these, the user's reply is treated as part of that flow regardless of
// what it looks like on its own (a bare phone number or name would
// otherwise classify as general_info).
var contactKeywords = []string{"name", "email", "phone", "contact", "reach you", "full name"}

const classifyPromptFormat = `You are an intent classifier for a senior living sales assistant.

Classify the user's intent into ONE category:
- pricing: Cost, fees, monthly rates, what's included in price
- tour_scheduling: Schedule tour, visit, see the community, OR providing contact info (name/email/phone) during tour booking
- amenities: Facilities, services, activities, dining, what's available
- financing: Medicaid, insurance, payment options, financial assistance
- general_info: Everything else (contact info, policies, room types, care types, etc.)

IMPORTANT:
- If the assistant just asked for name, email, or phone number, and the user is responding with that information, classify as "tour_scheduling"
- Look at the recent conversation to detect ongoing information collection flows
- A phone number, email, or name by itself during tour scheduling should be classified as "tour_scheduling"

User message: %s
Recent context:
%s

Return ONLY the category name, nothing else.`

// ClassifyIntent determines the intent of the user message. A rule-based
// check runs first: when the last assistant turn was tour scheduling and
// asked for contact details, the intent stays tour_scheduling without an
// LLM call. The LLM's answer is lower-cased, trimmed, and accepted
// verbatim; routing handles anything off the known list.
func (p *Pipeline) ClassifyIntent(ctx context.Context, userMessage string, history []models.Turn) (models.Intent, error) {
	window := lastN(history, historyWindow)

	if last := models.LastAssistantTurn(window); last != nil && last.Intent == models.IntentTourScheduling {
		msg := strings.ToLower(last.Content)
		for _, kw := range contactKeywords {
			if strings.Contains(msg, kw) {
				return models.IntentTourScheduling, nil
			}
		}
	}

	prompt := fmt.Sprintf(classifyPromptFormat, userMessage, formatHistory(window))
	raw, err := p.model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("classify intent: %w", err)
	}

	return models.Intent(strings.ToLower(strings.TrimSpace(raw))), nil
}

// lastN returns the trailing n elements of turns.
func lastN(turns []models.Turn, n int) []models.Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

// formatHistory renders turns as "role: content" lines for prompt context.
func formatHistory(turns []models.Turn) string {
	if len(turns) == 0 {
		return "(no prior conversation)"
	}
	var b strings.Builder
	for _, t := range turns {
		if t.Content == "" {
			continue
		}
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
