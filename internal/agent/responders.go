package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/acmeliving/sophie-go/internal/models"
)

// responder generates the reply for one intent. It writes AgentResponse and
// RAGContext on the state. Retrieval or generation failure fails the turn.
type responder func(ctx context.Context, state *models.ConversationState) error

// route maps an intent to its specialist. Unknown intents fall back to the
// general responder; routing never errors.
func (p *Pipeline) route(intent models.Intent) responder {
	switch intent {
	case models.IntentPricing:
		return p.respondPricing
	case models.IntentTourScheduling:
		return p.respondTour
	case models.IntentAmenities:
		return p.respondAmenities
	case models.IntentFinancing:
		return p.respondFinancing
	case models.IntentGeneralInfo:
		return p.respondGeneral
	default:
		return p.respondGeneral
	}
}

// RunSpecialist invokes a single responder directly, outside the normal
// classify-respond-extract sequence. Used by the agent test endpoint.
func (p *Pipeline) RunSpecialist(ctx context.Context, intent models.Intent, state *models.ConversationState) error {
	state.Intent = intent
	return p.route(intent)(ctx, state)
}

const pricingPromptFormat = `You are %s, a sales specialist at %s.

Answer the user's pricing question using ONLY the facts provided below.

PRICING FACTS:
- Community starts at $2,000/month
- Assisted Living starts from $3,000/month
- Independent Living starts from $2,000/month
- Entrance fee: $3,500
- Included in monthly cost: Basic Cable, Internet/WiFi, Linen Service, Breakfast, Lunch, Dinner, Housekeeping
- You do NOT have information on pricing per room type or size

Additional Knowledge Base:
%s

Guidelines:
- Be warm and conversational
- Provide the specific pricing information above when asked about costs
- If asked about specific room pricing, say: "I don't have pricing per room type, but I can share our general rates. Would you like to hear those?"
- After answering, ALWAYS suggest scheduling a tour
- Keep response to 2-3 sentences maximum

Conversation history:
%s

User's question: %s

Your response:`

func (p *Pipeline) respondPricing(ctx context.Context, state *models.ConversationState) error {
	snippets, err := p.retriever.Search(ctx, state.UserMessage, []string{"pricing"}, 3)
	if err != nil {
		return fmt.Errorf("pricing retrieval: %w", err)
	}
	state.RAGContext = snippets

	prompt := fmt.Sprintf(pricingPromptFormat,
		p.opts.AgentName, p.opts.CommunityName,
		knowledgeContext(snippets),
		formatHistory(lastN(state.History, 2)),
		state.UserMessage)

	return p.generateResponse(ctx, state, prompt)
}

const amenitiesPromptFormat = `You are %s, a specialist in community amenities and policies at %s.

Answer the user's question using ONLY the facts below.

Available Information:
%s

Guidelines:
- Answer questions about amenities, services, activities, AND policies (pets, cars, parking, smoking, visiting, etc.)
- List 2-3 specific items from the category they asked about
- Be clear and direct when we have the information
- If something is NOT in the knowledge base, say: "I don't have specific information about that, but I can connect you with our team to find out."
- Be enthusiastic but factual
- Keep response to 2-3 sentences

User's question: %s

Your response:`

// amenityCategories covers everything the amenities specialist may be asked
// about, including policy questions like pets and parking.
var amenityCategories = []string{"amenities", "services", "activities", "dietary", "room_amenities", "policies"}

func (p *Pipeline) respondAmenities(ctx context.Context, state *models.ConversationState) error {
	snippets, err := p.retriever.Search(ctx, state.UserMessage, amenityCategories, 3)
	if err != nil {
		return fmt.Errorf("amenities retrieval: %w", err)
	}
	state.RAGContext = snippets

	prompt := fmt.Sprintf(amenitiesPromptFormat,
		p.opts.AgentName, p.opts.CommunityName,
		knowledgeContext(snippets),
		state.UserMessage)

	return p.generateResponse(ctx, state, prompt)
}

const financingPromptFormat = `You are %s, a financial specialist at %s.

Answer the user's question using ONLY the facts below.

Available Information:
%s

Guidelines:
- If asked about Medicaid: YES, we participate in Medicaid programs
- If asked about insurance: We do NOT accept long term care insurance
- If asked about veterans: Veterans may be eligible for Veterans benefits
- If asked about payment help: We offer bridge loans for homeowners and participate in HUD programs
- Be clear and direct about what we accept and don't accept
- Keep response to 2-3 sentences

User's question: %s

Your response:`

func (p *Pipeline) respondFinancing(ctx context.Context, state *models.ConversationState) error {
	snippets, err := p.retriever.Search(ctx, state.UserMessage, []string{"financing"}, 3)
	if err != nil {
		return fmt.Errorf("financing retrieval: %w", err)
	}
	state.RAGContext = snippets

	prompt := fmt.Sprintf(financingPromptFormat,
		p.opts.AgentName, p.opts.CommunityName,
		knowledgeContext(snippets),
		state.UserMessage)

	return p.generateResponse(ctx, state, prompt)
}

const generalPromptFormat = `You are %s, a sales specialist at %s.

Answer the user's question using ONLY the facts below.

Available Information:
%s

Guidelines:
- Use the provided facts to answer
- If the knowledge base doesn't contain the answer, say: "I don't have specific information about that. Would you like me to connect you with our team?"
- Be warm and helpful
- Keep response to 2-3 sentences

User's question: %s

Your response:`

func (p *Pipeline) respondGeneral(ctx context.Context, state *models.ConversationState) error {
	snippets, err := p.retriever.Search(ctx, state.UserMessage, nil, 5)
	if err != nil {
		return fmt.Errorf("general retrieval: %w", err)
	}
	state.RAGContext = snippets

	prompt := fmt.Sprintf(generalPromptFormat,
		p.opts.AgentName, p.opts.CommunityName,
		knowledgeContext(snippets),
		state.UserMessage)

	return p.generateResponse(ctx, state, prompt)
}

// generateResponse runs the LLM and stores the trimmed reply.
func (p *Pipeline) generateResponse(ctx context.Context, state *models.ConversationState, prompt string) error {
	reply, err := p.model.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generate response: %w", err)
	}
	state.AgentResponse = strings.TrimSpace(reply)
	return nil
}

// knowledgeContext renders snippets as a bullet list for prompt grounding.
func knowledgeContext(snippets []models.KnowledgeSnippet) string {
	if len(snippets) == 0 {
		return "(no matching knowledge base entries)"
	}
	lines := make([]string, 0, len(snippets))
	for _, s := range snippets {
		lines = append(lines, "- "+s.Content)
	}
	return strings.Join(lines, "\n")
}
