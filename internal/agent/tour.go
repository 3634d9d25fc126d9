package agent

import (
	"context"
	"fmt"

	"github.com/acmeliving/sophie-go/internal/models"
)

const tourPromptFormat = `You are %s, a tour scheduling specialist at %s.

Tour Availability:
%s
Tours are available Monday-Friday from 9:00 AM to 6:00 PM. We are closed on weekends.

Current date and time: %s

Recent conversation:
%s

User's latest message: %s

YOUR TASK: Help schedule a tour by collecting: date/time, name, email, and phone.

INSTRUCTIONS:
1. If user requests a tour, suggest a specific Monday-Friday time between 9 AM-6 PM
2. If they request weekend/outside hours, politely offer Monday-Friday alternative
3. Once they confirm a time works, collect contact info in order: name -> email -> phone

HOW TO COLLECT CONTACT INFO:
- Look at your last message to see what you just asked for
- If you asked "Could you provide your full name?" and got a name -> ask for EMAIL next
- If you asked for email and got an email address -> ask for PHONE next
- If you asked for phone and got a phone number -> confirm the tour is scheduled

IMPORTANT RULES:
- Only ask for ONE piece of information per message
- NEVER repeat a question you just asked
- Progress forward: name -> email -> phone
- Keep responses short (2-3 sentences)

Your response:`

// respondTour handles tour scheduling. Unlike the other specialists it
// queries with a fixed availability query instead of the user message, and
// embeds the current date so the model can resolve "tomorrow" or "next
// Tuesday".
func (p *Pipeline) respondTour(ctx context.Context, state *models.ConversationState) error {
	snippets, err := p.retriever.Search(ctx, "tour availability hours", []string{"tour"}, 1)
	if err != nil {
		return fmt.Errorf("tour retrieval: %w", err)
	}
	state.RAGContext = snippets

	currentDatetime := p.now().Format("Monday, January 02, 2006, 03:04 PM")

	prompt := fmt.Sprintf(tourPromptFormat,
		p.opts.AgentName, p.opts.CommunityName,
		knowledgeContext(snippets),
		currentDatetime,
		formatHistory(lastN(state.History, historyWindow)),
		state.UserMessage)

	return p.generateResponse(ctx, state, prompt)
}
