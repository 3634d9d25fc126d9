package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/acmeliving/sophie-go/internal/metrics"
	"github.com/acmeliving/sophie-go/internal/models"
)

// RunTurn executes one conversation turn: classify, respond, extract,
// merge. Classification and response failures fail the turn; extraction
// failures degrade to an empty event list so the user still gets a reply.
func (p *Pipeline) RunTurn(ctx context.Context, state *models.ConversationState) error {
	start := time.Now()
	defer func() {
		if p.collector != nil {
			p.collector.RecordTiming(metrics.OpTurn, time.Since(start))
		}
	}()

	intent, err := p.ClassifyIntent(ctx, state.UserMessage, state.History)
	if err != nil {
		return err
	}
	state.Intent = intent

	if err := p.route(intent)(ctx, state); err != nil {
		return err
	}

	events, err := p.extractor.ExtractEvents(ctx, state.UserMessage, state.AgentResponse, state.Intent)
	if err != nil {
		slog.Error("enrichment extraction failed, continuing without events",
			"session_id", state.SessionID,
			"intent", state.Intent,
			"error", err)
		events = []models.EnrichmentEvent{}
	}
	state.Events = events

	if state.Understanding == nil {
		state.Understanding = &models.Understanding{}
	}
	ApplyEvents(state.Understanding, events)

	slog.Debug("turn complete",
		"session_id", state.SessionID,
		"intent", state.Intent,
		"events", len(events),
		"duration_ms", time.Since(start).Milliseconds())

	return nil
}
