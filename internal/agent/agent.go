// Package agent implements the conversational sales pipeline: intent
// classification, specialist response generation grounded in retrieved
// knowledge, enrichment extraction, and understanding merge. The pipeline
// holds no session state; everything it needs arrives in the
// ConversationState and everything it produces is written back to it.
package agent

import (
	"context"
	"time"

	"github.com/acmeliving/sophie-go/internal/metrics"
	"github.com/acmeliving/sophie-go/internal/models"
)

// Generator produces text from a prompt. Satisfied by llm.Model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever returns knowledge snippets for a query. Satisfied by
// rag.Retriever.
type Retriever interface {
	Search(ctx context.Context, query string, categories []string, topK int) ([]models.KnowledgeSnippet, error)
}

// Extractor pulls enrichment events out of a completed exchange. Satisfied
// by llm.EventExtractor.
type Extractor interface {
	ExtractEvents(ctx context.Context, userMessage, agentResponse string, intent models.Intent) ([]models.EnrichmentEvent, error)
}

// Options carries the persona the prompts speak as.
type Options struct {
	AgentName     string // e.g. "Sophie"
	CommunityName string // e.g. "ACME Senior Living"
}

// Pipeline runs one conversation turn end to end. Safe for concurrent use
// across different sessions; turns for the same session must be serialized
// by the caller.
type Pipeline struct {
	model     Generator
	retriever Retriever
	extractor Extractor
	collector *metrics.Collector
	opts      Options

	// injectable for tests; the tour responder embeds the current time
	now func() time.Time
}

func NewPipeline(model Generator, retriever Retriever, extractor Extractor, collector *metrics.Collector, opts Options) *Pipeline {
	if opts.AgentName == "" {
		opts.AgentName = "Sophie"
	}
	if opts.CommunityName == "" {
		opts.CommunityName = "ACME Senior Living"
	}
	return &Pipeline{
		model:     model,
		retriever: retriever,
		extractor: extractor,
		collector: collector,
		opts:      opts,
		now:       time.Now,
	}
}
