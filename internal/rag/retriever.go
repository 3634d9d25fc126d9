// Package rag retrieves knowledge-base snippets for grounding agent
// responses. Retrieval is embed-then-KNN over the knowledge table.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/acmeliving/sophie-go/internal/metrics"
	"github.com/acmeliving/sophie-go/internal/models"
)

// Embedder turns a query into a vector. Satisfied by llm.Embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs the KNN search. Satisfied by db.Client.
type Searcher interface {
	SearchKnowledge(ctx context.Context, embedding []float32, categories []string, topK int) ([]models.KnowledgeSnippet, error)
}

// Retriever wires the embedder and the database into one search call.
type Retriever struct {
	embedder  Embedder
	db        Searcher
	collector *metrics.Collector
}

func NewRetriever(embedder Embedder, db Searcher, collector *metrics.Collector) *Retriever {
	return &Retriever{
		embedder:  embedder,
		db:        db,
		collector: collector,
	}
}

// Search embeds the query and returns the topK most similar snippets,
// optionally restricted to a category set. An empty category slice means
// search everywhere.
func (r *Retriever) Search(ctx context.Context, query string, categories []string, topK int) ([]models.KnowledgeSnippet, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	start := time.Now()
	snippets, err := r.db.SearchKnowledge(ctx, embedding, categories, topK)
	if r.collector != nil {
		r.collector.RecordTiming(metrics.OpDBSearch, time.Since(start))
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("knowledge search",
		"query_len", len(query),
		"categories", categories,
		"top_k", topK,
		"hits", len(snippets))

	return snippets, nil
}
