package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/acmeliving/sophie-go/internal/metrics"
	"github.com/acmeliving/sophie-go/internal/models"
)

type fakeEmbedder struct {
	embedding []float32
	err       error
	lastText  string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.lastText = text
	return f.embedding, f.err
}

type fakeSearcher struct {
	snippets       []models.KnowledgeSnippet
	err            error
	lastEmbedding  []float32
	lastCategories []string
	lastTopK       int
}

func (f *fakeSearcher) SearchKnowledge(_ context.Context, embedding []float32, categories []string, topK int) ([]models.KnowledgeSnippet, error) {
	f.lastEmbedding = embedding
	f.lastCategories = categories
	f.lastTopK = topK
	return f.snippets, f.err
}

func TestSearchPassesThrough(t *testing.T) {
	embedder := &fakeEmbedder{embedding: []float32{0.1, 0.2}}
	searcher := &fakeSearcher{
		snippets: []models.KnowledgeSnippet{
			{ID: "k1", Category: "pricing", Content: "Starts at $2,000/month", SimilarityScore: 0.92},
		},
	}
	r := NewRetriever(embedder, searcher, metrics.NewCollector())

	got, err := r.Search(context.Background(), "how much does it cost", []string{"pricing"}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if embedder.lastText != "how much does it cost" {
		t.Errorf("Expected query to reach embedder, got %q", embedder.lastText)
	}
	if len(searcher.lastEmbedding) != 2 {
		t.Errorf("Expected embedding to reach searcher, got %v", searcher.lastEmbedding)
	}
	if len(searcher.lastCategories) != 1 || searcher.lastCategories[0] != "pricing" {
		t.Errorf("Expected category filter to pass through, got %v", searcher.lastCategories)
	}
	if searcher.lastTopK != 3 {
		t.Errorf("Expected topK 3, got %d", searcher.lastTopK)
	}
	if len(got) != 1 || got[0].Content != "Starts at $2,000/month" {
		t.Errorf("Unexpected snippets: %v", got)
	}
}

func TestSearchEmbedderError(t *testing.T) {
	wantErr := errors.New("model unavailable")
	r := NewRetriever(&fakeEmbedder{err: wantErr}, &fakeSearcher{}, nil)

	_, err := r.Search(context.Background(), "anything", nil, 5)
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected embedder error to propagate, got %v", err)
	}
}

func TestSearchDBError(t *testing.T) {
	wantErr := errors.New("connection lost")
	r := NewRetriever(&fakeEmbedder{embedding: []float32{1}}, &fakeSearcher{err: wantErr}, nil)

	_, err := r.Search(context.Background(), "anything", nil, 5)
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected search error to propagate, got %v", err)
	}
}
