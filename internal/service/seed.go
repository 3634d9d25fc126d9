package service

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/acmeliving/sophie-go/internal/models"
)

//go:embed knowledge.yaml
var knowledgeYAML []byte

// SeedStore is the write surface for knowledge seeding. Satisfied by
// db.Client.
type SeedStore interface {
	CreateKnowledge(ctx context.Context, category, content string, metadata map[string]any, embedding []float32) (*models.Knowledge, error)
	CountKnowledge(ctx context.Context) (int, error)
	DeleteAllKnowledge(ctx context.Context) error
}

// SeedEmbedder embeds fact content. Satisfied by llm.Embedder.
type SeedEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type seedFile struct {
	Facts []seedFact `yaml:"facts"`
}

type seedFact struct {
	Category string         `yaml:"category"`
	Content  string         `yaml:"content"`
	Metadata map[string]any `yaml:"metadata"`
}

// SeedResult reports what a seeding run did.
type SeedResult struct {
	Total   int
	Created int
	Failed  int
}

// Seeder loads the embedded fact file into the knowledge base, embedding
// each fact on the way in.
type Seeder struct {
	store    SeedStore
	embedder SeedEmbedder
}

func NewSeeder(store SeedStore, embedder SeedEmbedder) *Seeder {
	return &Seeder{store: store, embedder: embedder}
}

// Seed embeds and stores every fact. With reset true the existing
// knowledge base is cleared first; otherwise seeding is skipped when facts
// already exist. All facts go to the embedding provider in one batch call;
// individual store failures are logged and counted, not fatal.
func (s *Seeder) Seed(ctx context.Context, reset bool) (*SeedResult, error) {
	var file seedFile
	if err := yaml.Unmarshal(knowledgeYAML, &file); err != nil {
		return nil, fmt.Errorf("parse knowledge file: %w", err)
	}

	if reset {
		if err := s.store.DeleteAllKnowledge(ctx); err != nil {
			return nil, err
		}
	} else {
		count, err := s.store.CountKnowledge(ctx)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			slog.Info("knowledge base already seeded", "facts", count)
			return &SeedResult{Total: len(file.Facts)}, nil
		}
	}

	contents := make([]string, len(file.Facts))
	for i, fact := range file.Facts {
		contents[i] = fact.Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("embed facts: %w", err)
	}

	result := &SeedResult{Total: len(file.Facts)}
	for i, fact := range file.Facts {
		if _, err := s.store.CreateKnowledge(ctx, fact.Category, fact.Content, fact.Metadata, embeddings[i]); err != nil {
			slog.Error("failed to store fact",
				"category", fact.Category, "error", err)
			result.Failed++
			continue
		}
		result.Created++
	}

	slog.Info("knowledge base seeded",
		"total", result.Total, "created", result.Created, "failed", result.Failed)
	return result, nil
}
