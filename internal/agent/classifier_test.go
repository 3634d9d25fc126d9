package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/acmeliving/sophie-go/internal/models"
)

type fakeGenerator struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.reply, f.err
}

func newTestPipeline(gen *fakeGenerator) *Pipeline {
	return NewPipeline(gen, &fakeRetriever{}, &fakeExtractor{}, nil, Options{})
}

func TestClassifyIntentLLMPath(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  models.Intent
	}{
		{"clean label", "pricing", models.IntentPricing},
		{"whitespace trimmed", "  financing\n", models.IntentFinancing},
		{"upper case normalized", "AMENITIES", models.IntentAmenities},
		{"unknown label accepted verbatim", "chitchat", models.Intent("chitchat")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(&fakeGenerator{reply: tt.reply})
			got, err := p.ClassifyIntent(context.Background(), "hello", nil)
			if err != nil {
				t.Fatalf("ClassifyIntent failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Intent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyIntentStickyTourOverride(t *testing.T) {
	gen := &fakeGenerator{reply: "general_info"}
	p := newTestPipeline(gen)

	history := []models.Turn{
		{Role: models.RoleUser, Content: "Can I come visit?"},
		{
			Role:    models.RoleAssistant,
			Content: "Of course! Could you provide your full name?",
			Intent:  models.IntentTourScheduling,
		},
	}

	got, err := p.ClassifyIntent(context.Background(), "Eric Smith", history)
	if err != nil {
		t.Fatalf("ClassifyIntent failed: %v", err)
	}
	if got != models.IntentTourScheduling {
		t.Errorf("Intent = %q, want tour_scheduling via override", got)
	}
	if gen.calls != 0 {
		t.Errorf("Expected no LLM call when override fires, got %d", gen.calls)
	}
}

func TestClassifyIntentOverrideNeedsKeyword(t *testing.T) {
	gen := &fakeGenerator{reply: "amenities"}
	p := newTestPipeline(gen)

	// Last assistant turn was tour scheduling but did not ask for contact
	// details, so the override must not fire.
	history := []models.Turn{
		{
			Role:    models.RoleAssistant,
			Content: "Tours run Monday through Friday. Does Thursday work?",
			Intent:  models.IntentTourScheduling,
		},
	}

	got, err := p.ClassifyIntent(context.Background(), "What activities do you have?", history)
	if err != nil {
		t.Fatalf("ClassifyIntent failed: %v", err)
	}
	if got != models.IntentAmenities {
		t.Errorf("Intent = %q, want amenities from LLM", got)
	}
	if gen.calls != 1 {
		t.Errorf("Expected one LLM call, got %d", gen.calls)
	}
}

func TestClassifyIntentOverrideNeedsTourIntent(t *testing.T) {
	gen := &fakeGenerator{reply: "general_info"}
	p := newTestPipeline(gen)

	// Keyword present but last assistant intent was not tour_scheduling.
	history := []models.Turn{
		{
			Role:    models.RoleAssistant,
			Content: "You can reach our team by phone or email.",
			Intent:  models.IntentGeneralInfo,
		},
	}

	got, err := p.ClassifyIntent(context.Background(), "555-1234", history)
	if err != nil {
		t.Fatalf("ClassifyIntent failed: %v", err)
	}
	if got != models.IntentGeneralInfo {
		t.Errorf("Intent = %q, want general_info from LLM", got)
	}
	if gen.calls != 1 {
		t.Errorf("Expected one LLM call, got %d", gen.calls)
	}
}

func TestClassifyIntentHistoryWindow(t *testing.T) {
	gen := &fakeGenerator{reply: "pricing"}
	p := newTestPipeline(gen)

	history := make([]models.Turn, 0, 40)
	for i := 0; i < 40; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		content := "old message"
		if i >= 10 {
			content = "recent message"
		}
		history = append(history, models.Turn{Role: role, Content: content})
	}

	if _, err := p.ClassifyIntent(context.Background(), "how much?", history); err != nil {
		t.Fatalf("ClassifyIntent failed: %v", err)
	}

	if strings.Contains(gen.lastPrompt, "old message") {
		t.Error("Prompt contains turns outside the 30-entry window")
	}
	if !strings.Contains(gen.lastPrompt, "recent message") {
		t.Error("Prompt missing recent turns")
	}
}

func TestClassifyIntentGenerateError(t *testing.T) {
	wantErr := errors.New("rate limit")
	p := newTestPipeline(&fakeGenerator{err: wantErr})

	_, err := p.ClassifyIntent(context.Background(), "hello", nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected generate error to propagate, got %v", err)
	}
}
