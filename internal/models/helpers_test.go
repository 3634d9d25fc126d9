package models

import "testing"

func TestTitleWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word", "dementia", "Dementia"},
		{"two words", "memory care", "Memory Care"},
		{"already titled", "Memory Care", "Memory Care"},
		{"all caps", "ASAP", "Asap"},
		{"extra spaces", "  memory   care ", "Memory Care"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TitleWords(tt.in)
			if got != tt.want {
				t.Errorf("TitleWords(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHumanizeLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"snake case", "assisted_living", "Assisted Living"},
		{"single label", "immediate", "Immediate"},
		{"already spaced", "memory care", "Memory Care"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HumanizeLabel(tt.in)
			if got != tt.want {
				t.Errorf("HumanizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLastAssistantTurn(t *testing.T) {
	history := []Turn{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello", Intent: IntentGeneralInfo},
		{Role: RoleUser, Content: "how much?"},
		{Role: RoleAssistant, Content: "from $2,000", Intent: IntentPricing},
		{Role: RoleUser, Content: "thanks"},
	}

	turn := LastAssistantTurn(history)
	if turn == nil {
		t.Fatal("expected an assistant turn")
	}
	if turn.Intent != IntentPricing {
		t.Errorf("got intent %q, want %q", turn.Intent, IntentPricing)
	}

	if got := LastAssistantTurn([]Turn{{Role: RoleUser, Content: "hi"}}); got != nil {
		t.Errorf("expected nil for user-only history, got %+v", got)
	}
	if got := LastAssistantTurn(nil); got != nil {
		t.Errorf("expected nil for empty history, got %+v", got)
	}
}
