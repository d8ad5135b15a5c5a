package services

import (
	"strings"
	"testing"
)

func TestComposeItineraryPrompt(t *testing.T) {
	params := PromptParams{
		Destination: "Lisbon",
		DateRange:   "Sep 10, 2026 to Sep 14, 2026",
		GroupSize:   3,
		Members: []MemberPreference{
			{
				Name:          "Alice",
				TravelStyle:   []string{"slow travel", "culture"},
				Budget:        500,
				MustHaves:     []string{"castle"},
				AvoidList:     []string{"nightclubs"},
				FoodPrefs:     []string{"vegetarian"},
				ActivityLevel: "Low",
			},
			{Name: "Carol", AdditionalNotes: "afraid of heights"},
		},
	}

	prompt := ComposeItineraryPrompt(params)

	for _, want := range []string{
		"group of 3 people to Lisbon",
		"during Sep 10, 2026 to Sep 14, 2026",
		"- Alice: Travel style: slow travel, culture. Budget: $500. Must-haves: castle. " +
			"Wants to avoid: nightclubs. Food preferences: vegetarian. Activity level: Low.",
		"- Carol: Additional notes: afraid of heights",
		"suggest compromises or optional activities",
		`"suitableFor"`,
		`"optionalFor"`,
		`"estimatedTotalCost"`,
		`"destination": "Lisbon"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q\nprompt:\n%s", want, prompt)
		}
	}

	// Absent fields are omitted, not rendered as empty placeholders.
	for _, unwanted := range []string{
		"Budget: $0",
		"Travel style: .",
		"Must-haves: .",
	} {
		if strings.Contains(prompt, unwanted) {
			t.Fatalf("prompt contains empty placeholder %q", unwanted)
		}
	}

	if again := ComposeItineraryPrompt(params); again != prompt {
		t.Fatal("prompt composition must be deterministic")
	}
}
