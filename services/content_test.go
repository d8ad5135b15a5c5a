package services

import (
	"strings"
	"testing"
)

const validContent = `{
  "destination": "Lisbon",
  "days": [
    {
      "day": 1,
      "date": "2026-09-10",
      "activities": [{"time": "Morning", "activity": "Alfama walking tour", "description": "", "suitableFor": ["Alice"], "optionalFor": [], "estimatedCost": "$20"}],
      "meals": [{"type": "Dinner", "suggestion": "Time Out Market", "accommodates": ["vegetarian"]}],
      "accommodation": {"name": "Baixa guesthouse", "description": "", "estimatedCost": "$90"}
    }
  ],
  "summary": {"highlights": ["Alfama"], "compromises": [], "estimatedTotalCost": "$450 per person"}
}`

func TestParseItineraryContent(t *testing.T) {
	content, err := ParseItineraryContent(validContent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Destination != "Lisbon" {
		t.Fatalf("expected destination Lisbon, got %q", content.Destination)
	}
	if len(content.Days) != 1 || content.Days[0].Day != 1 {
		t.Fatalf("unexpected days: %+v", content.Days)
	}
}

func TestParseItineraryContentRejections(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"not json", "itinerary: day one we walk", "not valid JSON"},
		{"missing destination", strings.Replace(validContent, `"destination": "Lisbon",`, "", 1), "missing destination"},
		{"no days", `{"destination": "Lisbon", "days": [], "summary": {"highlights": ["x"]}}`, "no days"},
		{
			"bad day number",
			strings.Replace(validContent, `"day": 1`, `"day": 0`, 1),
			"invalid day number",
		},
		{
			"activity without name",
			strings.Replace(validContent, `"activity": "Alfama walking tour"`, `"activity": ""`, 1),
			"has no name",
		},
		{
			"missing summary",
			strings.Replace(validContent,
				`"summary": {"highlights": ["Alfama"], "compromises": [], "estimatedTotalCost": "$450 per person"}`,
				`"summary": {}`, 1),
			"missing summary",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseItineraryContent(tc.raw)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
