package services

import (
	"fmt"
	"strings"
)

// MemberPreference is one group member's name plus the preference fields the
// prompt should describe. Empty fields are omitted from the prompt line.
type MemberPreference struct {
	Name            string
	TravelStyle     []string
	Budget          int
	MustHaves       []string
	AvoidList       []string
	FoodPrefs       []string
	ActivityLevel   string
	AdditionalNotes string
}

// PromptParams are the trip parameters the composer serializes.
type PromptParams struct {
	Destination string
	DateRange   string // human-readable, "Flexible" when no dates given
	GroupSize   int
	Members     []MemberPreference
}

// ComposeItineraryPrompt builds the natural-language request sent to the
// generation model. Deterministic, no side effects. Callers must not pass an
// empty member list; generation is rejected upstream before composing.
func ComposeItineraryPrompt(params PromptParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a detailed travel itinerary for a group of %d people to %s during %s.\n\n",
		params.GroupSize, params.Destination, params.DateRange)

	b.WriteString("Group members and their preferences:\n")

	for _, member := range params.Members {
		fmt.Fprintf(&b, "- %s: ", member.Name)

		if len(member.TravelStyle) > 0 {
			fmt.Fprintf(&b, "Travel style: %s. ", strings.Join(member.TravelStyle, ", "))
		}
		if member.Budget > 0 {
			fmt.Fprintf(&b, "Budget: $%d. ", member.Budget)
		}
		if len(member.MustHaves) > 0 {
			fmt.Fprintf(&b, "Must-haves: %s. ", strings.Join(member.MustHaves, ", "))
		}
		if len(member.AvoidList) > 0 {
			fmt.Fprintf(&b, "Wants to avoid: %s. ", strings.Join(member.AvoidList, ", "))
		}
		if len(member.FoodPrefs) > 0 {
			fmt.Fprintf(&b, "Food preferences: %s. ", strings.Join(member.FoodPrefs, ", "))
		}
		if member.ActivityLevel != "" {
			fmt.Fprintf(&b, "Activity level: %s. ", member.ActivityLevel)
		}
		if member.AdditionalNotes != "" {
			fmt.Fprintf(&b, "Additional notes: %s", member.AdditionalNotes)
		}

		b.WriteString("\n")
	}

	b.WriteString("\nPlease create a balanced itinerary that tries to accommodate everyone's preferences. " +
		"When there are conflicts, suggest compromises or optional activities that people can choose. " +
		"Structure the itinerary by day, with activities, meals, and accommodations.\n\n")

	b.WriteString("Format the response as a structured JSON object with the following format:\n")
	fmt.Fprintf(&b, `{
    "destination": "%s",
    "days": [
      {
        "day": 1,
        "date": "YYYY-MM-DD",
        "activities": [
          {
            "time": "Morning",
            "activity": "Visit X attraction",
            "description": "Description of activity",
            "suitableFor": ["Person1", "Person2"],
            "optionalFor": ["Person3"],
            "estimatedCost": "$XX"
          }
        ],
        "meals": [
          {
            "type": "Breakfast/Lunch/Dinner",
            "suggestion": "Restaurant or meal type",
            "accommodates": ["dietary preferences"]
          }
        ],
        "accommodation": {
          "name": "Hotel/Airbnb name",
          "description": "Brief description",
          "estimatedCost": "$XX"
        }
      }
    ],
    "summary": {
      "highlights": ["Highlight 1", "Highlight 2"],
      "compromises": ["Compromise made for X and Y preferences"],
      "estimatedTotalCost": "$XXX per person"
    }
  }`, params.Destination)

	return b.String()
}
