package services

import (
	"encoding/json"
	"fmt"
)

// ItineraryContent is the document shape the generation model is instructed
// to produce. The raw JSON is persisted verbatim once it validates.
type ItineraryContent struct {
	Destination string           `json:"destination"`
	Days        []ItineraryDay   `json:"days"`
	Summary     ItinerarySummary `json:"summary"`
}

type ItineraryDay struct {
	Day           int                 `json:"day"`
	Date          string              `json:"date"`
	Activities    []ItineraryActivity `json:"activities"`
	Meals         []ItineraryMeal     `json:"meals"`
	Accommodation ItineraryStay       `json:"accommodation"`
}

type ItineraryActivity struct {
	Time          string   `json:"time"`
	Activity      string   `json:"activity"`
	Description   string   `json:"description"`
	SuitableFor   []string `json:"suitableFor"`
	OptionalFor   []string `json:"optionalFor"`
	EstimatedCost string   `json:"estimatedCost"`
}

type ItineraryMeal struct {
	Type         string   `json:"type"`
	Suggestion   string   `json:"suggestion"`
	Accommodates []string `json:"accommodates"`
}

type ItineraryStay struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	EstimatedCost string `json:"estimatedCost"`
}

type ItinerarySummary struct {
	Highlights         []string `json:"highlights"`
	Compromises        []string `json:"compromises"`
	EstimatedTotalCost string   `json:"estimatedTotalCost"`
}

// ParseItineraryContent decodes and validates a generated document. The model
// only promises the shape by instruction, so nothing is persisted before it
// passes here.
func ParseItineraryContent(raw string) (*ItineraryContent, error) {
	var content ItineraryContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, fmt.Errorf("itinerary content is not valid JSON: %w", err)
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	return &content, nil
}

// Validate checks the invariants the rest of the system relies on.
func (c *ItineraryContent) Validate() error {
	if c.Destination == "" {
		return fmt.Errorf("itinerary content missing destination")
	}
	if len(c.Days) == 0 {
		return fmt.Errorf("itinerary content has no days")
	}
	for i, day := range c.Days {
		if day.Day <= 0 {
			return fmt.Errorf("day %d has invalid day number %d", i+1, day.Day)
		}
		if len(day.Activities) == 0 {
			return fmt.Errorf("day %d has no activities", day.Day)
		}
		for j, activity := range day.Activities {
			if activity.Activity == "" {
				return fmt.Errorf("day %d activity %d has no name", day.Day, j+1)
			}
		}
	}
	if len(c.Summary.Highlights) == 0 && len(c.Summary.Compromises) == 0 && c.Summary.EstimatedTotalCost == "" {
		return fmt.Errorf("itinerary content missing summary")
	}
	return nil
}
