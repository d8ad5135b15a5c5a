package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLevels are the accepted values for Preference.ActivityLevel.
var ActivityLevels = []string{"Low", "Medium", "High"}

// Preference holds one user's structured travel preferences.
// Exactly one record per user; list fields are stored as JSON arrays.
type Preference struct {
	gorm.Model
	UserID uint `json:"userID" gorm:"uniqueIndex;not null"`

	TravelStyle     datatypes.JSON `json:"travelStyle"`
	Budget          int            `json:"budget"`
	MustHaves       datatypes.JSON `json:"mustHaves"`
	AvoidList       datatypes.JSON `json:"avoidList"`
	FoodPrefs       datatypes.JSON `json:"foodPrefs"`
	ActivityLevel   string         `json:"activityLevel" gorm:"size:16"`
	AdditionalNotes string         `json:"additionalNotes"`
}

// TravelStyleList decodes the travel style column into a string slice.
func (p *Preference) TravelStyleList() []string { return decodeStringList(p.TravelStyle) }

// MustHaveList decodes the must-haves column into a string slice.
func (p *Preference) MustHaveList() []string { return decodeStringList(p.MustHaves) }

// AvoidListItems decodes the avoid-list column into a string slice.
func (p *Preference) AvoidListItems() []string { return decodeStringList(p.AvoidList) }

// FoodPrefList decodes the food preferences column into a string slice.
func (p *Preference) FoodPrefList() []string { return decodeStringList(p.FoodPrefs) }

// Custom JSON marshaling to render the list columns as string slices
func (p *Preference) MarshalJSON() ([]byte, error) {
	type Alias Preference
	aux := &struct {
		TravelStyle []string `json:"travelStyle"`
		MustHaves   []string `json:"mustHaves"`
		AvoidList   []string `json:"avoidList"`
		FoodPrefs   []string `json:"foodPrefs"`
		*Alias
	}{
		TravelStyle: p.TravelStyleList(),
		MustHaves:   p.MustHaveList(),
		AvoidList:   p.AvoidListItems(),
		FoodPrefs:   p.FoodPrefList(),
		Alias:       (*Alias)(p),
	}

	return json.Marshal(aux)
}

func decodeStringList(col datatypes.JSON) []string {
	out := []string{}
	if col == nil {
		return out
	}
	if err := json.Unmarshal(col, &out); err != nil {
		return []string{}
	}
	return out
}

// EncodeStringList converts a string slice into a JSON column value.
func EncodeStringList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
