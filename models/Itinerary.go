package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Itinerary is a structured day-by-day trip plan attached to a group.
// Content holds the generated JSON document verbatim.
type Itinerary struct {
	gorm.Model
	GroupID uint   `json:"groupID" gorm:"not null;index"`
	Group   *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`

	Title       string         `json:"title" gorm:"size:160;not null"`
	Description string         `json:"description"`
	Content     datatypes.JSON `json:"content"`
	IsFinalized bool           `json:"isFinalized" gorm:"default:false"`

	Votes    []Vote    `json:"votes,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Vote is one user's signed vote on an itinerary. One row per
// (user, itinerary) pair; a re-vote overwrites the value in place.
type Vote struct {
	gorm.Model
	UserID      uint `json:"userID" gorm:"not null;uniqueIndex:idx_itinerary_vote"`
	User        User `json:"user" gorm:"foreignKey:UserID"`
	ItineraryID uint `json:"itineraryID" gorm:"not null;uniqueIndex:idx_itinerary_vote"`

	Value int `json:"value"`
}

// Comment is an immutable remark on an itinerary, read newest-first.
type Comment struct {
	gorm.Model
	ItineraryID uint   `json:"itineraryID" gorm:"not null;index"`
	UserID      uint   `json:"userID" gorm:"not null;index"`
	User        User   `json:"user" gorm:"foreignKey:UserID"`
	Content     string `json:"content" gorm:"not null"`
}
