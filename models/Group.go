package models

import (
	"time"

	"gorm.io/gorm"
)

// Group is a set of users planning a trip together, with one owner.
type Group struct {
	gorm.Model
	Name        string     `json:"name" gorm:"size:120;not null"`
	Description string     `json:"description"`
	Destination string     `json:"destination" gorm:"size:120"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`

	OwnerID uint `json:"ownerID" gorm:"not null;index"`
	Owner   User `json:"owner" gorm:"foreignKey:OwnerID"`

	Members     []GroupMember `json:"members,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Itineraries []Itinerary   `json:"itineraries,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// GroupMember links a user to a group.
// role: owner, member. The owner row is created with the group and never removed.
// Removal is a hard delete so a user can leave and rejoin the same group.
type GroupMember struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	UserID  uint   `json:"userID" gorm:"not null;uniqueIndex:idx_group_member"`
	User    User   `json:"user" gorm:"foreignKey:UserID"`
	GroupID uint   `json:"groupID" gorm:"not null;uniqueIndex:idx_group_member"`
	Group   *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`

	Role string `json:"role" gorm:"size:16;default:member"`
}
