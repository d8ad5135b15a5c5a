package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"tripmeld-server/models"
	"tripmeld-server/storage"
	"tripmeld-server/utils"
)

// NotificationService handles all push notification logic
type NotificationService struct{}

// NewNotificationService creates a new notification service instance
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotificationData represents the data payload for notifications
type NotificationData struct {
	Type        string `json:"type"`
	GroupID     string `json:"groupId,omitempty"`
	ItineraryID string `json:"itineraryId,omitempty"`
	Screen      string `json:"screen"`
}

// getUserPushTokens retrieves all push tokens for a user
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}

	return tokens, nil
}

// SendNotificationToUser sends a notification to a specific user
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body string, data NotificationData) error {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		return err
	}

	dataMap := map[string]string{
		"type":        data.Type,
		"groupId":     data.GroupID,
		"itineraryId": data.ItineraryID,
		"screen":      data.Screen,
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, dataMap); err != nil {
			log.Printf("Failed to send notification to token %s: %v", token, err)
			lastError = err
		}
	}

	return lastError
}

// SendItineraryDraftNotification tells every group member except the
// requester that a new draft is ready to review. Best effort; callers must
// not fail the request on a notification error.
func (ns *NotificationService) SendItineraryDraftNotification(group models.Group, itineraryID uint, requesterID uint) {
	title := "New itinerary draft"
	body := fmt.Sprintf("A new itinerary for %s is ready for your votes and comments", group.Destination)

	data := NotificationData{
		Type:        "itinerary_draft",
		GroupID:     strconv.FormatUint(uint64(group.ID), 10),
		ItineraryID: strconv.FormatUint(uint64(itineraryID), 10),
		Screen:      "ItineraryDetail",
	}

	for _, member := range group.Members {
		if member.UserID == requesterID {
			continue
		}
		if err := ns.SendNotificationToUser(member.UserID, title, body, data); err != nil {
			log.Printf("Failed to notify member %d about itinerary %d: %v", member.UserID, itineraryID, err)
		}
	}
}
