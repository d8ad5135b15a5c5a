package routes

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"tripmeld-server/models"
	"tripmeld-server/services"
	"tripmeld-server/storage"
	"tripmeld-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// generator is the external generation client, injected at startup.
var generator services.ItineraryGenerator

// notifier pushes draft announcements to group members, injected at startup.
var notifier *services.NotificationService

// SetItineraryGenerator injects the generation client used by
// GenerateItinerary. Called once from main; tests swap in a scripted fake.
func SetItineraryGenerator(g services.ItineraryGenerator) {
	generator = g
}

// SetNotificationService injects the push notification service.
func SetNotificationService(ns *services.NotificationService) {
	notifier = ns
}

func GetItineraries(ctx iris.Context) {
	query := storage.DB.
		Preload("Group").
		Preload("Votes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Order("created_at DESC")

	if groupID := ctx.URLParam("groupId"); groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}

	var itineraries []models.Itinerary
	if err := query.Find(&itineraries).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(itineraries)
}

func GetItinerary(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation", "Invalid itinerary ID.", ctx)
		return
	}

	var itinerary models.Itinerary
	err = storage.DB.
		Preload("Group").
		Preload("Votes.User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Comments.User").
		First(&itinerary, id).Error
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(&itinerary)
}

type CreateItineraryInput struct {
	GroupID     uint            `json:"groupId" validate:"required"`
	Title       string          `json:"title" validate:"required,max=160"`
	Description string          `json:"description"`
	Content     json.RawMessage `json:"content" validate:"required"`
}

// CreateItinerary persists a manually entered itinerary. The content must
// conform to the same schema generated drafts do.
func CreateItinerary(ctx iris.Context) {
	var input CreateItineraryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var group models.Group
	if err := storage.DB.First(&group, input.GroupID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if _, err := services.ParseItineraryContent(string(input.Content)); err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation", err.Error(), ctx)
		return
	}

	itinerary := models.Itinerary{
		GroupID:     group.ID,
		Title:       input.Title,
		Description: input.Description,
		Content:     datatypes.JSON(input.Content),
	}
	if err := storage.DB.Create(&itinerary).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&itinerary)
}

type UpdateItineraryInput struct {
	Title       *string         `json:"title" validate:"omitempty,max=160"`
	Description *string         `json:"description"`
	Content     json.RawMessage `json:"content"`
	IsFinalized *bool           `json:"isFinalized"`
}

// UpdateItinerary edits a draft. Finalization is a plain field flip here,
// manual and unconditional; no quorum rule is applied.
func UpdateItinerary(ctx iris.Context) {
	itinerary := getItineraryByID(ctx)
	if itinerary == nil {
		return
	}

	var input UpdateItineraryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Content != nil {
		if _, err := services.ParseItineraryContent(string(input.Content)); err != nil {
			utils.CreateError(iris.StatusBadRequest, "validation", err.Error(), ctx)
			return
		}
		updates["content"] = datatypes.JSON(input.Content)
	}
	if input.IsFinalized != nil {
		updates["is_finalized"] = *input.IsFinalized
	}

	if len(updates) > 0 {
		if err := storage.DB.Model(itinerary).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(itinerary)
}

// DeleteItinerary removes the itinerary with its votes and comments.
func DeleteItinerary(ctx iris.Context) {
	itinerary := getItineraryByID(ctx)
	if itinerary == nil {
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("itinerary_id = ?", itinerary.ID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("itinerary_id = ?", itinerary.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(itinerary).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

type GenerateItineraryInput struct {
	GroupID     uint       `json:"groupId" validate:"required"`
	Destination string     `json:"destination" validate:"required,max=120"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// GenerateItinerary asks the external model for a draft balancing every
// member's preferences and persists it. Members without preferences are
// excluded from the prompt; a group where nobody has preferences is
// rejected before the external service is called.
func GenerateItinerary(ctx iris.Context) {
	var input GenerateItineraryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var group models.Group
	if err := storage.DB.Preload("Members.User.Preference").First(&group, input.GroupID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	members := collectMemberPreferences(group)
	if len(members) == 0 {
		utils.CreateError(iris.StatusBadRequest, "validation",
			"No user preferences found for this group. At least one user needs to set their preferences.", ctx)
		return
	}

	prompt := services.ComposeItineraryPrompt(services.PromptParams{
		Destination: input.Destination,
		DateRange:   formatDateRange(input.StartDate, input.EndDate),
		GroupSize:   len(group.Members),
		Members:     members,
	})

	raw, err := generator.GenerateItinerary(ctx.Request().Context(), prompt)
	if err != nil {
		log.Printf("Itinerary generation failed for group %d: %v", group.ID, err)
		utils.CreateError(iris.StatusInternalServerError, "upstream", "Failed to generate itinerary.", ctx)
		return
	}

	// The model only promises the schema by instruction; reject
	// non-conforming output instead of persisting it.
	if _, err := services.ParseItineraryContent(raw); err != nil {
		log.Printf("Generated itinerary for group %d failed validation: %v", group.ID, err)
		utils.CreateError(iris.StatusInternalServerError, "upstream", "Generation service returned malformed itinerary.", ctx)
		return
	}

	itinerary := models.Itinerary{
		GroupID:     group.ID,
		Title:       fmt.Sprintf("%s Itinerary", input.Destination),
		Description: fmt.Sprintf("AI-generated itinerary for %s", input.Destination),
		Content:     datatypes.JSON(raw),
	}
	if err := storage.DB.Create(&itinerary).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if notifier != nil {
		notifier.SendItineraryDraftNotification(group, itinerary.ID, 0)
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&itinerary)
}

type VoteInput struct {
	UserID uint `json:"userId" validate:"required"`
	Value  *int `json:"value" validate:"required"`
}

// VoteOnItinerary records one signed vote per (user, itinerary) pair.
// Re-voting overwrites the prior value; nothing accumulates. The value is
// any integer; the +1/-1 convention belongs to the client.
func VoteOnItinerary(ctx iris.Context) {
	itinerary := getItineraryByID(ctx)
	if itinerary == nil {
		return
	}

	var input VoteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, input.UserID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	vote := models.Vote{
		UserID:      user.ID,
		ItineraryID: itinerary.ID,
		Value:       *input.Value,
	}
	err := storage.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "itinerary_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&vote).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Where("user_id = ? AND itinerary_id = ?", user.ID, itinerary.ID).First(&vote)

	ctx.JSON(&vote)
}

type CommentInput struct {
	UserID  uint   `json:"userId" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// CommentOnItinerary appends an immutable comment.
func CommentOnItinerary(ctx iris.Context) {
	itinerary := getItineraryByID(ctx)
	if itinerary == nil {
		return
	}

	var input CommentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, input.UserID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	comment := models.Comment{
		ItineraryID: itinerary.ID,
		UserID:      user.ID,
		Content:     input.Content,
	}
	if err := storage.DB.Create(&comment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("User").First(&comment, comment.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&comment)
}

// collectMemberPreferences keeps only the members that set preferences.
func collectMemberPreferences(group models.Group) []services.MemberPreference {
	members := []services.MemberPreference{}
	for _, member := range group.Members {
		pref := member.User.Preference
		if pref == nil {
			continue
		}
		members = append(members, services.MemberPreference{
			Name:            member.User.Name,
			TravelStyle:     pref.TravelStyleList(),
			Budget:          pref.Budget,
			MustHaves:       pref.MustHaveList(),
			AvoidList:       pref.AvoidListItems(),
			FoodPrefs:       pref.FoodPrefList(),
			ActivityLevel:   pref.ActivityLevel,
			AdditionalNotes: pref.AdditionalNotes,
		})
	}
	return members
}

func formatDateRange(start, end *time.Time) string {
	if start == nil || end == nil {
		return "Flexible"
	}
	return fmt.Sprintf("%s to %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
}

func getItineraryByID(ctx iris.Context) *models.Itinerary {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation", "Invalid itinerary ID.", ctx)
		return nil
	}

	var itinerary models.Itinerary
	if err := storage.DB.First(&itinerary, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil
	}

	return &itinerary
}
