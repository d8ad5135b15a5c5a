package routes

import (
	"time"

	"tripmeld-server/models"
	"tripmeld-server/storage"
	"tripmeld-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateGroupInput struct {
	Name        string     `json:"name" validate:"required,max=120"`
	Description string     `json:"description"`
	Destination string     `json:"destination" validate:"max=120"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	OwnerID     uint       `json:"ownerId" validate:"required"`
}

type UpdateGroupInput struct {
	Name        *string    `json:"name" validate:"omitempty,max=120"`
	Description *string    `json:"description"`
	Destination *string    `json:"destination" validate:"omitempty,max=120"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

func GetGroups(ctx iris.Context) {
	var groups []models.Group
	if err := storage.DB.Preload("Owner").Preload("Members").Find(&groups).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(groups)
}

func GetGroup(ctx iris.Context) {
	groupID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation", "Invalid group ID.", ctx)
		return
	}

	var group models.Group
	err = storage.DB.
		Preload("Owner").
		Preload("Members.User").
		Preload("Itineraries", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&group, groupID).Error
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(&group)
}

// CreateGroup creates the group and its owner membership in one transaction.
func CreateGroup(ctx iris.Context) {
	var input CreateGroupInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var owner models.User
	if err := storage.DB.First(&owner, input.OwnerID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	group := models.Group{
		Name:        input.Name,
		Description: input.Description,
		Destination: input.Destination,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		OwnerID:     owner.ID,
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMember{
			UserID:  owner.ID,
			GroupID: group.ID,
			Role:    "owner",
		}).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("Owner").Preload("Members.User").First(&group, group.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&group)
}

func UpdateGroup(ctx iris.Context) {
	group := getGroupByID(ctx)
	if group == nil {
		return
	}

	var input UpdateGroupInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Destination != nil {
		updates["destination"] = *input.Destination
	}
	if input.StartDate != nil {
		updates["start_date"] = input.StartDate
	}
	if input.EndDate != nil {
		updates["end_date"] = input.EndDate
	}

	if len(updates) > 0 {
		if err := storage.DB.Model(group).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(group)
}

// DeleteGroup removes the group together with its memberships, itineraries
// and their votes and comments, so no orphan rows remain.
func DeleteGroup(ctx iris.Context) {
	group := getGroupByID(ctx)
	if group == nil {
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		var itineraryIDs []uint
		if err := tx.Model(&models.Itinerary{}).Where("group_id = ?", group.ID).Pluck("id", &itineraryIDs).Error; err != nil {
			return err
		}
		if len(itineraryIDs) > 0 {
			if err := tx.Where("itinerary_id IN ?", itineraryIDs).Delete(&models.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("itinerary_id IN ?", itineraryIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", group.ID).Delete(&models.Itinerary{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(group).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

func GetGroupMembers(ctx iris.Context) {
	group := getGroupByID(ctx)
	if group == nil {
		return
	}

	var members []models.GroupMember
	if err := storage.DB.Where("group_id = ?", group.ID).Preload("User.Preference").Find(&members).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(members)
}

type AddGroupMemberInput struct {
	UserID uint `json:"userId" validate:"required"`
}

func AddGroupMember(ctx iris.Context) {
	group := getGroupByID(ctx)
	if group == nil {
		return
	}

	var input AddGroupMemberInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, input.UserID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var existing models.GroupMember
	if err := storage.DB.Where("user_id = ? AND group_id = ?", user.ID, group.ID).First(&existing).Error; err == nil {
		utils.CreateConflict(ctx, "User is already a member of this group.")
		return
	}

	member := models.GroupMember{UserID: user.ID, GroupID: group.ID, Role: "member"}
	if err := storage.DB.Create(&member).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("User").First(&member, member.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&member)
}

// RemoveGroupMember deletes a membership. The owner can never be removed;
// there is no ownership transfer.
func RemoveGroupMember(ctx iris.Context) {
	group := getGroupByID(ctx)
	if group == nil {
		return
	}

	userID, err := ctx.Params().GetUint("userID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation", "Invalid user ID.", ctx)
		return
	}

	var member models.GroupMember
	if err := storage.DB.Where("user_id = ? AND group_id = ?", userID, group.ID).First(&member).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if group.OwnerID == userID {
		utils.CreateForbidden(ctx, "Cannot remove the group owner.")
		return
	}

	if err := storage.DB.Delete(&member).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

func getGroupByID(ctx iris.Context) *models.Group {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation", "Invalid group ID.", ctx)
		return nil
	}

	var group models.Group
	if err := storage.DB.First(&group, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil
	}

	return &group
}
