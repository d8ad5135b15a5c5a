package routes

import (
	"encoding/json"

	"tripmeld-server/models"
	"tripmeld-server/storage"
	"tripmeld-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Name  string `json:"name" validate:"required,max=256"`
	Email string `json:"email" validate:"required,email"`
}

type UpdateUserInput struct {
	Name  *string `json:"name" validate:"omitempty,max=256"`
	Email *string `json:"email" validate:"omitempty,email"`
}

func GetUsers(ctx iris.Context) {
	var users []models.User
	if err := storage.DB.Find(&users).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(users)
}

func GetUser(ctx iris.Context) {
	user := getUserByID(ctx)
	if user == nil {
		return
	}

	storage.DB.Where("user_id = ?", user.ID).Preload("Group").Find(&user.Memberships)

	ctx.JSON(user)
}

func CreateUser(ctx iris.Context) {
	var input CreateUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existing models.User
	if err := storage.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	user := models.User{Name: input.Name, Email: input.Email}
	if err := storage.DB.Create(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&user)
}

func UpdateUser(ctx iris.Context) {
	user := getUserByID(ctx)
	if user == nil {
		return
	}

	var input UpdateUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		var existing models.User
		if err := storage.DB.Where("email = ? AND id <> ?", *input.Email, user.ID).First(&existing).Error; err == nil {
			utils.CreateEmailAlreadyRegistered(ctx)
			return
		}
		updates["email"] = *input.Email
	}

	if len(updates) > 0 {
		if err := storage.DB.Model(user).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(user)
}

func DeleteUser(ctx iris.Context) {
	user := getUserByID(ctx)
	if user == nil {
		return
	}

	// Hard deletes: the email and preference unique indexes must free up
	// so the same address can register again.
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.Preference{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(user).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

type PreferenceInput struct {
	TravelStyle     []string `json:"travelStyle"`
	Budget          *int     `json:"budget" validate:"omitempty,min=0"`
	MustHaves       []string `json:"mustHaves"`
	AvoidList       []string `json:"avoidList"`
	FoodPrefs       []string `json:"foodPrefs"`
	ActivityLevel   *string  `json:"activityLevel"`
	AdditionalNotes *string  `json:"additionalNotes"`
}

func GetUserPreferences(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation", "Invalid user ID.", ctx)
		return
	}

	var preference models.Preference
	if err := storage.DB.Where("user_id = ?", id).First(&preference).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(&preference)
}

// UpdateUserPreferences creates or updates the user's single preference
// record. Only provided fields are written on update.
func UpdateUserPreferences(ctx iris.Context) {
	user := getUserByID(ctx)
	if user == nil {
		return
	}

	var input PreferenceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.ActivityLevel != nil && !slices.Contains(models.ActivityLevels, *input.ActivityLevel) {
		utils.CreateError(iris.StatusBadRequest, "validation", "Activity level must be Low, Medium or High.", ctx)
		return
	}

	var preference models.Preference
	if err := storage.DB.Where("user_id = ?", user.ID).First(&preference).Error; err != nil {
		preference = models.Preference{
			UserID:        user.ID,
			TravelStyle:   models.EncodeStringList(input.TravelStyle),
			MustHaves:     models.EncodeStringList(input.MustHaves),
			AvoidList:     models.EncodeStringList(input.AvoidList),
			FoodPrefs:     models.EncodeStringList(input.FoodPrefs),
			ActivityLevel: "Medium",
		}
		if input.Budget != nil {
			preference.Budget = *input.Budget
		}
		if input.ActivityLevel != nil {
			preference.ActivityLevel = *input.ActivityLevel
		}
		if input.AdditionalNotes != nil {
			preference.AdditionalNotes = *input.AdditionalNotes
		}
		if err := storage.DB.Create(&preference).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		ctx.JSON(&preference)
		return
	}

	updates := map[string]interface{}{}
	if input.TravelStyle != nil {
		updates["travel_style"] = models.EncodeStringList(input.TravelStyle)
	}
	if input.MustHaves != nil {
		updates["must_haves"] = models.EncodeStringList(input.MustHaves)
	}
	if input.AvoidList != nil {
		updates["avoid_list"] = models.EncodeStringList(input.AvoidList)
	}
	if input.FoodPrefs != nil {
		updates["food_prefs"] = models.EncodeStringList(input.FoodPrefs)
	}
	if input.Budget != nil {
		updates["budget"] = *input.Budget
	}
	if input.ActivityLevel != nil {
		updates["activity_level"] = *input.ActivityLevel
	}
	if input.AdditionalNotes != nil {
		updates["additional_notes"] = *input.AdditionalNotes
	}

	if len(updates) > 0 {
		if err := storage.DB.Model(&preference).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(&preference)
}

type AlterPushTokenInput struct {
	Token string `json:"token" validate:"required"`
	Op    string `json:"op" validate:"required,oneof=add remove"`
}

// AlterPushToken adds or removes an Expo push token on the user.
func AlterPushToken(ctx iris.Context) {
	user := getUserByID(ctx)
	if user == nil {
		return
	}

	var input AlterPushTokenInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	tokens := []string{}
	if user.PushTokens != nil {
		tokens = append(tokens, decodeTokens(user)...)
	}

	switch input.Op {
	case "add":
		if !slices.Contains(tokens, input.Token) {
			tokens = append(tokens, input.Token)
		}
	case "remove":
		if idx := slices.Index(tokens, input.Token); idx >= 0 {
			tokens = append(tokens[:idx], tokens[idx+1:]...)
		}
	}

	if err := storage.DB.Model(user).Update("push_tokens", models.EncodeStringList(tokens)).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(user)
}

func decodeTokens(user *models.User) []string {
	var tokens []string
	if user.PushTokens == nil {
		return tokens
	}
	json.Unmarshal(user.PushTokens, &tokens)
	return tokens
}

// getUserByID loads the user from the {id} route parameter, writing the
// error response itself when the parameter is bad or the user is missing.
func getUserByID(ctx iris.Context) *models.User {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation", "Invalid user ID.", ctx)
		return nil
	}

	var user models.User
	if err := storage.DB.Preload("Preference").First(&user, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil
	}

	return &user
}
