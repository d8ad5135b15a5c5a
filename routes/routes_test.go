package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"tripmeld-server/models"
	"tripmeld-server/storage"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points storage.DB at a fresh in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Preference{},
		&models.Group{},
		&models.GroupMember{},
		&models.Itinerary{},
		&models.Vote{},
		&models.Comment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	storage.DB = db
	return db
}

// buildTestApp creates a minimal Iris app with the API routes under test.
func buildTestApp(t *testing.T) *iris.Application {
	t.Helper()

	app := iris.New()
	app.Validator = validator.New()

	api := app.Party("/api")

	user := api.Party("/users")
	{
		user.Get("/", GetUsers)
		user.Post("/", CreateUser)
		user.Get("/{id:uint}", GetUser)
		user.Put("/{id:uint}", UpdateUser)
		user.Delete("/{id:uint}", DeleteUser)
		user.Get("/{id:uint}/preferences", GetUserPreferences)
		user.Put("/{id:uint}/preferences", UpdateUserPreferences)
	}

	group := api.Party("/groups")
	{
		group.Get("/", GetGroups)
		group.Post("/", CreateGroup)
		group.Get("/{id:uint}", GetGroup)
		group.Put("/{id:uint}", UpdateGroup)
		group.Delete("/{id:uint}", DeleteGroup)
		group.Get("/{id:uint}/members", GetGroupMembers)
		group.Post("/{id:uint}/members", AddGroupMember)
		group.Delete("/{id:uint}/members/{userID:uint}", RemoveGroupMember)
	}

	itinerary := api.Party("/itineraries")
	{
		itinerary.Get("/", GetItineraries)
		itinerary.Post("/", CreateItinerary)
		itinerary.Post("/generate", GenerateItinerary)
		itinerary.Get("/{id:uint}", GetItinerary)
		itinerary.Put("/{id:uint}", UpdateItinerary)
		itinerary.Delete("/{id:uint}", DeleteItinerary)
		itinerary.Post("/{id:uint}/votes", VoteOnItinerary)
		itinerary.Post("/{id:uint}/comments", CommentOnItinerary)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("failed to build test app: %v", err)
	}
	return app
}

func doRequest(t *testing.T, app *iris.Application, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func createTestUser(t *testing.T, name, email string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: email}
	if err := storage.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestGroup(t *testing.T, owner models.User, destination string) models.Group {
	t.Helper()

	group := models.Group{Name: destination + " trip", Destination: destination, OwnerID: owner.ID}
	if err := storage.DB.Create(&group).Error; err != nil {
		t.Fatalf("failed to create test group: %v", err)
	}
	member := models.GroupMember{UserID: owner.ID, GroupID: group.ID, Role: "owner"}
	if err := storage.DB.Create(&member).Error; err != nil {
		t.Fatalf("failed to create owner membership: %v", err)
	}
	return group
}

func setTestPreferences(t *testing.T, user models.User, budget int, activityLevel string) {
	t.Helper()

	pref := models.Preference{
		UserID:        user.ID,
		Budget:        budget,
		ActivityLevel: activityLevel,
		TravelStyle:   models.EncodeStringList(nil),
		MustHaves:     models.EncodeStringList(nil),
		AvoidList:     models.EncodeStringList(nil),
		FoodPrefs:     models.EncodeStringList(nil),
	}
	if err := storage.DB.Create(&pref).Error; err != nil {
		t.Fatalf("failed to create preferences: %v", err)
	}
}

// scriptedGenerator stands in for the external generation service.
type scriptedGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (s *scriptedGenerator) GenerateItinerary(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}
